package handler

import (
	"errors"
	"net/http"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/passes"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

type PassesHandler struct {
	passesService passes.ServiceInterface
}

func NewPassesHandler(passesService passes.ServiceInterface) *PassesHandler {
	return &PassesHandler{passesService: passesService}
}

func (h *PassesHandler) GetPasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.passesService.History(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

// PostPasses buys a pass. Payment is not taken here; the pass starts now.
func (h *PassesHandler) PostPasses(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostPassesJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	pass, err := h.passesService.Purchase(r.Context(), userID, body.Type)
	if err != nil {
		switch {
		case errors.Is(err, passes.ErrUnknownPassType):
			helpers.WriteError(w, http.StatusBadRequest, "Unknown pass type")
		case errors.Is(err, passes.ErrPassAlreadyActive):
			helpers.WriteError(w, http.StatusConflict, "A pass is already active")
		default:
			internalError(w, r, err)
		}
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, pass)
}

func (h *PassesHandler) GetPassesCurrent(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	pass, err := h.passesService.Current(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if pass == nil {
		helpers.WriteError(w, http.StatusNotFound, "No active pass")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, pass)
}
