package handler

import (
	"errors"
	"net/http"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/itineraries"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

type ItinerariesHandler struct {
	itinerariesService itineraries.ServiceInterface
}

func NewItinerariesHandler(itinerariesService itineraries.ServiceInterface) *ItinerariesHandler {
	return &ItinerariesHandler{itinerariesService: itinerariesService}
}

func (h *ItinerariesHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, itineraries.ErrNotFound):
		helpers.WriteError(w, http.StatusNotFound, "Itinerary not found")
	case errors.Is(err, itineraries.ErrForbidden):
		helpers.WriteError(w, http.StatusForbidden, "Itinerary belongs to another user")
	case errors.Is(err, itineraries.ErrDayNotFound):
		helpers.WriteError(w, http.StatusNotFound, "Day not found")
	case errors.Is(err, itineraries.ErrPlannedNotFound):
		helpers.WriteError(w, http.StatusNotFound, "Planned offer not found")
	case errors.Is(err, itineraries.ErrOfferNotFound):
		helpers.WriteError(w, http.StatusBadRequest, "Offer not found")
	case errors.Is(err, itineraries.ErrInvalidDates),
		errors.Is(err, itineraries.ErrTooLong),
		errors.Is(err, itineraries.ErrInvalidTitle):
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		internalError(w, r, err)
	}
}

func (h *ItinerariesHandler) GetItineraries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.itinerariesService.List(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

func (h *ItinerariesHandler) PostItineraries(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostItinerariesJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	it, err := h.itinerariesService.Create(r.Context(), userID, itineraries.CreateInput{
		Title:     body.Title,
		StartDate: body.StartDate.Time,
		EndDate:   body.EndDate.Time,
		CityID:    body.CityId,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, it)
}

func (h *ItinerariesHandler) GetItinerariesItineraryId(w http.ResponseWriter, r *http.Request, itineraryId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	it, err := h.itinerariesService.Get(r.Context(), userID, itineraryId)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, it)
}

func (h *ItinerariesHandler) DeleteItinerariesItineraryId(w http.ResponseWriter, r *http.Request, itineraryId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.itinerariesService.Delete(r.Context(), userID, itineraryId); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItinerariesHandler) PutItinerariesItineraryIdDaysDayNumber(w http.ResponseWriter, r *http.Request, itineraryId string, dayNumber int) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PutItinerariesItineraryIdDaysDayNumberJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	it, err := h.itinerariesService.UpdateDay(r.Context(), userID, itineraryId, dayNumber, body.CityId, body.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, it)
}

func (h *ItinerariesHandler) PostItinerariesItineraryIdDaysDayNumberOffers(w http.ResponseWriter, r *http.Request, itineraryId string, dayNumber int) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostItinerariesItineraryIdDaysDayNumberOffersJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	it, err := h.itinerariesService.PlanOffer(r.Context(), userID, itineraryId, dayNumber, body.OfferId, body.Notes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, it)
}

func (h *ItinerariesHandler) DeleteItinerariesItineraryIdPlannedOffersPlannedOfferId(w http.ResponseWriter, r *http.Request, itineraryId string, plannedOfferId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.itinerariesService.RemovePlannedOffer(r.Context(), userID, itineraryId, plannedOfferId); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItinerariesHandler) PostItinerariesItineraryIdShare(w http.ResponseWriter, r *http.Request, itineraryId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	info, err := h.itinerariesService.Share(r.Context(), userID, itineraryId)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, info)
}

// GetSharedToken is the public read of a shared itinerary.
func (h *ItinerariesHandler) GetSharedToken(w http.ResponseWriter, r *http.Request, token string) {
	it, err := h.itinerariesService.GetShared(r.Context(), token)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, it)
}
