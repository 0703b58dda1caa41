package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/redemptions"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

const maxFrameBytes = 8 << 20

// RedemptionsHandler serves scan sessions, redemptions and partner QR codes.
type RedemptionsHandler struct {
	redemptionsService redemptions.ServiceInterface
}

func NewRedemptionsHandler(redemptionsService redemptions.ServiceInterface) *RedemptionsHandler {
	return &RedemptionsHandler{redemptionsService: redemptionsService}
}

func (h *RedemptionsHandler) writeScanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, redemptions.ErrSessionNotFound):
		helpers.WriteError(w, http.StatusNotFound, "Scan session not found")
	case errors.Is(err, redemptions.ErrInvalidTransition):
		helpers.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, redemptions.ErrInvalidFrame):
		helpers.WriteError(w, http.StatusBadRequest, "Frame is not a PNG or JPEG image")
	default:
		internalError(w, r, err)
	}
}

func (h *RedemptionsHandler) PostScanSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sess, err := h.redemptionsService.OpenSession(r.Context(), userID)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, sess)
}

func (h *RedemptionsHandler) GetScanSessionsSessionId(w http.ResponseWriter, r *http.Request, sessionId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	sess, err := h.redemptionsService.GetSession(r.Context(), userID, sessionId)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sess)
}

func (h *RedemptionsHandler) DeleteScanSessionsSessionId(w http.ResponseWriter, r *http.Request, sessionId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	if err := h.redemptionsService.CloseSession(r.Context(), userID, sessionId); err != nil {
		h.writeScanError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RedemptionsHandler) PostScanSessionsSessionIdCamera(w http.ResponseWriter, r *http.Request, sessionId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostScanSessionsSessionIdCameraJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	sess, err := h.redemptionsService.CameraPermission(r.Context(), userID, sessionId, body.Granted)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sess)
}

// PostScanSessionsSessionIdFrames takes one raw camera frame.
func (h *RedemptionsHandler) PostScanSessionsSessionIdFrames(w http.ResponseWriter, r *http.Request, sessionId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	frame, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFrameBytes))
	if err != nil {
		helpers.WriteError(w, http.StatusRequestEntityTooLarge, "Frame too large")
		return
	}
	if len(frame) == 0 {
		helpers.WriteError(w, http.StatusBadRequest, "Frame is empty")
		return
	}
	sess, err := h.redemptionsService.SubmitFrame(r.Context(), userID, sessionId, frame)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sess)
}

func (h *RedemptionsHandler) PostScanSessionsSessionIdManual(w http.ResponseWriter, r *http.Request, sessionId string) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostScanSessionsSessionIdManualJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	sess, err := h.redemptionsService.SubmitManual(r.Context(), userID, sessionId, body.Code)
	if err != nil {
		h.writeScanError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, sess)
}

func (h *RedemptionsHandler) GetRedemptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	list, err := h.redemptionsService.History(r.Context(), userID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, list)
}

func (h *RedemptionsHandler) PostRedemptions(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var body api.PostRedemptionsJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}

	red, err := h.redemptionsService.Redeem(r.Context(), userID, body.OfferId)
	if err != nil {
		switch {
		case errors.Is(err, redemptions.ErrNoActivePass):
			helpers.WriteError(w, http.StatusForbidden, "An active pass is required")
		case errors.Is(err, redemptions.ErrOfferUnavailable):
			helpers.WriteError(w, http.StatusNotFound, "Offer unavailable")
		case errors.Is(err, redemptions.ErrAlreadyRedeemed):
			helpers.WriteError(w, http.StatusConflict, "Offer already redeemed with this pass")
		default:
			internalError(w, r, err)
		}
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, red)
}

func (h *RedemptionsHandler) GetPartnersPartnerIdQr(w http.ResponseWriter, r *http.Request, partnerId string) {
	png, err := h.redemptionsService.PartnerQR(r.Context(), partnerId)
	if err != nil {
		if errors.Is(err, redemptions.ErrPartnerNotFound) {
			helpers.WriteError(w, http.StatusNotFound, "Partner not found")
			return
		}
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
