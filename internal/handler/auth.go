package handler

import (
	"errors"
	"net/http"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/session"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

type AuthHandler struct {
	sessionService session.ServiceInterface
}

func NewAuthHandler(sessionService session.ServiceInterface) *AuthHandler {
	return &AuthHandler{sessionService: sessionService}
}

func (h *AuthHandler) PostAuthSignup(w http.ResponseWriter, r *http.Request) {
	var body api.PostAuthSignupJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	tok, err := h.sessionService.SignUp(r.Context(), body.Email, body.Password, body.DisplayName)
	if err != nil {
		if errors.Is(err, session.ErrEmailTaken) {
			helpers.WriteError(w, http.StatusConflict, "Email already registered")
			return
		}
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusCreated, tok)
}

func (h *AuthHandler) PostAuthSignin(w http.ResponseWriter, r *http.Request) {
	var body api.PostAuthSigninJSONRequestBody
	if !decodeBody(w, r, &body) {
		return
	}
	tok, err := h.sessionService.SignIn(r.Context(), body.Email, body.Password)
	if err != nil {
		if errors.Is(err, session.ErrInvalidCredentials) {
			helpers.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, tok)
}

func (h *AuthHandler) PostAuthSignout(w http.ResponseWriter, r *http.Request) {
	claims, ok := session.ClaimsFrom(r.Context())
	if !ok {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if err := h.sessionService.SignOut(r.Context(), claims); err != nil {
		internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	profile, err := h.sessionService.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, session.ErrUserNotFound) {
			helpers.WriteError(w, http.StatusUnauthorized, "User no longer exists")
			return
		}
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, profile)
}
