package handler

import (
	"encoding/json"
	"net/http"

	"github.com/tanguyors/bali-pass-home/internal/domain/session"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
	"github.com/tanguyors/bali-pass-home/internal/validate"
)

var logger = helpers.NewLogger("handler")

const maxBodyBytes = 1 << 20

// requireUser returns the authenticated user id or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := session.UserID(r.Context())
	if userID == "" {
		helpers.WriteError(w, http.StatusUnauthorized, "authentication required")
		return "", false
	}
	return userID, true
}

// decodeBody reads a JSON body into dst and runs its validate tags.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		helpers.WriteError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Error().
		Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("Request failed")
	helpers.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
