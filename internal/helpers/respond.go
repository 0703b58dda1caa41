package helpers

import (
	"encoding/json"
	"net/http"

	"github.com/tanguyors/bali-pass-home/api"
)

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn().Err(err).Msg("Failed to encode response")
	}
}

// WriteError writes an api.Error body.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, api.Error{Error: message})
}
