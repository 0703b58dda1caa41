package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tanguyors/bali-pass-home/internal/domain/session"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

var authLogger = helpers.NewLogger("auth")

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*session.Claims, error)
}

// OptionalAuth resolves a bearer token into session claims on the request
// context. Requests without an Authorization header pass through anonymous;
// a header that does not authenticate is rejected.
func OptionalAuth(auth Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			raw, ok := bearerToken(header)
			if !ok {
				helpers.WriteError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := auth.Authenticate(r.Context(), raw)
			switch {
			case err == nil:
			case errors.Is(err, session.ErrInvalidToken):
				helpers.WriteError(w, http.StatusUnauthorized, "invalid token")
				return
			case errors.Is(err, session.ErrSessionRevoked):
				helpers.WriteError(w, http.StatusUnauthorized, "session signed out")
				return
			default:
				authLogger.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to authenticate request")
				helpers.WriteError(w, http.StatusServiceUnavailable, "authentication unavailable")
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithClaims(r.Context(), claims)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}
