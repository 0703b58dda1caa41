package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"github.com/tanguyors/bali-pass-home/internal/config"
	"github.com/tanguyors/bali-pass-home/internal/domain/session"
)

type authFunc func(ctx context.Context, token string) (*session.Claims, error)

func (f authFunc) Authenticate(ctx context.Context, token string) (*session.Claims, error) {
	return f(ctx, token)
}

func claimsFor(userID string) *session.Claims {
	c := &session.Claims{}
	c.Subject = userID
	c.ID = "jti-" + userID
	return c
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(session.UserID(r.Context())))
	})
}

func TestOptionalAuth(t *testing.T) {
	auth := authFunc(func(ctx context.Context, token string) (*session.Claims, error) {
		switch token {
		case "good":
			return claimsFor("user-1"), nil
		case "revoked":
			return nil, session.ErrSessionRevoked
		case "broken":
			return nil, errors.New("redis down")
		}
		return nil, session.ErrInvalidToken
	})
	h := OptionalAuth(auth)(echoUser())

	cases := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"anonymous", "", http.StatusOK, ""},
		{"valid", "Bearer good", http.StatusOK, "user-1"},
		{"lowercase scheme", "bearer good", http.StatusOK, "user-1"},
		{"not bearer", "Basic abc", http.StatusUnauthorized, ""},
		{"invalid", "Bearer nope", http.StatusUnauthorized, ""},
		{"revoked", "Bearer revoked", http.StatusUnauthorized, ""},
		{"backend error", "Bearer broken", http.StatusServiceUnavailable, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/offers", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
			if tc.status == http.StatusOK && rec.Body.String() != tc.body {
				t.Errorf("expected user %q, got %q", tc.body, rec.Body.String())
			}
		})
	}
}

func newLimiter(t *testing.T, cfg config.RateLimitConfig) (*tokenBucket, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return &tokenBucket{cfg: cfg, rdb: rdb, now: time.Now}, mr
}

func TestTokenBucket_LimitsAndRefills(t *testing.T) {
	tb, mr := newLimiter(t, config.RateLimitConfig{
		Enabled:        true,
		Capacity:       2,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            time.Minute,
		Prefix:         "rl",
	})
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tb.now = func() time.Time { return now }
	h := tb.middleware(echoUser())

	do := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/offers", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	for i := 0; i < 2; i++ {
		if rec := do(); rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	rec := do()
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Errorf("expected Retry-After 1, got %q", rec.Header().Get("Retry-After"))
	}
	if rec.Header().Get("X-RateLimit-Remaining") != "0" {
		t.Errorf("expected no tokens left, got %q", rec.Header().Get("X-RateLimit-Remaining"))
	}

	now = now.Add(time.Second)
	if rec := do(); rec.Code != http.StatusOK {
		t.Fatalf("expected refill to allow request, got %d", rec.Code)
	}

	if !mr.Exists("rl:ip:10.0.0.1:user:anon") {
		t.Errorf("expected bucket key in redis, have %v", mr.Keys())
	}
}

func TestTokenBucket_KeysPerUser(t *testing.T) {
	tb, _ := newLimiter(t, config.RateLimitConfig{
		Enabled:  true,
		Capacity: 1,
		TTL:      time.Minute,
		Prefix:   "rl",
	})
	h := tb.middleware(echoUser())

	for _, user := range []string{"user-1", "user-2"} {
		req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
		req = req.WithContext(session.WithClaims(req.Context(), claimsFor(user)))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected own bucket, got %d", user, rec.Code)
		}
	}
}

func TestTokenBucket_FailsOpen(t *testing.T) {
	tb, mr := newLimiter(t, config.RateLimitConfig{Enabled: true, Capacity: 1, TTL: time.Minute, Prefix: "rl"})
	mr.Close()

	rec := httptest.NewRecorder()
	tb.middleware(echoUser()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected request to pass when redis is down, got %d", rec.Code)
	}
}

func TestNewTokenBucket_Disabled(t *testing.T) {
	next := echoUser()
	mw := NewTokenBucket(config.RateLimitConfig{Enabled: false}, nil)

	rec := httptest.NewRecorder()
	mw(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/offers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected passthrough, got %d", rec.Code)
	}
}
