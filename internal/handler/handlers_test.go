package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/itineraries"
	"github.com/tanguyors/bali-pass-home/internal/domain/passes"
	"github.com/tanguyors/bali-pass-home/internal/domain/redemptions"
	"github.com/tanguyors/bali-pass-home/internal/domain/session"
)

func jsonRequest(method, target string, body interface{}) *http.Request {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestPassesHandler_RequiresUser(t *testing.T) {
	h := NewPassesHandler(&mockPassesService{})

	w := httptest.NewRecorder()
	h.GetPassesCurrent(w, httptest.NewRequest(http.MethodGet, "/passes/current", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestPassesHandler_CurrentNone(t *testing.T) {
	h := NewPassesHandler(&mockPassesService{})

	w := httptest.NewRecorder()
	h.GetPassesCurrent(w, asUser(httptest.NewRequest(http.MethodGet, "/passes/current", nil), "user-1"))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestPassesHandler_Purchase(t *testing.T) {
	h := NewPassesHandler(&mockPassesService{})

	w := httptest.NewRecorder()
	h.PostPasses(w, asUser(jsonRequest(http.MethodPost, "/passes", api.PostPassesJSONRequestBody{Type: api.PassWeek}), "user-1"))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	h.PostPasses(w, asUser(jsonRequest(http.MethodPost, "/passes", map[string]string{"type": "year"}), "user-1"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", w.Code)
	}
}

func TestPassesHandler_PurchaseConflict(t *testing.T) {
	h := NewPassesHandler(&mockPassesService{
		purchaseFunc: func(ctx context.Context, userID string, passType api.PassType) (*api.Pass, error) {
			return nil, passes.ErrPassAlreadyActive
		},
	})

	w := httptest.NewRecorder()
	h.PostPasses(w, asUser(jsonRequest(http.MethodPost, "/passes", api.PostPassesJSONRequestBody{Type: api.PassMonth}), "user-1"))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
}

func TestRedemptionsHandler_Frames(t *testing.T) {
	var gotFrame []byte
	h := NewRedemptionsHandler(&mockRedemptionsService{
		submitFrameFunc: func(ctx context.Context, userID, sessionID string, frame []byte) (*api.ScanSession, error) {
			gotFrame = frame
			if sessionID == "stale" {
				return nil, redemptions.ErrInvalidTransition
			}
			return &api.ScanSession{Id: sessionID, State: api.ScanScanning}, nil
		},
	})

	req := asUser(httptest.NewRequest(http.MethodPost, "/scan-sessions/s1/frames", strings.NewReader("\x89PNG...")), "user-1")
	w := httptest.NewRecorder()
	h.PostScanSessionsSessionIdFrames(w, req, "s1")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if string(gotFrame) != "\x89PNG..." {
		t.Errorf("frame not forwarded: %q", gotFrame)
	}

	req = asUser(httptest.NewRequest(http.MethodPost, "/scan-sessions/stale/frames", strings.NewReader("x")), "user-1")
	w = httptest.NewRecorder()
	h.PostScanSessionsSessionIdFrames(w, req, "stale")
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	req = asUser(httptest.NewRequest(http.MethodPost, "/scan-sessions/s1/frames", strings.NewReader("")), "user-1")
	w = httptest.NewRecorder()
	h.PostScanSessionsSessionIdFrames(w, req, "s1")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty frame, got %d", w.Code)
	}
}

func TestRedemptionsHandler_RedeemErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{nil, http.StatusCreated},
		{redemptions.ErrNoActivePass, http.StatusForbidden},
		{redemptions.ErrAlreadyRedeemed, http.StatusConflict},
		{redemptions.ErrOfferUnavailable, http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	const offerID = "7a0e8f2c-1b3d-4c5e-8f9a-0b1c2d3e4f5a"
	for _, tc := range cases {
		h := NewRedemptionsHandler(&mockRedemptionsService{
			redeemFunc: func(ctx context.Context, userID, offerID string) (*api.Redemption, error) {
				if tc.err != nil {
					return nil, tc.err
				}
				return &api.Redemption{Id: "red-1", OfferId: offerID}, nil
			},
		})
		w := httptest.NewRecorder()
		h.PostRedemptions(w, asUser(jsonRequest(http.MethodPost, "/redemptions", api.PostRedemptionsJSONRequestBody{OfferId: offerID}), "user-1"))
		if w.Code != tc.status {
			t.Errorf("err %v: expected %d, got %d", tc.err, tc.status, w.Code)
		}
	}
}

func TestRedemptionsHandler_PartnerQR(t *testing.T) {
	h := NewRedemptionsHandler(&mockRedemptionsService{
		partnerQRFunc: func(ctx context.Context, partnerID string) ([]byte, error) {
			if partnerID == "missing" {
				return nil, redemptions.ErrPartnerNotFound
			}
			return []byte("png-bytes"), nil
		},
	})

	w := httptest.NewRecorder()
	h.GetPartnersPartnerIdQr(w, httptest.NewRequest(http.MethodGet, "/partners/p1/qr", nil), "p1")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("expected png, got %d %q", w.Code, w.Header().Get("Content-Type"))
	}
	if w.Body.String() != "png-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}

	w = httptest.NewRecorder()
	h.GetPartnersPartnerIdQr(w, httptest.NewRequest(http.MethodGet, "/partners/missing/qr", nil), "missing")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestItinerariesHandler_Errors(t *testing.T) {
	h := NewItinerariesHandler(&mockItinerariesService{
		getFunc: func(ctx context.Context, userID, itineraryID string) (*api.Itinerary, error) {
			return nil, itineraries.ErrForbidden
		},
		createFunc: func(ctx context.Context, userID string, in itineraries.CreateInput) (*api.Itinerary, error) {
			return nil, itineraries.ErrInvalidDates
		},
	})

	w := httptest.NewRecorder()
	h.GetItinerariesItineraryId(w, asUser(httptest.NewRequest(http.MethodGet, "/itineraries/i1", nil), "user-2"), "i1")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}

	body := map[string]string{"title": "Bali trip", "start_date": "2026-03-10", "end_date": "2026-03-01"}
	w = httptest.NewRecorder()
	h.PostItineraries(w, asUser(jsonRequest(http.MethodPost, "/itineraries", body), "user-1"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	blank := map[string]string{"title": "   ", "start_date": "2026-03-01", "end_date": "2026-03-02"}
	w = httptest.NewRecorder()
	h.PostItineraries(w, asUser(jsonRequest(http.MethodPost, "/itineraries", blank), "user-1"))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank title, got %d", w.Code)
	}
}

func TestAuthHandler_SignUpConflict(t *testing.T) {
	h := NewAuthHandler(&mockSessionService{
		signUpFunc: func(ctx context.Context, email, password, displayName string) (*api.AuthToken, error) {
			return nil, session.ErrEmailTaken
		},
	})

	body := api.PostAuthSignupJSONRequestBody{Email: "a@b.co", Password: "long-enough", DisplayName: "A"}
	w := httptest.NewRecorder()
	h.PostAuthSignup(w, jsonRequest(http.MethodPost, "/auth/signup", body))
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}

	body.Password = "short"
	w = httptest.NewRecorder()
	h.PostAuthSignup(w, jsonRequest(http.MethodPost, "/auth/signup", body))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for short password, got %d", w.Code)
	}
}

func TestAuthHandler_SignOut(t *testing.T) {
	var revoked string
	h := NewAuthHandler(&mockSessionService{
		signOutFunc: func(ctx context.Context, claims *session.Claims) error {
			revoked = claims.SessionID()
			return nil
		},
	})

	w := httptest.NewRecorder()
	h.PostAuthSignout(w, httptest.NewRequest(http.MethodPost, "/auth/signout", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 when anonymous, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.PostAuthSignout(w, asUser(httptest.NewRequest(http.MethodPost, "/auth/signout", nil), "user-1"))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if revoked != "jti-user-1" {
		t.Errorf("expected session jti-user-1 revoked, got %q", revoked)
	}
}

func TestServer_Routes(t *testing.T) {
	srv := &Server{
		OffersHandler:      NewOffersHandler(&mockOffersService{}, nil),
		FavoritesHandler:   NewFavoritesHandler(nil),
		PassesHandler:      NewPassesHandler(&mockPassesService{}),
		RedemptionsHandler: NewRedemptionsHandler(&mockRedemptionsService{}),
		ItinerariesHandler: NewItinerariesHandler(&mockItinerariesService{}),
		CommunityHandler:   NewCommunityHandler(nil),
		AuthHandler:        NewAuthHandler(&mockSessionService{}),
	}
	router := api.HandlerFromMux(srv, chi.NewRouter())

	cases := []struct {
		method, path string
		status       int
	}{
		{http.MethodGet, "/categories", http.StatusOK},
		{http.MethodGet, "/cities", http.StatusOK},
		{http.MethodGet, "/offers", http.StatusOK},
		{http.MethodGet, "/shared/nope", http.StatusNotFound},
		{http.MethodGet, "/favorites", http.StatusUnauthorized},
		{http.MethodGet, "/me", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
		if w.Code != tc.status {
			t.Errorf("%s %s: expected %d, got %d", tc.method, tc.path, tc.status, w.Code)
		}
	}
}
