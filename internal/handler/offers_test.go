package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
)

func TestOffersHandler_GetOffers_BindsQuery(t *testing.T) {
	q, cat, sort, page := "massage", "spa", api.SortDistance, 2
	lat, lng, maxDist := -8.5, 115.26, 10.0

	mockSvc := &mockOffersService{
		listOffersFunc: func(ctx context.Context, got offers.Query) (*api.OfferPage, error) {
			if got.Search != q || got.CategoryID != cat || got.SortBy != sort || got.Page != page {
				t.Errorf("unexpected query: %+v", got)
			}
			if got.Origin == nil || got.Origin.Lat != lat || got.Origin.Lng != lng {
				t.Errorf("expected origin, got %+v", got.Origin)
			}
			if got.MaxDistanceKm == nil || *got.MaxDistanceKm != maxDist {
				t.Errorf("expected max distance")
			}
			if got.UserID != "user-1" {
				t.Errorf("expected user id, got %q", got.UserID)
			}
			return &api.OfferPage{Offers: []api.Offer{{Id: "offer-1"}}, Page: page}, nil
		},
	}
	h := NewOffersHandler(mockSvc, nil)

	req := asUser(httptest.NewRequest(http.MethodGet, "/offers", nil), "user-1")
	w := httptest.NewRecorder()
	h.GetOffers(w, req, api.GetOffersParams{
		Q: &q, Category: &cat, Sort: &sort, Page: &page, Lat: &lat, Lng: &lng, MaxDistance: &maxDist,
	})

	if w.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, w.Code)
	}
	var resp api.OfferPage
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Offers) != 1 || resp.Page != page {
		t.Errorf("unexpected page: %+v", resp)
	}
}

func TestOffersHandler_GetOffers_SupersededReturnsConflict(t *testing.T) {
	gate := offers.NewLatestGate()
	started := make(chan struct{})

	mockSvc := &mockOffersService{
		listOffersFunc: func(ctx context.Context, q offers.Query) (*api.OfferPage, error) {
			if q.Search == "first" {
				close(started)
				<-ctx.Done()
				return nil, ctx.Err()
			}
			return &api.OfferPage{Offers: []api.Offer{}}, nil
		},
	}
	h := NewOffersHandler(mockSvc, gate)

	first := "first"
	firstDone := make(chan *httptest.ResponseRecorder)
	go func() {
		w := httptest.NewRecorder()
		h.GetOffers(w, asUser(httptest.NewRequest(http.MethodGet, "/offers", nil), "user-1"), api.GetOffersParams{Q: &first})
		firstDone <- w
	}()
	<-started

	w := httptest.NewRecorder()
	h.GetOffers(w, asUser(httptest.NewRequest(http.MethodGet, "/offers", nil), "user-1"), api.GetOffersParams{})
	if w.Code != http.StatusOK {
		t.Fatalf("latest request: expected 200, got %d", w.Code)
	}

	if stale := <-firstDone; stale.Code != http.StatusConflict {
		t.Fatalf("superseded request: expected 409, got %d", stale.Code)
	}
}

func TestOffersHandler_GetOffers_ServiceError(t *testing.T) {
	h := NewOffersHandler(&mockOffersService{
		listOffersFunc: func(ctx context.Context, q offers.Query) (*api.OfferPage, error) {
			return nil, errors.New("db down")
		},
	}, nil)

	w := httptest.NewRecorder()
	h.GetOffers(w, httptest.NewRequest(http.MethodGet, "/offers", nil), api.GetOffersParams{})
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestOffersHandler_GetOffer_NotFound(t *testing.T) {
	h := NewOffersHandler(&mockOffersService{}, nil)

	w := httptest.NewRecorder()
	h.GetOffersOfferId(w, httptest.NewRequest(http.MethodGet, "/offers/x", nil), "x", api.GetOffersOfferIdParams{})
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	var resp api.Error
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil || resp.Error == "" {
		t.Errorf("expected error body, got %v / %+v", err, resp)
	}
}

func TestOffersHandler_GetOffer_PassesLang(t *testing.T) {
	lang := "fr"
	h := NewOffersHandler(&mockOffersService{
		getOfferFunc: func(ctx context.Context, q offers.DetailQuery) (*api.Offer, error) {
			if q.Lang != "fr" || q.OfferID != "offer-1" {
				t.Errorf("unexpected detail query: %+v", q)
			}
			return &api.Offer{Id: q.OfferID, Lang: &lang}, nil
		},
	}, nil)

	w := httptest.NewRecorder()
	h.GetOffersOfferId(w, httptest.NewRequest(http.MethodGet, "/offers/offer-1", nil), "offer-1", api.GetOffersOfferIdParams{Lang: &lang})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestClientKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/offers", nil)
	req.RemoteAddr = "10.1.2.3:4444"
	if got, ok := clientKey(req); ok {
		t.Errorf("anonymous request without client id must not be keyed, got %q", got)
	}

	req.Header.Set("X-Client-Id", "device-9")
	if got, ok := clientKey(req); !ok || got != "client:device-9" {
		t.Errorf("got %q, %v", got, ok)
	}

	if got, ok := clientKey(asUser(req, "user-1")); !ok || got != "user:user-1" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestOffersHandler_GetOffers_SharedAddressDoesNotSupersede(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	mockSvc := &mockOffersService{
		listOffersFunc: func(ctx context.Context, q offers.Query) (*api.OfferPage, error) {
			if q.Search == "first" {
				close(started)
				select {
				case <-release:
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			}
			return &api.OfferPage{Offers: []api.Offer{}}, nil
		},
	}
	h := NewOffersHandler(mockSvc, offers.NewLatestGate())

	newReq := func(port string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/offers", nil)
		req.RemoteAddr = "100.64.0.1:" + port
		return req
	}

	first := "first"
	firstDone := make(chan *httptest.ResponseRecorder)
	go func() {
		w := httptest.NewRecorder()
		h.GetOffers(w, newReq("5001"), api.GetOffersParams{Q: &first})
		firstDone <- w
	}()
	<-started

	w := httptest.NewRecorder()
	h.GetOffers(w, newReq("5002"), api.GetOffersParams{})
	if w.Code != http.StatusOK {
		t.Fatalf("second client: expected 200, got %d", w.Code)
	}

	close(release)
	if other := <-firstDone; other.Code != http.StatusOK {
		t.Fatalf("first client behind the same address: expected 200, got %d", other.Code)
	}
}
