package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
	"github.com/tanguyors/bali-pass-home/internal/domain/session"
	"github.com/tanguyors/bali-pass-home/internal/geo"
	"github.com/tanguyors/bali-pass-home/internal/helpers"
)

type OffersHandler struct {
	offersService offers.ServiceInterface
	gate          *offers.LatestGate
}

func NewOffersHandler(offersService offers.ServiceInterface, gate *offers.LatestGate) *OffersHandler {
	if gate == nil {
		gate = offers.NewLatestGate()
	}
	return &OffersHandler{
		offersService: offersService,
		gate:          gate,
	}
}

// GetOffers handles GET /offers. A newer list request from the same client
// supersedes this one, which is then answered with 409.
func (h *OffersHandler) GetOffers(w http.ResponseWriter, r *http.Request, params api.GetOffersParams) {
	q := offers.Query{
		Filter: offers.Filter{
			Search:        deref(params.Q),
			CategoryID:    deref(params.Category),
			CityID:        deref(params.City),
			MaxDistanceKm: params.MaxDistance,
		},
		Origin: geo.ParsePoint(params.Lat, params.Lng),
		UserID: session.UserID(r.Context()),
	}
	if params.Sort != nil {
		q.SortBy = *params.Sort
	}
	if params.Page != nil {
		q.Page = *params.Page
	}

	ctx := r.Context()
	if key, ok := clientKey(r); ok {
		var done func()
		ctx, done = h.gate.Begin(ctx, key)
		defer done()
	}

	page, err := h.offersService.ListOffers(ctx, q)
	if err != nil {
		if offers.Superseded(ctx) {
			helpers.WriteError(w, http.StatusConflict, "superseded by a newer request")
			return
		}
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, page)
}

// UserClientKey is the gate key used for requests from a signed in user.
func UserClientKey(userID string) string {
	return "user:" + userID
}

// clientKey identifies whose list requests supersede each other. Anonymous
// requests without X-Client-Id have no key and are never superseded.
func clientKey(r *http.Request) (string, bool) {
	if userID := session.UserID(r.Context()); userID != "" {
		return UserClientKey(userID), true
	}
	if id := strings.TrimSpace(r.Header.Get("X-Client-Id")); id != "" {
		return "client:" + id, true
	}
	return "", false
}

func (h *OffersHandler) GetOffersOfferId(w http.ResponseWriter, r *http.Request, offerId string, params api.GetOffersOfferIdParams) {
	offer, err := h.offersService.GetOffer(r.Context(), offers.DetailQuery{
		OfferID: offerId,
		UserID:  session.UserID(r.Context()),
		Lang:    deref(params.Lang),
		Origin:  geo.ParsePoint(params.Lat, params.Lng),
	})
	if err != nil {
		if errors.Is(err, offers.ErrOfferNotFound) {
			helpers.WriteError(w, http.StatusNotFound, "Offer not found")
			return
		}
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, offer)
}

func (h *OffersHandler) GetPartnersPartnerId(w http.ResponseWriter, r *http.Request, partnerId string, params api.GetPartnersPartnerIdParams) {
	partner, err := h.offersService.GetPartner(r.Context(), partnerId, geo.ParsePoint(params.Lat, params.Lng))
	if err != nil {
		if errors.Is(err, offers.ErrPartnerNotFound) {
			helpers.WriteError(w, http.StatusNotFound, "Partner not found")
			return
		}
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, partner)
}

func (h *OffersHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.offersService.ListCategories(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, categories)
}

func (h *OffersHandler) GetCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.offersService.ListCities(r.Context())
	if err != nil {
		internalError(w, r, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, cities)
}
