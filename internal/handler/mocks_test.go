package handler

import (
	"context"
	"net/http"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/itineraries"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
	"github.com/tanguyors/bali-pass-home/internal/domain/session"
	"github.com/tanguyors/bali-pass-home/internal/geo"
)

// mockOffersService implements offers.ServiceInterface for handler tests
type mockOffersService struct {
	listOffersFunc func(ctx context.Context, q offers.Query) (*api.OfferPage, error)
	getOfferFunc   func(ctx context.Context, q offers.DetailQuery) (*api.Offer, error)
	getPartnerFunc func(ctx context.Context, partnerID string, origin *geo.Point) (*api.Partner, error)
}

func (m *mockOffersService) ListOffers(ctx context.Context, q offers.Query) (*api.OfferPage, error) {
	if m.listOffersFunc != nil {
		return m.listOffersFunc(ctx, q)
	}
	return &api.OfferPage{Offers: []api.Offer{}}, nil
}

func (m *mockOffersService) GetOffer(ctx context.Context, q offers.DetailQuery) (*api.Offer, error) {
	if m.getOfferFunc != nil {
		return m.getOfferFunc(ctx, q)
	}
	return nil, offers.ErrOfferNotFound
}

func (m *mockOffersService) GetPartner(ctx context.Context, partnerID string, origin *geo.Point) (*api.Partner, error) {
	if m.getPartnerFunc != nil {
		return m.getPartnerFunc(ctx, partnerID, origin)
	}
	return nil, offers.ErrPartnerNotFound
}

func (m *mockOffersService) ListCategories(ctx context.Context) ([]api.Category, error) {
	return []api.Category{{Id: "spa", Name: "Spa & Wellness"}}, nil
}

func (m *mockOffersService) ListCities(ctx context.Context) ([]api.City, error) {
	return []api.City{{Id: "ubud", Name: "Ubud"}}, nil
}

// mockPassesService implements passes.ServiceInterface for handler tests
type mockPassesService struct {
	currentFunc  func(ctx context.Context, userID string) (*api.Pass, error)
	purchaseFunc func(ctx context.Context, userID string, passType api.PassType) (*api.Pass, error)
}

func (m *mockPassesService) Current(ctx context.Context, userID string) (*api.Pass, error) {
	if m.currentFunc != nil {
		return m.currentFunc(ctx, userID)
	}
	return nil, nil
}

func (m *mockPassesService) Purchase(ctx context.Context, userID string, passType api.PassType) (*api.Pass, error) {
	if m.purchaseFunc != nil {
		return m.purchaseFunc(ctx, userID, passType)
	}
	return &api.Pass{Id: "pass-1", UserId: userID, Type: passType, Status: api.PassActive}, nil
}

func (m *mockPassesService) History(ctx context.Context, userID string) ([]api.Pass, error) {
	return []api.Pass{}, nil
}

// mockRedemptionsService implements redemptions.ServiceInterface for handler tests
type mockRedemptionsService struct {
	submitFrameFunc func(ctx context.Context, userID, sessionID string, frame []byte) (*api.ScanSession, error)
	redeemFunc      func(ctx context.Context, userID, offerID string) (*api.Redemption, error)
	partnerQRFunc   func(ctx context.Context, partnerID string) ([]byte, error)
}

func (m *mockRedemptionsService) OpenSession(ctx context.Context, userID string) (*api.ScanSession, error) {
	return &api.ScanSession{Id: "scan-1", UserId: userID, State: api.ScanAwaitingCameraPermission}, nil
}

func (m *mockRedemptionsService) GetSession(ctx context.Context, userID, sessionID string) (*api.ScanSession, error) {
	return &api.ScanSession{Id: sessionID, UserId: userID, State: api.ScanIdle}, nil
}

func (m *mockRedemptionsService) CloseSession(ctx context.Context, userID, sessionID string) error {
	return nil
}

func (m *mockRedemptionsService) CameraPermission(ctx context.Context, userID, sessionID string, granted bool) (*api.ScanSession, error) {
	state := api.ScanManualEntry
	if granted {
		state = api.ScanScanning
	}
	return &api.ScanSession{Id: sessionID, UserId: userID, State: state}, nil
}

func (m *mockRedemptionsService) SubmitFrame(ctx context.Context, userID, sessionID string, frame []byte) (*api.ScanSession, error) {
	if m.submitFrameFunc != nil {
		return m.submitFrameFunc(ctx, userID, sessionID, frame)
	}
	return &api.ScanSession{Id: sessionID, State: api.ScanScanning}, nil
}

func (m *mockRedemptionsService) SubmitManual(ctx context.Context, userID, sessionID, code string) (*api.ScanSession, error) {
	return &api.ScanSession{Id: sessionID, State: api.ScanSuccess, Code: &code}, nil
}

func (m *mockRedemptionsService) Redeem(ctx context.Context, userID, offerID string) (*api.Redemption, error) {
	if m.redeemFunc != nil {
		return m.redeemFunc(ctx, userID, offerID)
	}
	return &api.Redemption{Id: "red-1", UserId: userID, OfferId: offerID}, nil
}

func (m *mockRedemptionsService) History(ctx context.Context, userID string) ([]api.Redemption, error) {
	return []api.Redemption{}, nil
}

func (m *mockRedemptionsService) PartnerQR(ctx context.Context, partnerID string) ([]byte, error) {
	if m.partnerQRFunc != nil {
		return m.partnerQRFunc(ctx, partnerID)
	}
	return nil, nil
}

// mockItinerariesService implements itineraries.ServiceInterface for handler tests
type mockItinerariesService struct {
	createFunc func(ctx context.Context, userID string, in itineraries.CreateInput) (*api.Itinerary, error)
	getFunc    func(ctx context.Context, userID, itineraryID string) (*api.Itinerary, error)
}

func (m *mockItinerariesService) Create(ctx context.Context, userID string, in itineraries.CreateInput) (*api.Itinerary, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, in)
	}
	return &api.Itinerary{Id: "it-1", UserId: userID, Title: in.Title}, nil
}

func (m *mockItinerariesService) List(ctx context.Context, userID string) ([]api.Itinerary, error) {
	return []api.Itinerary{}, nil
}

func (m *mockItinerariesService) Get(ctx context.Context, userID, itineraryID string) (*api.Itinerary, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID, itineraryID)
	}
	return nil, itineraries.ErrNotFound
}

func (m *mockItinerariesService) Delete(ctx context.Context, userID, itineraryID string) error {
	return nil
}

func (m *mockItinerariesService) UpdateDay(ctx context.Context, userID, itineraryID string, dayNumber int, cityID, notes *string) (*api.Itinerary, error) {
	return nil, itineraries.ErrDayNotFound
}

func (m *mockItinerariesService) PlanOffer(ctx context.Context, userID, itineraryID string, dayNumber int, offerID string, notes *string) (*api.Itinerary, error) {
	return &api.Itinerary{Id: itineraryID}, nil
}

func (m *mockItinerariesService) RemovePlannedOffer(ctx context.Context, userID, itineraryID, plannedOfferID string) error {
	return nil
}

func (m *mockItinerariesService) Share(ctx context.Context, userID, itineraryID string) (*api.ShareInfo, error) {
	return &api.ShareInfo{Token: "abc"}, nil
}

func (m *mockItinerariesService) GetShared(ctx context.Context, token string) (*api.Itinerary, error) {
	return nil, itineraries.ErrNotFound
}

// mockSessionService implements session.ServiceInterface for handler tests
type mockSessionService struct {
	signUpFunc  func(ctx context.Context, email, password, displayName string) (*api.AuthToken, error)
	signOutFunc func(ctx context.Context, claims *session.Claims) error
}

func (m *mockSessionService) SignUp(ctx context.Context, email, password, displayName string) (*api.AuthToken, error) {
	if m.signUpFunc != nil {
		return m.signUpFunc(ctx, email, password, displayName)
	}
	return &api.AuthToken{AccessToken: "token", TokenType: "Bearer"}, nil
}

func (m *mockSessionService) SignIn(ctx context.Context, email, password string) (*api.AuthToken, error) {
	return nil, session.ErrInvalidCredentials
}

func (m *mockSessionService) SignOut(ctx context.Context, claims *session.Claims) error {
	if m.signOutFunc != nil {
		return m.signOutFunc(ctx, claims)
	}
	return nil
}

func (m *mockSessionService) Authenticate(ctx context.Context, token string) (*session.Claims, error) {
	return nil, session.ErrInvalidToken
}

func (m *mockSessionService) Profile(ctx context.Context, userID string) (*api.Profile, error) {
	return &api.Profile{User: api.User{Id: userID}}, nil
}

// asUser marks the request as authenticated.
func asUser(r *http.Request, userID string) *http.Request {
	c := &session.Claims{}
	c.Subject = userID
	c.ID = "jti-" + userID
	return r.WithContext(session.WithClaims(r.Context(), c))
}
