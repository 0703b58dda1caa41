package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /offers)
	GetOffers(w http.ResponseWriter, r *http.Request, params GetOffersParams)
	// (GET /offers/{offerId})
	GetOffersOfferId(w http.ResponseWriter, r *http.Request, offerId string, params GetOffersOfferIdParams)
	// (POST /offers/{offerId}/favorite)
	PostOffersOfferIdFavorite(w http.ResponseWriter, r *http.Request, offerId string)
	// (GET /categories)
	GetCategories(w http.ResponseWriter, r *http.Request)
	// (GET /cities)
	GetCities(w http.ResponseWriter, r *http.Request)
	// (GET /partners/{partnerId})
	GetPartnersPartnerId(w http.ResponseWriter, r *http.Request, partnerId string, params GetPartnersPartnerIdParams)
	// (GET /partners/{partnerId}/qr)
	GetPartnersPartnerIdQr(w http.ResponseWriter, r *http.Request, partnerId string)
	// (GET /favorites)
	GetFavorites(w http.ResponseWriter, r *http.Request)

	// (GET /passes)
	GetPasses(w http.ResponseWriter, r *http.Request)
	// (POST /passes)
	PostPasses(w http.ResponseWriter, r *http.Request)
	// (GET /passes/current)
	GetPassesCurrent(w http.ResponseWriter, r *http.Request)

	// (POST /scan-sessions)
	PostScanSessions(w http.ResponseWriter, r *http.Request)
	// (GET /scan-sessions/{sessionId})
	GetScanSessionsSessionId(w http.ResponseWriter, r *http.Request, sessionId string)
	// (DELETE /scan-sessions/{sessionId})
	DeleteScanSessionsSessionId(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /scan-sessions/{sessionId}/camera)
	PostScanSessionsSessionIdCamera(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /scan-sessions/{sessionId}/frames)
	PostScanSessionsSessionIdFrames(w http.ResponseWriter, r *http.Request, sessionId string)
	// (POST /scan-sessions/{sessionId}/manual)
	PostScanSessionsSessionIdManual(w http.ResponseWriter, r *http.Request, sessionId string)
	// (GET /redemptions)
	GetRedemptions(w http.ResponseWriter, r *http.Request)
	// (POST /redemptions)
	PostRedemptions(w http.ResponseWriter, r *http.Request)

	// (GET /itineraries)
	GetItineraries(w http.ResponseWriter, r *http.Request)
	// (POST /itineraries)
	PostItineraries(w http.ResponseWriter, r *http.Request)
	// (GET /itineraries/{itineraryId})
	GetItinerariesItineraryId(w http.ResponseWriter, r *http.Request, itineraryId string)
	// (DELETE /itineraries/{itineraryId})
	DeleteItinerariesItineraryId(w http.ResponseWriter, r *http.Request, itineraryId string)
	// (PUT /itineraries/{itineraryId}/days/{dayNumber})
	PutItinerariesItineraryIdDaysDayNumber(w http.ResponseWriter, r *http.Request, itineraryId string, dayNumber int)
	// (POST /itineraries/{itineraryId}/days/{dayNumber}/offers)
	PostItinerariesItineraryIdDaysDayNumberOffers(w http.ResponseWriter, r *http.Request, itineraryId string, dayNumber int)
	// (DELETE /itineraries/{itineraryId}/planned-offers/{plannedOfferId})
	DeleteItinerariesItineraryIdPlannedOffersPlannedOfferId(w http.ResponseWriter, r *http.Request, itineraryId string, plannedOfferId string)
	// (POST /itineraries/{itineraryId}/share)
	PostItinerariesItineraryIdShare(w http.ResponseWriter, r *http.Request, itineraryId string)
	// (GET /shared/{token})
	GetSharedToken(w http.ResponseWriter, r *http.Request, token string)

	// (GET /community/posts)
	GetCommunityPosts(w http.ResponseWriter, r *http.Request, params GetCommunityPostsParams)
	// (POST /community/posts)
	PostCommunityPosts(w http.ResponseWriter, r *http.Request)
	// (POST /community/posts/{postId}/like)
	PostCommunityPostsPostIdLike(w http.ResponseWriter, r *http.Request, postId string)
	// (GET /community/posts/{postId}/comments)
	GetCommunityPostsPostIdComments(w http.ResponseWriter, r *http.Request, postId string)
	// (POST /community/posts/{postId}/comments)
	PostCommunityPostsPostIdComments(w http.ResponseWriter, r *http.Request, postId string)

	// (POST /auth/signup)
	PostAuthSignup(w http.ResponseWriter, r *http.Request)
	// (POST /auth/signin)
	PostAuthSignin(w http.ResponseWriter, r *http.Request)
	// (POST /auth/signout)
	PostAuthSignout(w http.ResponseWriter, r *http.Request)
	// (GET /me)
	GetMe(w http.ResponseWriter, r *http.Request)
}

// ServerInterfaceWrapper converts path and query parameters before calling the handler.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// ParamError reports a path or query parameter that could not be bound.
type ParamError struct {
	ParamName string
	Err       error
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %v", e.ParamName, e.Err)
}

func (e *ParamError) Unwrap() error {
	return e.Err
}

func (siw *ServerInterfaceWrapper) pathString(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &ParamError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) pathInt(w http.ResponseWriter, r *http.Request, name string, dest *int) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &ParamError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) query(w http.ResponseWriter, r *http.Request, name string, dest interface{}) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		siw.ErrorHandlerFunc(w, r, &ParamError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) GetOffers(w http.ResponseWriter, r *http.Request) {
	var params GetOffersParams
	if !siw.query(w, r, "q", &params.Q) ||
		!siw.query(w, r, "category", &params.Category) ||
		!siw.query(w, r, "city", &params.City) ||
		!siw.query(w, r, "sort", &params.Sort) ||
		!siw.query(w, r, "max_distance", &params.MaxDistance) ||
		!siw.query(w, r, "lat", &params.Lat) ||
		!siw.query(w, r, "lng", &params.Lng) ||
		!siw.query(w, r, "page", &params.Page) {
		return
	}
	siw.Handler.GetOffers(w, r, params)
}

func (siw *ServerInterfaceWrapper) GetOffersOfferId(w http.ResponseWriter, r *http.Request) {
	var offerId string
	if !siw.pathString(w, r, "offerId", &offerId) {
		return
	}
	var params GetOffersOfferIdParams
	if !siw.query(w, r, "lang", &params.Lang) ||
		!siw.query(w, r, "lat", &params.Lat) ||
		!siw.query(w, r, "lng", &params.Lng) {
		return
	}
	siw.Handler.GetOffersOfferId(w, r, offerId, params)
}

func (siw *ServerInterfaceWrapper) PostOffersOfferIdFavorite(w http.ResponseWriter, r *http.Request) {
	var offerId string
	if !siw.pathString(w, r, "offerId", &offerId) {
		return
	}
	siw.Handler.PostOffersOfferIdFavorite(w, r, offerId)
}

func (siw *ServerInterfaceWrapper) GetPartnersPartnerId(w http.ResponseWriter, r *http.Request) {
	var partnerId string
	if !siw.pathString(w, r, "partnerId", &partnerId) {
		return
	}
	var params GetPartnersPartnerIdParams
	if !siw.query(w, r, "lat", &params.Lat) || !siw.query(w, r, "lng", &params.Lng) {
		return
	}
	siw.Handler.GetPartnersPartnerId(w, r, partnerId, params)
}

func (siw *ServerInterfaceWrapper) GetPartnersPartnerIdQr(w http.ResponseWriter, r *http.Request) {
	var partnerId string
	if !siw.pathString(w, r, "partnerId", &partnerId) {
		return
	}
	siw.Handler.GetPartnersPartnerIdQr(w, r, partnerId)
}

func (siw *ServerInterfaceWrapper) withSession(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sessionId string
		if !siw.pathString(w, r, "sessionId", &sessionId) {
			return
		}
		fn(w, r, sessionId)
	}
}

func (siw *ServerInterfaceWrapper) withItinerary(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var itineraryId string
		if !siw.pathString(w, r, "itineraryId", &itineraryId) {
			return
		}
		fn(w, r, itineraryId)
	}
}

func (siw *ServerInterfaceWrapper) withItineraryDay(fn func(http.ResponseWriter, *http.Request, string, int)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var itineraryId string
		if !siw.pathString(w, r, "itineraryId", &itineraryId) {
			return
		}
		var dayNumber int
		if !siw.pathInt(w, r, "dayNumber", &dayNumber) {
			return
		}
		fn(w, r, itineraryId, dayNumber)
	}
}

func (siw *ServerInterfaceWrapper) DeleteItinerariesItineraryIdPlannedOffersPlannedOfferId(w http.ResponseWriter, r *http.Request) {
	var itineraryId, plannedOfferId string
	if !siw.pathString(w, r, "itineraryId", &itineraryId) || !siw.pathString(w, r, "plannedOfferId", &plannedOfferId) {
		return
	}
	siw.Handler.DeleteItinerariesItineraryIdPlannedOffersPlannedOfferId(w, r, itineraryId, plannedOfferId)
}

func (siw *ServerInterfaceWrapper) GetSharedToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if !siw.pathString(w, r, "token", &token) {
		return
	}
	siw.Handler.GetSharedToken(w, r, token)
}

func (siw *ServerInterfaceWrapper) GetCommunityPosts(w http.ResponseWriter, r *http.Request) {
	var params GetCommunityPostsParams
	if !siw.query(w, r, "page", &params.Page) {
		return
	}
	siw.Handler.GetCommunityPosts(w, r, params)
}

func (siw *ServerInterfaceWrapper) withPost(fn func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var postId string
		if !siw.pathString(w, r, "postId", &postId) {
			return
		}
		fn(w, r, postId)
	}
}

// Handler creates http.Handler with routing matching the OpenAPI document.
func Handler(si ServerInterface) http.Handler {
	return HandlerFromMux(si, chi.NewRouter())
}

// HandlerFromMux registers every route of ServerInterface on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	wrapper := ServerInterfaceWrapper{
		Handler: si,
		ErrorHandlerFunc: func(w http.ResponseWriter, r *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		},
	}

	r.Get("/offers", wrapper.GetOffers)
	r.Get("/offers/{offerId}", wrapper.GetOffersOfferId)
	r.Post("/offers/{offerId}/favorite", wrapper.PostOffersOfferIdFavorite)
	r.Get("/categories", si.GetCategories)
	r.Get("/cities", si.GetCities)
	r.Get("/partners/{partnerId}", wrapper.GetPartnersPartnerId)
	r.Get("/partners/{partnerId}/qr", wrapper.GetPartnersPartnerIdQr)
	r.Get("/favorites", si.GetFavorites)

	r.Get("/passes", si.GetPasses)
	r.Post("/passes", si.PostPasses)
	r.Get("/passes/current", si.GetPassesCurrent)

	r.Post("/scan-sessions", si.PostScanSessions)
	r.Get("/scan-sessions/{sessionId}", wrapper.withSession(si.GetScanSessionsSessionId))
	r.Delete("/scan-sessions/{sessionId}", wrapper.withSession(si.DeleteScanSessionsSessionId))
	r.Post("/scan-sessions/{sessionId}/camera", wrapper.withSession(si.PostScanSessionsSessionIdCamera))
	r.Post("/scan-sessions/{sessionId}/frames", wrapper.withSession(si.PostScanSessionsSessionIdFrames))
	r.Post("/scan-sessions/{sessionId}/manual", wrapper.withSession(si.PostScanSessionsSessionIdManual))
	r.Get("/redemptions", si.GetRedemptions)
	r.Post("/redemptions", si.PostRedemptions)

	r.Get("/itineraries", si.GetItineraries)
	r.Post("/itineraries", si.PostItineraries)
	r.Get("/itineraries/{itineraryId}", wrapper.withItinerary(si.GetItinerariesItineraryId))
	r.Delete("/itineraries/{itineraryId}", wrapper.withItinerary(si.DeleteItinerariesItineraryId))
	r.Put("/itineraries/{itineraryId}/days/{dayNumber}", wrapper.withItineraryDay(si.PutItinerariesItineraryIdDaysDayNumber))
	r.Post("/itineraries/{itineraryId}/days/{dayNumber}/offers", wrapper.withItineraryDay(si.PostItinerariesItineraryIdDaysDayNumberOffers))
	r.Delete("/itineraries/{itineraryId}/planned-offers/{plannedOfferId}", wrapper.DeleteItinerariesItineraryIdPlannedOffersPlannedOfferId)
	r.Post("/itineraries/{itineraryId}/share", wrapper.withItinerary(si.PostItinerariesItineraryIdShare))
	r.Get("/shared/{token}", wrapper.GetSharedToken)

	r.Get("/community/posts", wrapper.GetCommunityPosts)
	r.Post("/community/posts", si.PostCommunityPosts)
	r.Post("/community/posts/{postId}/like", wrapper.withPost(si.PostCommunityPostsPostIdLike))
	r.Get("/community/posts/{postId}/comments", wrapper.withPost(si.GetCommunityPostsPostIdComments))
	r.Post("/community/posts/{postId}/comments", wrapper.withPost(si.PostCommunityPostsPostIdComments))

	r.Post("/auth/signup", si.PostAuthSignup)
	r.Post("/auth/signin", si.PostAuthSignin)
	r.Post("/auth/signout", si.PostAuthSignout)
	r.Get("/me", si.GetMe)

	return r
}
