package handler

import "github.com/tanguyors/bali-pass-home/api"

// Server composes the per-area handlers into api.ServerInterface.
type Server struct {
	*OffersHandler
	*FavoritesHandler
	*PassesHandler
	*RedemptionsHandler
	*ItinerariesHandler
	*CommunityHandler
	*AuthHandler
}

var _ api.ServerInterface = (*Server)(nil)
