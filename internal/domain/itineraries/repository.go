package itineraries

import (
	"context"

	"github.com/tanguyors/bali-pass-home/api"
)

type Repository interface {
	// CreateItinerary stores the itinerary and its days in one transaction.
	CreateItinerary(ctx context.Context, it *api.Itinerary) error

	ListItineraries(ctx context.Context, userID string) ([]api.Itinerary, error)

	// GetItinerary loads the itinerary with days and planned offers, or nil.
	GetItinerary(ctx context.Context, itineraryID string) (*api.Itinerary, error)

	GetItineraryByShareToken(ctx context.Context, token string) (*api.Itinerary, error)

	DeleteItinerary(ctx context.Context, itineraryID string) error

	UpdateDay(ctx context.Context, itineraryID string, dayNumber int, cityID, notes *string) (bool, error)

	// AddPlannedOffer appends po at the next position of the day; false when
	// the day does not exist.
	AddPlannedOffer(ctx context.Context, itineraryID string, dayNumber int, po *api.PlannedOffer) (bool, error)

	RemovePlannedOffer(ctx context.Context, itineraryID, plannedOfferID string) (bool, error)

	SetShared(ctx context.Context, itineraryID, token string) error

	OfferExists(ctx context.Context, offerID string) (bool, error)
}
