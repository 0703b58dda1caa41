package favorites

import (
	"context"

	"github.com/tanguyors/bali-pass-home/api"
)

type Repository interface {
	OfferExists(ctx context.Context, offerID string) (bool, error)

	// Toggle flips the favorite row and returns the new state with the
	// offer's favorite count, atomically.
	Toggle(ctx context.Context, userID, offerID string) (bool, int, error)

	FavoriteOfferIDs(ctx context.Context, userID string) (map[string]struct{}, error)

	ListFavorites(ctx context.Context, userID string) ([]api.Offer, error)
}
