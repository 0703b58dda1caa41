package offers

import (
	"context"
	"time"

	"github.com/tanguyors/bali-pass-home/api"
)

// ListParams is what the offers table query can filter and order on.
// Everything else in the pipeline runs in memory on the joined page.
type ListParams struct {
	Search       string
	CategoryID   string
	CityID       string
	SortBy       api.OfferSort
	DefaultState bool
	Limit        int
	Offset       int
}

type Repository interface {
	ListOffers(ctx context.Context, params ListParams) ([]api.Offer, error)

	GetOffer(ctx context.Context, offerID string) (*api.Offer, error)

	ListOffersByPartner(ctx context.Context, partnerID string) ([]api.Offer, error)

	GetPartner(ctx context.Context, partnerID string) (*api.Partner, error)

	GetPartnersByIDs(ctx context.Context, partnerIDs []string) (map[string]*api.Partner, error)

	GetCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]*api.Category, error)

	ListCategories(ctx context.Context) ([]api.Category, error)

	ListCities(ctx context.Context) ([]api.City, error)
}

// FavoritesReader returns the set of offer ids a user has favorited.
type FavoritesReader interface {
	FavoriteOfferIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

// ReferenceCache keeps categories and cities close to the API.
type ReferenceCache interface {
	GetCategories(ctx context.Context) ([]api.Category, error)
	SetCategories(ctx context.Context, categories []api.Category, ttl time.Duration) error
	GetCities(ctx context.Context) ([]api.City, error)
	SetCities(ctx context.Context, cities []api.City, ttl time.Duration) error
}

// Translation holds the localized text fields of an offer.
type Translation struct {
	Title            string  `json:"title"`
	ShortDescription *string `json:"short_description,omitempty"`
	Description      *string `json:"description,omitempty"`
}

type TranslationCache interface {
	GetTranslation(ctx context.Context, offerID, lang string) (*Translation, error)
	SetTranslation(ctx context.Context, offerID, lang string, tr *Translation, ttl time.Duration) error
}

// Translator is the server-side translation provider.
type Translator interface {
	Translate(ctx context.Context, texts []string, targetLang string) ([]string, error)
}

// PartnerStats exposes counters maintained by the redemption worker.
type PartnerStats interface {
	RedemptionCount(ctx context.Context, partnerID string) (int64, error)
}
