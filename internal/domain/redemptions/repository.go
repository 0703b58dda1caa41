package redemptions

import (
	"context"
	"time"

	"github.com/tanguyors/bali-pass-home/api"
)

type Repository interface {
	GetPartner(ctx context.Context, partnerID string) (*api.Partner, error)

	ListActiveOffers(ctx context.Context, partnerID string) ([]api.Offer, error)

	GetOffer(ctx context.Context, offerID string) (*api.Offer, error)

	// CreateRedemption returns ErrAlreadyRedeemed when the pass already
	// redeemed the offer.
	CreateRedemption(ctx context.Context, r *api.Redemption) error

	ListRedemptions(ctx context.Context, userID string) ([]api.Redemption, error)
}

type SessionStore interface {
	Get(ctx context.Context, id string) (*api.ScanSession, error)
	Save(ctx context.Context, sess *api.ScanSession) error
	Delete(ctx context.Context, id string) error
}

type Locks interface {
	Acquire(ctx context.Context, passID, offerID string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, passID, offerID string) error
}

type PassReader interface {
	Current(ctx context.Context, userID string) (*api.Pass, error)
}
