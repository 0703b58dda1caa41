package passes

import (
	"context"
	"time"

	"github.com/tanguyors/bali-pass-home/api"
)

type Repository interface {
	// CurrentPass returns the user's active pass that has not expired at now, or nil.
	CurrentPass(ctx context.Context, userID string, now time.Time) (*api.Pass, error)

	CreatePass(ctx context.Context, pass *api.Pass) error

	ListPasses(ctx context.Context, userID string) ([]api.Pass, error)

	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}
