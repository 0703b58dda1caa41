package passes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/tanguyors/bali-pass-home/api"
)

var (
	ErrUnknownPassType   = errors.New("unknown pass type")
	ErrPassAlreadyActive = errors.New("pass already active")
)

// Plan describes one purchasable pass.
type Plan struct {
	Type     api.PassType
	Duration time.Duration
	PriceIDR int64
}

const day = 24 * time.Hour

var Catalog = map[api.PassType]Plan{
	api.PassWeek:      {Type: api.PassWeek, Duration: 7 * day, PriceIDR: 299_000},
	api.PassFortnight: {Type: api.PassFortnight, Duration: 14 * day, PriceIDR: 499_000},
	api.PassMonth:     {Type: api.PassMonth, Duration: 30 * day, PriceIDR: 799_000},
}

type ServiceInterface interface {
	Current(ctx context.Context, userID string) (*api.Pass, error)
	Purchase(ctx context.Context, userID string, passType api.PassType) (*api.Pass, error)
	History(ctx context.Context, userID string) ([]api.Pass, error)
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Current returns the active pass, or nil when the user has none.
func (s *Service) Current(ctx context.Context, userID string) (*api.Pass, error) {
	now := s.now()
	p, err := s.repo.CurrentPass(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get current pass: %w", err)
	}
	if p == nil || !CanRedeem(p, now) {
		return nil, nil
	}
	p.RemainingLabel = RemainingLabel(p, now)
	return p, nil
}

// Purchase creates an active pass starting now. Payment happens elsewhere.
func (s *Service) Purchase(ctx context.Context, userID string, passType api.PassType) (*api.Pass, error) {
	plan, ok := Catalog[passType]
	if !ok {
		return nil, ErrUnknownPassType
	}

	current, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		return nil, ErrPassAlreadyActive
	}

	now := s.now().UTC()
	pass := &api.Pass{
		Id:        uuid.New().String(),
		UserId:    userID,
		Type:      plan.Type,
		Status:    api.PassActive,
		PriceIdr:  plan.PriceIDR,
		StartsAt:  now,
		ExpiresAt: now.Add(plan.Duration),
		CreatedAt: now,
	}
	if err := s.repo.CreatePass(ctx, pass); err != nil {
		if errors.Is(err, ErrPassAlreadyActive) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create pass: %w", err)
	}
	pass.RemainingLabel = RemainingLabel(pass, now)
	return pass, nil
}

// History lists every pass of the user, newest first.
func (s *Service) History(ctx context.Context, userID string) ([]api.Pass, error) {
	list, err := s.repo.ListPasses(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}
	now := s.now()
	for i := range list {
		list[i].RemainingLabel = RemainingLabel(&list[i], now)
	}
	if list == nil {
		list = []api.Pass{}
	}
	return list, nil
}

// ExpireDue flips active passes past their expiry to expired.
func (s *Service) ExpireDue(ctx context.Context) (int64, error) {
	n, err := s.repo.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire passes: %w", err)
	}
	return n, nil
}

// CanRedeem reports whether p allows redemptions at now.
func CanRedeem(p *api.Pass, now time.Time) bool {
	return p != nil && p.Status == api.PassActive && !now.Before(p.StartsAt) && now.Before(p.ExpiresAt)
}

// RemainingLabel is the human-readable validity of p, e.g. "expires 6 days from now".
func RemainingLabel(p *api.Pass, now time.Time) string {
	switch {
	case p.Status == api.PassCancelled:
		return "cancelled"
	case p.Status == api.PassPending:
		return "pending"
	case p.Status == api.PassExpired || !now.Before(p.ExpiresAt):
		return "expired " + humanize.RelTime(p.ExpiresAt, now, "ago", "from now")
	default:
		return "expires " + humanize.RelTime(p.ExpiresAt, now, "ago", "from now")
	}
}
