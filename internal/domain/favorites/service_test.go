package favorites

import (
	"context"
	"errors"
	"testing"

	"github.com/tanguyors/bali-pass-home/api"
)

// memRepo keeps favorites in memory with the same toggle semantics as the
// database implementation.
type memRepo struct {
	offers map[string]bool
	favs   map[string]map[string]bool // offerID -> userID
	err    error
}

func newMemRepo(offerIDs ...string) *memRepo {
	r := &memRepo{offers: map[string]bool{}, favs: map[string]map[string]bool{}}
	for _, id := range offerIDs {
		r.offers[id] = true
	}
	return r
}

func (r *memRepo) OfferExists(ctx context.Context, offerID string) (bool, error) {
	return r.offers[offerID], r.err
}

func (r *memRepo) Toggle(ctx context.Context, userID, offerID string) (bool, int, error) {
	if r.err != nil {
		return false, 0, r.err
	}
	users := r.favs[offerID]
	if users == nil {
		users = map[string]bool{}
		r.favs[offerID] = users
	}
	if users[userID] {
		delete(users, userID)
	} else {
		users[userID] = true
	}
	return users[userID], len(users), nil
}

func (r *memRepo) FavoriteOfferIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	out := map[string]struct{}{}
	for offerID, users := range r.favs {
		if users[userID] {
			out[offerID] = struct{}{}
		}
	}
	return out, r.err
}

func (r *memRepo) ListFavorites(ctx context.Context, userID string) ([]api.Offer, error) {
	var out []api.Offer
	for offerID, users := range r.favs {
		if users[userID] {
			out = append(out, api.Offer{Id: offerID})
		}
	}
	return out, r.err
}

func TestToggle_TwiceRestoresStateAndCount(t *testing.T) {
	repo := newMemRepo("offer-1")
	svc := NewService(repo)
	ctx := context.Background()

	// someone else already likes it
	if _, err := svc.Toggle(ctx, "other", "offer-1"); err != nil {
		t.Fatalf("setup toggle: %v", err)
	}

	first, err := svc.Toggle(ctx, "user-1", "offer-1")
	if err != nil {
		t.Fatalf("first toggle: %v", err)
	}
	if !first.IsFavorite || first.FavoritesCount != 2 {
		t.Fatalf("unexpected first toggle: %+v", first)
	}

	second, err := svc.Toggle(ctx, "user-1", "offer-1")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if second.IsFavorite || second.FavoritesCount != 1 {
		t.Fatalf("expected original state and count, got %+v", second)
	}
}

func TestToggle_UnknownOffer(t *testing.T) {
	svc := NewService(newMemRepo())
	if _, err := svc.Toggle(context.Background(), "user-1", "missing"); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
}

func TestToggle_RepositoryError(t *testing.T) {
	repo := newMemRepo("offer-1")
	repo.err = errors.New("db down")
	svc := NewService(repo)
	if _, err := svc.Toggle(context.Background(), "user-1", "offer-1"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestListAndIDs(t *testing.T) {
	repo := newMemRepo("offer-1", "offer-2")
	svc := NewService(repo)
	ctx := context.Background()

	if list, err := svc.List(ctx, "user-1"); err != nil || list == nil || len(list) != 0 {
		t.Fatalf("expected empty non-nil list, got %v (%v)", list, err)
	}

	_, _ = svc.Toggle(ctx, "user-1", "offer-2")

	ids, err := svc.IDs(ctx, "user-1")
	if err != nil {
		t.Fatalf("IDs error: %v", err)
	}
	if _, ok := ids["offer-2"]; !ok || len(ids) != 1 {
		t.Fatalf("unexpected ids: %v", ids)
	}

	list, err := svc.List(ctx, "user-1")
	if err != nil || len(list) != 1 || !list[0].IsFavorite {
		t.Fatalf("unexpected list: %+v (%v)", list, err)
	}
}
