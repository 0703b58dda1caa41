package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(s.Close)

	url := fmt.Sprintf("redis://%s/0", s.Addr())
	rcli, err := NewClient(url)
	if err != nil {
		t.Fatalf("failed to create redis client: %v", err)
	}
	t.Cleanup(func() { _ = rcli.Close() })
	return rcli, s
}

func TestReferenceCache_SetGetInvalidate(t *testing.T) {
	rcli, _ := newTestClient(t)
	cache := NewReferenceCache(rcli)
	ctx := context.Background()

	got, err := cache.GetCategories(ctx)
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %v (%v)", got, err)
	}

	cats := []api.Category{{Id: "spa", Name: "Spa", SortOrder: 1}, {Id: "food", Name: "Food", SortOrder: 2}}
	if err := cache.SetCategories(ctx, cats, time.Minute); err != nil {
		t.Fatalf("SetCategories error: %v", err)
	}
	got, err = cache.GetCategories(ctx)
	if err != nil {
		t.Fatalf("GetCategories error: %v", err)
	}
	if len(got) != 2 || got[0].Id != "spa" || got[1].SortOrder != 2 {
		t.Fatalf("unexpected categories from cache: %+v", got)
	}

	if err := cache.SetCities(ctx, nil, time.Minute); err != nil {
		t.Fatalf("SetCities error: %v", err)
	}
	cities, err := cache.GetCities(ctx)
	if err != nil || cities == nil || len(cities) != 0 {
		t.Fatalf("expected cached empty list, got %v (%v)", cities, err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if got, _ := cache.GetCategories(ctx); got != nil {
		t.Fatalf("expected nil after invalidate, got: %+v", got)
	}
}

func TestReferenceCache_TTL_Expiry(t *testing.T) {
	rcli, s := newTestClient(t)
	cache := NewReferenceCache(rcli)
	ctx := context.Background()

	if err := cache.SetCities(ctx, []api.City{{Id: "ubud", Name: "Ubud"}}, 2*time.Second); err != nil {
		t.Fatalf("SetCities error: %v", err)
	}
	if got, _ := cache.GetCities(ctx); len(got) != 1 {
		t.Fatalf("expected cities present before expiry")
	}

	s.FastForward(3 * time.Second)

	got, err := cache.GetCities(ctx)
	if err != nil {
		t.Fatalf("GetCities after expiry error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after expiry, got: %+v", got)
	}
}

func TestTranslationCache_PerLanguage(t *testing.T) {
	rcli, _ := newTestClient(t)
	cache := NewTranslationCache(rcli)
	ctx := context.Background()

	short := "Pijat Bali"
	if err := cache.SetTranslation(ctx, "o1", "id", &offers.Translation{Title: "Diskon spa", ShortDescription: &short}, time.Hour); err != nil {
		t.Fatalf("SetTranslation error: %v", err)
	}

	got, err := cache.GetTranslation(ctx, "o1", "id")
	if err != nil || got == nil {
		t.Fatalf("GetTranslation: %v (%v)", got, err)
	}
	if got.Title != "Diskon spa" || got.ShortDescription == nil || *got.ShortDescription != short {
		t.Fatalf("unexpected translation: %+v", got)
	}

	if other, err := cache.GetTranslation(ctx, "o1", "fr"); err != nil || other != nil {
		t.Fatalf("expected miss for another language, got %v (%v)", other, err)
	}
	if err := cache.SetTranslation(ctx, "o1", "fr", nil, time.Hour); err == nil {
		t.Fatalf("expected error for nil translation")
	}
}
