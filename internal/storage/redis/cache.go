package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
)

const (
	keyCategories = "ref:categories"
	keyCities     = "ref:cities"
)

// ReferenceCache caches categories and cities with a TTL
type ReferenceCache struct {
	client *Client
}

func NewReferenceCache(client *Client) *ReferenceCache {
	return &ReferenceCache{client: client}
}

// GetCategories returns cached categories or nil if not cached
func (c *ReferenceCache) GetCategories(ctx context.Context) ([]api.Category, error) {
	var out []api.Category
	ok, err := c.client.getJSON(ctx, keyCategories, &out)
	if err != nil || !ok {
		return nil, err
	}
	return out, nil
}

func (c *ReferenceCache) SetCategories(ctx context.Context, categories []api.Category, ttl time.Duration) error {
	if categories == nil {
		categories = []api.Category{}
	}
	return c.client.setJSON(ctx, keyCategories, categories, ttl)
}

func (c *ReferenceCache) GetCities(ctx context.Context) ([]api.City, error) {
	var out []api.City
	ok, err := c.client.getJSON(ctx, keyCities, &out)
	if err != nil || !ok {
		return nil, err
	}
	return out, nil
}

func (c *ReferenceCache) SetCities(ctx context.Context, cities []api.City, ttl time.Duration) error {
	if cities == nil {
		cities = []api.City{}
	}
	return c.client.setJSON(ctx, keyCities, cities, ttl)
}

// Invalidate drops both reference lists
func (c *ReferenceCache) Invalidate(ctx context.Context) error {
	if err := c.client.ready(); err != nil {
		return err
	}
	return c.client.rdb.Del(ctx, keyCategories, keyCities).Err()
}

// TranslationCache stores translated offer text per language
type TranslationCache struct {
	client *Client
}

func NewTranslationCache(client *Client) *TranslationCache {
	return &TranslationCache{client: client}
}

func translationKey(offerID, lang string) string {
	return fmt.Sprintf("offer:%s:tr:%s", offerID, lang)
}

func (c *TranslationCache) GetTranslation(ctx context.Context, offerID, lang string) (*offers.Translation, error) {
	var tr offers.Translation
	ok, err := c.client.getJSON(ctx, translationKey(offerID, lang), &tr)
	if err != nil || !ok {
		return nil, err
	}
	return &tr, nil
}

func (c *TranslationCache) SetTranslation(ctx context.Context, offerID, lang string, tr *offers.Translation, ttl time.Duration) error {
	if tr == nil {
		return fmt.Errorf("invalid translation")
	}
	return c.client.setJSON(ctx, translationKey(offerID, lang), tr, ttl)
}
