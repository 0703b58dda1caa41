package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/tanguyors/bali-pass-home/api"
)

var ErrOfferNotFound = errors.New("offer not found")

type ServiceInterface interface {
	Toggle(ctx context.Context, userID, offerID string) (*api.FavoriteToggle, error)
	List(ctx context.Context, userID string) ([]api.Offer, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Toggle(ctx context.Context, userID, offerID string) (*api.FavoriteToggle, error) {
	if userID == "" || offerID == "" {
		return nil, fmt.Errorf("invalid request")
	}

	exists, err := s.repo.OfferExists(ctx, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check offer: %w", err)
	}
	if !exists {
		return nil, ErrOfferNotFound
	}

	fav, count, err := s.repo.Toggle(ctx, userID, offerID)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return &api.FavoriteToggle{OfferId: offerID, IsFavorite: fav, FavoritesCount: count}, nil
}

// IDs is the favorites overlay source for the offer pipeline.
func (s *Service) IDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	return s.repo.FavoriteOfferIDs(ctx, userID)
}

// FavoriteOfferIDs lets the service stand in for offers.FavoritesReader.
func (s *Service) FavoriteOfferIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	return s.IDs(ctx, userID)
}

// List returns favorited offers, newest favorite first.
func (s *Service) List(ctx context.Context, userID string) ([]api.Offer, error) {
	out, err := s.repo.ListFavorites(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	for i := range out {
		out[i].IsFavorite = true
	}
	if out == nil {
		out = []api.Offer{}
	}
	return out, nil
}
