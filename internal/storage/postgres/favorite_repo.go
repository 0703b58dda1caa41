package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/tanguyors/bali-pass-home/api"
)

// FavoriteRepository implements favorites.Repository using PostgreSQL
type FavoriteRepository struct {
	db *DB
}

func NewFavoriteRepository(db *DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

func (r *FavoriteRepository) OfferExists(ctx context.Context, offerID string) (bool, error) {
	return offerExists(ctx, r.db, offerID)
}

func offerExists(ctx context.Context, db *DB, offerID string) (bool, error) {
	if !validID(offerID) {
		return false, nil
	}
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM offers WHERE id = $1 AND is_active)`, offerID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check offer: %w", err)
	}
	return exists, nil
}

// Toggle removes the favorite if present, otherwise adds it, keeping the
// offer's counter in the same transaction.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, offerID string) (bool, int, error) {
	var (
		favorite bool
		count    int
	)
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND offer_id = $2`, userID, offerID)
		if err != nil {
			return fmt.Errorf("failed to delete favorite: %w", err)
		}
		delta := -1
		if tag.RowsAffected() == 0 {
			tag, err = tx.Exec(ctx,
				`INSERT INTO favorites (user_id, offer_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, userID, offerID)
			if err != nil {
				return fmt.Errorf("failed to insert favorite: %w", err)
			}
			favorite = true
			delta = int(tag.RowsAffected())
		}
		return tx.QueryRow(ctx,
			`UPDATE offers SET favorites_count = GREATEST(favorites_count + $2, 0) WHERE id = $1 RETURNING favorites_count`,
			offerID, delta).Scan(&count)
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to toggle favorite: %w", err)
	}
	return favorite, count, nil
}

func (r *FavoriteRepository) FavoriteOfferIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if !validID(userID) {
		return out, nil
	}
	rows, err := r.db.Pool.Query(ctx, `SELECT offer_id FROM favorites WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

// ListFavorites returns the user's favorited offers, most recent first.
func (r *FavoriteRepository) ListFavorites(ctx context.Context, userID string) ([]api.Offer, error) {
	query := "SELECT " + offerColumns + `
		FROM favorites f
		JOIN offers o ON o.id = f.offer_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query favorites: %w", err)
	}
	return collectOffers(rows)
}
