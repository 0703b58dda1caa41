package postgres

import (
	"context"
	"fmt"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/redemptions"
)

// RedemptionRepository implements redemptions.Repository using PostgreSQL
type RedemptionRepository struct {
	db     *DB
	offers *OfferRepository
}

func NewRedemptionRepository(db *DB) *RedemptionRepository {
	return &RedemptionRepository{db: db, offers: NewOfferRepository(db)}
}

func (r *RedemptionRepository) GetPartner(ctx context.Context, partnerID string) (*api.Partner, error) {
	return getPartner(ctx, r.db, partnerID)
}

func (r *RedemptionRepository) ListActiveOffers(ctx context.Context, partnerID string) ([]api.Offer, error) {
	return r.offers.ListOffersByPartner(ctx, partnerID)
}

func (r *RedemptionRepository) GetOffer(ctx context.Context, offerID string) (*api.Offer, error) {
	return r.offers.GetOffer(ctx, offerID)
}

func (r *RedemptionRepository) CreateRedemption(ctx context.Context, red *api.Redemption) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO redemptions (id, user_id, pass_id, offer_id, partner_id, redeemed_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		red.Id,
		red.UserId,
		red.PassId,
		red.OfferId,
		red.PartnerId,
		red.RedeemedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "redemptions_pass_offer_key") {
			return redemptions.ErrAlreadyRedeemed
		}
		return fmt.Errorf("failed to insert redemption: %w", err)
	}
	return nil
}

func (r *RedemptionRepository) ListRedemptions(ctx context.Context, userID string) ([]api.Redemption, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT r.id, r.user_id, r.pass_id, r.offer_id, r.partner_id, r.redeemed_at, o.title, p.name
		FROM redemptions r
		JOIN offers o ON o.id = r.offer_id
		JOIN partners p ON p.id = r.partner_id
		WHERE r.user_id = $1
		ORDER BY r.redeemed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query redemptions: %w", err)
	}
	defer rows.Close()

	out := make([]api.Redemption, 0)
	for rows.Next() {
		var red api.Redemption
		if err := rows.Scan(
			&red.Id,
			&red.UserId,
			&red.PassId,
			&red.OfferId,
			&red.PartnerId,
			&red.RedeemedAt,
			&red.OfferTitle,
			&red.PartnerName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		out = append(out, red)
	}
	return out, rows.Err()
}
