package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/offers"
)

const offerColumns = `o.id, o.partner_id, o.category_id, o.title, o.short_description, o.description,
	o.value_type, o.value_number, o.is_active, o.is_featured, o.favorites_count, o.created_at`

const partnerColumns = `p.id, p.name, p.status, p.city_id, p.address, p.description, p.phone, p.lat, p.lng`

// OfferRepository implements offers.Repository using PostgreSQL
type OfferRepository struct {
	db *DB
}

func NewOfferRepository(db *DB) *OfferRepository {
	return &OfferRepository{db: db}
}

func scanOffer(row pgx.Row) (api.Offer, error) {
	var o api.Offer
	var valueType string
	err := row.Scan(
		&o.Id,
		&o.PartnerId,
		&o.CategoryId,
		&o.Title,
		&o.ShortDescription,
		&o.Description,
		&valueType,
		&o.ValueNumber,
		&o.IsActive,
		&o.IsFeatured,
		&o.FavoritesCount,
		&o.CreatedAt,
	)
	o.ValueType = api.ValueType(valueType)
	return o, err
}

func scanPartner(row pgx.Row) (api.Partner, error) {
	var p api.Partner
	var status string
	err := row.Scan(
		&p.Id,
		&p.Name,
		&status,
		&p.CityId,
		&p.Address,
		&p.Description,
		&p.Phone,
		&p.Lat,
		&p.Lng,
	)
	p.Status = api.PartnerStatus(status)
	return p, err
}

func collectOffers(rows pgx.Rows) ([]api.Offer, error) {
	defer rows.Close()
	out := make([]api.Offer, 0)
	for rows.Next() {
		o, err := scanOffer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan offer: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate offers: %w", err)
	}
	return out, nil
}

// buildListOffersQuery renders the explorer page query. Distance ordering
// needs the caller's origin and happens in memory after the join.
func buildListOffersQuery(p offers.ListParams) (string, []any) {
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where := []string{"o.is_active", "p.status = 'approved'"}
	if s := strings.TrimSpace(p.Search); s != "" {
		ph := arg(likePattern(s))
		where = append(where, fmt.Sprintf("(o.title ILIKE %s OR o.short_description ILIKE %s)", ph, ph))
	}
	if p.CategoryID != "" {
		where = append(where, "o.category_id = "+arg(p.CategoryID))
	}
	if p.CityID != "" {
		where = append(where, "p.city_id = "+arg(p.CityID))
	}

	var order string
	switch {
	case p.SortBy == api.SortDiscount:
		order = "o.value_number DESC NULLS LAST, o.id"
	case p.SortBy == api.SortNewest:
		order = "o.id DESC"
	case p.DefaultState:
		order = "o.is_featured DESC, o.created_at DESC, o.id"
	default:
		order = "o.created_at DESC, o.id"
	}

	limit := p.Limit
	if limit <= 0 {
		limit = offers.PageSize
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}

	query := "SELECT " + offerColumns + `
		FROM offers o
		JOIN partners p ON p.id = o.partner_id
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY ` + order + `
		LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)
	return query, args
}

func (r *OfferRepository) ListOffers(ctx context.Context, params offers.ListParams) ([]api.Offer, error) {
	query, args := buildListOffersQuery(params)
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query offers: %w", err)
	}
	return collectOffers(rows)
}

func (r *OfferRepository) GetOffer(ctx context.Context, offerID string) (*api.Offer, error) {
	if !validID(offerID) {
		return nil, nil
	}
	query := "SELECT " + offerColumns + " FROM offers o WHERE o.id = $1"
	o, err := scanOffer(r.db.Pool.QueryRow(ctx, query, offerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query offer: %w", err)
	}
	return &o, nil
}

// ListOffersByPartner returns the partner's active offers.
func (r *OfferRepository) ListOffersByPartner(ctx context.Context, partnerID string) ([]api.Offer, error) {
	if !validID(partnerID) {
		return []api.Offer{}, nil
	}
	query := "SELECT " + offerColumns + `
		FROM offers o
		WHERE o.partner_id = $1 AND o.is_active
		ORDER BY o.is_featured DESC, o.created_at DESC`
	rows, err := r.db.Pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query partner offers: %w", err)
	}
	return collectOffers(rows)
}

func (r *OfferRepository) GetPartner(ctx context.Context, partnerID string) (*api.Partner, error) {
	return getPartner(ctx, r.db, partnerID)
}

func getPartner(ctx context.Context, db *DB, partnerID string) (*api.Partner, error) {
	if !validID(partnerID) {
		return nil, nil
	}
	query := "SELECT " + partnerColumns + " FROM partners p WHERE p.id = $1"
	p, err := scanPartner(db.Pool.QueryRow(ctx, query, partnerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query partner: %w", err)
	}
	return &p, nil
}

func (r *OfferRepository) GetPartnersByIDs(ctx context.Context, partnerIDs []string) (map[string]*api.Partner, error) {
	out := make(map[string]*api.Partner, len(partnerIDs))
	if len(partnerIDs) == 0 {
		return out, nil
	}
	query := "SELECT " + partnerColumns + " FROM partners p WHERE p.id = ANY($1::uuid[])"
	rows, err := r.db.Pool.Query(ctx, query, partnerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query partners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan partner: %w", err)
		}
		out[p.Id] = &p
	}
	return out, rows.Err()
}

func (r *OfferRepository) GetCategoriesByIDs(ctx context.Context, categoryIDs []string) (map[string]*api.Category, error) {
	out := make(map[string]*api.Category, len(categoryIDs))
	if len(categoryIDs) == 0 {
		return out, nil
	}
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, icon, sort_order FROM categories WHERE id = ANY($1)`, categoryIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var c api.Category
		if err := rows.Scan(&c.Id, &c.Name, &c.Icon, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out[c.Id] = &c
	}
	return out, rows.Err()
}

func (r *OfferRepository) ListCategories(ctx context.Context) ([]api.Category, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, icon, sort_order FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()
	out := make([]api.Category, 0)
	for rows.Next() {
		var c api.Category
		if err := rows.Scan(&c.Id, &c.Name, &c.Icon, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *OfferRepository) ListCities(ctx context.Context) ([]api.City, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT id, name, lat, lng FROM cities ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()
	out := make([]api.City, 0)
	for rows.Next() {
		var c api.City
		if err := rows.Scan(&c.Id, &c.Name, &c.Lat, &c.Lng); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
