package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/tanguyors/bali-pass-home/api"
)

const itineraryColumns = `id, user_id, title, start_date, end_date, share_token, is_public, created_at`

// ItineraryRepository implements itineraries.Repository using PostgreSQL
type ItineraryRepository struct {
	db *DB
}

func NewItineraryRepository(db *DB) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

func scanItinerary(row pgx.Row) (api.Itinerary, error) {
	var it api.Itinerary
	var start, end time.Time
	err := row.Scan(
		&it.Id,
		&it.UserId,
		&it.Title,
		&start,
		&end,
		&it.ShareToken,
		&it.IsPublic,
		&it.CreatedAt,
	)
	it.StartDate = openapi_types.Date{Time: start}
	it.EndDate = openapi_types.Date{Time: end}
	return it, err
}

// CreateItinerary stores the itinerary and all of its days atomically.
func (r *ItineraryRepository) CreateItinerary(ctx context.Context, it *api.Itinerary) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO itineraries (`+itineraryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		it.Id,
		it.UserId,
		it.Title,
		it.StartDate.Time,
		it.EndDate.Time,
		it.ShareToken,
		it.IsPublic,
		it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}

	batch := &pgx.Batch{}
	for _, d := range it.Days {
		batch.Queue(`
			INSERT INTO itinerary_days (id, itinerary_id, day_number, date, city_id, notes)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			d.Id, it.Id, d.DayNumber, d.Date.Time, d.CityId, d.Notes)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert itinerary days: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ListItineraries returns the user's itineraries without their days.
func (r *ItineraryRepository) ListItineraries(ctx context.Context, userID string) ([]api.Itinerary, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+itineraryColumns+` FROM itineraries WHERE user_id = $1 ORDER BY start_date, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer rows.Close()
	out := make([]api.Itinerary, 0)
	for rows.Next() {
		it, err := scanItinerary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *ItineraryRepository) GetItinerary(ctx context.Context, itineraryID string) (*api.Itinerary, error) {
	if !validID(itineraryID) {
		return nil, nil
	}
	return r.load(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1`, itineraryID)
}

func (r *ItineraryRepository) GetItineraryByShareToken(ctx context.Context, token string) (*api.Itinerary, error) {
	return r.load(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE share_token = $1`, token)
}

func (r *ItineraryRepository) load(ctx context.Context, query string, arg string) (*api.Itinerary, error) {
	it, err := scanItinerary(r.db.Pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query itinerary: %w", err)
	}
	days, err := r.days(ctx, it.Id)
	if err != nil {
		return nil, err
	}
	it.Days = days
	return &it, nil
}

func (r *ItineraryRepository) days(ctx context.Context, itineraryID string) ([]api.ItineraryDay, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, day_number, date, city_id, notes
		FROM itinerary_days
		WHERE itinerary_id = $1
		ORDER BY day_number`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary days: %w", err)
	}
	defer rows.Close()

	days := make([]api.ItineraryDay, 0)
	index := make(map[string]int)
	for rows.Next() {
		var d api.ItineraryDay
		var date time.Time
		if err := rows.Scan(&d.Id, &d.DayNumber, &date, &d.CityId, &d.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary day: %w", err)
		}
		d.Date = openapi_types.Date{Time: date}
		d.Offers = []api.PlannedOffer{}
		index[d.Id] = len(days)
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate itinerary days: %w", err)
	}
	rows.Close()

	planned, err := r.db.Pool.Query(ctx, `
		SELECT po.id, po.day_id, po.offer_id, po.position, po.notes, o.title, p.name, p.lat, p.lng
		FROM planned_offers po
		JOIN itinerary_days d ON d.id = po.day_id
		JOIN offers o ON o.id = po.offer_id
		JOIN partners p ON p.id = o.partner_id
		WHERE d.itinerary_id = $1
		ORDER BY d.day_number, po.position`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query planned offers: %w", err)
	}
	defer planned.Close()
	for planned.Next() {
		var po api.PlannedOffer
		var dayID string
		if err := planned.Scan(
			&po.Id,
			&dayID,
			&po.OfferId,
			&po.Position,
			&po.Notes,
			&po.Title,
			&po.PartnerName,
			&po.Lat,
			&po.Lng,
		); err != nil {
			return nil, fmt.Errorf("failed to scan planned offer: %w", err)
		}
		if i, ok := index[dayID]; ok {
			days[i].Offers = append(days[i].Offers, po)
		}
	}
	return days, planned.Err()
}

func (r *ItineraryRepository) DeleteItinerary(ctx context.Context, itineraryID string) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM itineraries WHERE id = $1`, itineraryID); err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	return nil
}

func (r *ItineraryRepository) UpdateDay(ctx context.Context, itineraryID string, dayNumber int, cityID, notes *string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE itinerary_days SET city_id = $3, notes = $4
		WHERE itinerary_id = $1 AND day_number = $2`,
		itineraryID, dayNumber, cityID, notes)
	if err != nil {
		return false, fmt.Errorf("failed to update itinerary day: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddPlannedOffer appends po after the day's last planned offer.
func (r *ItineraryRepository) AddPlannedOffer(ctx context.Context, itineraryID string, dayNumber int, po *api.PlannedOffer) (bool, error) {
	var position int
	err := pgx.BeginFunc(ctx, r.db.Pool, func(tx pgx.Tx) error {
		var dayID string
		err := tx.QueryRow(ctx, `
			SELECT id FROM itinerary_days
			WHERE itinerary_id = $1 AND day_number = $2
			FOR UPDATE`, itineraryID, dayNumber).Scan(&dayID)
		if err != nil {
			return err
		}
		return tx.QueryRow(ctx, `
			INSERT INTO planned_offers (id, day_id, offer_id, position, notes)
			VALUES ($1, $2, $3, (SELECT COALESCE(MAX(position), -1) + 1 FROM planned_offers WHERE day_id = $2), $4)
			RETURNING position`,
			po.Id, dayID, po.OfferId, po.Notes).Scan(&position)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to add planned offer: %w", err)
	}
	po.Position = position
	return true, nil
}

func (r *ItineraryRepository) RemovePlannedOffer(ctx context.Context, itineraryID, plannedOfferID string) (bool, error) {
	if !validID(plannedOfferID) {
		return false, nil
	}
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM planned_offers po
		USING itinerary_days d
		WHERE po.day_id = d.id AND d.itinerary_id = $1 AND po.id = $2`,
		itineraryID, plannedOfferID)
	if err != nil {
		return false, fmt.Errorf("failed to remove planned offer: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *ItineraryRepository) SetShared(ctx context.Context, itineraryID, token string) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE itineraries SET share_token = $2, is_public = true WHERE id = $1`, itineraryID, token)
	if err != nil {
		return fmt.Errorf("failed to share itinerary: %w", err)
	}
	return nil
}

func (r *ItineraryRepository) OfferExists(ctx context.Context, offerID string) (bool, error) {
	return offerExists(ctx, r.db, offerID)
}
