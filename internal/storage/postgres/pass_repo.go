package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/tanguyors/bali-pass-home/api"
	"github.com/tanguyors/bali-pass-home/internal/domain/passes"
)

const passColumns = `id, user_id, type, status, price_idr, starts_at, expires_at, created_at`

// PassRepository implements passes.Repository using PostgreSQL
type PassRepository struct {
	db *DB
}

func NewPassRepository(db *DB) *PassRepository {
	return &PassRepository{db: db}
}

func scanPass(row pgx.Row) (api.Pass, error) {
	var p api.Pass
	var passType, status string
	err := row.Scan(
		&p.Id,
		&p.UserId,
		&passType,
		&status,
		&p.PriceIdr,
		&p.StartsAt,
		&p.ExpiresAt,
		&p.CreatedAt,
	)
	p.Type = api.PassType(passType)
	p.Status = api.PassStatus(status)
	return p, err
}

func (r *PassRepository) CurrentPass(ctx context.Context, userID string, now time.Time) (*api.Pass, error) {
	query := `SELECT ` + passColumns + `
		FROM passes
		WHERE user_id = $1 AND status = 'active' AND starts_at <= $2 AND expires_at > $2
		ORDER BY expires_at DESC
		LIMIT 1`
	p, err := scanPass(r.db.Pool.QueryRow(ctx, query, userID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query current pass: %w", err)
	}
	return &p, nil
}

// CreatePass stores a new active pass. Lapsed passes still flagged active
// are expired first in the same transaction so they do not block the
// one-active-pass index.
func (r *PassRepository) CreatePass(ctx context.Context, pass *api.Pass) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE passes SET status = 'expired' WHERE user_id = $1 AND status = 'active' AND expires_at <= $2`,
		pass.UserId, pass.StartsAt)
	if err != nil {
		return fmt.Errorf("failed to expire lapsed passes: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO passes (`+passColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		pass.Id,
		pass.UserId,
		string(pass.Type),
		string(pass.Status),
		pass.PriceIdr,
		pass.StartsAt,
		pass.ExpiresAt,
		pass.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "passes_one_active_idx") {
			return passes.ErrPassAlreadyActive
		}
		return fmt.Errorf("failed to insert pass: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PassRepository) ListPasses(ctx context.Context, userID string) ([]api.Pass, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+passColumns+` FROM passes WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query passes: %w", err)
	}
	defer rows.Close()
	out := make([]api.Pass, 0)
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pass: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ExpireDue flips every active pass past its expiry to expired.
func (r *PassRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE passes SET status = 'expired' WHERE status = 'active' AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire passes: %w", err)
	}
	return tag.RowsAffected(), nil
}
