// Package placements provides the PostgreSQL-backed placement store.
// The UNIQUE (x, y) constraint is the source of truth for coordinate
// ownership: arbitration between concurrent writers happens in the
// database, never in application code.
package placements

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
)

// PostgresRepository implements placement storage over a dbx.DBTX
// (*sql.DB or *sql.Tx). With overwrite enabled the repository runs in
// last-writer-wins mode instead of rejecting occupied coordinates.
type PostgresRepository struct {
	db        dbx.DBTX
	overwrite bool
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX, overwrite bool) *PostgresRepository {
	return &PostgresRepository{db: db, overwrite: overwrite}
}

// TryCommit atomically claims the placement's coordinate. In strict mode
// an occupied coordinate yields common.ErrConflict and no side effects;
// in overwrite mode the existing row is replaced. The insert and the
// occupancy check are a single statement, so exactly one of any number
// of concurrent callers wins regardless of process boundaries.
func (r *PostgresRepository) TryCommit(ctx context.Context, placement *models.Placement) error {
	query := `
		INSERT INTO placements (x, y, color, user_id, time_deducted_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (x, y) DO NOTHING
		RETURNING placed_at;
	`
	if r.overwrite {
		query = `
		INSERT INTO placements (x, y, color, user_id, time_deducted_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (x, y)
		DO UPDATE SET
			color = EXCLUDED.color,
			user_id = EXCLUDED.user_id,
			time_deducted_seconds = EXCLUDED.time_deducted_seconds,
			placed_at = now()
		RETURNING placed_at;
	`
	}

	err := r.db.QueryRowContext(ctx, query,
		placement.X, placement.Y, placement.Color, placement.UserID, placement.TimeDeductedSeconds,
	).Scan(&placement.PlacedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrConflict
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Get returns the placement at (x, y) or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, x, y int) (*models.Placement, error) {
	query := `
		SELECT x, y, color, user_id, time_deducted_seconds, placed_at FROM placements
		WHERE x = $1 AND y = $2
	`

	placement := &models.Placement{}
	err := r.db.QueryRowContext(ctx, query, x, y).Scan(
		&placement.X, &placement.Y, &placement.Color,
		&placement.UserID, &placement.TimeDeductedSeconds, &placement.PlacedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return placement, nil
}

// ListAll returns every committed placement, oldest first. Used for full
// grid hydration by viewers.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Placement, error) {
	query := `
		SELECT x, y, color, user_id, time_deducted_seconds, placed_at FROM placements
		ORDER BY placed_at, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select placements: %w", err)
	}
	defer rows.Close()

	var result []*models.Placement
	for rows.Next() {
		var item models.Placement
		if err := rows.Scan(
			&item.X, &item.Y, &item.Color,
			&item.UserID, &item.TimeDeductedSeconds, &item.PlacedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SumSpentSeconds returns the live sum of budget charged for the user's
// committed placements. Spend is always derived from this sum; there is
// no stored counter to fall out of sync with the placement rows.
func (r *PostgresRepository) SumSpentSeconds(ctx context.Context, userID string) (int64, error) {
	query := `
		SELECT COALESCE(SUM(time_deducted_seconds), 0) FROM placements
		WHERE user_id = $1
	`

	var spent int64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&spent); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return spent, nil
}
