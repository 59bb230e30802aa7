// Package ledger provides the PostgreSQL-backed budget ledger: one row
// per user recording the baseline and last known externally reported
// coding-time totals.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
)

// PostgresRepository implements ledger storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert creates the user's ledger row on first reconciliation, fixing
// baseline_reported_seconds to the reported total, and on every later
// call updates only last_known_reported_seconds and last_updated_at.
// The baseline is never touched after creation.
func (r *PostgresRepository) Upsert(ctx context.Context, userID string, reportedTotalSeconds int64) (*models.LedgerEntry, error) {
	query := `
		INSERT INTO coding_time_ledger (user_id, baseline_reported_seconds, last_known_reported_seconds, last_updated_at)
		VALUES ($1, $2, $2, now())
		ON CONFLICT (user_id)
		DO UPDATE SET
			last_known_reported_seconds = EXCLUDED.last_known_reported_seconds,
			last_updated_at = EXCLUDED.last_updated_at
		RETURNING baseline_reported_seconds, last_known_reported_seconds, last_updated_at;
	`

	entry := &models.LedgerEntry{UserID: userID}
	err := r.db.QueryRowContext(ctx, query, userID, reportedTotalSeconds).Scan(
		&entry.BaselineReportedSeconds, &entry.LastKnownReportedSeconds, &entry.LastUpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}

// Get returns the user's ledger entry or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	query := `
		SELECT user_id, baseline_reported_seconds, last_known_reported_seconds, last_updated_at
		FROM coding_time_ledger
		WHERE user_id = $1
	`

	entry := &models.LedgerEntry{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&entry.UserID, &entry.BaselineReportedSeconds, &entry.LastKnownReportedSeconds, &entry.LastUpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entry, nil
}
