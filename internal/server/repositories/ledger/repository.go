package ledger

import (
	"context"

	"github.com/dmitrijs2005/pixelboard/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, userID string, reportedTotalSeconds int64) (*models.LedgerEntry, error)
	Get(ctx context.Context, userID string) (*models.LedgerEntry, error)
}
