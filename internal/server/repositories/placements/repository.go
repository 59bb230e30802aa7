package placements

import (
	"context"

	"github.com/dmitrijs2005/pixelboard/internal/server/models"
)

type Repository interface {
	TryCommit(ctx context.Context, placement *models.Placement) error
	Get(ctx context.Context, x, y int) (*models.Placement, error)
	ListAll(ctx context.Context) ([]*models.Placement, error)
	SumSpentSeconds(ctx context.Context, userID string) (int64, error)
}
