package projects

import (
	"context"

	"github.com/dmitrijs2005/pixelboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	List(ctx context.Context) ([]*models.Project, error)
	Get(ctx context.Context, id int64) (*models.Project, error)
	Delete(ctx context.Context, id int64) error
	AddContribution(ctx context.Context, contribution *models.Contribution) (*models.Contribution, error)
	ListContributions(ctx context.Context, projectID int64) ([]*models.Contribution, error)
}
