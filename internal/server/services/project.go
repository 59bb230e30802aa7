// This file implements ProjectService: shared pixel-art outlines that
// users fill in cooperatively. Contributions are planning-grid fills
// and do not charge coding-time budget.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/repomanager"
)

// ProjectService provides project CRUD and contribution recording.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *ProjectService {
	return &ProjectService{db: db, repomanager: m, logger: logger.With("module", "projects")}
}

// Create validates and stores a new project.
func (s *ProjectService) Create(ctx context.Context, name, outline, createdBy string) (*models.Project, error) {
	if name == "" || outline == "" || createdBy == "" {
		return nil, fmt.Errorf("%w: missing fields", common.ErrInvalidRequest)
	}
	project, err := s.repomanager.Projects(s.db).Create(ctx, &models.Project{
		Name: name, Outline: outline, CreatedBy: createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return project, nil
}

// List returns all projects.
func (s *ProjectService) List(ctx context.Context) ([]*models.Project, error) {
	result, err := s.repomanager.Projects(s.db).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return result, nil
}

// Get returns one project or common.ErrNotFound.
func (s *ProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	project, err := s.repomanager.Projects(s.db).Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return project, nil
}

// Delete removes a project. Only its creator may delete it.
func (s *ProjectService) Delete(ctx context.Context, id int64, userID string) error {
	repo := s.repomanager.Projects(s.db)

	project, err := repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	if project.CreatedBy != userID {
		return common.ErrUnauthorized
	}

	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return nil
}

// Contribute records a filled cell on an existing project outline.
func (s *ProjectService) Contribute(ctx context.Context, projectID int64, x, y int, color, userID string) (*models.Contribution, error) {
	if color == "" || userID == "" {
		return nil, fmt.Errorf("%w: missing fields", common.ErrInvalidRequest)
	}

	repo := s.repomanager.Projects(s.db)

	if _, err := repo.Get(ctx, projectID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	contribution, err := repo.AddContribution(ctx, &models.Contribution{
		ProjectID: projectID, X: x, Y: y, Color: color, FilledBy: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return contribution, nil
}

// Contributions returns a project's contributions.
func (s *ProjectService) Contributions(ctx context.Context, projectID int64) ([]*models.Contribution, error) {
	result, err := s.repomanager.Projects(s.db).ListContributions(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return result, nil
}
