// Package projects provides PostgreSQL-backed storage for shared
// pixel-art projects and their contributions.
package projects

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
)

// PostgresRepository implements project storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new project and fills in its generated ID and
// creation timestamp.
func (r *PostgresRepository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	query := `
		INSERT INTO projects (name, outline, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		project.Name, project.Outline, project.CreatedBy).Scan(&project.ID, &project.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

// List returns all projects, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.Project, error) {
	query := `
		SELECT id, name, outline, created_by, created_at FROM projects
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select projects: %w", err)
	}
	defer rows.Close()

	var result []*models.Project
	for rows.Next() {
		var item models.Project
		if err := rows.Scan(&item.ID, &item.Name, &item.Outline, &item.CreatedBy, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Get returns the project with the given id or common.ErrNotFound.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (*models.Project, error) {
	query := `
		SELECT id, name, outline, created_by, created_at FROM projects
		WHERE id = $1
	`

	project := &models.Project{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&project.ID, &project.Name, &project.Outline, &project.CreatedBy, &project.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return project, nil
}

// Delete removes the project (contributions cascade). A missing row
// yields common.ErrNotFound.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM projects WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// AddContribution records a filled cell on a project outline.
func (r *PostgresRepository) AddContribution(ctx context.Context, contribution *models.Contribution) (*models.Contribution, error) {
	query := `
		INSERT INTO project_contributions (project_id, x, y, color, filled_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, filled_at
	`

	err := r.db.QueryRowContext(ctx, query,
		contribution.ProjectID, contribution.X, contribution.Y,
		contribution.Color, contribution.FilledBy).Scan(&contribution.ID, &contribution.FilledAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return contribution, nil
}

// ListContributions returns a project's contributions, oldest first.
func (r *PostgresRepository) ListContributions(ctx context.Context, projectID int64) ([]*models.Contribution, error) {
	query := `
		SELECT id, project_id, x, y, color, filled_by, filled_at FROM project_contributions
		WHERE project_id = $1
		ORDER BY filled_at, id
	`

	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to select contributions: %w", err)
	}
	defer rows.Close()

	var result []*models.Contribution
	for rows.Next() {
		var item models.Contribution
		if err := rows.Scan(
			&item.ID, &item.ProjectID, &item.X, &item.Y,
			&item.Color, &item.FilledBy, &item.FilledAt,
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
