// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/server/migrations"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/placements"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/projects"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository
// implementations and exposes a schema migration hook. The overwrite
// flag selects the placement store's last-writer-wins variant.
type PostgresRepositoryManager struct {
	overwrite bool
}

// Ledger returns a ledger.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Ledger(db dbx.DBTX) ledger.Repository {
	return ledger.NewPostgresRepository(db)
}

// Placements returns a placements.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Placements(db dbx.DBTX) placements.Repository {
	return placements.NewPostgresRepository(db, m.overwrite)
}

// Projects returns a projects.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Projects(db dbx.DBTX) projects.Repository {
	return projects.NewPostgresRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations and runs them
// against the provided database connection.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetDialect("pgx")
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return err
	}
	return nil
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed
// RepositoryManager.
func NewPostgresRepositoryManager(overwrite bool) (RepositoryManager, error) {
	return &PostgresRepositoryManager{overwrite: overwrite}, nil
}
