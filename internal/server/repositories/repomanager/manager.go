package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/ledger"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/placements"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/projects"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Ledger(db dbx.DBTX) ledger.Repository
	Placements(db dbx.DBTX) placements.Repository
	Projects(db dbx.DBTX) projects.Repository
}
