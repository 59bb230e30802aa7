package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/hackatime"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
	"github.com/dmitrijs2005/pixelboard/internal/server/notifier"
	ledgerrepo "github.com/dmitrijs2005/pixelboard/internal/server/repositories/ledger"
	placementsrepo "github.com/dmitrijs2005/pixelboard/internal/server/repositories/placements"
	projectsrepo "github.com/dmitrijs2005/pixelboard/internal/server/repositories/projects"
	"log/slog"
	"os"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

type fakeLedgerRepo struct {
	upsertOut *models.LedgerEntry
	upsertErr error
}

func (f *fakeLedgerRepo) Upsert(ctx context.Context, userID string, reported int64) (*models.LedgerEntry, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	return f.upsertOut, nil
}

func (f *fakeLedgerRepo) Get(ctx context.Context, userID string) (*models.LedgerEntry, error) {
	return f.upsertOut, f.upsertErr
}

type fakePlacementsRepo struct {
	// successive SumSpentSeconds results; the last value repeats once
	// the script is exhausted
	sums      []int64
	sumErr    error
	commitErr error
	committed []*models.Placement
	listOut   []*models.Placement
	listErr   error
}

func (f *fakePlacementsRepo) SumSpentSeconds(ctx context.Context, userID string) (int64, error) {
	if f.sumErr != nil {
		return 0, f.sumErr
	}
	v := f.sums[0]
	if len(f.sums) > 1 {
		f.sums = f.sums[1:]
	}
	return v, nil
}

func (f *fakePlacementsRepo) TryCommit(ctx context.Context, p *models.Placement) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.committed = append(f.committed, p)
	return nil
}

func (f *fakePlacementsRepo) Get(ctx context.Context, x, y int) (*models.Placement, error) {
	return nil, nil
}

func (f *fakePlacementsRepo) ListAll(ctx context.Context) ([]*models.Placement, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

type fakeProjectsRepo struct {
	createErr error
	getOut    *models.Project
	getErr    error
	deleteErr error
	addErr    error
	listOut   []*models.Project
	listErr   error

	contributions []*models.Contribution
}

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	p.ID = 1
	return p, nil
}

func (f *fakeProjectsRepo) List(ctx context.Context) ([]*models.Project, error) {
	return f.listOut, f.listErr
}

func (f *fakeProjectsRepo) Get(ctx context.Context, id int64) (*models.Project, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, id int64) error {
	return f.deleteErr
}

func (f *fakeProjectsRepo) AddContribution(ctx context.Context, c *models.Contribution) (*models.Contribution, error) {
	if f.addErr != nil {
		return nil, f.addErr
	}
	c.ID = int64(len(f.contributions) + 1)
	f.contributions = append(f.contributions, c)
	return c, nil
}

func (f *fakeProjectsRepo) ListContributions(ctx context.Context, projectID int64) ([]*models.Contribution, error) {
	return f.contributions, nil
}

type fakeRepoManager struct {
	l *fakeLedgerRepo
	p *fakePlacementsRepo
	j *fakeProjectsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Ledger(db dbx.DBTX) ledgerrepo.Repository            { return m.l }
func (m *fakeRepoManager) Placements(db dbx.DBTX) placementsrepo.Repository    { return m.p }
func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository        { return m.j }

type fakeTimeSource struct {
	stats *hackatime.Stats
	err   error
}

func (f *fakeTimeSource) UserStats(ctx context.Context, userID string) (*hackatime.Stats, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stats, nil
}

type fakePublisher struct {
	events []notifier.PlacementCommittedEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event notifier.PlacementCommittedEvent) {
	f.events = append(f.events, event)
}
