// Package services contains server-side business logic. This file
// implements BudgetService, which reconciles externally reported coding
// time against the ledger and derives the user's available placement
// budget.
package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/config"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/repomanager"
)

// BudgetStatus is the result of one reconciliation. AvailableSeconds is
// clamped at zero; the raw negative value, when it occurs, is only
// logged.
type BudgetStatus struct {
	ReportedTotalSeconds int64
	GrossSeconds         int64
	SpentSeconds         int64
	AvailableSeconds     int64
}

// BudgetService derives available budget from the ledger baseline, the
// reported total, and the live sum of committed placements. There is no
// stored balance counter anywhere: spend exists only as the sum of
// placement rows, so a placement commit and its budget deduction are
// the same atomic fact.
type BudgetService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	logger       logging.Logger
	grantSeconds int64
}

// NewBudgetService constructs a BudgetService using repositories and
// server config.
func NewBudgetService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger) *BudgetService {
	return &BudgetService{
		db:           db,
		repomanager:  m,
		logger:       logger.With("module", "budget"),
		grantSeconds: cfg.GrantSeconds,
	}
}

// Reconcile records the reported total in the ledger (fixing the
// baseline on the user's first-ever reconciliation, which grants
// exactly grantSeconds regardless of pre-signup lifetime total) and
// returns the derived budget. The caller supplies reportedTotalSeconds
// from the upstream; Reconcile itself never talks to the network.
func (s *BudgetService) Reconcile(ctx context.Context, userID string, reportedTotalSeconds int64) (*BudgetStatus, error) {
	entry, err := s.repomanager.Ledger(s.db).Upsert(ctx, userID, reportedTotalSeconds)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	delta := entry.LastKnownReportedSeconds - entry.BaselineReportedSeconds
	if delta < 0 {
		// The upstream total is non-decreasing by contract; absorb the
		// anomaly instead of granting negative budget.
		s.logger.Warn(ctx, "reported total below baseline", "user_id", userID,
			"reported", entry.LastKnownReportedSeconds, "baseline", entry.BaselineReportedSeconds)
		delta = 0
	}
	gross := s.grantSeconds + delta

	spent, err := s.repomanager.Placements(s.db).SumSpentSeconds(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	available := gross - spent
	if available < 0 {
		s.logger.Warn(ctx, "derived budget negative", "user_id", userID,
			"gross", gross, "spent", spent)
		available = 0
	}

	return &BudgetStatus{
		ReportedTotalSeconds: reportedTotalSeconds,
		GrossSeconds:         gross,
		SpentSeconds:         spent,
		AvailableSeconds:     available,
	}, nil
}

// availableWithin re-derives the user's budget against a transactional
// handle. Used by the admission path to re-check sufficiency atomically
// with the placement commit.
func (s *BudgetService) availableWithin(ctx context.Context, tx dbx.DBTX, userID string, gross int64) (int64, error) {
	spent, err := s.repomanager.Placements(tx).SumSpentSeconds(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	return gross - spent, nil
}
