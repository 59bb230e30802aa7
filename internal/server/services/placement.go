// This file implements PlacementService, the admission controller for
// pixel placements: it validates the request, reconciles budget, and
// commits the placement with the coordinate arbitration delegated to
// the storage constraint.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/pixelboard/internal/common"
	"github.com/dmitrijs2005/pixelboard/internal/dbx"
	"github.com/dmitrijs2005/pixelboard/internal/logging"
	"github.com/dmitrijs2005/pixelboard/internal/server/config"
	"github.com/dmitrijs2005/pixelboard/internal/server/hackatime"
	"github.com/dmitrijs2005/pixelboard/internal/server/models"
	"github.com/dmitrijs2005/pixelboard/internal/server/notifier"
	"github.com/dmitrijs2005/pixelboard/internal/server/repositories/repomanager"
)

// TimeSource reports a user's cumulative coding-time total.
type TimeSource interface {
	UserStats(ctx context.Context, userID string) (*hackatime.Stats, error)
}

// Publisher broadcasts committed placements to viewers.
type Publisher interface {
	Publish(ctx context.Context, event notifier.PlacementCommittedEvent)
}

// PlacementService admits or rejects placement requests. A request
// terminates in exactly one of: invalid, upstream unavailable,
// insufficient budget, conflict, storage failure, or committed.
type PlacementService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	budget      *BudgetService
	timeSource  TimeSource
	publisher   Publisher
	logger      logging.Logger
	gridSize    int
	cost        int64
}

// NewPlacementService constructs a PlacementService.
func NewPlacementService(db *sql.DB, m repomanager.RepositoryManager, budget *BudgetService,
	timeSource TimeSource, publisher Publisher, cfg *config.Config, logger logging.Logger) *PlacementService {
	return &PlacementService{
		db:          db,
		repomanager: m,
		budget:      budget,
		timeSource:  timeSource,
		publisher:   publisher,
		logger:      logger.With("module", "placement"),
		gridSize:    cfg.GridSize,
		cost:        cfg.PlacementCost,
	}
}

// Place runs the admission protocol for one request:
//
//	validate -> reconcile budget -> check sufficiency ->
//	re-check sufficiency and commit in one transaction -> publish
//
// The sufficiency re-check shares a transaction with the commit, so two
// in-flight requests by the same user cannot both pass on the same
// stale spend sum. The coordinate race itself is settled by the
// placement store's uniqueness constraint: the loser gets ErrConflict
// and, because spend is derived from committed rows only, its budget is
// untouched.
func (s *PlacementService) Place(ctx context.Context, userID string, x, y int, color string) (*models.Placement, error) {
	if err := s.validate(userID, x, y, color); err != nil {
		return nil, err
	}

	stats, err := s.timeSource.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	status, err := s.budget.Reconcile(ctx, userID, stats.TotalSeconds)
	if err != nil {
		return nil, err
	}
	if status.AvailableSeconds < s.cost {
		return nil, common.ErrInsufficientBudget
	}

	placement := &models.Placement{
		X: x, Y: y, Color: color,
		UserID:              userID,
		TimeDeductedSeconds: s.cost,
	}

	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		available, err := s.budget.availableWithin(ctx, tx, userID, status.GrossSeconds)
		if err != nil {
			return err
		}
		if available < s.cost {
			return common.ErrInsufficientBudget
		}
		return s.repomanager.Placements(tx).TryCommit(ctx, placement)
	}); err != nil {
		if errors.Is(err, common.ErrConflict) || errors.Is(err, common.ErrInsufficientBudget) ||
			errors.Is(err, common.ErrStorageFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	s.logger.Info(ctx, "placement committed", "user_id", userID, "x", x, "y", y)

	s.publisher.Publish(ctx, notifier.PlacementCommittedEvent{
		X:        placement.X,
		Y:        placement.Y,
		Color:    placement.Color,
		UserID:   placement.UserID,
		PlacedAt: placement.PlacedAt,
	})

	return placement, nil
}

// Grid returns every committed placement for full hydration. An empty
// canvas yields an empty slice, not nil, so it serializes as [].
func (s *PlacementService) Grid(ctx context.Context) ([]*models.Placement, error) {
	result, err := s.repomanager.Placements(s.db).ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}
	if result == nil {
		result = []*models.Placement{}
	}
	return result, nil
}

// CodingTime reconciles and reports the caller's budget as shown on the
// coding-time endpoint.
func (s *PlacementService) CodingTime(ctx context.Context, userID string) (*hackatime.Stats, *BudgetStatus, error) {
	stats, err := s.timeSource.UserStats(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	status, err := s.budget.Reconcile(ctx, userID, stats.TotalSeconds)
	if err != nil {
		return nil, nil, err
	}
	return stats, status, nil
}

func (s *PlacementService) validate(userID string, x, y int, color string) error {
	if userID == "" {
		return fmt.Errorf("%w: missing user id", common.ErrInvalidRequest)
	}
	if color == "" {
		return fmt.Errorf("%w: missing color", common.ErrInvalidRequest)
	}
	if x < 0 || x >= s.gridSize || y < 0 || y >= s.gridSize {
		return fmt.Errorf("%w: coordinate (%d,%d) out of bounds", common.ErrInvalidRequest, x, y)
	}
	return nil
}
