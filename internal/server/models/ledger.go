package models

import "time"

// LedgerEntry tracks externally reported coding time per user.
// BaselineReportedSeconds is fixed at the first reconciliation and never
// changes afterwards; spend is always derived from committed placements,
// so the entry carries no mutable balance column.
type LedgerEntry struct {
	UserID                   string
	BaselineReportedSeconds  int64
	LastKnownReportedSeconds int64
	LastUpdatedAt            time.Time
}
