package models

import "time"

// Placement is one committed pixel on the shared grid. A coordinate is
// claimed at most once in the strict variant; rows are never mutated or
// deleted by the server.
type Placement struct {
	X                   int       `json:"x"`
	Y                   int       `json:"y"`
	Color               string    `json:"color"`
	UserID              string    `json:"user_id"`
	TimeDeductedSeconds int64     `json:"time_deducted_seconds"`
	PlacedAt            time.Time `json:"placed_at"`
}
