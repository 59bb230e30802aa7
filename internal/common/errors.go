// Package common defines shared constants and sentinel errors used across
// the pixelboard server layers. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Request validation (malformed body, missing color, out-of-bounds
	// coordinate).
	ErrInvalidRequest = errors.New("invalid request")

	// The external time source is unreachable or returned an unparseable
	// payload. Callers must fail closed: deny the placement, never
	// fabricate a budget.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// Normal, expected outcome of the sufficiency check.
	ErrInsufficientBudget = errors.New("insufficient budget")

	// Coordinate race lost: another placement already occupies the cell.
	ErrConflict = errors.New("coordinate already occupied")

	// Placement store or budget ledger unreachable; the request left no
	// durable side effect and may be retried.
	ErrStorageFailure = errors.New("storage failure")

	// Service-level errors (generic/internal flow control).
	ErrInternal     = errors.New("internal error")
	ErrUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
)
