// Package store defines the interface for persistent run history.
package store

import (
	"context"
	"errors"

	"langdetect-agent/src/contracts"
)

// DefaultListLimit caps ListRuns when no positive limit is given.
const DefaultListLimit = 50

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("run not found")

// Store defines the interface for persisting build step runs.
type Store interface {
	// CreateRun records a run that has just started.
	CreateRun(ctx context.Context, run *contracts.RunRecord) error

	// FinishRun stores the final state of a run created earlier.
	FinishRun(ctx context.Context, run *contracts.RunRecord) error

	// GetRun returns a single run.
	GetRun(ctx context.Context, id string) (*contracts.RunRecord, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]contracts.RunRecord, error)

	// Close closes the store connection
	Close() error
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
