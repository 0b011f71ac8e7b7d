// Package history persists build-run records so repeated builds can skip
// work when nothing changed and operators can inspect recent outcomes.
package history

import (
	"context"
	"time"
)

// Run is one recorded build execution.
type Run struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	Outcome           string // success|warning|failed|canceled
	BuildKey          string // content hash combined with build-relevant config
	DocumentsTotal    int
	DocumentsRendered int
	DocumentsExcluded int
	DocumentsFiltered int
	IssueCount        int
}

// Duration returns the wall-clock time the run took.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Completed reports whether the run produced full output for its inputs.
// Warning runs count: degraded mode still writes every page it can, so an
// unchanged build key means an identical result.
func (r Run) Completed() bool {
	return r.Outcome == "success" || r.Outcome == "warning"
}

// Store defines the interface for persisting and retrieving build runs.
type Store interface {
	// RecordRun appends a completed run.
	RecordRun(ctx context.Context, run Run) error

	// LatestCompletedKey returns the build key of the most recent completed
	// run, or empty when no such run exists.
	LatestCompletedKey(ctx context.Context) (string, error)

	// RecentRuns returns up to limit runs, newest first.
	RecentRuns(ctx context.Context, limit int) ([]Run, error)

	// Close closes the store and releases resources.
	Close() error
}
