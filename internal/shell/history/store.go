package history

import (
	"context"
	"time"
)

// =============================================================================
// Types
// =============================================================================

// Run is one recorded deployment run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Success    bool
	Projects   []ProjectOutcome
}

// ProjectOutcome is one project's result within a run.
type ProjectOutcome struct {
	Project string
	Status  string // succeeded | failed | skipped
	Reason  string // failure reason, empty otherwise
}

// Store persists deployment runs.
type Store interface {
	// RecordRun stores a run and its per-project outcomes. When the run
	// carries no ID one is assigned; the stored ID is returned.
	RecordRun(ctx context.Context, run Run) (string, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	// Close releases the underlying connection.
	Close() error
}
