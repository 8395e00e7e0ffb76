// Package state records compilation run history in SQLite. Every compile
// attempt, whatever its verdict, becomes one immutable run row.
package state

import "time"

// RunStatus is the recorded verdict of a compilation run.
type RunStatus string

const (
	// RunStatusSuccess marks a run whose module was loaded and its entry
	// type resolved.
	RunStatusSuccess RunStatus = "success"

	// RunStatusFailure marks a run that ended in compiler diagnostics.
	RunStatusFailure RunStatus = "failure"

	// RunStatusError marks a run stopped by an environment failure.
	RunStatusError RunStatus = "error"
)

// Run is one recorded compilation attempt.
type Run struct {
	ID          string    `json:"id"`
	Document    string    `json:"document"`
	Module      string    `json:"module,omitempty"`
	EntryType   string    `json:"entry_type,omitempty"`
	Status      RunStatus `json:"status"`
	Messages    int       `json:"messages"`
	Error       string    `json:"error,omitempty"`
	Environment string    `json:"environment"`
	DurationMS  int64     `json:"duration_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists compilation runs.
type Store interface {
	// RecordRun inserts a run, assigning its ID and timestamp when unset.
	RecordRun(run *Run) error

	// GetRun retrieves a run by ID.
	GetRun(id string) (*Run, error)

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// Close releases the underlying database.
	Close() error
}
