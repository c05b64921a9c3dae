// Package store archives consensus runs.
//
// A [Run] records what was computed (dataset, scoring scheme, options), what
// came out (consensus, score, optimality) and how (per-component routes and
// timings). Runs are keyed by a random UUID.
//
// Backends:
//   - [MemoryStore]: in-process storage for tests and single-node servers
//   - [FileStore]: JSON files under the user config directory, used by the CLI
//   - [MongoStore]: MongoDB collection for shared deployments
//
// # Usage
//
//	st := store.NewMemoryStore()
//	run, err := store.NewRun(result, exactBound)
//	if err != nil {
//	    return err
//	}
//	if err := st.Save(ctx, run); err != nil {
//	    return err
//	}
//	got, err := st.Get(ctx, run.ID)
package store

import (
	"context"

	"github.com/google/uuid"
)

// DefaultListLimit caps List when the caller passes a non-positive limit.
const DefaultListLimit = 50

// Store is the interface for run archive backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores run. A run with a nil ID gets a fresh one.
	Save(ctx context.Context, run *Run) error

	// Get retrieves a run by ID. It returns a RUN_NOT_FOUND error when no
	// run has that ID.
	Get(ctx context.Context, id uuid.UUID) (*Run, error)

	// List returns summaries of the most recent runs, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Delete removes a run. Deleting a missing run is not an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// Close releases resources held by the store.
	Close() error
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
