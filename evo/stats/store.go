// Package stats records the generation history of evolution runs.
package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baldhumanity/evo-go/evo"
)

// ErrNotInitialized is returned by stores used before Init.
var ErrNotInitialized = errors.New("stats: store not initialized")

// Run identifies one evolution run.
type Run struct {
	ID      string
	Label   string
	Started time.Time
}

// Store persists runs and their per-generation summaries. Genomes are never
// stored.
type Store interface {
	Init(ctx context.Context) error
	SaveRun(ctx context.Context, run Run) error
	GetRun(ctx context.Context, id string) (Run, bool, error)
	Runs(ctx context.Context) ([]Run, error)
	// AppendGenerations adds summaries to a run. A summary for a generation
	// the run already has replaces the stored one.
	AppendGenerations(ctx context.Context, runID string, gens []evo.GenerationSummary) error
	// Generations returns a run's summaries ordered by generation.
	Generations(ctx context.Context, runID string) ([]evo.GenerationSummary, bool, error)
	Close() error
}

// NewStore returns an uninitialized store of the given kind: "memory" (or
// empty) or "sqlite".
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		if sqlitePath == "" {
			return nil, errors.New("stats: sqlite path is required")
		}
		return NewSQLiteStore(sqlitePath), nil
	default:
		return nil, fmt.Errorf("stats: unsupported store backend: %s", kind)
	}
}
