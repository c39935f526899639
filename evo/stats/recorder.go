package stats

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/baldhumanity/evo-go/evo"
)

// Recorder collects the summaries of one run. It implements evo.Observer,
// so it can be passed to evo.WithObserver, and writes to its Store only on
// Flush.
type Recorder struct {
	mu      sync.Mutex
	store   Store
	run     Run
	saved   bool
	pending []evo.GenerationSummary
	history []evo.GenerationSummary
}

// NewRecorder starts a run with a fresh random id. store may be nil, in
// which case Flush only clears the buffer.
func NewRecorder(store Store, label string) (*Recorder, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("stats: generate run id: %w", err)
	}
	return &Recorder{
		store: store,
		run: Run{
			ID:      id.String(),
			Label:   label,
			Started: time.Now(),
		},
	}, nil
}

// Run returns the run being recorded.
func (r *Recorder) Run() Run {
	return r.run
}

func (r *Recorder) ObserveGeneration(s evo.GenerationSummary) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, s)
	r.history = append(r.history, s)
}

// History returns every summary observed so far.
func (r *Recorder) History() []evo.GenerationSummary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.history)
}

// Flush saves the run, on first use, and every summary observed since the
// last successful Flush.
func (r *Recorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.store == nil {
		r.pending = nil
		return nil
	}
	if !r.saved {
		if err := r.store.SaveRun(ctx, r.run); err != nil {
			return fmt.Errorf("stats: save run %s: %w", r.run.ID, err)
		}
		r.saved = true
	}
	if len(r.pending) == 0 {
		return nil
	}
	if err := r.store.AppendGenerations(ctx, r.run.ID, r.pending); err != nil {
		return fmt.Errorf("stats: save generations of run %s: %w", r.run.ID, err)
	}
	r.pending = nil
	return nil
}
