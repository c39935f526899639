package stats

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/baldhumanity/evo-go/evo"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	runs        map[string]Run
	generations map[string]map[int]evo.GenerationSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		runs:        make(map[string]Run),
		generations: make(map[string]map[int]evo.GenerationSummary),
	}
}

func (s *MemoryStore) Init(context.Context) error {
	return nil
}

func (s *MemoryStore) SaveRun(_ context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetRun(_ context.Context, id string) (Run, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok, nil
}

// Runs returns all runs, oldest first.
func (s *MemoryStore) Runs(context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	runs := make([]Run, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	slices.SortFunc(runs, func(a, b Run) int {
		if c := a.Started.Compare(b.Started); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return runs, nil
}

func (s *MemoryStore) AppendGenerations(_ context.Context, runID string, gens []evo.GenerationSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("stats: unknown run %s", runID)
	}
	byGen, ok := s.generations[runID]
	if !ok {
		byGen = make(map[int]evo.GenerationSummary)
		s.generations[runID] = byGen
	}
	for _, g := range gens {
		byGen[g.Generation] = g
	}
	return nil
}

func (s *MemoryStore) Generations(_ context.Context, runID string) ([]evo.GenerationSummary, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byGen := s.generations[runID]
	if len(byGen) == 0 {
		return nil, false, nil
	}
	out := make([]evo.GenerationSummary, 0, len(byGen))
	for _, g := range byGen {
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b evo.GenerationSummary) int { return cmp.Compare(a.Generation, b.Generation) })
	return out, true, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
