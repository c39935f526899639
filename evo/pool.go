package evo

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
)

var (
	// ErrUnknownSpecies is returned by Report for an id the pool does not
	// hold, usually a species pruned since the genome was pulled.
	ErrUnknownSpecies = errors.New("evo: unknown species")
	// ErrInvalidScore is returned by Report for a NaN score.
	ErrInvalidScore = errors.New("evo: invalid score")
	// ErrNoChampion is returned by Run when it finished without completing
	// a single generation.
	ErrNoChampion = errors.New("evo: no champion")
)

// MatchPolicy decides which species an offspring joins when several
// species models accept it.
type MatchPolicy int

const (
	// FirstMatch assigns the offspring to the matching species with the
	// lowest id.
	FirstMatch MatchPolicy = iota
	// NearestMatch assigns the offspring to the matching species whose model
	// is closest. It needs a breeder implementing Distancer and behaves like
	// FirstMatch otherwise.
	NearestMatch
)

func (m MatchPolicy) String() string {
	switch m {
	case FirstMatch:
		return "first"
	case NearestMatch:
		return "nearest"
	default:
		return fmt.Sprintf("MatchPolicy(%d)", int(m))
	}
}

// ParseMatchPolicy accepts "first" or "nearest", case-insensitively. The
// empty string means FirstMatch.
func ParseMatchPolicy(s string) (MatchPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstMatch, nil
	case "nearest":
		return NearestMatch, nil
	default:
		return FirstMatch, fmt.Errorf("unknown match policy %q, must be one of 'first', 'nearest'", s)
	}
}

// PoolConfig holds the generational parameters of a Pool.
type PoolConfig struct {
	Size               int         `ini:"size" yaml:"size"`                               // Target candidates per generation.
	MigrationRate      float64     `ini:"migration_rate" yaml:"migration_rate"`           // Chance a crossover draws its second parent pool-wide.
	OvergenerateFactor float64     `ini:"overgenerate_factor" yaml:"overgenerate_factor"` // Extra candidates kept per species, as a fraction of Size.
	MatchPolicy        MatchPolicy `ini:"-" yaml:"match_policy"`
}

// DefaultPoolConfig returns the default parameters for a pool of size.
func DefaultPoolConfig(size int) PoolConfig {
	return PoolConfig{
		Size:               size,
		MigrationRate:      0.05,
		OvergenerateFactor: 0.1,
		MatchPolicy:        FirstMatch,
	}
}

// Validate reports the first invalid parameter.
func (c PoolConfig) Validate() error {
	if c.Size <= 0 {
		return fmt.Errorf("pool size must be positive, got %d", c.Size)
	}
	if c.MigrationRate < 0 || c.MigrationRate > 1 {
		return fmt.Errorf("migration_rate must be between 0 and 1, got %g", c.MigrationRate)
	}
	if c.OvergenerateFactor < 0 || math.IsNaN(c.OvergenerateFactor) {
		return fmt.Errorf("overgenerate_factor cannot be negative, got %g", c.OvergenerateFactor)
	}
	if c.MatchPolicy != FirstMatch && c.MatchPolicy != NearestMatch {
		return fmt.Errorf("invalid match policy %v", c.MatchPolicy)
	}
	return nil
}

type poolOptions struct {
	rng       *Rand
	logger    *slog.Logger
	observers []Observer
	ratios    *Ratios
	match     *MatchPolicy
}

// Option customizes a Pool at construction.
type Option func(*poolOptions)

// WithRand injects the random source. Without it the pool seeds one from
// the clock.
func WithRand(r *Rand) Option {
	return func(o *poolOptions) { o.rng = r }
}

// WithLogger sets the logger used for per-generation reports.
func WithLogger(l *slog.Logger) Option {
	return func(o *poolOptions) { o.logger = l }
}

// WithObserver adds an observer notified after every generation.
func WithObserver(obs Observer) Option {
	return func(o *poolOptions) { o.observers = append(o.observers, obs) }
}

// WithRatios overrides DefaultRatios. The ratios are normalized, and
// NewPool rejects negative ones.
func WithRatios(r Ratios) Option {
	return func(o *poolOptions) { o.ratios = &r }
}

// WithMatchPolicy overrides the config's match policy.
func WithMatchPolicy(m MatchPolicy) Option {
	return func(o *poolOptions) { o.match = &m }
}

type candidate[G any] struct {
	species SpeciesID
	genome  G
}

// Pool is a generational scheduler driven by a pull/report protocol. Callers
// pull candidates with Next, evaluate them and hand the score back with
// Report. When the last queued candidate has been handed out and reported,
// the pool breeds the next generation.
//
// A Pool is not safe for concurrent use.
type Pool[G any] struct {
	breeder   Breeder[G]
	cfg       PoolConfig
	ratios    Ratios
	rng       *Rand
	logger    *slog.Logger
	observers []Observer

	pending    []candidate[G]
	species    *speciesRegistry[G]
	stagnation stagnation[G]

	generations int
	lastMean    float64
	lastTurn    time.Time
}

// NewPool creates a pool of cfg.Size random candidates, all in species 0,
// whose model is another random genome.
func NewPool[G any](breeder Breeder[G], cfg PoolConfig, opts ...Option) (*Pool[G], error) {
	if breeder == nil {
		return nil, errors.New("evo: nil breeder")
	}

	var o poolOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.match != nil {
		cfg.MatchPolicy = *o.match
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("evo: invalid pool config: %w", err)
	}
	if o.ratios != nil {
		if err := o.ratios.Validate(); err != nil {
			return nil, fmt.Errorf("evo: invalid pool ratios: %w", err)
		}
	}

	p := &Pool[G]{
		breeder:   breeder,
		cfg:       cfg,
		ratios:    DefaultRatios(),
		rng:       o.rng,
		logger:    o.logger,
		observers: o.observers,
		species:   newSpeciesRegistry[G](),
		lastTurn:  time.Now(),
	}
	if o.ratios != nil {
		p.ratios = o.ratios.Normalize()
	}
	if p.rng == nil {
		p.rng = NewRandFromTime()
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}

	root := p.species.create(breeder.Random(p.rng), 0)
	p.pending = make([]candidate[G], cfg.Size)
	for i := range p.pending {
		p.pending[i] = candidate[G]{species: root.ID, genome: breeder.Random(p.rng)}
	}
	return p, nil
}

// Next hands out the next candidate and the species it belongs to. When no
// candidate is queued it first breeds a new generation, which requires every
// live species to have at least one report; otherwise Next panics.
func (p *Pool[G]) Next() (SpeciesID, G) {
	if len(p.pending) == 0 {
		p.nextGeneration()
	}
	last := len(p.pending) - 1
	c := p.pending[last]
	p.pending[last] = candidate[G]{}
	p.pending = p.pending[:last]
	return c.species, c.genome
}

// Report records the score of a genome pulled from species id. The pool keeps
// its own copy of g. Repeated reports of one genome are kept as separate
// entries.
//
// If the report arrives while no candidate is queued, the pool breeds the
// next generation before returning and Report returns true.
func (p *Pool[G]) Report(id SpeciesID, g G, score float64) (bool, error) {
	if math.IsNaN(score) {
		return false, fmt.Errorf("%w: NaN reported for species %d", ErrInvalidScore, id)
	}
	s, ok := p.species.lookup(id)
	if !ok {
		return false, fmt.Errorf("%w: %d", ErrUnknownSpecies, id)
	}
	s.Reported = append(s.Reported, Scored[G]{Score: score, Genome: p.breeder.Clone(g)})

	if len(p.pending) == 0 {
		p.nextGeneration()
		return true, nil
	}
	return false, nil
}

// nextGeneration turns the reports of every species into a new queue of
// candidates.
func (p *Pool[G]) nextGeneration() {
	// 1. Sort reports, record means and champions, pick new models.
	extinct := 0
	for _, s := range p.species.all() {
		s.chooseModel(p.rng, p.breeder)
		if len(s.Reported) == 0 {
			s.GensEmpty++
		} else {
			s.GensEmpty = 0
		}
	}

	// 2. Drop every species that went a generation without reports.
	for _, s := range p.species.all() {
		if s.GensEmpty > 0 {
			p.logger.Debug("species extinct", "species", s.ID, "created", s.Created, "generation", p.generations)
			p.species.destroy(s.ID)
			extinct++
		}
	}
	survivors := p.species.all()
	if len(survivors) == 0 {
		panic(fmt.Sprintf("evo: no species survived generation %d; every live species needs a report", p.generations))
	}

	// 3. Global statistics and champion.
	means := make([]float64, len(survivors))
	for i, s := range survivors {
		means[i] = s.LastMean
	}
	p.lastMean = Mean(means)
	if p.stagnation.update(bestOf(survivors)) {
		p.logger.Debug("new champion", "score", p.stagnation.champion.Score, "generation", p.generations)
	}

	global := make([]Scored[G], 0, p.cfg.Size)
collect:
	for _, s := range survivors {
		for _, rep := range s.Reported {
			if len(global) == p.cfg.Size {
				break collect
			}
			global = append(global, rep)
		}
	}

	// 4-5. Quota and offspring per species. No species can contribute more
	// than survives truncation.
	limit := p.cfg.Size + int(float64(p.cfg.Size)*float64(len(survivors))*p.cfg.OvergenerateFactor)
	spread := maxAbs(means)
	var offspring []G
	for _, s := range survivors {
		q := quota(s.LastMean, p.lastMean, spread, p.cfg.Size, len(survivors), limit)
		offspring = append(offspring, s.offspring(p.rng, p.breeder, global, q, p.ratios, p.cfg.MigrationRate)...)
	}

	// 6-7. Over-generate, truncate, classify.
	ShuffleSlice(p.rng, offspring)
	if len(offspring) > limit {
		clear(offspring[limit:])
		offspring = offspring[:limit]
	}

	candidates := survivors
	before := len(candidates)
	pending := make([]candidate[G], len(offspring))
	for i, g := range offspring {
		s := p.match(candidates, g)
		if s == nil {
			s = p.species.create(p.breeder.Clone(g), p.generations+1)
			candidates = append(candidates, s)
			p.logger.Debug("new species", "species", s.ID, "generation", p.generations+1)
		}
		pending[i] = candidate[G]{species: s.ID, genome: g}
	}

	// 8. Reset for the next round of reports.
	for _, s := range survivors {
		s.Reported = nil
	}
	p.pending = pending
	p.generations++

	now := time.Now()
	summary := GenerationSummary{
		Generation:             p.generations,
		Mean:                   p.lastMean,
		MeanStdev:              Stdev(means),
		MeanBest:               p.MeanBest(),
		Best:                   p.bestScore(),
		Species:                p.species.len(),
		Reported:               len(global),
		Organisms:              len(pending),
		NewSpecies:             len(candidates) - before,
		ExtinctSpecies:         extinct,
		GensWithoutImprovement: p.stagnation.gensWithoutImprovement,
		Elapsed:                now.Sub(p.lastTurn),
	}
	p.lastTurn = now

	p.logger.Info("generation complete",
		"generation", summary.Generation,
		"mean", summary.Mean,
		"mean_best", summary.MeanBest,
		"best", summary.Best,
		"species", summary.Species,
		"reported", summary.Reported,
		"organisms", summary.Organisms,
		"elapsed", summary.Elapsed,
	)
	for _, obs := range p.observers {
		obs.ObserveGeneration(summary)
	}
}

// match returns the species g belongs to, or nil when no model accepts it.
func (p *Pool[G]) match(species []*Species[G], g G) *Species[G] {
	if p.cfg.MatchPolicy == NearestMatch {
		if d, ok := p.breeder.(Distancer[G]); ok {
			var best *Species[G]
			bestDist := math.Inf(1)
			for _, s := range species {
				if !p.breeder.IsSame(s.Model, g) {
					continue
				}
				if dist := d.Distance(s.Model, g); best == nil || dist < bestDist {
					best, bestDist = s, dist
				}
			}
			return best
		}
	}
	for _, s := range species {
		if p.breeder.IsSame(s.Model, g) {
			return s
		}
	}
	return nil
}

// --------------------------- Accessors ---------------------------

// Generations is the number of completed generations.
func (p *Pool[G]) Generations() int {
	return p.generations
}

// MeanScore is the mean of the species means of the last generation.
func (p *Pool[G]) MeanScore() float64 {
	return p.lastMean
}

// MeanBest is the mean champion score over live species that have one. It
// is 0 when no species has a champion.
func (p *Pool[G]) MeanBest() float64 {
	var scores []float64
	for _, s := range p.species.all() {
		if s.Champion != nil {
			scores = append(scores, s.Champion.Score)
		}
	}
	return Mean(scores)
}

// Champion returns a copy of the best genome seen so far.
func (p *Pool[G]) Champion() (Scored[G], bool) {
	c := p.stagnation.champion
	if c == nil {
		return Scored[G]{}, false
	}
	return Scored[G]{Score: c.Score, Genome: p.breeder.Clone(c.Genome)}, true
}

func (p *Pool[G]) bestScore() float64 {
	if c := p.stagnation.champion; c != nil {
		return c.Score
	}
	return math.Inf(-1)
}

// GensWithoutImprovement counts generations since the champion improved.
func (p *Pool[G]) GensWithoutImprovement() int {
	return p.stagnation.gensWithoutImprovement
}

// SpeciesCount is the number of live species.
func (p *Pool[G]) SpeciesCount() int {
	return p.species.len()
}

// SpeciesIDs returns the live species ids in ascending order.
func (p *Pool[G]) SpeciesIDs() []SpeciesID {
	return p.species.ids()
}

// Pending is the number of candidates not yet handed out.
func (p *Pool[G]) Pending() int {
	return len(p.pending)
}

// Ratios returns the normalized offspring ratios in use.
func (p *Pool[G]) Ratios() Ratios {
	return p.ratios
}

// --------------------------- Run ---------------------------

// RunResult is the outcome of Run.
type RunResult[G any] struct {
	Converged   bool // Stopped because the champion stagnated, not because of maxGens.
	Score       float64
	Champion    G
	Generations int
}

// Run drives the pull/evaluate/report loop until maxGens generations have
// completed or the champion has not improved for maxGensWithoutImprovement
// generations.
func (p *Pool[G]) Run(maxGens, maxGensWithoutImprovement int, eval func(G) float64) (RunResult[G], error) {
	for p.generations < maxGens && p.stagnation.gensWithoutImprovement < maxGensWithoutImprovement {
		id, g := p.Next()
		score := eval(p.breeder.Clone(g))
		if _, err := p.Report(id, g, score); err != nil {
			return RunResult[G]{Generations: p.generations}, fmt.Errorf("generation %d: %w", p.generations, err)
		}
	}

	res := RunResult[G]{
		Converged:   p.stagnation.gensWithoutImprovement >= maxGensWithoutImprovement,
		Generations: p.generations,
	}
	champ, ok := p.Champion()
	if !ok {
		return res, ErrNoChampion
	}
	res.Score = champ.Score
	res.Champion = champ.Genome

	p.logger.Info("run finished",
		"generations", res.Generations,
		"score", res.Score,
		"converged", res.Converged,
	)
	return res, nil
}
