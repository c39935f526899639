package evo

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
)

// SpeciesID is an opaque handle for a species within one Pool. Id 0 is the
// default bucket every pool starts with.
type SpeciesID int

// Scored pairs a genome with the fitness a caller reported for it.
type Scored[G any] struct {
	Score  float64
	Genome G
}

// Species groups genomes that the breeder considers the same as its Model.
type Species[G any] struct {
	ID        SpeciesID
	Created   int        // Generation in which the species was created.
	Model     G          // Representative genome new offspring are matched against.
	Champion  *Scored[G] // Best report of the last completed generation.
	Reported  []Scored[G]
	GensEmpty int     // Consecutive generations without a single report.
	LastMean  float64 // Mean reported score of the last completed generation.
}

func newSpecies[G any](id SpeciesID, model G, generation int) *Species[G] {
	return &Species[G]{
		ID:      id,
		Created: generation,
		Model:   model,
	}
}

// Scores returns the reported scores in their current order.
func (s *Species[G]) Scores() []float64 {
	scores := make([]float64, len(s.Reported))
	for i, rep := range s.Reported {
		scores[i] = rep.Score
	}
	return scores
}

// chooseModel sorts the reports best first, records the mean and champion,
// and picks a random report as the next model. A species without reports is
// left untouched.
func (s *Species[G]) chooseModel(r *Rand, b Breeder[G]) {
	if len(s.Reported) == 0 {
		return
	}

	slices.SortStableFunc(s.Reported, func(a, c Scored[G]) int {
		return cmp.Compare(c.Score, a.Score)
	})
	s.LastMean = Mean(s.Scores())

	best := s.Reported[0]
	s.Champion = &Scored[G]{Score: best.Score, Genome: b.Clone(best.Genome)}
	s.Model = b.Clone(Sample(r, s.Reported).Genome)
}

// --------------------------- speciesRegistry ---------------------------

// speciesRegistry owns the species of a pool. Ids are never reused.
type speciesRegistry[G any] struct {
	species map[SpeciesID]*Species[G]
	nextID  SpeciesID
}

func newSpeciesRegistry[G any]() *speciesRegistry[G] {
	return &speciesRegistry[G]{species: make(map[SpeciesID]*Species[G])}
}

// create registers a species with the next free id.
func (sr *speciesRegistry[G]) create(model G, generation int) *Species[G] {
	s := newSpecies(sr.nextID, model, generation)
	sr.species[s.ID] = s
	sr.nextID++
	return s
}

func (sr *speciesRegistry[G]) destroy(id SpeciesID) {
	delete(sr.species, id)
}

func (sr *speciesRegistry[G]) lookup(id SpeciesID) (*Species[G], bool) {
	s, ok := sr.species[id]
	return s, ok
}

// get returns the species with the given id. Asking for a species that does
// not exist is a bookkeeping bug and panics.
func (sr *speciesRegistry[G]) get(id SpeciesID) *Species[G] {
	s, ok := sr.species[id]
	if !ok {
		panic(fmt.Sprintf("evo: no species with id %d", id))
	}
	return s
}

// ids returns every live id in ascending order.
func (sr *speciesRegistry[G]) ids() []SpeciesID {
	return slices.Sorted(maps.Keys(sr.species))
}

// all returns every live species in ascending id order.
func (sr *speciesRegistry[G]) all() []*Species[G] {
	ids := sr.ids()
	out := make([]*Species[G], len(ids))
	for i, id := range ids {
		out[i] = sr.species[id]
	}
	return out
}

func (sr *speciesRegistry[G]) len() int {
	return len(sr.species)
}
