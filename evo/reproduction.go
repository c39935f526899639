package evo

import (
	"errors"
	"math"
)

// Ratios splits a species' offspring quota between the four ways of
// producing a genome.
type Ratios struct {
	Top    float64 `ini:"top" yaml:"top"`       // Best reports copied verbatim.
	Mutate float64 `ini:"mutate" yaml:"mutate"` // Mutated copies of top reports.
	Cross  float64 `ini:"cross" yaml:"cross"`   // Crossovers between top reports.
	Random float64 `ini:"random" yaml:"random"` // Fresh random genomes.
}

// DefaultRatios returns {Top: 0.05, Mutate: 0.45, Cross: 0.45, Random: 0.05}.
func DefaultRatios() Ratios {
	return Ratios{Top: 0.05, Mutate: 0.45, Cross: 0.45, Random: 0.05}
}

// Sum is the total of all four ratios.
func (r Ratios) Sum() float64 {
	return r.Top + r.Mutate + r.Cross + r.Random
}

// Validate rejects negative or NaN ratios.
func (r Ratios) Validate() error {
	for _, x := range []float64{r.Top, r.Mutate, r.Cross, r.Random} {
		if x < 0 || math.IsNaN(x) {
			return errors.New("ratios cannot be negative")
		}
	}
	return nil
}

// Normalize rescales the ratios to sum to 1. Ratios that sum to zero or less
// fall back to DefaultRatios.
func (r Ratios) Normalize() Ratios {
	sum := r.Sum()
	if sum <= 0 || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return DefaultRatios()
	}
	return Ratios{
		Top:    r.Top / sum,
		Mutate: r.Mutate / sum,
		Cross:  r.Cross / sum,
		Random: r.Random / sum,
	}
}

// Counts is the integer form of Ratios for one quota.
type Counts struct {
	Top, Mutate, Cross, Random int
}

// Total is the number of genomes the counts describe.
func (c Counts) Total() int {
	return c.Top + c.Mutate + c.Cross + c.Random
}

// Counts converts the ratios to integers for a quota of n. Top, Mutate and
// Cross are floored; Random takes whatever is left.
func (r Ratios) Counts(n int) Counts {
	c := Counts{
		Top:    int(math.Floor(float64(n) * r.Top)),
		Mutate: int(math.Floor(float64(n) * r.Mutate)),
		Cross:  int(math.Floor(float64(n) * r.Cross)),
	}
	c.Random = max(0, n-c.Top-c.Mutate-c.Cross)
	return c
}

// quota is the number of offspring a species gets:
//
//	round(speciesMean / poolMean * size / speciesCount)
//
// floored at 1 and capped at limit. When the ratio is undefined every
// species gets the equal share size / speciesCount. The ratio is undefined
// when the pool mean is not positive, when it is tiny next to spread (the
// largest absolute species mean, so mixed signs nearly cancelled), or when
// the result is not finite.
func quota(speciesMean, poolMean, spread float64, size, speciesCount, limit int) int {
	limit = max(1, limit)
	if speciesCount <= 0 {
		return min(max(1, size), limit)
	}
	equal := min(max(1, int(math.Round(float64(size)/float64(speciesCount)))), limit)
	if poolMean <= 0 || poolMean < spread*quotaCancelRatio {
		return equal
	}
	q := speciesMean / poolMean * float64(size) / float64(speciesCount)
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return equal
	}
	if q >= float64(limit) {
		return limit
	}
	return max(1, int(math.Round(q)))
}

// quotaCancelRatio is how small the pool mean may get relative to the
// largest absolute species mean before quotas fall back to equal shares.
const quotaCancelRatio = 1e-6

// maxAbs is the largest absolute value in xs, or 0 for an empty slice.
func maxAbs(xs []float64) float64 {
	m := 0.0
	for _, x := range xs {
		m = max(m, math.Abs(x))
	}
	return m
}

// offspring produces the next generation of one species from its sorted
// reports. global is the pool-wide set of reports crossovers can migrate
// from. A species without reports produces nothing.
func (s *Species[G]) offspring(r *Rand, b Breeder[G], global []Scored[G], size int, ratios Ratios, migration float64) []G {
	size = max(1, size)
	if len(s.Reported) == 0 {
		return nil
	}

	var counts Counts
	if size > 2 {
		counts = ratios.Counts(size)
	} else {
		counts = Counts{Top: 1, Mutate: 1}
	}

	top := s.Reported[:min(max(counts.Top, 1), len(s.Reported))]

	out := make([]G, 0, counts.Random+counts.Cross+counts.Mutate+len(top))
	for i := 0; i < counts.Random; i++ {
		out = append(out, b.Random(r))
	}

	for i := 0; i < counts.Cross; i++ {
		a := Sample(r, top)
		var c Scored[G]
		if len(global) > 0 && r.Chance(migration) {
			c = Sample(r, global)
		} else {
			c = Sample(r, top)
		}
		// The fitter parent goes first.
		if a.Score > c.Score {
			out = append(out, b.Breed(r, a.Genome, c.Genome))
		} else {
			out = append(out, b.Breed(r, c.Genome, a.Genome))
		}
	}

	for i := 0; i < counts.Mutate; i++ {
		out = append(out, b.Mutate(r, Sample(r, top).Genome))
	}

	for _, t := range top {
		out = append(out, b.Clone(t.Genome))
	}
	return out
}
