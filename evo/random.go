package evo

import (
	"math/rand"
	"time"
)

// Rand is the random source threaded through every breeder and pool call.
// It is not safe for concurrent use; a Pool owns exactly one.
type Rand struct {
	src *rand.Rand
}

// NewRand creates a seeded source. The same seed replays the same run.
func NewRand(seed int64) *Rand {
	return &Rand{src: rand.New(rand.NewSource(seed))}
}

// NewRandFromTime creates a source seeded from the wall clock.
func NewRandFromTime() *Rand {
	return NewRand(time.Now().UnixNano())
}

// Float64 returns a value in [0, 1).
func (r *Rand) Float64() float64 {
	return r.src.Float64()
}

// Chance reports true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.src.Float64() < p
}

// Delta returns a value in [-d, d).
func (r *Rand) Delta(d float64) float64 {
	return (r.src.Float64() - 0.5) * 2.0 * d
}

// Range returns a value in [min, max).
func (r *Rand) Range(min, max float64) float64 {
	return r.src.Float64()*(max-min) + min
}

// Intn returns a value in [0, n). Unlike math/rand it returns 0 for n <= 0.
func (r *Rand) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return r.src.Intn(n)
}

// IntRange returns a value in [min, max].
func (r *Rand) IntRange(min, max int) int {
	return min + r.Intn(max-min+1)
}

// Shuffle permutes n elements through swap.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.src.Shuffle(n, swap)
}

// Sample returns a uniformly chosen element of items. Sampling an empty
// slice is a caller bug and panics.
func Sample[T any](r *Rand, items []T) T {
	if len(items) == 0 {
		panic("evo: sample on empty slice")
	}
	return items[r.Intn(len(items))]
}

// ShuffleSlice permutes items in place.
func ShuffleSlice[T any](r *Rand, items []T) {
	r.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
}

// Fill builds a slice of n values produced by fn.
func Fill[T any](n int, fn func() T) []T {
	if n <= 0 {
		return nil
	}
	out := make([]T, n)
	for i := range out {
		out[i] = fn()
	}
	return out
}
