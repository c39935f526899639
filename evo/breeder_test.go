package evo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatBreeder(t *testing.T) {
	b := DefaultFloatBreeder()
	r := NewRand(1)

	for i := 0; i < 100; i++ {
		g := b.Random(r)
		assert.GreaterOrEqual(t, g, b.Min)
		assert.Less(t, g, b.Max)

		m := b.Mutate(r, g)
		assert.GreaterOrEqual(t, m, b.Min)
		assert.LessOrEqual(t, m, b.Max)
		assert.LessOrEqual(t, b.Distance(g, m), b.Delta)
	}

	wide := FloatBreeder{Min: 0, Max: 1, Delta: 10}
	for i := 0; i < 100; i++ {
		m := wide.Mutate(r, 1.0)
		assert.GreaterOrEqual(t, m, 0.0)
		assert.LessOrEqual(t, m, 1.0)
	}
}

func TestFloatBreederBreedInterpolates(t *testing.T) {
	b := DefaultFloatBreeder()
	r := NewRand(2)
	for i := 0; i < 100; i++ {
		c := b.Breed(r, -0.5, 0.5)
		assert.GreaterOrEqual(t, c, -0.5)
		assert.LessOrEqual(t, c, 0.5)
	}
	assert.InDelta(t, 0.3, b.Breed(r, 0.3, 0.3), 1e-12)
}

func TestFloatBreederIsSame(t *testing.T) {
	b := FloatBreeder{Min: -1, Max: 1, Delta: 0.1}
	assert.True(t, b.IsSame(0.0, 0.0))
	assert.True(t, b.IsSame(0.0, 0.15))
	assert.False(t, b.IsSame(0.0, 0.25))
	assert.Equal(t, b.Distance(0.2, -0.3), b.Distance(-0.3, 0.2))
}

func TestVecBreederRandomAndMutate(t *testing.T) {
	b := VecBreeder{Size: 10, Min: 0, Max: 1, Delta: 0.5, MutateRate: 10, FlipRate: 1, IsSameThreshold: 0.5}
	r := NewRand(3)

	g := b.Random(r)
	require.Len(t, g, 10)
	for _, x := range g {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.Less(t, x, 1.0)
	}

	orig := b.Clone(g)
	m := b.Mutate(r, g)
	require.Len(t, m, 10)
	assert.Equal(t, orig, g, "mutate must not touch its input")
	for _, x := range m {
		assert.GreaterOrEqual(t, x, 0.0)
		assert.LessOrEqual(t, x, 1.0)
	}
}

func TestVecBreederWithoutFlipsKeepsFirstParent(t *testing.T) {
	b := DefaultVecBreeder()
	b.Size = 5
	b.FlipRate = 0
	r := NewRand(4)

	g1 := []float64{0.1, 0.2, 0.3, 0.4, 0.5}
	g2 := []float64{0.9, 0.8, 0.7, 0.6, 0.5}
	assert.Equal(t, g1, b.Breed(r, g1, g2))
}

func TestVecBreederBreedTakesElementsFromParents(t *testing.T) {
	b := DefaultVecBreeder()
	b.Size = 50
	b.FlipRate = 10
	r := NewRand(5)

	g1 := make([]float64, 50)
	g2 := make([]float64, 50)
	for i := range g2 {
		g2[i] = 1
	}
	child := b.Breed(r, g1, g2)
	require.Len(t, child, 50)
	for _, x := range child {
		assert.Contains(t, []float64{0, 1}, x)
	}
}

func TestVecBreederDistance(t *testing.T) {
	b := VecBreeder{Size: 2, Min: 0, Max: 2, IsSameThreshold: 0.5}
	g1 := []float64{0, 0}
	g2 := []float64{2, 0}

	// (2*2/4 + 0) / 2
	assert.InDelta(t, 0.5, b.Distance(g1, g2), 1e-12)
	assert.False(t, b.IsSame(g1, g2))
	assert.True(t, b.IsSame(g1, g1))
}

func TestVecBreederWithoutSizeUsesGenomeLength(t *testing.T) {
	b := VecBreeder{Max: 2, MutateRate: 4, FlipRate: 1, IsSameThreshold: 0.5}
	r := NewRand(12)
	g1 := []float64{0, 0, 0, 0}
	g2 := []float64{2, 0, 0, 0}

	// (2*2/4) / 4
	assert.InDelta(t, 0.25, b.Distance(g1, g2), 1e-12)
	assert.True(t, b.IsSame(g1, g2))
	assert.Equal(t, 0.0, b.Distance(nil, nil))

	// MutateRate equals the length, so every element moves.
	m := b.Mutate(r, []float64{1, 1, 1, 1})
	for _, x := range m {
		assert.False(t, math.IsNaN(x))
	}
	assert.Len(t, b.Breed(r, g1, g2), 4)

	var zero VecBreeder
	assert.Equal(t, 0.0, zero.Distance([]float64{1}, []float64{1}))
	assert.Equal(t, math.Inf(1), zero.Distance([]float64{1}, []float64{2}))
	assert.Equal(t, []float64{3}, zero.Mutate(r, []float64{3}))
}

func TestVecBreederClone(t *testing.T) {
	b := DefaultVecBreeder()
	assert.Nil(t, b.Clone(nil))

	g := []float64{1, 2, 3}
	c := b.Clone(g)
	c[0] = 9
	assert.Equal(t, 1.0, g[0])
}

func TestNeatBreederMutateDoesNotTouchInput(t *testing.T) {
	b := NewNeatBreeder(2, 1)
	r := NewRand(6)
	g := b.Random(r)
	before := g.Genes()
	lastID := g.LastNeuronID

	for i := 0; i < 50; i++ {
		_ = b.Mutate(r, g)
	}
	assert.Equal(t, before, g.Genes())
	assert.Equal(t, lastID, g.LastNeuronID)
}

func TestNeatBreederMutateAddsConnectionToEmptyGenome(t *testing.T) {
	b := NewNeatBreeder(2, 1)
	b.MutateAddConnection = 0
	b.MutateAddNeuron = 0
	b.MutateToggleExpression = 0
	b.MutateBias = 0

	g := b.Mutate(NewRand(7), Genome{})
	assert.Equal(t, 1, g.TotalGenes())
}

func TestNeatBreederRandomShape(t *testing.T) {
	b := NewNeatBreeder(3, 2)
	b.RandomMutations = 0
	g := b.Random(NewRand(8))
	assert.Equal(t, 6, g.TotalGenes())
	assert.Equal(t, 4, g.LastNeuronID)
}

func TestNeatBreederBreedFollowsFirstParentTopology(t *testing.T) {
	b := DefaultNeatBreeder()
	r := NewRand(9)

	a := NewGenome(Gene{In: 0, Out: 1, Weight: 0.1, Enabled: true})
	withB := a.Clone()
	withB.AddGene(Gene{In: 1, Out: 2, Weight: 0.2, Enabled: true})
	withC := a.Clone()
	withC.AddGene(Gene{In: 2, Out: 3, Weight: 0.3, Enabled: true})

	child := b.Breed(r, withB, withC)
	_, hasB := child.Gene(1, 2)
	_, hasC := child.Gene(2, 3)
	assert.True(t, hasB)
	assert.False(t, hasC)
	assert.Equal(t, withB.LastNeuronID, child.LastNeuronID)

	child = b.Breed(r, withC, withB)
	_, hasB = child.Gene(1, 2)
	_, hasC = child.Gene(2, 3)
	assert.False(t, hasB)
	assert.True(t, hasC)
}

func TestNeatBreederBreedMixesMatchingGenes(t *testing.T) {
	b := DefaultNeatBreeder()
	r := NewRand(10)

	g1 := NewGenome(Gene{In: 0, Out: 1, Weight: 1, Enabled: true})
	g2 := NewGenome(Gene{In: 0, Out: 1, Weight: -1, Enabled: true})

	seen := map[float64]bool{}
	for i := 0; i < 100; i++ {
		child := b.Breed(r, g1, g2)
		require.Equal(t, 1, child.TotalGenes())
		seen[child.Genes()[0].Weight] = true
	}
	assert.Equal(t, map[float64]bool{1: true, -1: true}, seen)
}

func TestNeatBreederCloneIsDeep(t *testing.T) {
	b := DefaultNeatBreeder()
	g := NewGenome(Gene{In: 0, Out: 1, Weight: 1, Enabled: true})
	c := b.Clone(g)
	c.MutateToggleExpression(NewRand(11))
	assert.True(t, g.Genes()[0].Enabled)
}
