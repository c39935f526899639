package evo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controller struct {
	Gain    float64
	Weights []float64
	Brain   Genome
	Label   string
}

func controllerBreeder(gainWeight float64) DerivedBreeder[controller] {
	return NewDerivedBreeder(
		NewField("gain", gainWeight, FloatBreeder{Min: 0, Max: 10, Delta: 1},
			func(c *controller) *float64 { return &c.Gain }),
		NewField("weights", 1.0, VecBreeder{Size: 4, Min: 0, Max: 1, Delta: 0.5, MutateRate: 4, FlipRate: 1, IsSameThreshold: 0.5},
			func(c *controller) *[]float64 { return &c.Weights }),
		NewField("brain", 1.0, NewNeatBreeder(2, 1),
			func(c *controller) *Genome { return &c.Brain }),
	)
}

func TestDerivedBreederRandomFillsEveryField(t *testing.T) {
	b := controllerBreeder(1.0)
	c := b.Random(NewRand(1))

	assert.GreaterOrEqual(t, c.Gain, 0.0)
	assert.Less(t, c.Gain, 10.0)
	assert.Len(t, c.Weights, 4)
	assert.Positive(t, c.Brain.TotalGenes())
	assert.Empty(t, c.Label, "members without a field keep their zero value")
}

func TestDerivedBreederZeroWeightPassesFieldThrough(t *testing.T) {
	b := controllerBreeder(0.0)
	r := NewRand(2)
	c := b.Random(r)

	for i := 0; i < 20; i++ {
		m := b.Mutate(r, c)
		assert.Equal(t, c.Gain, m.Gain)
	}

	other := c
	other.Gain = c.Gain + 3
	for i := 0; i < 20; i++ {
		child := b.Breed(r, c, other)
		assert.Contains(t, []float64{c.Gain, other.Gain}, child.Gain)
	}
}

func TestDerivedBreederMutateDoesNotAlias(t *testing.T) {
	b := controllerBreeder(1.0)
	r := NewRand(3)
	c := b.Random(r)
	weights := append([]float64(nil), c.Weights...)

	m := b.Mutate(r, c)
	m.Weights[0] = 42
	assert.Equal(t, weights, c.Weights)
}

func TestDerivedBreederIsSame(t *testing.T) {
	b := controllerBreeder(1.0)
	c := b.Random(NewRand(4))
	assert.True(t, b.IsSame(c, c))

	far := b.Clone(c)
	far.Gain = c.Gain + 5
	assert.False(t, b.IsSame(c, far))
}

func TestDerivedBreederClone(t *testing.T) {
	b := controllerBreeder(1.0)
	c := b.Random(NewRand(5))
	cl := b.Clone(c)

	require.Equal(t, c.Weights, cl.Weights)
	cl.Weights[0] = 42
	assert.NotEqual(t, 42.0, c.Weights[0])
	assert.Equal(t, c.Brain.Genes(), cl.Brain.Genes())
}
