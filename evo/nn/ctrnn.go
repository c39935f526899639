package nn

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/baldhumanity/evo-go/evo"
)

// CTRNN is a continuous-time recurrent network over every neuron of a genome.
// Each activation starts from a resting state and integrates
//
//	dy/dt = (W·tanh(y + θ) - y + I) / τ
//
// with Steps forward Euler steps across dt. W[out][in] is the weight of the
// enabled gene in -> out and θ[i] sums the biases of enabled genes leaving i.
type CTRNN struct {
	Tau   float64 // Time constant shared by all neurons.
	Steps int     // Euler steps per activation.

	n       int
	weights *mat.Dense
	theta   *mat.VecDense
}

// NewCTRNN builds the network for g with τ = 0.01 and two steps per
// activation.
func NewCTRNN(g *evo.Genome) *CTRNN {
	n := g.Len()
	weights := mat.NewDense(n, n, nil)
	theta := mat.NewVecDense(n, nil)
	for _, gene := range g.Genes() {
		if !gene.Enabled {
			continue
		}
		weights.Set(gene.Out, gene.In, gene.Weight)
		theta.SetVec(gene.In, theta.AtVec(gene.In)+gene.Bias)
	}
	return &CTRNN{
		Tau:     0.01,
		Steps:   2,
		n:       n,
		weights: weights,
		theta:   theta,
	}
}

// Size is the number of neurons.
func (c *CTRNN) Size() int {
	return c.n
}

// Activate feeds inputs to the first neurons, truncating or zero-padding
// them to the network size, and returns the state of every neuron after the
// input block.
func (c *CTRNN) Activate(inputs []float64, dt float64) []float64 {
	inLen := min(len(inputs), c.n)
	external := make([]float64, c.n)
	copy(external, inputs[:inLen])

	ext := mat.NewVecDense(c.n, external)
	y := mat.NewVecDense(c.n, nil)
	act := mat.NewVecDense(c.n, nil)
	drive := mat.NewVecDense(c.n, nil)

	if dt > 0 && c.Steps > 0 {
		step := dt / float64(c.Steps)
		for s := 0; s < c.Steps; s++ {
			act.AddVec(y, c.theta)
			for i := 0; i < c.n; i++ {
				act.SetVec(i, math.Tanh(act.AtVec(i)))
			}
			drive.MulVec(c.weights, act)
			drive.SubVec(drive, y)
			drive.AddVec(drive, ext)
			y.AddScaledVec(y, step/c.Tau, drive)
		}
	}

	out := make([]float64, c.n-inLen)
	for i := range out {
		out[i] = y.AtVec(inLen + i)
	}
	return out
}
