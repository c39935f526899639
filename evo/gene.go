package evo

import (
	"cmp"
	"fmt"
)

// Gene is a directed, weighted connection between two neurons.
//
// Identity is the (In, Out) pair only. Weight, Bias and Enabled are payload
// and never take part in equality or ordering.
type Gene struct {
	In      int
	Out     int
	Weight  float64
	Bias    float64
	Enabled bool
}

// NewConnectionGene creates an enabled gene with a fresh random weight.
func NewConnectionGene(r *Rand, in, out int) Gene {
	return Gene{
		In:      in,
		Out:     out,
		Weight:  generateWeight(r),
		Enabled: true,
	}
}

// String returns a string representation of the Gene.
func (g Gene) String() string {
	return fmt.Sprintf("Gene(%d->%d, Weight: %.3f, Bias: %.3f, Enabled: %t)",
		g.In, g.Out, g.Weight, g.Bias, g.Enabled)
}

// SameConnection reports whether both genes connect the same neuron pair.
func (g Gene) SameConnection(other Gene) bool {
	return g.In == other.In && g.Out == other.Out
}

// CompareGenes orders genes lexicographically on (In, Out).
func CompareGenes(a, b Gene) int {
	if c := cmp.Compare(a.In, b.In); c != 0 {
		return c
	}
	return cmp.Compare(a.Out, b.Out)
}

// --------------------------- Attribute Helpers ---------------------------

// generateWeight draws a fresh weight or bias in [-1, 1).
func generateWeight(r *Rand) float64 {
	return r.Delta(1.0)
}

// mutateConnectionWeight regenerates the weight; when perturb is set the new
// value is added to the old one instead of replacing it.
func mutateConnectionWeight(r *Rand, g *Gene, perturb bool) {
	w := generateWeight(r)
	if perturb {
		w += g.Weight
	}
	g.Weight = w
}

// mutateConnectionBias follows the same perturb/replace policy as the weight.
func mutateConnectionBias(r *Rand, g *Gene, perturb bool) {
	b := generateWeight(r)
	if perturb {
		b += g.Bias
	}
	g.Bias = b
}

// splitGene disables g and returns the two genes routing through newID.
// The incoming half carries weight 1 and the outgoing half keeps the old
// weight, so the network computes the same thing right after the split.
func splitGene(g *Gene, newID int) (Gene, Gene) {
	g.Enabled = false
	in := Gene{In: g.In, Out: newID, Weight: 1.0, Enabled: true}
	out := Gene{In: newID, Out: g.Out, Weight: g.Weight, Enabled: true}
	return in, out
}

func toggleExpression(g *Gene) {
	g.Enabled = !g.Enabled
}
