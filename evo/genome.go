package evo

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Genome is a NEAT graph genotype: a sorted, deduplicated list of connection
// genes plus the highest neuron id ever allocated.
//
// Neuron ids start at 0 and only grow through AddGene, AddConnection and
// MutateAddNeuron. The gene list is kept sorted by (In, Out) so lookups are
// binary searches.
type Genome struct {
	genes        []Gene
	LastNeuronID int
}

// NewInitializedGenome wires every input neuron [0, inputs) to every output
// neuron [inputs, inputs+outputs) with random weights.
func NewInitializedGenome(r *Rand, inputs, outputs int) Genome {
	var g Genome
	for i := 0; i < inputs; i++ {
		for o := 0; o < outputs; o++ {
			g.AddGene(NewConnectionGene(r, i, inputs+o))
		}
	}
	return g
}

// NewGenome builds a genome from genes in any order, applying the same
// checks as AddGene.
func NewGenome(genes ...Gene) Genome {
	var g Genome
	for _, gene := range genes {
		g.AddGene(gene)
	}
	return g
}

// Genes returns a copy of the gene list in (In, Out) order.
func (g *Genome) Genes() []Gene {
	return slices.Clone(g.genes)
}

// Gene looks up the gene connecting in to out.
func (g *Genome) Gene(in, out int) (Gene, bool) {
	i, ok := g.find(Gene{In: in, Out: out})
	if !ok {
		return Gene{}, false
	}
	return g.genes[i], true
}

// TotalGenes is the number of connection genes.
func (g *Genome) TotalGenes() int {
	return len(g.genes)
}

// Len is the number of neurons, counting from id 0.
func (g *Genome) Len() int {
	return g.LastNeuronID + 1
}

// TotalWeights sums the weight of every gene, enabled or not.
func (g *Genome) TotalWeights() float64 {
	total := 0.0
	for _, gene := range g.genes {
		total += gene.Weight
	}
	return total
}

// Clone returns a deep copy.
func (g *Genome) Clone() Genome {
	return Genome{genes: slices.Clone(g.genes), LastNeuronID: g.LastNeuronID}
}

// String returns a compact representation of the genome.
func (g Genome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Genome(neurons: %d, genes: %d)", g.Len(), len(g.genes))
	for _, gene := range g.genes {
		sb.WriteString("\n  ")
		sb.WriteString(gene.String())
	}
	return sb.String()
}

func (g *Genome) find(gene Gene) (int, bool) {
	return slices.BinarySearchFunc(g.genes, gene, CompareGenes)
}

// AddGene inserts gene keeping the list sorted. A gene whose connection is
// already present leaves the stored payload alone; the stored gene ends up
// enabled if either copy was.
//
// A self-connection may only reference an existing neuron or the next one to
// be allocated; anything further out would be unreachable and panics.
func (g *Genome) AddGene(gene Gene) {
	if gene.In < 0 || gene.Out < 0 {
		panic(fmt.Sprintf("evo: negative neuron id %d -> %d", gene.In, gene.Out))
	}
	maxNeuronID := g.LastNeuronID + 1
	if gene.In == gene.Out && gene.In > maxNeuronID {
		panic(fmt.Sprintf("evo: gene references unconnected neuron, max neuron id %d, %d -> %d",
			maxNeuronID, gene.In, gene.Out))
	}

	g.LastNeuronID = max(g.LastNeuronID, gene.In, gene.Out)

	i, ok := g.find(gene)
	if ok {
		g.genes[i].Enabled = g.genes[i].Enabled || gene.Enabled
		return
	}
	g.genes = slices.Insert(g.genes, i, gene)
}

// AddConnection adds (or re-enables) the connection in -> out with a random
// weight.
func (g *Genome) AddConnection(r *Rand, in, out int) {
	g.AddGene(NewConnectionGene(r, in, out))
}

// CompatibilityDistance measures structural and weight dissimilarity:
//
//	c2 * disjoint / max(n1, n2) + c3 * meanWeightDiff
//
// Disjoint and excess genes are counted together. With no matching genes the
// weight term counts as 1. Two empty genomes have distance 0.
func (g *Genome) CompatibilityDistance(other *Genome, c2, c3 float64) float64 {
	n1 := len(g.genes)
	n2 := len(other.genes)
	n := max(n1, n2)
	if n == 0 {
		return 0.0
	}

	matching := 0
	weightDiff := 0.0
	for _, gene := range g.genes {
		j, ok := other.find(gene)
		if !ok {
			continue
		}
		matching++
		weightDiff += math.Abs(gene.Weight - other.genes[j].Weight)
	}

	disjoint := n1 + n2 - 2*matching

	w := 1.0
	if matching > 0 {
		w = weightDiff / float64(matching)
	}

	return c2*float64(disjoint)/float64(n) + c3*w
}
