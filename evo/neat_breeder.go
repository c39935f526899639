package evo

// NeatBreeder breeds NEAT graph genomes.
//
// Every Mutate* field is the probability that the matching operator runs in
// one Mutate call. PerturbProbability decides between perturbing and
// replacing a weight or bias.
type NeatBreeder struct {
	Inputs  int `ini:"inputs" yaml:"inputs"`
	Outputs int `ini:"outputs" yaml:"outputs"`

	MutateAddConnection    float64 `ini:"mutate_add_connection" yaml:"mutate_add_connection"`
	MutateAddNeuron        float64 `ini:"mutate_add_neuron" yaml:"mutate_add_neuron"`
	MutateConnectionWeight float64 `ini:"mutate_connection_weight" yaml:"mutate_connection_weight"`
	MutateToggleExpression float64 `ini:"mutate_toggle_expression" yaml:"mutate_toggle_expression"`
	MutateBias             float64 `ini:"mutate_bias" yaml:"mutate_bias"`
	PerturbProbability     float64 `ini:"perturb_probability" yaml:"perturb_probability"`

	DisjointCoefficient    float64 `ini:"disjoint_coefficient" yaml:"disjoint_coefficient"`
	WeightCoefficient      float64 `ini:"weight_coefficient" yaml:"weight_coefficient"`
	CompatibilityThreshold float64 `ini:"compatibility_threshold" yaml:"compatibility_threshold"`

	// RandomMutations is how many times Random mutates the fully connected
	// starting genome.
	RandomMutations int `ini:"random_mutations" yaml:"random_mutations"`
}

// DefaultNeatBreeder returns the default rates for a 2-in, 2-out network.
func DefaultNeatBreeder() NeatBreeder {
	return NeatBreeder{
		Inputs:                 2,
		Outputs:                2,
		MutateAddConnection:    0.02,
		MutateAddNeuron:        0.02,
		MutateConnectionWeight: 0.9,
		MutateToggleExpression: 0.02,
		MutateBias:             0.5,
		PerturbProbability:     0.9,
		DisjointCoefficient:    1.0,
		WeightCoefficient:      0.2,
		CompatibilityThreshold: 1.0,
		RandomMutations:        5,
	}
}

// NewNeatBreeder returns the default breeder for the given network shape.
func NewNeatBreeder(inputs, outputs int) NeatBreeder {
	b := DefaultNeatBreeder()
	b.Inputs = inputs
	b.Outputs = outputs
	return b
}

// Mutate applies, in order: add connection (always when the genome has no
// genes), add neuron, connection weights, toggle expression and bias. Each
// step sees the result of the previous ones.
func (b NeatBreeder) Mutate(r *Rand, g Genome) Genome {
	out := g.Clone()

	if r.Chance(b.MutateAddConnection) || out.TotalGenes() == 0 {
		out.MutateAddConnection(r)
	}
	if r.Chance(b.MutateAddNeuron) {
		out.MutateAddNeuron(r)
	}
	if r.Chance(b.MutateConnectionWeight) {
		out.MutateConnectionWeight(r, b.PerturbProbability)
	}
	if r.Chance(b.MutateToggleExpression) {
		out.MutateToggleExpression(r)
	}
	if r.Chance(b.MutateBias) {
		out.MutateBias(r, b.PerturbProbability)
	}
	return out
}

// Breed builds a child from the topology of g1, which callers pass as the
// fitter parent. Each gene comes from g1 or, half of the time, from the
// matching gene in g2 when one exists. Genes found only in g2 are dropped.
func (b NeatBreeder) Breed(r *Rand, g1, g2 Genome) Genome {
	// The child keeps g1's neuron counter so a self-loop on a neuron that
	// appears only in later genes still passes the AddGene bounds check.
	child := Genome{
		genes:        make([]Gene, 0, len(g1.genes)),
		LastNeuronID: g1.LastNeuronID,
	}
	for _, gene := range g1.genes {
		if r.Chance(0.5) {
			child.AddGene(gene)
			continue
		}
		if j, ok := g2.find(gene); ok {
			child.AddGene(g2.genes[j])
		} else {
			child.AddGene(gene)
		}
	}
	return child
}

// Random returns a fully connected genome diversified by RandomMutations
// unconditional Mutate calls.
func (b NeatBreeder) Random(r *Rand) Genome {
	g := NewInitializedGenome(r, b.Inputs, b.Outputs)
	for i := 0; i < b.RandomMutations; i++ {
		g = b.Mutate(r, g)
	}
	return g
}

func (b NeatBreeder) IsSame(g1, g2 Genome) bool {
	return b.Distance(g1, g2) < b.CompatibilityThreshold
}

func (b NeatBreeder) Distance(g1, g2 Genome) float64 {
	return g1.CompatibilityDistance(&g2, b.DisjointCoefficient, b.WeightCoefficient)
}

func (b NeatBreeder) Clone(g Genome) Genome {
	return g.Clone()
}
