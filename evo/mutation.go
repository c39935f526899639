package evo

// Structural and parametric mutation operators. Each operator edits the
// genome in place; NeatBreeder.Mutate works on a clone.

// MutateAddConnection connects two uniformly chosen neuron ids in
// [0, LastNeuronID]. A genome that has only neuron 0 gets the 0 -> 0 loop.
func (g *Genome) MutateAddConnection(r *Rand) {
	if g.LastNeuronID == 0 {
		g.AddConnection(r, 0, 0)
		return
	}
	in := r.IntRange(0, g.LastNeuronID)
	out := r.IntRange(0, g.LastNeuronID)
	g.AddConnection(r, in, out)
}

// MutateAddNeuron splits a uniformly chosen gene with a newly allocated
// neuron. The split gene is disabled, not removed.
func (g *Genome) MutateAddNeuron(r *Rand) {
	i := g.pick(r)
	g.LastNeuronID++
	in, out := splitGene(&g.genes[i], g.LastNeuronID)
	g.AddGene(in)
	g.AddGene(out)
}

// MutateConnectionWeight regenerates every weight. Each gene is perturbed
// with probability perturb and replaced otherwise.
func (g *Genome) MutateConnectionWeight(r *Rand, perturb float64) {
	for i := range g.genes {
		mutateConnectionWeight(r, &g.genes[i], r.Chance(perturb))
	}
}

// MutateToggleExpression flips the enabled flag of one gene.
func (g *Genome) MutateToggleExpression(r *Rand) {
	toggleExpression(&g.genes[g.pick(r)])
}

// MutateBias regenerates the bias of one gene, perturbing with probability
// perturb and replacing otherwise.
func (g *Genome) MutateBias(r *Rand, perturb float64) {
	i := g.pick(r)
	mutateConnectionBias(r, &g.genes[i], r.Chance(perturb))
}

func (g *Genome) pick(r *Rand) int {
	if len(g.genes) == 0 {
		panic("evo: mutation on genome without genes")
	}
	return r.Intn(len(g.genes))
}
