package nn

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/evo-go/evo"
)

// ErrCyclic is returned when a genome cannot be evaluated in one forward
// pass because its enabled connections form a cycle.
var ErrCyclic = errors.New("nn: genome has a cycle")

// FeedForwardOptions describes how a genome's neurons are read as a network.
// Neurons [0, Inputs) are inputs and the next Outputs neurons are outputs.
type FeedForwardOptions struct {
	Inputs      int
	Outputs     int
	Activation  string // Defaults to "sigmoid".
	Aggregation string // Defaults to "sum".
}

type link struct {
	from   int
	weight float64
}

// neuralNode is a non-input neuron with its incoming enabled links.
type neuralNode struct {
	id       int
	bias     float64
	incoming []link
}

// FeedForward evaluates a genome as an acyclic network. Every non-input
// neuron computes activation(aggregation(w*x) + bias), where bias is the sum
// of the biases on its enabled incoming genes. Connections into input
// neurons are ignored since inputs are clamped.
type FeedForward struct {
	inputs      int
	outputs     int
	size        int
	order       []neuralNode
	activation  ActivationFunc
	aggregation AggregationFunc
}

// NewFeedForward builds the network for g. It returns an error wrapping
// ErrCyclic if the enabled connections form a cycle.
func NewFeedForward(g *evo.Genome, opts FeedForwardOptions) (*FeedForward, error) {
	if opts.Inputs <= 0 || opts.Outputs <= 0 {
		return nil, fmt.Errorf("nn: inputs and outputs must be positive, got %d and %d", opts.Inputs, opts.Outputs)
	}
	if opts.Activation == "" {
		opts.Activation = "sigmoid"
	}
	if opts.Aggregation == "" {
		opts.Aggregation = "sum"
	}
	act, err := GetActivation(opts.Activation)
	if err != nil {
		return nil, fmt.Errorf("nn: %w", err)
	}
	agg, err := GetAggregation(opts.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("nn: %w", err)
	}

	size := max(g.Len(), opts.Inputs+opts.Outputs)
	dg := simple.NewWeightedDirectedGraph(0, 0)
	for id := 0; id < size; id++ {
		dg.AddNode(simple.Node(id))
	}
	bias := make([]float64, size)
	for _, gene := range g.Genes() {
		if !gene.Enabled || gene.Out < opts.Inputs {
			continue
		}
		if gene.In == gene.Out {
			return nil, fmt.Errorf("%w: neuron %d connects to itself", ErrCyclic, gene.In)
		}
		dg.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(gene.In), T: simple.Node(gene.Out), W: gene.Weight})
		bias[gene.Out] += gene.Bias
	}

	sorted, err := topo.SortStabilized(dg, byID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCyclic, err)
	}

	order := make([]neuralNode, 0, len(sorted))
	for _, n := range sorted {
		id := int(n.ID())
		if id < opts.Inputs {
			continue
		}
		node := neuralNode{id: id, bias: bias[id]}
		from := dg.To(n.ID())
		for from.Next() {
			u := from.Node()
			node.incoming = append(node.incoming, link{
				from:   int(u.ID()),
				weight: dg.WeightedEdge(u.ID(), n.ID()).Weight(),
			})
		}
		slices.SortFunc(node.incoming, func(a, b link) int { return cmp.Compare(a.from, b.from) })
		order = append(order, node)
	}

	return &FeedForward{
		inputs:      opts.Inputs,
		outputs:     opts.Outputs,
		size:        size,
		order:       order,
		activation:  act,
		aggregation: agg,
	}, nil
}

func byID(nodes []graph.Node) {
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID(), b.ID()) })
}

// Activate runs one forward pass. len(inputs) must equal the input count.
func (net *FeedForward) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != net.inputs {
		return nil, fmt.Errorf("nn: got %d inputs, network has %d", len(inputs), net.inputs)
	}

	values := make([]float64, net.size)
	copy(values, inputs)

	var buf []float64
	for _, node := range net.order {
		buf = buf[:0]
		for _, l := range node.incoming {
			buf = append(buf, values[l.from]*l.weight)
		}
		values[node.id] = net.activation(net.aggregation(buf) + node.bias)
	}

	outputs := make([]float64, net.outputs)
	copy(outputs, values[net.inputs:net.inputs+net.outputs])
	return outputs, nil
}
