package nn

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/baldhumanity/evo-go/evo"
)

// AggregationFunc folds the weighted inputs of a neuron into one value.
type AggregationFunc func(inputs []float64) float64

// Aggregations maps the names accepted by FeedForwardOptions to functions.
var Aggregations = map[string]AggregationFunc{
	"sum":     evo.Sum,
	"product": Product,
	"min":     MinOrZero,
	"max":     MaxOrZero,
	"mean":    evo.Mean,
	"median":  MedianOrZero,
	"maxabs":  MaxAbs,
}

// GetAggregation looks up an aggregation function by name.
func GetAggregation(name string) (AggregationFunc, error) {
	if fn, ok := Aggregations[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown aggregation function %q, known: %v", name, slices.Sorted(maps.Keys(Aggregations)))
}

// Product multiplies the inputs. No inputs give 1.
func Product(inputs []float64) float64 {
	product := 1.0
	for _, v := range inputs {
		product *= v
	}
	return product
}

// A neuron without enabled inputs aggregates to 0 for min, max and median.

func MinOrZero(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return evo.MinFloat(inputs)
}

func MaxOrZero(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return evo.MaxFloat(inputs)
}

func MedianOrZero(inputs []float64) float64 {
	if len(inputs) == 0 {
		return 0.0
	}
	return evo.Median(inputs)
}

// MaxAbs returns the input with the largest magnitude, sign kept.
func MaxAbs(inputs []float64) float64 {
	best := 0.0
	for _, v := range inputs {
		if math.Abs(v) > math.Abs(best) {
			best = v
		}
	}
	return best
}
