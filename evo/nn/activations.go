package nn

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// ActivationFunc maps a neuron's aggregated input to its output.
type ActivationFunc func(x float64) float64

// Activations maps the names accepted by FeedForwardOptions to functions.
var Activations = map[string]ActivationFunc{
	"sigmoid":  Sigmoid,
	"tanh":     math.Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"clamped":  Clamped,
	"gaussian": Gaussian,
	"abs":      math.Abs,
	"sine":     math.Sin,
	"cosine":   math.Cos,
	"inv":      Inv,
	"log":      Log,
	"exp":      Exp,
	"hat":      Hat,
	"square":   Square,
	"cube":     Cube,
	"step":     Step,
}

// GetActivation looks up an activation function by name.
func GetActivation(name string) (ActivationFunc, error) {
	if fn, ok := Activations[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("unknown activation function %q, known: %v", name, slices.Sorted(maps.Keys(Activations)))
}

// Sigmoid is the steepened logistic 1 / (1 + exp(-4.9x)).
func Sigmoid(x float64) float64 {
	const k = 4.9
	return 1.0 / (1.0 + math.Exp(-k*x))
}

func ReLU(x float64) float64 {
	return math.Max(0, x)
}

func Identity(x float64) float64 {
	return x
}

// Clamped limits x to [-1, 1].
func Clamped(x float64) float64 {
	return math.Max(-1.0, math.Min(x, 1.0))
}

func Gaussian(x float64) float64 {
	return math.Exp(-x * x / 2.0)
}

// Inv returns 1/x, or 0 for x == 0.
func Inv(x float64) float64 {
	if x == 0.0 {
		return 0.0
	}
	return 1.0 / x
}

// Log is the natural logarithm with its input floored at 1e-9.
func Log(x float64) float64 {
	return math.Log(math.Max(1e-9, x))
}

// Exp is e^x with x clamped to [-60, 60].
func Exp(x float64) float64 {
	return math.Exp(math.Max(-60.0, math.Min(x, 60.0)))
}

// Hat is a triangular pulse centered at 0.
func Hat(x float64) float64 {
	return math.Max(0.0, 1.0-math.Abs(x))
}

func Square(x float64) float64 {
	return x * x
}

func Cube(x float64) float64 {
	return x * x * x
}

// Step is 1 for positive x and 0 otherwise.
func Step(x float64) float64 {
	if x > 0 {
		return 1.0
	}
	return 0.0
}
