package evo

// Breeder creates and mixes genomes of type G.
//
// Every operation returns a fresh value; inputs are never modified. Clone is
// how the pool deep-copies a genome across species and generation boundaries.
type Breeder[G any] interface {
	Mutate(r *Rand, g G) G
	Breed(r *Rand, g1, g2 G) G
	Random(r *Rand) G
	IsSame(g1, g2 G) bool
	Clone(g G) G
}

// Distancer is implemented by breeders that can measure how far apart two
// genomes are. The pool uses it for nearest-species matching.
type Distancer[G any] interface {
	Distance(g1, g2 G) float64
}

// --------------------------- FloatBreeder ---------------------------

// FloatBreeder breeds a single real number kept within [Min, Max].
type FloatBreeder struct {
	Min   float64 `ini:"min" yaml:"min"`
	Max   float64 `ini:"max" yaml:"max"`
	Delta float64 `ini:"delta" yaml:"delta"`
}

// DefaultFloatBreeder returns a breeder over [-1, 1] with step 0.1.
func DefaultFloatBreeder() FloatBreeder {
	return FloatBreeder{Min: -1.0, Max: 1.0, Delta: 0.1}
}

func (b FloatBreeder) Mutate(r *Rand, g float64) float64 {
	return clamp(g+r.Delta(b.Delta), b.Min, b.Max)
}

// Breed interpolates between the parents with a fresh weight in [0, 1).
func (b FloatBreeder) Breed(r *Rand, g1, g2 float64) float64 {
	w := r.Float64()
	return g1*w + g2*(1.0-w)
}

func (b FloatBreeder) Random(r *Rand) float64 {
	return r.Range(b.Min, b.Max)
}

func (b FloatBreeder) IsSame(g1, g2 float64) bool {
	return b.Distance(g1, g2) < b.Delta*2.0
}

func (b FloatBreeder) Distance(g1, g2 float64) float64 {
	if g1 > g2 {
		return g1 - g2
	}
	return g2 - g1
}

func (b FloatBreeder) Clone(g float64) float64 { return g }

// --------------------------- VecBreeder ---------------------------

// VecBreeder breeds fixed-length real vectors.
type VecBreeder struct {
	Size            int     `ini:"size" yaml:"size"`
	Min             float64 `ini:"min" yaml:"min"`
	Max             float64 `ini:"max" yaml:"max"`
	Delta           float64 `ini:"delta" yaml:"delta"`
	MutateRate      float64 `ini:"mutate_rate" yaml:"mutate_rate"`             // expected mutated elements per call
	FlipRate        float64 `ini:"flip_rate" yaml:"flip_rate"`                 // expected parent switches per crossover
	IsSameThreshold float64 `ini:"is_same_threshold" yaml:"is_same_threshold"` // mean squared normalized difference
}

// DefaultVecBreeder returns a 100-element breeder over [0, 1].
func DefaultVecBreeder() VecBreeder {
	return VecBreeder{
		Size:            100,
		Min:             0.0,
		Max:             1.0,
		Delta:           0.5,
		MutateRate:      2.0,
		FlipRate:        1.0,
		IsSameThreshold: 0.5,
	}
}

// length is the element count rates are spread over. A breeder without a
// Size uses the genome's own length.
func (b VecBreeder) length(n int) float64 {
	if b.Size > 0 {
		return float64(b.Size)
	}
	return float64(max(1, n))
}

// Mutate perturbs each element independently with probability MutateRate/Size.
func (b VecBreeder) Mutate(r *Rand, g []float64) []float64 {
	out := make([]float64, len(g))
	p := b.MutateRate / b.length(len(g))
	for i, x := range g {
		if r.Chance(p) {
			out[i] = clamp(x+r.Delta(b.Delta), b.Min, b.Max)
		} else {
			out[i] = x
		}
	}
	return out
}

// Breed walks both parents together and copies runs of elements, switching
// source parent with probability FlipRate/Size per element. Contiguous
// blocks stay linked; this is not per-element uniform crossover.
func (b VecBreeder) Breed(r *Rand, g1, g2 []float64) []float64 {
	n := min(len(g1), len(g2))
	out := make([]float64, n)
	p := b.FlipRate / b.length(n)
	flip := false
	for i := 0; i < n; i++ {
		if r.Chance(p) {
			flip = !flip
		}
		if flip {
			out[i] = g2[i]
		} else {
			out[i] = g1[i]
		}
	}
	return out
}

func (b VecBreeder) Random(r *Rand) []float64 {
	out := make([]float64, b.Size)
	for i := range out {
		out[i] = r.Range(b.Min, b.Max)
	}
	return out
}

func (b VecBreeder) IsSame(g1, g2 []float64) bool {
	return b.Distance(g1, g2) < b.IsSameThreshold
}

// Distance is the mean squared difference normalized by the value range.
func (b VecBreeder) Distance(g1, g2 []float64) float64 {
	span := (b.Max - b.Min) * (b.Max - b.Min)
	n := min(len(g1), len(g2))
	s := 0.0
	for i := 0; i < n; i++ {
		if d := g1[i] - g2[i]; d != 0 {
			s += d * d / span
		}
	}
	return s / b.length(n)
}

func (b VecBreeder) Clone(g []float64) []float64 {
	if g == nil {
		return nil
	}
	out := make([]float64, len(g))
	copy(out, g)
	return out
}
