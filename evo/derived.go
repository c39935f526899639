package evo

// Field is one independently bred member of a struct genome G. Build fields
// with NewField; the zero value is not usable.
type Field[G any] struct {
	Name   string
	Weight float64

	mutate func(r *Rand, dst *G, src *G)
	breed  func(r *Rand, dst *G, g1, g2 *G)
	copyTo func(dst *G, src *G)
	random func(r *Rand, dst *G)
	isSame func(g1, g2 *G) bool
}

// NewField binds breeder b to the member of G returned by at. Weight is the
// probability that Mutate and Breed run the field's breeder instead of
// passing the value through.
func NewField[G, F any](name string, weight float64, b Breeder[F], at func(*G) *F) Field[G] {
	return Field[G]{
		Name:   name,
		Weight: weight,
		mutate: func(r *Rand, dst, src *G) {
			*at(dst) = b.Mutate(r, *at(src))
		},
		breed: func(r *Rand, dst, g1, g2 *G) {
			*at(dst) = b.Breed(r, *at(g1), *at(g2))
		},
		copyTo: func(dst, src *G) {
			*at(dst) = b.Clone(*at(src))
		},
		random: func(r *Rand, dst *G) {
			*at(dst) = b.Random(r)
		},
		isSame: func(g1, g2 *G) bool {
			return b.IsSame(*at(g1), *at(g2))
		},
	}
}

// DerivedBreeder breeds a struct genome field by field. Members of G that
// have no Field keep their zero value in every produced genome.
type DerivedBreeder[G any] struct {
	Fields []Field[G]
}

// NewDerivedBreeder returns a breeder over the given fields.
func NewDerivedBreeder[G any](fields ...Field[G]) DerivedBreeder[G] {
	return DerivedBreeder[G]{Fields: fields}
}

func (d DerivedBreeder[G]) Mutate(r *Rand, g G) G {
	var out G
	for _, f := range d.Fields {
		if r.Chance(f.Weight) {
			f.mutate(r, &out, &g)
		} else {
			f.copyTo(&out, &g)
		}
	}
	return out
}

// Breed runs each field's breeder with its weight; otherwise the whole field
// is inherited from one parent chosen by a fair coin.
func (d DerivedBreeder[G]) Breed(r *Rand, g1, g2 G) G {
	var out G
	for _, f := range d.Fields {
		switch {
		case r.Chance(f.Weight):
			f.breed(r, &out, &g1, &g2)
		case r.Chance(0.5):
			f.copyTo(&out, &g1)
		default:
			f.copyTo(&out, &g2)
		}
	}
	return out
}

func (d DerivedBreeder[G]) Random(r *Rand) G {
	var out G
	for _, f := range d.Fields {
		f.random(r, &out)
	}
	return out
}

func (d DerivedBreeder[G]) IsSame(g1, g2 G) bool {
	for _, f := range d.Fields {
		if !f.isSame(&g1, &g2) {
			return false
		}
	}
	return true
}

func (d DerivedBreeder[G]) Clone(g G) G {
	var out G
	for _, f := range d.Fields {
		f.copyTo(&out, &g)
	}
	return out
}
