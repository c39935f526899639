package evo

import (
	"fmt"
	"maps"
	"slices"
)

// NestedKind tags the variant held by a NestedBreeder or NestedGenome.
type NestedKind int

const (
	NestedFloatKind NestedKind = iota
	NestedVecKind
	NestedNetworkKind
	NestedListKind
	NestedMapKind
)

func (k NestedKind) String() string {
	switch k {
	case NestedFloatKind:
		return "float"
	case NestedVecKind:
		return "vec"
	case NestedNetworkKind:
		return "network"
	case NestedListKind:
		return "list"
	case NestedMapKind:
		return "map"
	default:
		return fmt.Sprintf("NestedKind(%d)", int(k))
	}
}

// NestedGenome is the closed set of genomes a NestedBreeder produces:
// NestedFloat, NestedVec, NestedNetwork, NestedList and NestedMap.
type NestedGenome interface {
	Kind() NestedKind
	sealed()
}

type (
	NestedFloat   float64
	NestedVec     []float64
	NestedNetwork struct{ Genome Genome }
	NestedList    []NestedGenome
	NestedMap     map[string]NestedGenome
)

func (NestedFloat) Kind() NestedKind   { return NestedFloatKind }
func (NestedVec) Kind() NestedKind     { return NestedVecKind }
func (NestedNetwork) Kind() NestedKind { return NestedNetworkKind }
func (NestedList) Kind() NestedKind    { return NestedListKind }
func (NestedMap) Kind() NestedKind     { return NestedMapKind }

func (NestedFloat) sealed()   {}
func (NestedVec) sealed()     {}
func (NestedNetwork) sealed() {}
func (NestedList) sealed()    {}
func (NestedMap) sealed()     {}

// unwrap asserts the genome variant. A mismatch means the genome was not
// produced by the breeder handling it, which is a programming error.
func unwrap[T NestedGenome](g NestedGenome) T {
	v, ok := g.(T)
	if !ok {
		var want T
		panic(fmt.Sprintf("evo: nested genome is %T, breeder expects %T", g, want))
	}
	return v
}

// NestedBreeder delegates every operation to a primitive breeder or,
// recursively, to an ordered list or keyed map of nested breeders.
type NestedBreeder struct {
	kind    NestedKind
	float   FloatBreeder
	vec     VecBreeder
	network NeatBreeder
	list    []NestedBreeder
	fields  map[string]NestedBreeder
}

func NestFloat(b FloatBreeder) NestedBreeder {
	return NestedBreeder{kind: NestedFloatKind, float: b}
}

func NestVec(b VecBreeder) NestedBreeder {
	return NestedBreeder{kind: NestedVecKind, vec: b}
}

func NestNetwork(b NeatBreeder) NestedBreeder {
	return NestedBreeder{kind: NestedNetworkKind, network: b}
}

func NestList(bs ...NestedBreeder) NestedBreeder {
	return NestedBreeder{kind: NestedListKind, list: bs}
}

func NestMap(fields map[string]NestedBreeder) NestedBreeder {
	return NestedBreeder{kind: NestedMapKind, fields: maps.Clone(fields)}
}

// Kind reports which variant this breeder handles.
func (b NestedBreeder) Kind() NestedKind {
	return b.kind
}

// keys returns map keys in a fixed order so seeded runs replay exactly.
func (b NestedBreeder) keys() []string {
	return slices.Sorted(maps.Keys(b.fields))
}

func (b NestedBreeder) checkList(l NestedList) {
	if len(l) != len(b.list) {
		panic(fmt.Sprintf("evo: nested list has %d elements, breeder expects %d", len(l), len(b.list)))
	}
}

func (b NestedBreeder) lookup(m NestedMap, key string) NestedGenome {
	g, ok := m[key]
	if !ok {
		panic(fmt.Sprintf("evo: nested map genome has no key %q", key))
	}
	return g
}

func (b NestedBreeder) Mutate(r *Rand, g NestedGenome) NestedGenome {
	switch b.kind {
	case NestedFloatKind:
		return NestedFloat(b.float.Mutate(r, float64(unwrap[NestedFloat](g))))
	case NestedVecKind:
		return NestedVec(b.vec.Mutate(r, unwrap[NestedVec](g)))
	case NestedNetworkKind:
		return NestedNetwork{Genome: b.network.Mutate(r, unwrap[NestedNetwork](g).Genome)}
	case NestedListKind:
		l := unwrap[NestedList](g)
		b.checkList(l)
		out := make(NestedList, len(l))
		for i, sub := range b.list {
			out[i] = sub.Mutate(r, l[i])
		}
		return out
	case NestedMapKind:
		m := unwrap[NestedMap](g)
		out := make(NestedMap, len(b.fields))
		for _, k := range b.keys() {
			out[k] = b.fields[k].Mutate(r, b.lookup(m, k))
		}
		return out
	}
	panic(fmt.Sprintf("evo: unknown nested breeder kind %v", b.kind))
}

func (b NestedBreeder) Breed(r *Rand, g1, g2 NestedGenome) NestedGenome {
	switch b.kind {
	case NestedFloatKind:
		return NestedFloat(b.float.Breed(r, float64(unwrap[NestedFloat](g1)), float64(unwrap[NestedFloat](g2))))
	case NestedVecKind:
		return NestedVec(b.vec.Breed(r, unwrap[NestedVec](g1), unwrap[NestedVec](g2)))
	case NestedNetworkKind:
		return NestedNetwork{Genome: b.network.Breed(r, unwrap[NestedNetwork](g1).Genome, unwrap[NestedNetwork](g2).Genome)}
	case NestedListKind:
		l1, l2 := unwrap[NestedList](g1), unwrap[NestedList](g2)
		b.checkList(l1)
		b.checkList(l2)
		out := make(NestedList, len(b.list))
		for i, sub := range b.list {
			out[i] = sub.Breed(r, l1[i], l2[i])
		}
		return out
	case NestedMapKind:
		m1, m2 := unwrap[NestedMap](g1), unwrap[NestedMap](g2)
		out := make(NestedMap, len(b.fields))
		for _, k := range b.keys() {
			out[k] = b.fields[k].Breed(r, b.lookup(m1, k), b.lookup(m2, k))
		}
		return out
	}
	panic(fmt.Sprintf("evo: unknown nested breeder kind %v", b.kind))
}

func (b NestedBreeder) Random(r *Rand) NestedGenome {
	switch b.kind {
	case NestedFloatKind:
		return NestedFloat(b.float.Random(r))
	case NestedVecKind:
		return NestedVec(b.vec.Random(r))
	case NestedNetworkKind:
		return NestedNetwork{Genome: b.network.Random(r)}
	case NestedListKind:
		out := make(NestedList, len(b.list))
		for i, sub := range b.list {
			out[i] = sub.Random(r)
		}
		return out
	case NestedMapKind:
		out := make(NestedMap, len(b.fields))
		for _, k := range b.keys() {
			out[k] = b.fields[k].Random(r)
		}
		return out
	}
	panic(fmt.Sprintf("evo: unknown nested breeder kind %v", b.kind))
}

func (b NestedBreeder) IsSame(g1, g2 NestedGenome) bool {
	switch b.kind {
	case NestedFloatKind:
		return b.float.IsSame(float64(unwrap[NestedFloat](g1)), float64(unwrap[NestedFloat](g2)))
	case NestedVecKind:
		return b.vec.IsSame(unwrap[NestedVec](g1), unwrap[NestedVec](g2))
	case NestedNetworkKind:
		return b.network.IsSame(unwrap[NestedNetwork](g1).Genome, unwrap[NestedNetwork](g2).Genome)
	case NestedListKind:
		l1, l2 := unwrap[NestedList](g1), unwrap[NestedList](g2)
		b.checkList(l1)
		b.checkList(l2)
		for i, sub := range b.list {
			if !sub.IsSame(l1[i], l2[i]) {
				return false
			}
		}
		return true
	case NestedMapKind:
		m1, m2 := unwrap[NestedMap](g1), unwrap[NestedMap](g2)
		for _, k := range b.keys() {
			if !b.fields[k].IsSame(b.lookup(m1, k), b.lookup(m2, k)) {
				return false
			}
		}
		return true
	}
	panic(fmt.Sprintf("evo: unknown nested breeder kind %v", b.kind))
}

func (b NestedBreeder) Clone(g NestedGenome) NestedGenome {
	switch b.kind {
	case NestedFloatKind:
		return unwrap[NestedFloat](g)
	case NestedVecKind:
		return NestedVec(b.vec.Clone(unwrap[NestedVec](g)))
	case NestedNetworkKind:
		return NestedNetwork{Genome: b.network.Clone(unwrap[NestedNetwork](g).Genome)}
	case NestedListKind:
		l := unwrap[NestedList](g)
		b.checkList(l)
		out := make(NestedList, len(l))
		for i, sub := range b.list {
			out[i] = sub.Clone(l[i])
		}
		return out
	case NestedMapKind:
		m := unwrap[NestedMap](g)
		out := make(NestedMap, len(b.fields))
		for _, k := range b.keys() {
			out[k] = b.fields[k].Clone(b.lookup(m, k))
		}
		return out
	}
	panic(fmt.Sprintf("evo: unknown nested breeder kind %v", b.kind))
}
