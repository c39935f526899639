package evo

// stagnation tracks the best genome a pool has seen and how many
// generations have passed since it last improved.
type stagnation[G any] struct {
	champion               *Scored[G]
	gensWithoutImprovement int
}

// update compares the best genome of the generation just finished against
// the stored champion. The champion is replaced, and the counter reset, only
// on a strict improvement or when no champion exists yet.
func (s *stagnation[G]) update(best *Scored[G]) (improved bool) {
	if s.champion == nil || (best != nil && best.Score > s.champion.Score) {
		s.champion = best
		s.gensWithoutImprovement = 0
		return best != nil
	}
	s.gensWithoutImprovement++
	return false
}

// bestOf returns the highest scoring champion among the species, or nil when
// none of them has one. Ties keep the first species in the given order.
func bestOf[G any](species []*Species[G]) *Scored[G] {
	var best *Scored[G]
	for _, s := range species {
		if s.Champion == nil {
			continue
		}
		if best == nil || s.Champion.Score > best.Score {
			best = s.Champion
		}
	}
	return best
}
