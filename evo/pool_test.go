package evo

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newFloatPool(t *testing.T, size int, opts ...Option) *Pool[float64] {
	t.Helper()
	opts = append([]Option{WithRand(NewRand(42)), WithLogger(quietLogger())}, opts...)
	p, err := NewPool[float64](FloatBreeder{Min: -10, Max: 10, Delta: 0.5}, DefaultPoolConfig(size), opts...)
	require.NoError(t, err)
	return p
}

func TestNewPool(t *testing.T) {
	p := newFloatPool(t, 10)

	assert.Equal(t, 10, p.Pending())
	assert.Equal(t, []SpeciesID{0}, p.SpeciesIDs())
	assert.Equal(t, 0, p.Generations())
	_, ok := p.Champion()
	assert.False(t, ok)
}

func TestNewPoolRejectsBadConfig(t *testing.T) {
	_, err := NewPool[float64](DefaultFloatBreeder(), DefaultPoolConfig(0))
	assert.Error(t, err)

	_, err = NewPool[float64](nil, DefaultPoolConfig(10))
	assert.Error(t, err)

	cfg := DefaultPoolConfig(10)
	cfg.MigrationRate = 2
	_, err = NewPool[float64](DefaultFloatBreeder(), cfg)
	assert.Error(t, err)
}

func TestPoolReportErrors(t *testing.T) {
	p := newFloatPool(t, 10)
	id, g := p.Next()

	_, err := p.Report(id, g, math.NaN())
	assert.ErrorIs(t, err, ErrInvalidScore)

	_, err = p.Report(id+100, g, 1)
	assert.ErrorIs(t, err, ErrUnknownSpecies)

	turned, err := p.Report(id, g, 1)
	require.NoError(t, err)
	assert.False(t, turned)
}

func TestPoolTurnsOverOnLastReport(t *testing.T) {
	p := newFloatPool(t, 10)

	for i := 0; i < 9; i++ {
		id, g := p.Next()
		turned, err := p.Report(id, g, 1)
		require.NoError(t, err)
		require.False(t, turned)
	}
	id, g := p.Next()
	assert.Equal(t, 0, p.Pending())

	turned, err := p.Report(id, g, 1)
	require.NoError(t, err)
	assert.True(t, turned)
	assert.Equal(t, 1, p.Generations())
	assert.Positive(t, p.Pending())
}

func TestPoolReportAfterQueueDrained(t *testing.T) {
	p := newFloatPool(t, 5)

	type pulled struct {
		id SpeciesID
		g  float64
	}
	var batch []pulled
	for i := 0; i < 5; i++ {
		id, g := p.Next()
		batch = append(batch, pulled{id, g})
	}
	require.Equal(t, 0, p.Pending())

	// Every candidate is out; the first report to come back turns the pool over.
	turned, err := p.Report(batch[0].id, batch[0].g, 1)
	require.NoError(t, err)
	assert.True(t, turned)
	assert.Equal(t, 1, p.Generations())
}

func TestPoolNextPanicsWithoutReports(t *testing.T) {
	p := newFloatPool(t, 3)
	for i := 0; i < 3; i++ {
		p.Next()
	}
	assert.Panics(t, func() { p.Next() })
}

func TestPoolPrunesSpeciesWithoutReports(t *testing.T) {
	p := newFloatPool(t, 4)

	// Species 0 never receives a report, but a fresh species does.
	s := p.species.create(1.0, 0)
	p.pending = nil
	_, err := p.Report(s.ID, 1.0, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, p.Generations())
	_, ok := p.species.lookup(0)
	assert.False(t, ok)
	assert.Equal(t, 0, s.GensEmpty)

	champ, ok := p.Champion()
	require.True(t, ok)
	assert.Equal(t, 5.0, champ.Score)
}

func TestPoolMixedSignSpeciesMeans(t *testing.T) {
	for _, tc := range []struct {
		name     string
		pos, neg float64
	}{
		{"nearly cancelling", 1.0, -(1 - 1e-15)},
		{"small positive mean", 10, -9.99},
	} {
		t.Run(tc.name, func(t *testing.T) {
			p := newFloatPool(t, 10)
			s := p.species.create(-5.0, 0)
			p.pending = nil
			root := p.species.get(0)
			root.Reported = append(root.Reported, Scored[float64]{Score: tc.pos, Genome: 1})

			var done bool
			require.NotPanics(t, func() {
				var err error
				done, err = p.Report(s.ID, -5.0, tc.neg)
				require.NoError(t, err)
			})
			assert.True(t, done)

			// Size plus the over-generation allowance for two species.
			assert.LessOrEqual(t, p.Pending(), 12)
			assert.Positive(t, p.Pending())
		})
	}
}

func TestPoolLateReportForPrunedSpecies(t *testing.T) {
	p := newFloatPool(t, 4)
	s := p.species.create(1.0, 0)
	p.pending = nil
	_, err := p.Report(s.ID, 1.0, 5)
	require.NoError(t, err)

	_, err = p.Report(0, 1.0, 5)
	assert.ErrorIs(t, err, ErrUnknownSpecies)
}

func TestPoolEndToEndNeat(t *testing.T) {
	p, err := NewPool[Genome](NewNeatBreeder(2, 1), DefaultPoolConfig(10),
		WithRand(NewRand(7)), WithLogger(quietLogger()))
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		id, g := p.Next()
		_, err := p.Report(id, g, 1.0)
		require.NoError(t, err)
	}

	assert.Positive(t, p.Generations())
	champ, ok := p.Champion()
	require.True(t, ok)
	assert.Equal(t, 1.0, champ.Score)
	assert.InDelta(t, 1.0, p.MeanScore(), 1e-12)
	assert.InDelta(t, 1.0, p.MeanBest(), 1e-12)
	assert.Positive(t, p.SpeciesCount())
}

func TestPoolRunImproves(t *testing.T) {
	p := newFloatPool(t, 30)
	target := 3.0
	eval := func(x float64) float64 { return -math.Abs(x - target) }

	res, err := p.Run(50, 50, eval)
	require.NoError(t, err)

	assert.Equal(t, 50, res.Generations)
	assert.False(t, res.Converged)
	assert.InDelta(t, target, res.Champion, 1.0)
	assert.Equal(t, eval(res.Champion), res.Score)
}

func TestPoolRunConverges(t *testing.T) {
	p := newFloatPool(t, 10)

	res, err := p.Run(1000, 3, func(float64) float64 { return 1 })
	require.NoError(t, err)
	assert.True(t, res.Converged)
	assert.Equal(t, 4, res.Generations)
	assert.Equal(t, 1.0, res.Score)
}

func TestPoolRunWithoutGenerations(t *testing.T) {
	p := newFloatPool(t, 10)
	_, err := p.Run(0, 10, func(float64) float64 { return 1 })
	assert.ErrorIs(t, err, ErrNoChampion)
}

func TestPoolObserver(t *testing.T) {
	var summaries []GenerationSummary
	p := newFloatPool(t, 10, WithObserver(ObserverFunc(func(s GenerationSummary) {
		summaries = append(summaries, s)
	})))

	_, err := p.Run(3, 10, func(x float64) float64 { return x })
	require.NoError(t, err)

	require.Len(t, summaries, 3)
	for i, s := range summaries {
		assert.Equal(t, i+1, s.Generation)
		assert.Positive(t, s.Organisms)
		assert.Positive(t, s.Species)
		assert.LessOrEqual(t, s.Reported, 10)
	}
	assert.Equal(t, 10, summaries[0].Reported)
	assert.Equal(t, p.GensWithoutImprovement(), summaries[2].GensWithoutImprovement)
}

func TestPoolNearestMatch(t *testing.T) {
	p := newFloatPool(t, 4, WithMatchPolicy(NearestMatch))
	a := p.species.get(0)
	a.Model = 0.0
	b := p.species.create(0.6, 0)

	// Both models accept 0.5 (threshold 1.0), but b is closer.
	assert.Same(t, b, p.match([]*Species[float64]{a, b}, 0.5))

	p.cfg.MatchPolicy = FirstMatch
	assert.Same(t, a, p.match([]*Species[float64]{a, b}, 0.5))

	assert.Nil(t, p.match([]*Species[float64]{a, b}, 9))
}

func TestPoolWithRatios(t *testing.T) {
	p := newFloatPool(t, 10, WithRatios(Ratios{Top: 1, Mutate: 1, Cross: 1, Random: 1}))
	assert.InDelta(t, 0.25, p.Ratios().Top, 1e-12)
}

func TestNewPoolRejectsNegativeRatios(t *testing.T) {
	for _, r := range []Ratios{
		{Top: -1, Mutate: 1, Cross: 1, Random: 1},
		{Top: 0.1, Mutate: 0.5, Cross: 0.5, Random: -0.1},
		{Top: math.NaN(), Mutate: 1},
	} {
		_, err := NewPool[float64](DefaultFloatBreeder(), DefaultPoolConfig(10), WithRatios(r))
		assert.ErrorContains(t, err, "ratios cannot be negative")
	}
}

func TestParseMatchPolicy(t *testing.T) {
	m, err := ParseMatchPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FirstMatch, m)

	m, err = ParseMatchPolicy(" Nearest ")
	require.NoError(t, err)
	assert.Equal(t, NearestMatch, m)
	assert.Equal(t, "nearest", m.String())

	_, err = ParseMatchPolicy("closest")
	assert.Error(t, err)
}

func TestPoolIsReproducible(t *testing.T) {
	run := func() float64 {
		p := newFloatPool(t, 20)
		res, err := p.Run(10, 10, func(x float64) float64 { return -x * x })
		require.NoError(t, err)
		return res.Score
	}
	assert.Equal(t, run(), run())
}
