package stats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/baldhumanity/evo-go/evo"
)

// Metrics exports generation summaries as Prometheus metrics. It implements
// evo.Observer.
type Metrics struct {
	generations      prometheus.Counter
	meanScore        prometheus.Gauge
	meanBest         prometheus.Gauge
	bestScore        prometheus.Gauge
	species          prometheus.Gauge
	organisms        prometheus.Gauge
	speciesCreated   prometheus.Counter
	speciesExtinct   prometheus.Counter
	stagnation       prometheus.Gauge
	generationLength prometheus.Histogram
}

// NewMetrics creates the collectors under namespace and registers them on
// reg.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	m := &Metrics{
		generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "generations_total",
			Help: "Completed generations.",
		}),
		meanScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "mean_score",
			Help: "Mean of the species mean scores in the last generation.",
		}),
		meanBest: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "mean_best_score",
			Help: "Mean of the species champion scores in the last generation.",
		}),
		bestScore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "best_score",
			Help: "Score of the pool champion.",
		}),
		species: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "species",
			Help: "Live species.",
		}),
		organisms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "organisms",
			Help: "Candidates queued for the current generation.",
		}),
		speciesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "species_created_total",
			Help: "Species created while classifying offspring.",
		}),
		speciesExtinct: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "species_extinct_total",
			Help: "Species removed for lack of reports.",
		}),
		stagnation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "generations_without_improvement",
			Help: "Generations since the champion last improved.",
		}),
		generationLength: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "generation_duration_seconds",
			Help:    "Wall time between generation turnovers.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
	}

	for _, c := range []prometheus.Collector{
		m.generations, m.meanScore, m.meanBest, m.bestScore, m.species,
		m.organisms, m.speciesCreated, m.speciesExtinct, m.stagnation, m.generationLength,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveGeneration(s evo.GenerationSummary) {
	m.generations.Inc()
	m.meanScore.Set(s.Mean)
	m.meanBest.Set(s.MeanBest)
	m.bestScore.Set(s.Best)
	m.species.Set(float64(s.Species))
	m.organisms.Set(float64(s.Organisms))
	m.speciesCreated.Add(float64(s.NewSpecies))
	m.speciesExtinct.Add(float64(s.ExtinctSpecies))
	m.stagnation.Set(float64(s.GensWithoutImprovement))
	m.generationLength.Observe(s.Elapsed.Seconds())
}
