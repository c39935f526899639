package evo

import "time"

// GenerationSummary describes one completed generation of a Pool.
type GenerationSummary struct {
	Generation             int           // Generation counter after the turnover, starting at 1.
	Mean                   float64       // Mean of the surviving species' mean scores.
	MeanStdev              float64       // Sample deviation of the surviving species' mean scores.
	MeanBest               float64       // Mean of the surviving species' champion scores.
	Best                   float64       // Score of the pool champion.
	Species                int           // Species alive after classification.
	Reported               int           // Reports drawn on for migration, capped at the pool size.
	Organisms              int           // Candidates queued for the next generation.
	NewSpecies             int           // Species created while classifying offspring.
	ExtinctSpecies         int           // Species removed for lack of reports.
	GensWithoutImprovement int           // Generations since the champion last improved.
	Elapsed                time.Duration // Wall time since the previous turnover.
}

// Observer receives a summary after every generation. Observers run
// synchronously inside Report and Next, so they should return quickly.
type Observer interface {
	ObserveGeneration(GenerationSummary)
}

// ObserverFunc adapts a plain function to Observer.
type ObserverFunc func(GenerationSummary)

func (f ObserverFunc) ObserveGeneration(s GenerationSummary) { f(s) }
