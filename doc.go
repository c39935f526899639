// Package evo provides a generic evolutionary engine with a NEAT graph genome.
//
// The engine is split in three packages:
//
//   - evo: the Breeder contract and its float, vector, derived and nested
//     breeders, the NEAT gene and genome with structural mutation and
//     compatibility distance, species, and the Pool scheduler.
//   - evo/nn: phenotypes built from a NEAT genome, a feed-forward network
//     and a continuous-time recurrent network.
//   - evo/stats: generation history, with in-memory and SQLite stores,
//     Prometheus metrics and fitness plots.
//
// A Pool is driven by the caller: pull a candidate, evaluate it however
// long it takes, and report its score. The report that drains the queue
// breeds the next generation.
//
// Basic usage:
//
//	breeder := evo.NewNeatBreeder(2, 1)
//	pool, err := evo.NewPool[evo.Genome](breeder, evo.DefaultPoolConfig(150))
//	if err != nil {
//		log.Fatalf("Error creating pool: %v", err)
//	}
//
//	for pool.Generations() < 100 {
//		id, genome := pool.Next()
//		score := evaluate(genome)
//		if _, err := pool.Report(id, genome, score); err != nil {
//			log.Fatalf("Error reporting score: %v", err)
//		}
//	}
//
//	champion, _ := pool.Champion()
//	fmt.Println(champion.Score)
package evo
