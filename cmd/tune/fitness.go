package main

import (
	"context"
	"log"
	"math"
	"sync"

	"github.com/pthm-cable/critter/config"
	"github.com/pthm-cable/critter/game"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int64
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	bestFitness float64
	lastDone    float64 // fraction of critters done in the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int64, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// LastDoneRate returns the done fraction from the most recent evaluation.
func (fe *FitnessEvaluator) LastDoneRate() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDone
}

// seedResult holds the result from one seed evaluation.
type seedResult struct {
	fitness  float64
	doneRate float64
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is the mean simulated time to reach the target, in seconds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var totalFitness, totalDone float64
	for _, r := range results {
		totalFitness += r.fitness
		totalDone += r.doneRate
	}
	n := float64(len(fe.seeds))
	avgFitness := totalFitness / n

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
	}
	fe.lastDone = totalDone / n
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run until every critter is done
// or maxTicks is reached.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) seedResult {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Simulation.StopOnDone = true
	if err := cfg.Finalize(); err != nil {
		log.Printf("rejecting parameters: %v", err)
		return seedResult{fitness: math.Inf(1)}
	}

	g, err := game.NewGame(game.Options{
		Seed:     seed,
		Config:   cfg,
		MaxTicks: fe.maxTicks,
	})
	if err != nil {
		log.Printf("failed to create game: %v", err)
		return seedResult{fitness: math.Inf(1)}
	}
	defer g.Unload()

	res := g.Run(context.Background())
	return fe.computeFitness(res, cfg, g.Target().Count)
}

// computeFitness scores one run. A done critter scores its time to done; a
// critter that never finishes scores twice the run limit, less a share for
// each colour it found so partial progress still ranks.
func (fe *FitnessEvaluator) computeFitness(res game.RunResult, cfg *config.Config, target int) seedResult {
	limit := float64(fe.maxTicks) * cfg.Simulation.DT

	var sum float64
	var done int
	for _, c := range res.Critters {
		if c.Done {
			sum += c.DoneTime
			done++
			continue
		}
		found := math.Min(float64(c.Seen.Len())/float64(target), 1)
		sum += limit * (2 - found)
	}

	n := float64(len(res.Critters))
	return seedResult{
		fitness:  sum / n,
		doneRate: float64(done) / n,
	}
}
