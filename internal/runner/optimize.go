package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/Radical-AI/atomsim/internal/autobatch"
	"github.com/Radical-AI/atomsim/internal/optimize"
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

const (
	defaultMaxOptimizeSteps  = 10_000
	defaultStepsBetweenSwaps = 5
	defaultForceTol          = 0.1
)

// OptimizeOptions configures a batched structure optimization.
type OptimizeOptions struct {
	// Convergence decides per system when to stop; nil means a force
	// criterion with the default tolerance.
	Convergence optimize.ConvergenceFn
	// MaxSteps bounds the total optimizer sweeps; systems still in flight
	// at the bound are returned as-is with a warning.
	MaxSteps int
	// StepsBetweenSwaps is how many sweeps run between convergence checks.
	StepsBetweenSwaps int
	// Batch configures the hot-swapping batcher. An unset budget defaults
	// to the total atom count plus one, which admits everything at once.
	Batch autobatch.Options
	// Reporter, when set, receives the batch after every convergence
	// sweep whose ordinal is a multiple of ReportEvery.
	Reporter    Reporter
	ReportEvery int
}

// Optimize relaxes every given system with opt, hot-swapping converged
// systems out of the batch, and returns the relaxed states in the original
// input order.
func Optimize(ctx context.Context, model potential.Model, opt optimize.Optimizer, states []*state.SimState, opts OptimizeOptions) ([]*state.SimState, error) {
	conv := opts.Convergence
	if conv == nil {
		conv = optimize.ForceConvergence(defaultForceTol)
	}
	maxSteps := opts.MaxSteps
	if maxSteps <= 0 {
		maxSteps = defaultMaxOptimizeSteps
	}
	between := opts.StepsBetweenSwaps
	if between <= 0 {
		between = defaultStepsBetweenSwaps
	}
	batchOpts := opts.Batch
	if batchOpts.MaxMetric <= 0 {
		total := 0
		for _, s := range states {
			total += s.NAtoms()
		}
		batchOpts.Metric = potential.ScalesWithAtoms
		batchOpts.MaxMetric = float64(total + 1)
	}

	// Initialize every system up front so queued states already carry the
	// optimizer's fields when they are concatenated into a running batch.
	full, err := state.Concatenate(states)
	if err != nil {
		return nil, err
	}
	if err := opt.Init(full); err != nil {
		return nil, err
	}
	prepared, err := full.Split()
	if err != nil {
		return nil, err
	}

	batcher, err := autobatch.NewHotSwap(model, prepared, batchOpts)
	if err != nil {
		return nil, err
	}
	batch, err := batcher.Start()
	if err != nil {
		return nil, err
	}

	var completed []*state.SimState
	steps := 0
	for batch != nil {
		for i := 0; i < between; i++ {
			if err := checkCtx(ctx); err != nil {
				return nil, err
			}
			if err := opt.Step(batch); err != nil {
				return nil, err
			}
			steps++
		}
		flags, err := conv(batch)
		if err != nil {
			return nil, err
		}
		if steps >= maxSteps {
			remaining := 0
			for _, done := range flags {
				if !done {
					remaining++
				}
			}
			if remaining > 0 {
				log.Printf("optimize: step budget %d exhausted with %d systems unconverged, returning them as-is", maxSteps, remaining)
			}
			for i := range flags {
				flags[i] = true
			}
		}
		next, popped, err := batcher.NextBatch(batch, flags)
		if err != nil {
			return nil, err
		}
		completed = append(completed, popped...)
		batch = next
		if batch != nil {
			if err := report(opts.Reporter, opts.ReportEvery, steps, batcher.InFlightIndices(), batch); err != nil {
				return nil, err
			}
		}
	}
	restored, err := batcher.RestoreOriginalOrder(completed)
	if err != nil {
		return nil, fmt.Errorf("runner: reorder relaxed systems: %w", err)
	}
	return restored, nil
}
