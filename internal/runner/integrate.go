package runner

import (
	"context"
	"fmt"

	"github.com/Radical-AI/atomsim/internal/autobatch"
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// IntegrateOptions configures a batched molecular-dynamics run.
type IntegrateOptions struct {
	// Steps is the number of integration steps applied to every system.
	Steps int
	// Batch configures the chunking batcher.
	Batch autobatch.Options
	// Reporter, when set, receives each batch every ReportEvery steps.
	Reporter    Reporter
	ReportEvery int
}

// Integrate runs stepper for opts.Steps steps over every given system,
// batching through a chunking autobatcher, and returns the final states in
// the original input order.
func Integrate(ctx context.Context, model potential.Model, stepper Stepper, states []*state.SimState, opts IntegrateOptions) ([]*state.SimState, error) {
	if opts.Steps <= 0 {
		return nil, fmt.Errorf("%w: integrate needs a positive step count, got %d", state.ErrConfiguration, opts.Steps)
	}
	batcher, err := autobatch.NewChunking(model, states, opts.Batch)
	if err != nil {
		return nil, err
	}

	var finished []*state.SimState
	for {
		batch, indices, err := batcher.NextBatch()
		if err != nil {
			return nil, err
		}
		if batch == nil {
			break
		}
		if err := stepper.Init(batch); err != nil {
			return nil, err
		}
		for step := 1; step <= opts.Steps; step++ {
			if err := checkCtx(ctx); err != nil {
				return nil, err
			}
			if err := stepper.Step(batch); err != nil {
				return nil, err
			}
			if err := report(opts.Reporter, opts.ReportEvery, step, indices, batch); err != nil {
				return nil, err
			}
		}
		finished = append(finished, batch)
	}
	return batcher.RestoreOriginalOrder(finished)
}
