package runner

import (
	"context"

	"github.com/Radical-AI/atomsim/internal/autobatch"
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// StaticOptions configures a batched single-point evaluation.
type StaticOptions struct {
	Batch autobatch.Options
}

// Static evaluates the model once on every given system and returns one
// Result per system, in the original input order.
func Static(ctx context.Context, model potential.Model, states []*state.SimState, opts StaticOptions) ([]potential.Result, error) {
	batcher, err := autobatch.NewChunking(model, states, opts.Batch)
	if err != nil {
		return nil, err
	}
	results := make([]potential.Result, len(states))
	for {
		if err := checkCtx(ctx); err != nil {
			return nil, err
		}
		batch, indices, err := batcher.NextBatch()
		if err != nil {
			return nil, err
		}
		if batch == nil {
			break
		}
		res, err := model.Forward(batch)
		if err != nil {
			return nil, err
		}
		counts := batch.AtomCounts()
		atomOff := 0
		for pos, og := range indices {
			n := counts[pos]
			one := potential.Result{
				Energies: []float64{res.Energies[pos]},
			}
			if res.Forces != nil {
				one.Forces = append([]float64(nil), res.Forces[atomOff*3:(atomOff+n)*3]...)
			}
			if res.Stress != nil {
				one.Stress = append([]float64(nil), res.Stress[pos*9:(pos+1)*9]...)
			}
			results[og] = one
			atomOff += n
		}
	}
	return results, nil
}
