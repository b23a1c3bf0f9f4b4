package runner

import (
	"context"
	"fmt"

	"github.com/Radical-AI/atomsim/internal/state"
)

// Stepper advances a batched state in place. Init prepares any fields the
// scheme needs (momenta, forces, adaptive parameters); Step performs one
// update sweep.
type Stepper interface {
	Init(s *state.SimState) error
	Step(s *state.SimState) error
}

// Reporter receives periodic snapshots of an in-flight batch. The indices
// identify which of the caller's original systems each batched system
// corresponds to.
type Reporter interface {
	Report(step int, indices []int, s *state.SimState) error
}

func checkCtx(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func report(r Reporter, every, step int, indices []int, s *state.SimState) error {
	if r == nil || every <= 0 || step%every != 0 {
		return nil
	}
	if err := r.Report(step, indices, s); err != nil {
		return fmt.Errorf("runner: report step %d: %w", step, err)
	}
	return nil
}
