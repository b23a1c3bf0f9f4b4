package optimize

import "github.com/Radical-AI/atomsim/internal/state"

// ConvergenceFn reports one flag per in-flight system, aligned to the
// batch's system order.
type ConvergenceFn func(s *state.SimState) ([]bool, error)

// ForceConvergence marks a system converged when its largest per-atom
// force norm drops below tol.
func ForceConvergence(tol float64) ConvergenceFn {
	return func(s *state.SimState) ([]bool, error) {
		maxForce, err := s.PerSystemMaxForce()
		if err != nil {
			return nil, err
		}
		flags := make([]bool, len(maxForce))
		for i, f := range maxForce {
			flags[i] = f < tol
		}
		return flags, nil
	}
}
