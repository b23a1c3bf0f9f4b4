package autobatch

import (
	"fmt"

	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// Metric computes the memory-cost proxy of a single-system state under the
// given scaling kind. Larger metric means at least as much memory.
func Metric(s *state.SimState, kind potential.Scaling) (float64, error) {
	switch kind {
	case potential.ScalesWithAtoms:
		return float64(s.NAtoms()), nil
	case potential.ScalesWithAtomsDensity:
		volume := s.Volumes()[0] / 1000
		if volume == 0 {
			return 0, fmt.Errorf("%w: zero cell volume, cannot compute number density", state.ErrConfiguration)
		}
		n := float64(s.NAtoms())
		return n * (n / volume), nil
	default:
		return 0, fmt.Errorf("%w: invalid metric kind %q", state.ErrConfiguration, kind)
	}
}

// Metrics computes the metric of each single-system state under one
// scaling kind, reporting the offending index on failure.
func Metrics(states []*state.SimState, kind potential.Scaling) ([]float64, error) {
	metrics := make([]float64, len(states))
	for i, s := range states {
		m, err := Metric(s, kind)
		if err != nil {
			return nil, fmt.Errorf("system %d: %w", i, err)
		}
		metrics[i] = m
	}
	return metrics, nil
}
