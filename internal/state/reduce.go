package state

import (
	"fmt"
	"math"
)

// SegmentSum accumulates per-atom rows into per-system totals. values holds
// cols components per atom; the result holds cols components per system.
func SegmentSum(values []float64, cols int, segments []int, nSystems int) []float64 {
	out := make([]float64, nSystems*cols)
	for a, id := range segments {
		for c := 0; c < cols; c++ {
			out[id*cols+c] += values[a*cols+c]
		}
	}
	return out
}

// PerSystemMaxForce returns the largest per-atom force norm in each system.
func (s *SimState) PerSystemMaxForce() ([]float64, error) {
	if s.Forces == nil {
		return nil, fmt.Errorf("%w: batch carries no forces", ErrConfiguration)
	}
	out := make([]float64, s.NSystems())
	for a, id := range s.Segments {
		fx := s.Forces[a*vecStride]
		fy := s.Forces[a*vecStride+1]
		fz := s.Forces[a*vecStride+2]
		norm := math.Sqrt(fx*fx + fy*fy + fz*fz)
		if norm > out[id] {
			out[id] = norm
		}
	}
	return out, nil
}

// KineticEnergies returns the kinetic energy of each system, computed from
// momenta as sum(p^2/2m) over the system's atoms.
func (s *SimState) KineticEnergies() ([]float64, error) {
	if s.Momenta == nil {
		return nil, fmt.Errorf("%w: batch carries no momenta", ErrConfiguration)
	}
	out := make([]float64, s.NSystems())
	for a, id := range s.Segments {
		px := s.Momenta[a*vecStride]
		py := s.Momenta[a*vecStride+1]
		pz := s.Momenta[a*vecStride+2]
		out[id] += (px*px + py*py + pz*pz) / (2 * s.Masses[a])
	}
	return out, nil
}

// Temperatures returns the instantaneous temperature of each system in
// energy units (kT), from equipartition over 3N degrees of freedom.
func (s *SimState) Temperatures() ([]float64, error) {
	kin, err := s.KineticEnergies()
	if err != nil {
		return nil, err
	}
	counts := s.AtomCounts()
	out := make([]float64, len(kin))
	for i, ke := range kin {
		if counts[i] == 0 {
			continue
		}
		out[i] = 2 * ke / (3 * float64(counts[i]))
	}
	return out, nil
}
