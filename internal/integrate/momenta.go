package integrate

import (
	"math"
	"math/rand"

	"github.com/Radical-AI/atomsim/internal/state"
)

// InitMomenta draws Maxwell-Boltzmann momenta at temperature kT (energy
// units) for every atom and removes each system's center-of-mass drift.
// Systems with a single atom keep their raw sample.
func InitMomenta(s *state.SimState, kT float64, seed int64) {
	rng := rand.New(rand.NewSource(seed))

	n := s.NAtoms()
	momenta := make([]float64, n*3)
	for a := 0; a < n; a++ {
		scale := math.Sqrt(s.Masses[a] * kT)
		for c := 0; c < 3; c++ {
			momenta[a*3+c] = rng.NormFloat64() * scale
		}
	}

	counts := s.AtomCounts()
	sums := state.SegmentSum(momenta, 3, s.Segments, s.NSystems())
	for a, id := range s.Segments {
		if counts[id] < 2 {
			continue
		}
		for c := 0; c < 3; c++ {
			momenta[a*3+c] -= sums[id*3+c] / float64(counts[id])
		}
	}
	s.Momenta = momenta
}
