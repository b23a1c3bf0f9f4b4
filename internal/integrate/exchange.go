package integrate

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/Radical-AI/atomsim/internal/state"
)

// ReplicaExchange attempts Metropolis swaps between adjacent replicas of the
// same system running at different temperatures in one batch. Interleave
// Attempt calls with an NVT stepper's sweeps to sample a parallel-tempering
// ensemble.
type ReplicaExchange struct {
	rng *rand.Rand
}

func NewReplicaExchange(seed int64) *ReplicaExchange {
	return &ReplicaExchange{rng: rand.New(rand.NewSource(seed))}
}

// validateEnsemble requires at least two replicas, all with identical
// composition, so positions can swap between them.
func validateEnsemble(s *state.SimState) error {
	n := s.NSystems()
	if n < 2 {
		return fmt.Errorf("%w: replica exchange needs at least 2 replicas, got %d", state.ErrConfiguration, n)
	}
	counts := s.AtomCounts()
	for id := 1; id < n; id++ {
		if counts[id] != counts[0] {
			return fmt.Errorf("%w: replica %d has %d atoms, replica 0 has %d",
				state.ErrConfiguration, id, counts[id], counts[0])
		}
	}
	for id := 1; id < n; id++ {
		for k := 0; k < counts[0]; k++ {
			if s.Species[id*counts[0]+k] != s.Species[k] {
				return fmt.Errorf("%w: replica %d species disagree with replica 0", state.ErrConfiguration, id)
			}
		}
	}
	return nil
}

// Attempt picks a random adjacent replica pair and swaps their positions
// with Metropolis probability exp((1/kT_i - 1/kT_j)(E_i - E_j)), rescaling
// momenta so each configuration keeps its replica's temperature. Returns
// whether a swap happened.
func (r *ReplicaExchange) Attempt(s *state.SimState) (bool, error) {
	if err := validateEnsemble(s); err != nil {
		return false, err
	}
	if s.Energies == nil {
		return false, fmt.Errorf("%w: batch carries no energies", state.ErrConfiguration)
	}

	i := r.rng.Intn(s.NSystems() - 1)
	j := i + 1
	if r.rng.Float64() < 0.5 {
		i, j = j, i
	}

	temps, err := s.Temperatures()
	if err != nil {
		return false, err
	}
	if temps[i] == 0 || temps[j] == 0 {
		return false, fmt.Errorf("%w: replica pair (%d, %d) has zero temperature", state.ErrConfiguration, i, j)
	}

	deltaE := s.Energies[i] - s.Energies[j]
	deltaBeta := 1/temps[i] - 1/temps[j]
	if r.rng.Float64() >= math.Exp(deltaBeta*deltaE) {
		return false, nil
	}

	count := s.AtomCounts()[0]
	oi, oj := i*count*3, j*count*3
	scaleI := math.Sqrt(temps[j] / temps[i])
	for k := 0; k < 3*count; k++ {
		s.Positions[oi+k], s.Positions[oj+k] = s.Positions[oj+k], s.Positions[oi+k]
		s.Momenta[oi+k] *= scaleI
		s.Momenta[oj+k] /= scaleI
	}
	return true, nil
}
