package integrate

import (
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// NVE integrates the microcanonical ensemble with velocity Verlet. Total
// energy is conserved up to integration error.
type NVE struct {
	Dt   float64
	KT   float64
	Seed int64

	model potential.Model
}

// NewNVE creates an NVE stepper with timestep dt. kT seeds thermal momenta
// during Init for states that carry none.
func NewNVE(model potential.Model, dt, kT float64, seed int64) *NVE {
	return &NVE{Dt: dt, KT: kT, Seed: seed, model: model}
}

// Init evaluates forces and energies and draws thermal momenta if the
// batch has none yet.
func (n *NVE) Init(s *state.SimState) error {
	if s.Momenta == nil {
		InitMomenta(s, n.KT, n.Seed)
	}
	return refreshForces(n.model, s)
}

// Step advances the batch by one velocity-Verlet step: half kick, drift
// with periodic wrap, force refresh, half kick.
func (n *NVE) Step(s *state.SimState) error {
	halfKick(s, n.Dt/2)
	if err := drift(s, n.Dt); err != nil {
		return err
	}
	if err := refreshForces(n.model, s); err != nil {
		return err
	}
	halfKick(s, n.Dt/2)
	return nil
}

// halfKick applies p += F*dt to every atom.
func halfKick(s *state.SimState, dt float64) {
	for i := range s.Momenta {
		s.Momenta[i] += s.Forces[i] * dt
	}
}

// drift applies r += p/m*dt and wraps periodic batches back into the cell.
func drift(s *state.SimState, dt float64) error {
	for a := range s.Masses {
		for c := 0; c < 3; c++ {
			s.Positions[a*3+c] += s.Momenta[a*3+c] / s.Masses[a] * dt
		}
	}
	return s.WrapPositions()
}

func refreshForces(model potential.Model, s *state.SimState) error {
	res, err := model.Forward(s)
	if err != nil {
		return err
	}
	s.Forces = res.Forces
	s.Energies = res.Energies
	if res.Stress != nil {
		s.Stress = res.Stress
	}
	return nil
}
