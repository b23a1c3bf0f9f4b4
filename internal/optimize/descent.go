package optimize

import (
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// Optimizer relaxes every system in a batch toward a local energy minimum,
// one model evaluation per step.
type Optimizer interface {
	Init(s *state.SimState) error
	Step(s *state.SimState) error
}

// Descent is plain gradient descent on atomic positions with a fixed
// learning rate.
type Descent struct {
	LR float64

	model potential.Model
}

func NewDescent(model potential.Model, lr float64) *Descent {
	return &Descent{LR: lr, model: model}
}

func (d *Descent) Init(s *state.SimState) error {
	return refreshForces(d.model, s)
}

func (d *Descent) Step(s *state.SimState) error {
	for i := range s.Positions {
		s.Positions[i] += d.LR * s.Forces[i]
	}
	return refreshForces(d.model, s)
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
