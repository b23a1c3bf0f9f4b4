package potential

import (
	"math"

	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/state"
)

// Morse is the anharmonic pair potential
//
//	V(r) = epsilon * (1 - exp(-alpha*(r - sigma)))^2
//
// with well depth epsilon, equilibrium distance sigma and width alpha. It
// describes bond stretching and breaking better than a harmonic well.
type Morse struct {
	Sigma   float64
	Epsilon float64
	Alpha   float64
	Cutoff  float64

	WithStress bool

	dev *device.Device
}

// NewMorse creates the model on dev with a cutoff of sigma + 6/alpha,
// where the well has decayed to well under a percent of epsilon.
func NewMorse(sigma, epsilon, alpha float64, dev *device.Device) *Morse {
	return &Morse{
		Sigma:   sigma,
		Epsilon: epsilon,
		Alpha:   alpha,
		Cutoff:  sigma + 6/alpha,
		dev:     dev,
	}
}

func (m *Morse) Device() *device.Device { return m.dev }
func (m *Morse) ComputesForces() bool   { return true }
func (m *Morse) ComputesStress() bool   { return m.WithStress }
func (m *Morse) MemoryScaling() Scaling { return ScalesWithAtoms }

func (m *Morse) Forward(s *state.SimState) (*Result, error) {
	eps, alpha, sigma := m.Epsilon, m.Alpha, m.Sigma
	return evalPairs(s, m.dev, m.Cutoff, func(r float64) (float64, float64) {
		x := 1 - math.Exp(-alpha*(r-sigma))
		e := eps * x * x
		de := 2 * eps * alpha * x * (1 - x)
		return e, de
	}, m.WithStress)
}
