package potential

import (
	"math"

	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/state"
)

// LennardJones is the 12-6 pair potential
//
//	V(r) = 4*epsilon * ((sigma/r)^12 - (sigma/r)^6)
//
// evaluated over all pairs within each system of a batch, truncated at
// Cutoff.
type LennardJones struct {
	Sigma   float64
	Epsilon float64
	Cutoff  float64

	// WithStress enables the per-system virial stress tensor.
	WithStress bool

	dev *device.Device
}

// NewLennardJones creates the model on dev with a cutoff of 2.5*sigma.
func NewLennardJones(sigma, epsilon float64, dev *device.Device) *LennardJones {
	return &LennardJones{
		Sigma:   sigma,
		Epsilon: epsilon,
		Cutoff:  2.5 * sigma,
		dev:     dev,
	}
}

func (lj *LennardJones) Device() *device.Device  { return lj.dev }
func (lj *LennardJones) ComputesForces() bool    { return true }
func (lj *LennardJones) ComputesStress() bool    { return lj.WithStress }
func (lj *LennardJones) MemoryScaling() Scaling  { return ScalesWithAtomsDensity }

func (lj *LennardJones) Forward(s *state.SimState) (*Result, error) {
	sigma6 := math.Pow(lj.Sigma, 6)
	sigma12 := sigma6 * sigma6
	eps := lj.Epsilon
	return evalPairs(s, lj.dev, lj.Cutoff, func(r float64) (float64, float64) {
		inv6 := sigma6 / math.Pow(r, 6)
		inv12 := sigma12 / math.Pow(r, 12)
		e := 4 * eps * (inv12 - inv6)
		de := 24 * eps * (inv6 - 2*inv12) / r
		return e, de
	}, lj.WithStress)
}
