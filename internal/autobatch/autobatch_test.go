package autobatch

import (
	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// probeModel reserves a fixed number of device bytes per atom on every
// forward pass, so memory probes see a deterministic, linear footprint.
type probeModel struct {
	dev          *device.Device
	bytesPerAtom int64
}

func (m *probeModel) Forward(s *state.SimState) (*potential.Result, error) {
	n := int64(s.NAtoms()) * m.bytesPerAtom
	if err := m.dev.Reserve(n); err != nil {
		return nil, err
	}
	defer m.dev.Release(n)

	res := &potential.Result{
		Energies: make([]float64, s.NSystems()),
		Forces:   make([]float64, len(s.Positions)),
	}
	return res, nil
}

func (m *probeModel) Device() *device.Device        { return m.dev }
func (m *probeModel) ComputesForces() bool          { return true }
func (m *probeModel) ComputesStress() bool          { return false }
func (m *probeModel) MemoryScaling() potential.Scaling { return potential.ScalesWithAtoms }

// cube builds a single-system state of n atoms in a periodic cube of the
// given side length.
func cube(n int, side float64) *state.SimState {
	s := &state.SimState{
		Positions: make([]float64, n*3),
		Masses:    make([]float64, n),
		Species:   make([]int, n),
		Segments:  make([]int, n),
		Cell: []float64{
			side, 0, 0,
			0, side, 0,
			0, 0, side,
		},
		PBC: true,
	}
	for i := 0; i < n; i++ {
		s.Masses[i] = 1
		s.Positions[i*3] = float64(i) * side / float64(n)
	}
	return s
}
