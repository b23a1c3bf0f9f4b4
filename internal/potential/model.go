// Package potential defines the contract every interatomic potential
// satisfies, and ships two classical pair potentials. The rest of the
// engine drives models only through this contract and never branches on a
// concrete potential type.
package potential

import (
	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/state"
)

// Scaling names the metric a model recommends for estimating the memory
// cost of a forward pass over a batch.
type Scaling string

const (
	// ScalesWithAtoms estimates cost from the atom count alone.
	ScalesWithAtoms Scaling = "n_atoms"
	// ScalesWithAtomsDensity estimates cost from atom count times number
	// density, which tracks pair-interaction workloads better in dense
	// periodic systems.
	ScalesWithAtomsDensity Scaling = "n_atoms_x_density"
)

// Result holds one forward evaluation over a batch: per-system energies,
// and optionally per-atom forces (xyz triplets) and per-system 3x3 virial
// stresses, depending on the model's declared capabilities.
type Result struct {
	Energies []float64
	Forces   []float64
	Stress   []float64
}

// Model is the sole boundary between the engine and any concrete
// potential, classical or learned.
type Model interface {
	// Forward evaluates the potential over the batch. An out-of-memory
	// condition on the model's device surfaces as device.ErrOutOfMemory
	// and must propagate unmodified.
	Forward(s *state.SimState) (*Result, error)

	Device() *device.Device
	ComputesForces() bool
	ComputesStress() bool

	// MemoryScaling hints which metric autobatchers should use by default.
	MemoryScaling() Scaling
}
