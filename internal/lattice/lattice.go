// Package lattice builds simple periodic starting structures.
package lattice

import (
	"github.com/Radical-AI/atomsim/internal/state"
)

// Cubic places nx*ny*nz atoms of one species on a simple cubic grid with
// the given spacing, in an orthorhombic periodic cell.
func Cubic(nx, ny, nz int, spacing, mass float64) *state.SimState {
	n := nx * ny * nz
	s := &state.SimState{
		Positions: make([]float64, 0, n*3),
		Masses:    make([]float64, 0, n),
		Species:   make([]int, 0, n),
		Segments:  make([]int, 0, n),
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				s.Positions = append(s.Positions,
					float64(i)*spacing, float64(j)*spacing, float64(k)*spacing)
				s.Masses = append(s.Masses, mass)
				s.Species = append(s.Species, 0)
				s.Segments = append(s.Segments, 0)
			}
		}
	}
	s.Cell = []float64{
		float64(nx) * spacing, 0, 0,
		0, float64(ny) * spacing, 0,
		0, 0, float64(nz) * spacing,
	}
	s.PBC = true
	return s
}

// Perturbed is Cubic with a deterministic off-grid displacement applied to
// every coordinate so the structure starts away from its energy minimum.
func Perturbed(nx, ny, nz int, spacing, mass, amplitude float64) *state.SimState {
	s := Cubic(nx, ny, nz, spacing, mass)
	// Deterministic low-discrepancy jitter keeps runs reproducible without
	// threading a random source through here.
	for i := range s.Positions {
		frac := float64((i*2654435761)%1000)/1000.0 - 0.5
		s.Positions[i] += amplitude * frac
	}
	return s
}
