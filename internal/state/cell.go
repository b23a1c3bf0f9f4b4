package state

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CellMatrix returns system i's 3x3 lattice matrix; rows are lattice
// vectors.
func (s *SimState) CellMatrix(i int) *mat.Dense {
	return mat.NewDense(3, 3, cloneF(s.Cell[i*cellStride:(i+1)*cellStride]))
}

// Volumes returns the absolute cell volume of each system.
func (s *SimState) Volumes() []float64 {
	out := make([]float64, s.NSystems())
	for i := range out {
		out[i] = math.Abs(mat.Det(s.CellMatrix(i)))
	}
	return out
}

// WrapPositions maps every atom back into its system's cell by wrapping
// fractional coordinates into [0, 1). No-op for non-periodic batches.
func (s *SimState) WrapPositions() error {
	if !s.PBC {
		return nil
	}
	n := s.NSystems()
	inverses := make([]*mat.Dense, n)
	cells := make([]*mat.Dense, n)
	for i := 0; i < n; i++ {
		cells[i] = s.CellMatrix(i)
		var inv mat.Dense
		if err := inv.Inverse(cells[i]); err != nil {
			return fmt.Errorf("%w: singular cell for system %d", ErrConfiguration, i)
		}
		inverses[i] = &inv
	}

	for a, id := range s.Segments {
		r := mat.NewVecDense(3, s.Positions[a*vecStride:(a+1)*vecStride])
		var frac mat.VecDense
		frac.MulVec(inverses[id].T(), r)
		for c := 0; c < 3; c++ {
			frac.SetVec(c, frac.AtVec(c)-math.Floor(frac.AtVec(c)))
		}
		var wrapped mat.VecDense
		wrapped.MulVec(cells[id].T(), &frac)
		for c := 0; c < 3; c++ {
			s.Positions[a*vecStride+c] = wrapped.AtVec(c)
		}
	}
	return nil
}
