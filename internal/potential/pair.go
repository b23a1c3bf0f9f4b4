package potential

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/state"
)

// pairFunc evaluates one pair interaction: energy and dE/dr at distance r.
type pairFunc func(r float64) (e, de float64)

// pairScratchBytes is the per-pair workspace a dense all-pairs evaluation
// needs: displacement triplet plus distance, in float64.
const pairScratchBytes = 32

// evalPairs runs a dense all-pairs evaluation of pf within each system of
// the batch, reserving the quadratic scratch workspace on dev for the
// duration of the pass. Periodic batches use the minimum-image convention
// in the general (triclinic) cell.
func evalPairs(s *state.SimState, dev *device.Device, cutoff float64, pf pairFunc, wantStress bool) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	counts := s.AtomCounts()
	var scratch int64
	for _, c := range counts {
		scratch += int64(c) * int64(c) * pairScratchBytes
	}
	if err := dev.Reserve(scratch); err != nil {
		return nil, err
	}
	defer dev.Release(scratch)

	nSys := s.NSystems()
	res := &Result{
		Energies: make([]float64, nSys),
		Forces:   make([]float64, len(s.Positions)),
	}
	if wantStress {
		res.Stress = make([]float64, nSys*9)
	}
	volumes := s.Volumes()

	start := 0
	for sys := 0; sys < nSys; sys++ {
		end := start + counts[sys]

		var cell, inv *mat.Dense
		if s.PBC {
			cell = s.CellMatrix(sys)
			inv = &mat.Dense{}
			if err := inv.Inverse(cell); err != nil {
				return nil, fmt.Errorf("%w: singular cell for system %d", state.ErrConfiguration, sys)
			}
		}

		for i := start; i < end; i++ {
			for j := i + 1; j < end; j++ {
				var d [3]float64
				for c := 0; c < 3; c++ {
					d[c] = s.Positions[j*3+c] - s.Positions[i*3+c]
				}
				if s.PBC {
					d = minimumImage(d, cell, inv)
				}
				r := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
				if r == 0 || r >= cutoff {
					continue
				}

				e, de := pf(r)
				res.Energies[sys] += e

				// force on atom j along the pair axis; equal and opposite on i
				for c := 0; c < 3; c++ {
					fj := -de * d[c] / r
					res.Forces[j*3+c] += fj
					res.Forces[i*3+c] -= fj
				}
				if wantStress {
					for a := 0; a < 3; a++ {
						for b := 0; b < 3; b++ {
							res.Stress[sys*9+a*3+b] += d[a] * (-de * d[b] / r)
						}
					}
				}
			}
		}

		if wantStress {
			v := volumes[sys]
			if v == 0 {
				v = 1
			}
			for k := 0; k < 9; k++ {
				res.Stress[sys*9+k] /= -v
			}
		}
		start = end
	}
	return res, nil
}

// minimumImage maps the displacement d into the nearest periodic image of
// the cell whose rows are lattice vectors; inv is the cell's inverse.
func minimumImage(d [3]float64, cell, inv *mat.Dense) [3]float64 {
	var frac [3]float64
	for c := 0; c < 3; c++ {
		frac[c] = inv.At(0, c)*d[0] + inv.At(1, c)*d[1] + inv.At(2, c)*d[2]
		frac[c] -= math.Round(frac[c])
	}
	var out [3]float64
	for c := 0; c < 3; c++ {
		out[c] = cell.At(0, c)*frac[0] + cell.At(1, c)*frac[1] + cell.At(2, c)*frac[2]
	}
	return out
}
