package optimize

import (
	"math"

	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// Extra property names for FIRE's per-system adaptive parameters. Scopes
// are pinned per-system so the properties stay unambiguous even when a
// batch has one atom per system.
const (
	extraFireDt    = "fire_dt"
	extraFireAlpha = "fire_alpha"
	extraFireNPos  = "fire_n_pos"
)

// Fire is the fast inertial relaxation engine. Each system carries its own
// timestep, velocity-mixing strength and steps-since-uphill counter; the
// parameters adapt independently per system, which is what lets converged
// systems leave a batch without disturbing the rest.
type Fire struct {
	DtStart  float64
	DtMax    float64
	AlphaMin float64
	NMin     int

	fInc   float64
	fDec   float64
	fAlpha float64

	model potential.Model
}

func NewFire(model potential.Model, dtStart float64) *Fire {
	return &Fire{
		DtStart:  dtStart,
		DtMax:    dtStart * 10,
		AlphaMin: 0.1,
		NMin:     5,
		fInc:     1.1,
		fDec:     0.5,
		fAlpha:   0.99,
		model:    model,
	}
}

// Init evaluates forces, zeroes velocities and installs the per-system
// adaptive parameters as batch extras.
func (f *Fire) Init(s *state.SimState) error {
	if err := refreshForces(f.model, s); err != nil {
		return err
	}
	s.Momenta = make([]float64, len(s.Positions))

	nSys := s.NSystems()
	dt := make([]float64, nSys)
	alpha := make([]float64, nSys)
	for i := 0; i < nSys; i++ {
		dt[i] = f.DtStart
		alpha[i] = f.AlphaMin
	}
	if s.Extras == nil {
		s.Extras = make(map[string]state.Extra, 3)
	}
	s.Extras[extraFireDt] = state.Extra{Data: dt, Scope: state.ScopePerSystem}
	s.Extras[extraFireAlpha] = state.Extra{Data: alpha, Scope: state.ScopePerSystem}
	s.Extras[extraFireNPos] = state.Extra{Data: make([]float64, nSys), Scope: state.ScopePerSystem}
	return nil
}

func (f *Fire) Step(s *state.SimState) error {
	dt := s.Extras[extraFireDt].Data
	alpha := s.Extras[extraFireAlpha].Data
	nPos := s.Extras[extraFireNPos].Data

	// momentum kick from current forces, per system timestep
	for a, id := range s.Segments {
		for c := 0; c < 3; c++ {
			s.Momenta[a*3+c] += dt[id] * s.Forces[a*3+c]
		}
	}

	nSys := s.NSystems()
	power := make([]float64, nSys)
	vNorm2 := make([]float64, nSys)
	fNorm2 := make([]float64, nSys)
	for a, id := range s.Segments {
		for c := 0; c < 3; c++ {
			v := s.Momenta[a*3+c] / s.Masses[a]
			fc := s.Forces[a*3+c]
			power[id] += fc * v
			vNorm2[id] += v * v
			fNorm2[id] += fc * fc
		}
	}

	for id := 0; id < nSys; id++ {
		if power[id] > 0 {
			nPos[id]++
			if int(nPos[id]) > f.NMin {
				dt[id] = math.Min(dt[id]*f.fInc, f.DtMax)
				alpha[id] *= f.fAlpha
			}
		} else {
			nPos[id] = 0
			dt[id] *= f.fDec
			alpha[id] = f.AlphaMin
		}
	}

	// mix velocities toward the force direction where the system moves
	// downhill, reset them where it moves uphill
	for a, id := range s.Segments {
		if power[id] > 0 {
			scale := 0.0
			if fNorm2[id] > 0 {
				scale = math.Sqrt(vNorm2[id] / fNorm2[id])
			}
			for c := 0; c < 3; c++ {
				s.Momenta[a*3+c] = (1-alpha[id])*s.Momenta[a*3+c] +
					alpha[id]*scale*s.Masses[a]*s.Forces[a*3+c]
			}
		} else {
			for c := 0; c < 3; c++ {
				s.Momenta[a*3+c] = 0
			}
		}
	}

	for a, id := range s.Segments {
		for c := 0; c < 3; c++ {
			s.Positions[a*3+c] += dt[id] * s.Momenta[a*3+c] / s.Masses[a]
		}
	}
	if err := s.WrapPositions(); err != nil {
		return err
	}
	return refreshForces(f.model, s)
}
