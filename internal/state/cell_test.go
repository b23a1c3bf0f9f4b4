package state

import (
	"errors"
	"math"
	"testing"
)

func TestVolumes(t *testing.T) {
	s := twoSystems()
	vols := s.Volumes()
	if math.Abs(vols[0]-125) > 1e-9 || math.Abs(vols[1]-512) > 1e-9 {
		t.Errorf("expected volumes [125 512], got %v", vols)
	}
}

func TestVolumesTriclinic(t *testing.T) {
	s := &SimState{
		Positions: []float64{0, 0, 0},
		Masses:    []float64{1},
		Species:   []int{0},
		Segments:  []int{0},
		Cell: []float64{
			2, 0, 0,
			1, 2, 0,
			0, 1, 2,
		},
		PBC: true,
	}
	if v := s.Volumes()[0]; math.Abs(v-8) > 1e-9 {
		t.Errorf("expected volume 8, got %g", v)
	}
}

func TestWrapPositions(t *testing.T) {
	s := twoSystems()
	s.Positions[0] = 7.5  // 2.5 after wrapping into the 5-cell
	s.Positions[3] = -1.0 // 4.0 after wrapping

	if err := s.WrapPositions(); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if math.Abs(s.Positions[0]-2.5) > 1e-9 {
		t.Errorf("expected 2.5, got %g", s.Positions[0])
	}
	if math.Abs(s.Positions[3]-4.0) > 1e-9 {
		t.Errorf("expected 4.0, got %g", s.Positions[3])
	}
}

func TestWrapPositionsNoPBC(t *testing.T) {
	s := twoSystems()
	s.PBC = false
	s.Positions[0] = 9.0
	if err := s.WrapPositions(); err != nil {
		t.Fatalf("wrap: %v", err)
	}
	if s.Positions[0] != 9.0 {
		t.Error("non-periodic batch was wrapped")
	}
}

func TestWrapPositionsSingularCell(t *testing.T) {
	s := twoSystems()
	for i := 0; i < 9; i++ {
		s.Cell[i] = 0
	}
	if err := s.WrapPositions(); !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}
