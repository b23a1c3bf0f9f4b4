package state

import (
	"errors"
	"testing"
)

// twoSystems builds a batch of a 2-atom and a 3-atom system with every
// optional field populated.
func twoSystems() *SimState {
	s := &SimState{
		Positions: []float64{
			0, 0, 0,
			1, 0, 0,
			0, 0, 0,
			0, 1, 0,
			0, 0, 1,
		},
		Masses:   []float64{1, 1, 2, 2, 2},
		Species:  []int{0, 0, 1, 1, 1},
		Segments: []int{0, 0, 1, 1, 1},
		Cell: []float64{
			5, 0, 0, 0, 5, 0, 0, 0, 5,
			8, 0, 0, 0, 8, 0, 0, 0, 8,
		},
		PBC:      true,
		Momenta:  []float64{1, 0, 0, -1, 0, 0, 0, 1, 0, 0, -1, 0, 0, 0, 0},
		Forces:   []float64{0.5, 0, 0, -0.5, 0, 0, 0, 0, 0, 0, 0, 1, 0, 0, -1},
		Energies: []float64{-1.5, -2.5},
	}
	return s
}

func TestValidate(t *testing.T) {
	if err := twoSystems().Validate(); err != nil {
		t.Fatalf("valid batch rejected: %v", err)
	}

	tests := []struct {
		name  string
		mutate func(*SimState)
	}{
		{"positions length", func(s *SimState) { s.Positions = s.Positions[:len(s.Positions)-1] }},
		{"species length", func(s *SimState) { s.Species = s.Species[:2] }},
		{"cell stride", func(s *SimState) { s.Cell = s.Cell[:10] }},
		{"momenta length", func(s *SimState) { s.Momenta = s.Momenta[:3] }},
		{"energies length", func(s *SimState) { s.Energies = []float64{1} }},
		{"segments start", func(s *SimState) { s.Segments = []int{1, 1, 1, 1, 1}; s.Cell = s.Cell[:9] }},
		{"segments gap", func(s *SimState) { s.Segments = []int{0, 0, 2, 2, 2}; s.Cell = append(s.Cell, s.Cell[:9]...) }},
		{"segments decrease", func(s *SimState) { s.Segments = []int{0, 1, 1, 0, 0} }},
		{"unused cell", func(s *SimState) { s.Cell = append(s.Cell, s.Cell[:9]...) }},
		{"extra stride", func(s *SimState) {
			s.Extras = map[string]Extra{"aux": {Data: []float64{1, 2, 3}, Cols: 2}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := twoSystems()
			tt.mutate(s)
			if err := s.Validate(); !errors.Is(err, ErrShape) {
				t.Errorf("expected ErrShape, got %v", err)
			}
		})
	}
}

func TestNewDerivesSegments(t *testing.T) {
	s, err := New(
		[]float64{0, 0, 0, 1, 0, 0},
		[]float64{1, 1},
		[]int{0, 0},
		[]float64{4, 0, 0, 0, 4, 0, 0, 0, 4},
		true,
		nil,
	)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if s.NSystems() != 1 || s.NAtoms() != 2 {
		t.Errorf("expected 1 system of 2 atoms, got %d systems, %d atoms", s.NSystems(), s.NAtoms())
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := twoSystems()
	s.Extras = map[string]Extra{"aux": {Data: []float64{1, 2}, Scope: ScopePerSystem}}

	c := s.Clone()
	c.Positions[0] = 99
	c.Segments[0] = 77
	c.Extras["aux"].Data[0] = 55

	if s.Positions[0] == 99 || s.Segments[0] == 77 {
		t.Error("clone shares per-atom slices with the original")
	}
	if s.Extras["aux"].Data[0] == 55 {
		t.Error("clone shares extras with the original")
	}
}

func TestAtomCounts(t *testing.T) {
	counts := twoSystems().AtomCounts()
	if len(counts) != 2 || counts[0] != 2 || counts[1] != 3 {
		t.Errorf("expected [2 3], got %v", counts)
	}
}
