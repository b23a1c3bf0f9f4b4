package lattice

import (
	"testing"
)

func TestCubic(t *testing.T) {
	s := Cubic(2, 3, 4, 1.5, 2.0)

	if s.NAtoms() != 24 {
		t.Errorf("expected 24 atoms, got %d", s.NAtoms())
	}
	if s.NSystems() != 1 {
		t.Errorf("expected one system, got %d", s.NSystems())
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("invalid lattice: %v", err)
	}
	if !s.PBC {
		t.Error("expected periodic boundaries")
	}
	if s.Cell[0] != 3.0 || s.Cell[4] != 4.5 || s.Cell[8] != 6.0 {
		t.Errorf("unexpected cell diagonal: %g %g %g", s.Cell[0], s.Cell[4], s.Cell[8])
	}
	for _, m := range s.Masses {
		if m != 2.0 {
			t.Fatalf("expected uniform mass 2.0, got %g", m)
		}
	}
}

func TestPerturbedIsDeterministic(t *testing.T) {
	a := Perturbed(2, 2, 2, 1.1, 1.0, 0.1)
	b := Perturbed(2, 2, 2, 1.1, 1.0, 0.1)

	if err := a.Validate(); err != nil {
		t.Fatalf("invalid lattice: %v", err)
	}
	moved := false
	for i := range a.Positions {
		if a.Positions[i] != b.Positions[i] {
			t.Fatal("perturbation is not deterministic")
		}
		c := Cubic(2, 2, 2, 1.1, 1.0)
		if a.Positions[i] != c.Positions[i] {
			moved = true
		}
	}
	if !moved {
		t.Error("perturbation did not move any atom")
	}
}
