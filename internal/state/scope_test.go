package state

import (
	"errors"
	"testing"
)

func TestInferPropertyScope(t *testing.T) {
	s := twoSystems()
	s.Extras = map[string]Extra{
		"charges": {Data: make([]float64, 5)},
		"labels":  {Data: make([]float64, 2)},
		"step":    {Data: []float64{42}},
	}

	scopes, err := InferPropertyScope(s)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	want := map[string]PropertyScope{
		"positions": ScopePerAtom,
		"masses":    ScopePerAtom,
		"species":   ScopePerAtom,
		"segments":  ScopePerAtom,
		"momenta":   ScopePerAtom,
		"forces":    ScopePerAtom,
		"cell":      ScopePerSystem,
		"energies":  ScopePerSystem,
		"pbc":       ScopeGlobal,
		"charges":   ScopePerAtom,
		"labels":    ScopePerSystem,
		"step":      ScopeGlobal,
	}
	for name, scope := range want {
		if scopes[name] != scope {
			t.Errorf("%s: got %s, want %s", name, scopes[name], scope)
		}
	}
}

// oneAtomPerSystem makes atom count equal system count, the shape where
// row counting cannot tell per-atom from per-system.
func oneAtomPerSystem() *SimState {
	return &SimState{
		Positions: []float64{0, 0, 0, 1, 0, 0},
		Masses:    []float64{1, 1},
		Species:   []int{0, 0},
		Segments:  []int{0, 1},
		Cell: []float64{
			4, 0, 0, 0, 4, 0, 0, 0, 4,
			4, 0, 0, 0, 4, 0, 0, 0, 4,
		},
		PBC: true,
	}
}

func TestInferScopeAmbiguous(t *testing.T) {
	s := oneAtomPerSystem()

	// Core fields stay unambiguous: their scope is fixed by name.
	scopes, err := InferPropertyScope(s)
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if scopes["masses"] != ScopePerAtom || scopes["cell"] != ScopePerSystem {
		t.Error("core field scopes drifted on ambiguous shape")
	}

	// An unpinned extra with the ambiguous row count must be rejected.
	s.Extras = map[string]Extra{"aux": {Data: []float64{1, 2}}}
	if _, err := InferPropertyScope(s); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape for ambiguous extra, got %v", err)
	}

	// Pinning resolves it.
	s.Extras = map[string]Extra{"aux": {Data: []float64{1, 2}, Scope: ScopePerSystem}}
	scopes, err = InferPropertyScope(s)
	if err != nil {
		t.Fatalf("infer with pinned extra: %v", err)
	}
	if scopes["aux"] != ScopePerSystem {
		t.Errorf("pinned scope ignored: %s", scopes["aux"])
	}
}

func TestAmbiguousShapeStillSlices(t *testing.T) {
	s := oneAtomPerSystem()
	s.Extras = map[string]Extra{"aux": {Data: []float64{10, 20}, Scope: ScopePerSystem}}

	got, err := s.Slice(1)
	if err != nil {
		t.Fatalf("slice: %v", err)
	}
	if got.NAtoms() != 1 || got.NSystems() != 1 {
		t.Errorf("expected single atom and system, got %d, %d", got.NAtoms(), got.NSystems())
	}
	if got.Extras["aux"].Data[0] != 20 {
		t.Errorf("pinned extra not gathered per system: %v", got.Extras["aux"].Data)
	}
}
