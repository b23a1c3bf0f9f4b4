package state

import "fmt"

// PropertyScope classifies how a batch property relates to the systems in
// the batch, and therefore how slicing and concatenation must treat it.
type PropertyScope int

const (
	// ScopeAuto asks for structural inference from the row count.
	ScopeAuto PropertyScope = iota
	// ScopeGlobal properties hold one value for the whole batch.
	ScopeGlobal
	// ScopePerAtom properties hold one row per atom.
	ScopePerAtom
	// ScopePerSystem properties hold one row per system.
	ScopePerSystem
)

func (p PropertyScope) String() string {
	switch p {
	case ScopeGlobal:
		return "global"
	case ScopePerAtom:
		return "per_atom"
	case ScopePerSystem:
		return "per_system"
	default:
		return "auto"
	}
}

// Core fields carry a fixed scope regardless of shape, so classification
// stays unambiguous when the batch has exactly one atom per system.
var (
	perAtomNames = map[string]bool{
		"positions": true,
		"masses":    true,
		"species":   true,
		"segments":  true,
		"momenta":   true,
		"forces":    true,
	}
	perSystemNames = map[string]bool{
		"cell":     true,
		"energies": true,
		"stress":   true,
	}
)

// InferPropertyScope classifies every populated field of the batch,
// including extras, as global, per-atom or per-system. Extras with an
// ambiguous row count (atom count equal to system count) must pin their
// scope explicitly; inference fails otherwise.
func InferPropertyScope(s *SimState) (map[string]PropertyScope, error) {
	scopes := map[string]PropertyScope{
		"pbc":      ScopeGlobal,
		"segments": ScopePerAtom,
	}
	nAtoms, nSystems := s.NAtoms(), s.NSystems()

	for _, c := range s.columns() {
		if c.empty() {
			continue
		}
		scope, err := classifyScope(c.name, c.rows(), nAtoms, nSystems, ScopeAuto)
		if err != nil {
			return nil, err
		}
		scopes[c.name] = scope
	}
	for name, ex := range s.Extras {
		scope, err := classifyScope(name, ex.rows(), nAtoms, nSystems, ex.Scope)
		if err != nil {
			return nil, err
		}
		scopes[name] = scope
	}
	return scopes, nil
}

func classifyScope(name string, rows, nAtoms, nSystems int, pinned PropertyScope) (PropertyScope, error) {
	if pinned != ScopeAuto {
		return pinned, nil
	}
	if perAtomNames[name] {
		return ScopePerAtom, nil
	}
	if perSystemNames[name] {
		return ScopePerSystem, nil
	}
	switch {
	case rows == nAtoms && nAtoms != nSystems:
		return ScopePerAtom, nil
	case rows == nSystems && nAtoms != nSystems:
		return ScopePerSystem, nil
	case rows == nAtoms && nAtoms == nSystems:
		return ScopeAuto, fmt.Errorf(
			"%w: cannot infer scope of %q with %d atoms and %d systems, pin Extra.Scope",
			ErrShape, name, nAtoms, nSystems)
	default:
		return ScopeGlobal, nil
	}
}
