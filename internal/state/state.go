package state

import "fmt"

const (
	vecStride  = 3
	cellStride = 9
)

// SimState packs N independent atomistic systems into one batch.
//
// Per-atom slices (Positions, Masses, Species, Segments and the optional
// Momenta and Forces) are parallel and atom-major; Positions, Momenta and
// Forces hold xyz triplets. Per-system slices hold one row per system: Cell
// is a 3x3 row-major lattice matrix, Energies a scalar, Stress a 3x3
// row-major tensor. Segments assigns every atom the id of its system;
// ids are contiguous 0..N-1 and non-decreasing.
//
// PBC is global to the batch: Concatenate refuses inputs that disagree.
type SimState struct {
	Positions []float64
	Masses    []float64
	Species   []int
	Cell      []float64
	PBC       bool
	Segments  []int

	Momenta  []float64
	Forces   []float64
	Energies []float64
	Stress   []float64

	// Extras carries named auxiliary properties, typically per-system
	// bookkeeping owned by an optimizer. They follow the batch through
	// every slice, concatenate, split and pop.
	Extras map[string]Extra
}

// Extra is an auxiliary batch property. Cols is the number of components
// per row (defaults to 1). Scope may pin the property to a scope when the
// row count alone is ambiguous; leave it ScopeAuto otherwise.
type Extra struct {
	Data  []float64
	Cols  int
	Scope PropertyScope
}

func (e Extra) cols() int {
	if e.Cols <= 0 {
		return 1
	}
	return e.Cols
}

func (e Extra) rows() int {
	return len(e.Data) / e.cols()
}

// New builds a validated batch from raw field slices. Segments may be nil
// for a single-system state; it is then derived as all zeros.
func New(positions, masses []float64, species []int, cell []float64, pbc bool, segments []int) (*SimState, error) {
	if segments == nil {
		segments = make([]int, len(masses))
	}
	s := &SimState{
		Positions: positions,
		Masses:    masses,
		Species:   species,
		Cell:      cell,
		PBC:       pbc,
		Segments:  segments,
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NAtoms returns the total atom count across all systems in the batch.
func (s *SimState) NAtoms() int { return len(s.Masses) }

// NSystems returns the number of independent systems in the batch.
func (s *SimState) NSystems() int { return len(s.Cell) / cellStride }

// Validate checks every batch invariant: parallel per-atom lengths, stride
// divisibility, one cell per segment id, and contiguous non-decreasing
// segment ids starting at zero.
func (s *SimState) Validate() error {
	n := s.NAtoms()
	if len(s.Positions) != n*vecStride {
		return fmt.Errorf("%w: %d positions for %d atoms", ErrShape, len(s.Positions), n)
	}
	if len(s.Species) != n {
		return fmt.Errorf("%w: %d species for %d atoms", ErrShape, len(s.Species), n)
	}
	if len(s.Segments) != n {
		return fmt.Errorf("%w: %d segment ids for %d atoms", ErrShape, len(s.Segments), n)
	}
	if len(s.Cell)%cellStride != 0 {
		return fmt.Errorf("%w: cell length %d is not a multiple of 9", ErrShape, len(s.Cell))
	}
	if s.Momenta != nil && len(s.Momenta) != n*vecStride {
		return fmt.Errorf("%w: %d momenta components for %d atoms", ErrShape, len(s.Momenta), n)
	}
	if s.Forces != nil && len(s.Forces) != n*vecStride {
		return fmt.Errorf("%w: %d force components for %d atoms", ErrShape, len(s.Forces), n)
	}

	nSys := s.NSystems()
	if s.Energies != nil && len(s.Energies) != nSys {
		return fmt.Errorf("%w: %d energies for %d systems", ErrShape, len(s.Energies), nSys)
	}
	if s.Stress != nil && len(s.Stress) != nSys*cellStride {
		return fmt.Errorf("%w: %d stress components for %d systems", ErrShape, len(s.Stress), nSys)
	}

	if n > 0 && s.Segments[0] != 0 {
		return fmt.Errorf("%w: segment ids must start at 0, got %d", ErrShape, s.Segments[0])
	}
	prev := 0
	for i, id := range s.Segments {
		if id < 0 || id >= nSys {
			return fmt.Errorf("%w: atom %d assigned to system %d of %d", ErrShape, i, id, nSys)
		}
		if id < prev || id > prev+1 {
			return fmt.Errorf("%w: segment ids must be non-decreasing and contiguous, got %d after %d", ErrShape, id, prev)
		}
		prev = id
	}
	if n > 0 && prev != nSys-1 {
		return fmt.Errorf("%w: %d cells but segment ids end at %d", ErrShape, nSys, prev)
	}
	if n == 0 && nSys != 0 {
		return fmt.Errorf("%w: %d cells with no atoms", ErrShape, nSys)
	}

	for name, ex := range s.Extras {
		if len(ex.Data)%ex.cols() != 0 {
			return fmt.Errorf("%w: extra %q length %d is not a multiple of %d", ErrShape, name, len(ex.Data), ex.cols())
		}
	}
	return nil
}

// Clone returns a deep copy of the batch.
func (s *SimState) Clone() *SimState {
	c := &SimState{
		Positions: cloneF(s.Positions),
		Masses:    cloneF(s.Masses),
		Species:   cloneI(s.Species),
		Cell:      cloneF(s.Cell),
		PBC:       s.PBC,
		Segments:  cloneI(s.Segments),
		Momenta:   cloneF(s.Momenta),
		Forces:    cloneF(s.Forces),
		Energies:  cloneF(s.Energies),
		Stress:    cloneF(s.Stress),
	}
	if s.Extras != nil {
		c.Extras = make(map[string]Extra, len(s.Extras))
		for name, ex := range s.Extras {
			c.Extras[name] = Extra{Data: cloneF(ex.Data), Cols: ex.Cols, Scope: ex.Scope}
		}
	}
	return c
}

// AtomCounts returns the number of atoms in each system.
func (s *SimState) AtomCounts() []int {
	counts := make([]int, s.NSystems())
	for _, id := range s.Segments {
		counts[id]++
	}
	return counts
}

// systemBounds returns the half-open atom range [start, end) of each system.
// Atoms of one system are contiguous because segment ids are non-decreasing.
func (s *SimState) systemBounds() [][2]int {
	bounds := make([][2]int, s.NSystems())
	counts := s.AtomCounts()
	start := 0
	for i, c := range counts {
		bounds[i] = [2]int{start, start + c}
		start += c
	}
	return bounds
}

func cloneF(src []float64) []float64 {
	if src == nil {
		return nil
	}
	dst := make([]float64, len(src))
	copy(dst, src)
	return dst
}

func cloneI(src []int) []int {
	if src == nil {
		return nil
	}
	dst := make([]int, len(src))
	copy(dst, src)
	return dst
}

// column is one named batch field, used by the generic slice, concatenate
// and scope-inference code. Exactly one of f and i is set.
type column struct {
	name string
	f    *[]float64
	i    *[]int
	cols int
}

func (c column) rows() int {
	if c.f != nil {
		return len(*c.f) / c.cols
	}
	return len(*c.i) / c.cols
}

func (c column) empty() bool {
	if c.f != nil {
		return *c.f == nil
	}
	return *c.i == nil
}

// columns enumerates the batch fields in a fixed order shared by every
// instance, so source and destination registries stay aligned.
func (s *SimState) columns() []column {
	return []column{
		{"positions", &s.Positions, nil, vecStride},
		{"masses", &s.Masses, nil, 1},
		{"species", nil, &s.Species, 1},
		{"cell", &s.Cell, nil, cellStride},
		{"momenta", &s.Momenta, nil, vecStride},
		{"forces", &s.Forces, nil, vecStride},
		{"energies", &s.Energies, nil, 1},
		{"stress", &s.Stress, nil, cellStride},
	}
}
