package state

import "fmt"

// Slice returns a new batch containing only the requested systems, atoms
// reordered to match the index order and segment ids renumbered to the
// slice's local frame. The index may be an int, []int or Span.
func (s *SimState) Slice(index any) (*SimState, error) {
	ids, err := NormalizeIndices(index, s.NSystems())
	if err != nil {
		return nil, err
	}
	return s.gather(ids)
}

// Split unpacks the batch into single-system states. Concatenate of the
// result reproduces the batch.
func (s *SimState) Split() ([]*SimState, error) {
	out := make([]*SimState, s.NSystems())
	for i := range out {
		sub, err := s.gather([]int{i})
		if err != nil {
			return nil, err
		}
		out[i] = sub
	}
	return out, nil
}

// Pop removes the requested systems from the batch, returning the remainder
// as one batch and the removed systems as individual states in the order
// the ids were given. The receiver is not modified.
func (s *SimState) Pop(index any) (*SimState, []*SimState, error) {
	n := s.NSystems()
	ids, err := NormalizeIndices(index, n)
	if err != nil {
		return nil, nil, err
	}

	popped := make([]*SimState, len(ids))
	taken := make(map[int]bool, len(ids))
	for i, id := range ids {
		if taken[id] {
			return nil, nil, fmt.Errorf("%w: system %d popped twice", ErrIndex, id)
		}
		taken[id] = true
		popped[i], err = s.gather([]int{id})
		if err != nil {
			return nil, nil, err
		}
	}

	rest := make([]int, 0, n-len(ids))
	for i := 0; i < n; i++ {
		if !taken[i] {
			rest = append(rest, i)
		}
	}
	remaining, err := s.gather(rest)
	if err != nil {
		return nil, nil, err
	}
	return remaining, popped, nil
}

// gather builds a new batch from the given canonical system ids, copying
// every field according to its inferred scope.
func (s *SimState) gather(ids []int) (*SimState, error) {
	scopes, err := InferPropertyScope(s)
	if err != nil {
		return nil, err
	}
	bounds := s.systemBounds()

	var atomRows []int
	segments := []int{}
	for k, id := range ids {
		for a := bounds[id][0]; a < bounds[id][1]; a++ {
			atomRows = append(atomRows, a)
			segments = append(segments, k)
		}
	}

	out := &SimState{PBC: s.PBC, Segments: segments}
	src := s.columns()
	dst := out.columns()
	for i, c := range src {
		if c.empty() {
			continue
		}
		rows := rowsForScope(scopes[c.name], atomRows, ids, c.rows())
		if c.f != nil {
			*dst[i].f = gatherF(*c.f, c.cols, rows)
		} else {
			*dst[i].i = gatherI(*c.i, rows)
		}
	}

	if s.Extras != nil {
		out.Extras = make(map[string]Extra, len(s.Extras))
		for name, ex := range s.Extras {
			rows := rowsForScope(scopes[name], atomRows, ids, ex.rows())
			out.Extras[name] = Extra{
				Data:  gatherF(ex.Data, ex.cols(), rows),
				Cols:  ex.Cols,
				Scope: ex.Scope,
			}
		}
	}
	return out, nil
}

// rowsForScope picks the source rows a field copies from: atoms of the
// selected systems, the systems themselves, or every row for globals.
func rowsForScope(scope PropertyScope, atomRows, systemRows []int, total int) []int {
	switch scope {
	case ScopePerAtom:
		return atomRows
	case ScopePerSystem:
		return systemRows
	default:
		all := make([]int, total)
		for i := range all {
			all[i] = i
		}
		return all
	}
}

func gatherF(src []float64, cols int, rows []int) []float64 {
	dst := make([]float64, 0, len(rows)*cols)
	for _, r := range rows {
		dst = append(dst, src[r*cols:(r+1)*cols]...)
	}
	return dst
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func gatherI(src []int, rows []int) []int {
	dst := make([]int, 0, len(rows))
	for _, r := range rows {
		dst = append(dst, src[r])
	}
	return dst
}

// Concatenate lays out every input's atoms and systems in input order,
// renumbering segment ids into one contiguous range. Inputs must agree on
// the global PBC flag and on which optional fields are populated.
func Concatenate(states []*SimState) (*SimState, error) {
	if len(states) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrConfiguration)
	}
	first := states[0]
	for i, st := range states {
		if err := st.Validate(); err != nil {
			return nil, fmt.Errorf("input %d: %w", i, err)
		}
		if st.PBC != first.PBC {
			return nil, fmt.Errorf("%w: input %d pbc=%t disagrees with input 0 pbc=%t",
				ErrConfiguration, i, st.PBC, first.PBC)
		}
	}

	out := &SimState{PBC: first.PBC}
	dst := out.columns()
	firstCols := first.columns()

	for ci := range firstCols {
		present := !firstCols[ci].empty()
		for i, st := range states {
			if !st.columns()[ci].empty() != present {
				return nil, fmt.Errorf("%w: field %q set on input 0 but not input %d (or vice versa)",
					ErrShape, firstCols[ci].name, i)
			}
		}
		if !present {
			continue
		}
		for _, st := range states {
			c := st.columns()[ci]
			if dst[ci].f != nil {
				*dst[ci].f = append(*dst[ci].f, *c.f...)
			} else {
				*dst[ci].i = append(*dst[ci].i, *c.i...)
			}
		}
	}

	offset := 0
	for _, st := range states {
		for _, id := range st.Segments {
			out.Segments = append(out.Segments, id+offset)
		}
		offset += st.NSystems()
	}

	if first.Extras != nil {
		out.Extras = make(map[string]Extra, len(first.Extras))
		for name, ex := range first.Extras {
			scope, err := classifyScope(name, ex.rows(), first.NAtoms(), first.NSystems(), ex.Scope)
			if err != nil {
				return nil, err
			}
			merged := Extra{Cols: ex.Cols, Scope: ex.Scope}
			for i, st := range states {
				other, ok := st.Extras[name]
				if !ok {
					return nil, fmt.Errorf("%w: extra %q missing on input %d", ErrShape, name, i)
				}
				if other.cols() != ex.cols() || other.Scope != ex.Scope {
					return nil, fmt.Errorf("%w: extra %q layout disagrees on input %d", ErrConfiguration, name, i)
				}
				if scope == ScopeGlobal {
					// Globals hold one value for the whole batch: every
					// input must carry the same data, kept once.
					if !floatsEqual(other.Data, ex.Data) {
						return nil, fmt.Errorf("%w: global extra %q on input %d disagrees with input 0",
							ErrConfiguration, name, i)
					}
					continue
				}
				merged.Data = append(merged.Data, other.Data...)
			}
			if scope == ScopeGlobal {
				merged.Data = append([]float64(nil), ex.Data...)
			}
			out.Extras[name] = merged
		}
	}
	for i, st := range states {
		for name := range st.Extras {
			if first.Extras == nil {
				return nil, fmt.Errorf("%w: extra %q missing on input 0 but set on input %d", ErrShape, name, i)
			}
			if _, ok := first.Extras[name]; !ok {
				return nil, fmt.Errorf("%w: extra %q missing on input 0 but set on input %d", ErrShape, name, i)
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
