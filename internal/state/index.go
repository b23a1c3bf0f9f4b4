package state

import (
	"fmt"
	"math"
)

// Auto marks a Span bound as unset, leaving it to the span's step direction.
const Auto = math.MinInt

// Span selects a range of systems with Python-slice semantics: negative
// bounds count from the end, out-of-range bounds clamp, and Step may be
// negative. Use Auto for open bounds.
type Span struct {
	Start, Stop, Step int
}

// SpanAll selects every system.
func SpanAll() Span { return Span{Auto, Auto, Auto} }

// NewSpan selects the half-open range [start, stop) with unit step.
func NewSpan(start, stop int) Span { return Span{start, stop, Auto} }

// SpanFrom selects all systems from start to the end of the batch.
func SpanFrom(start int) Span { return Span{start, Auto, Auto} }

// By returns a copy of the span with the given step.
func (sp Span) By(step int) Span {
	sp.Step = step
	return sp
}

// NormalizeIndices converts any supported index expression over a batch of
// n systems into a canonical list of non-negative system ids. Supported
// kinds are int, []int and Span; anything else fails with ErrIndexType.
func NormalizeIndices(index any, n int) ([]int, error) {
	switch v := index.(type) {
	case int:
		id, err := wrapIndex(v, n)
		if err != nil {
			return nil, err
		}
		return []int{id}, nil
	case []int:
		ids := make([]int, len(v))
		for i, raw := range v {
			id, err := wrapIndex(raw, n)
			if err != nil {
				return nil, err
			}
			ids[i] = id
		}
		return ids, nil
	case Span:
		return v.indices(n)
	default:
		return nil, fmt.Errorf("%w: %T", ErrIndexType, index)
	}
}

func wrapIndex(i, n int) (int, error) {
	id := i
	if id < 0 {
		id += n
	}
	if id < 0 || id >= n {
		return 0, fmt.Errorf("%w: %d not in [-%d, %d)", ErrIndex, i, n, n)
	}
	return id, nil
}

func (sp Span) indices(n int) ([]int, error) {
	step := sp.Step
	if step == Auto {
		step = 1
	}
	if step == 0 {
		return nil, fmt.Errorf("%w: span step cannot be zero", ErrIndex)
	}

	var start, stop int
	if step > 0 {
		start = spanBound(sp.Start, n, 0, n, 0)
		stop = spanBound(sp.Stop, n, 0, n, n)
		ids := []int{}
		for i := start; i < stop; i += step {
			ids = append(ids, i)
		}
		return ids, nil
	}
	start = spanBound(sp.Start, n, -1, n-1, n-1)
	stop = spanBound(sp.Stop, n, -1, n-1, -1)
	ids := []int{}
	for i := start; i > stop; i += step {
		ids = append(ids, i)
	}
	return ids, nil
}

// spanBound resolves one span bound: Auto becomes def, negative values wrap
// once, and the result clamps to [lo, hi].
func spanBound(v, n, lo, hi, def int) int {
	if v == Auto {
		return def
	}
	if v < 0 {
		v += n
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
