package autobatch

import (
	"errors"
	"fmt"

	"github.com/eapache/queue"

	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// ErrPrecondition reports a hot-swap call that violates the batcher's
// lifecycle contract; it indicates a caller bug, not a recoverable
// condition.
var ErrPrecondition = errors.New("autobatch: precondition violated")

// hotSwapSafety shrinks an auto-estimated budget before the first batch,
// since the estimate comes from a single replicated system.
const hotSwapSafety = 0.8

type pendingSystem struct {
	st     *state.SimState
	ogIdx  int
	metric float64
}

type inFlight struct {
	ogIdx  int
	metric float64
}

// HotSwap keeps a batch full for iterative optimization: converged systems
// leave the batch between update sweeps and queued systems take their
// place, first-available-fits-first. The in-flight bookkeeping order is the
// authoritative order for convergence flags; the batcher never recomputes
// it from the batch state it hands out.
type HotSwap struct {
	model   potential.Model
	kind    potential.Scaling
	ceiling int

	maxMetric float64
	estimated bool

	backlog *queue.Queue
	current []inFlight
	started bool

	completedOrder []int
}

// NewHotSwap queues the given single-system states for processing. The
// budget is estimated from the first system (shrunk by a safety factor)
// when opts.MaxMetric is unset.
func NewHotSwap(model potential.Model, states []*state.SimState, opts Options) (*HotSwap, error) {
	kind := opts.metricKind(model)
	metrics, err := Metrics(states, kind)
	if err != nil {
		return nil, err
	}

	backlog := queue.New()
	for i, s := range states {
		backlog.Add(&pendingSystem{st: s, ogIdx: i, metric: metrics[i]})
	}
	return &HotSwap{
		model:     model,
		kind:      kind,
		ceiling:   opts.atomCeiling(),
		maxMetric: opts.MaxMetric,
		backlog:   backlog,
	}, nil
}

// Start admits systems from the queue up to the budget and returns the
// first batch. It must be called exactly once, before NextBatch.
func (h *HotSwap) Start() (*state.SimState, error) {
	if h.started {
		return nil, fmt.Errorf("%w: Start called twice", ErrPrecondition)
	}
	if h.backlog.Length() == 0 {
		return nil, fmt.Errorf("%w: no systems to batch", state.ErrConfiguration)
	}

	first := h.backlog.Remove().(*pendingSystem)
	if h.maxMetric <= 0 {
		budget, err := EstimateMaxMetric(h.model, []*state.SimState{first.st}, []float64{first.metric}, h.ceiling)
		if err != nil {
			return nil, err
		}
		h.maxMetric = budget * hotSwapSafety
		h.estimated = true
	}
	if first.metric > h.maxMetric {
		return nil, fmt.Errorf(
			"%w: system %d has metric %.1f above max metric %.1f; raise the budget or run smaller systems",
			state.ErrConfiguration, first.ogIdx, first.metric, h.maxMetric)
	}

	h.current = []inFlight{{ogIdx: first.ogIdx, metric: first.metric}}
	admitted, err := h.admit()
	if err != nil {
		return nil, err
	}
	parts := append([]*state.SimState{first.st}, admitted...)

	if h.estimated {
		// The single-system estimate only sized the first batch. Probe
		// again with the whole batch admitted, so the working budget
		// reflects the real spread of system sizes.
		metrics := make([]float64, len(h.current))
		for i, fl := range h.current {
			metrics[i] = fl.metric
		}
		budget, err := EstimateMaxMetric(h.model, parts, metrics, h.ceiling)
		if err != nil {
			return nil, err
		}
		h.maxMetric = budget
	}

	batch, err := state.Concatenate(parts)
	if err != nil {
		return nil, err
	}
	h.started = true
	return batch, nil
}

// NextBatch evicts the systems flagged converged from the updated batch,
// admits queued systems into the freed budget and returns the next batch
// together with the evicted systems, in flag order. A nil batch with the
// final evictions is the terminal signal. converged must hold exactly one
// flag per in-flight system, aligned to the in-flight bookkeeping order.
func (h *HotSwap) NextBatch(updated *state.SimState, converged []bool) (*state.SimState, []*state.SimState, error) {
	if !h.started {
		return nil, nil, fmt.Errorf("%w: NextBatch before Start", ErrPrecondition)
	}
	if updated == nil {
		return nil, nil, fmt.Errorf("%w: nil batch state", ErrPrecondition)
	}
	if len(converged) != len(h.current) {
		return nil, nil, fmt.Errorf("%w: %d convergence flags for %d in-flight systems",
			ErrPrecondition, len(converged), len(h.current))
	}
	if updated.NSystems() != len(h.current) {
		return nil, nil, fmt.Errorf("%w: batch holds %d systems but %d are in flight",
			ErrPrecondition, updated.NSystems(), len(h.current))
	}

	var donePos []int
	for i, ok := range converged {
		if ok {
			donePos = append(donePos, i)
		}
	}

	remaining, popped, err := updated.Pop(donePos)
	if err != nil {
		return nil, nil, err
	}

	keep := h.current[:0]
	for i, fl := range h.current {
		if converged[i] {
			h.completedOrder = append(h.completedOrder, fl.ogIdx)
		} else {
			keep = append(keep, fl)
		}
	}
	h.current = keep

	admitted, err := h.admit()
	if err != nil {
		return nil, nil, err
	}

	if len(h.current) == 0 {
		return nil, popped, nil
	}

	parts := make([]*state.SimState, 0, 1+len(admitted))
	if remaining.NSystems() > 0 {
		parts = append(parts, remaining)
	}
	parts = append(parts, admitted...)
	next, err := state.Concatenate(parts)
	if err != nil {
		return nil, nil, err
	}
	return next, popped, nil
}

// admit moves systems from the backlog into the in-flight set greedily
// until the next one would exceed the free budget; that system stays at
// the front of the queue. A system that can never fit on its own is
// rejected here, before any attempt to batch it.
func (h *HotSwap) admit() ([]*state.SimState, error) {
	inUse := 0.0
	for _, fl := range h.current {
		inUse += fl.metric
	}

	var admitted []*state.SimState
	for h.backlog.Length() > 0 {
		next := h.backlog.Peek().(*pendingSystem)
		if next.metric > h.maxMetric {
			return nil, fmt.Errorf(
				"%w: system %d has metric %.1f above max metric %.1f; raise the budget or run smaller systems",
				state.ErrConfiguration, next.ogIdx, next.metric, h.maxMetric)
		}
		if inUse+next.metric > h.maxMetric {
			break
		}
		h.backlog.Remove()
		h.current = append(h.current, inFlight{ogIdx: next.ogIdx, metric: next.metric})
		admitted = append(admitted, next.st)
		inUse += next.metric
	}
	return admitted, nil
}

// MaxMetric returns the working budget, after any estimation and safety
// shrink.
func (h *HotSwap) MaxMetric() float64 { return h.maxMetric }

// InFlightIndices returns the original-order indices of the systems
// currently in flight, in the bookkeeping order convergence flags must
// follow.
func (h *HotSwap) InFlightIndices() []int {
	out := make([]int, len(h.current))
	for i, fl := range h.current {
		out[i] = fl.ogIdx
	}
	return out
}

// CompletedIndices returns the original-order indices of completed
// systems, in completion order.
func (h *HotSwap) CompletedIndices() []int {
	out := make([]int, len(h.completedOrder))
	copy(out, h.completedOrder)
	return out
}

// RestoreOriginalOrder re-sorts the completed systems collected across the
// whole run back to the caller's input order. Every system must be
// accounted for exactly once.
func (h *HotSwap) RestoreOriginalOrder(completed []*state.SimState) ([]*state.SimState, error) {
	if len(completed) != len(h.completedOrder) {
		return nil, fmt.Errorf(
			"%w: %d completed states do not match %d completed indices",
			state.ErrShape, len(completed), len(h.completedOrder))
	}
	restored := make([]*state.SimState, len(completed))
	for i, ogIdx := range h.completedOrder {
		restored[ogIdx] = completed[i]
	}
	return restored, nil
}
