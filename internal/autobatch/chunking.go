package autobatch

import (
	"fmt"

	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// Options configures a batcher. The zero value asks for the model's
// recommended metric kind, an empirically estimated budget, and the
// default probe ceiling.
type Options struct {
	// Metric overrides the model's recommended scaling kind.
	Metric potential.Scaling
	// MaxMetric is the per-batch budget; zero means estimate it by probing
	// forward passes on the model's device.
	MaxMetric float64
	// AtomCeiling bounds budget-estimation probes; zero means
	// DefaultAtomCeiling.
	AtomCeiling int
}

func (o Options) metricKind(model potential.Model) potential.Scaling {
	if o.Metric != "" {
		return o.Metric
	}
	return model.MemoryScaling()
}

func (o Options) atomCeiling() int {
	if o.AtomCeiling > 0 {
		return o.AtomCeiling
	}
	return DefaultAtomCeiling
}

// Chunking partitions a fixed collection of systems into memory-safe
// batches processed sequentially. Construction computes metrics, fixes the
// budget and bin-packs; NextBatch then walks the bins in order.
type Chunking struct {
	states    []*state.SimState
	metrics   []float64
	maxMetric float64
	indexBins [][]int
	cursor    int
}

// NewChunking prepares batches for the given single-system states. A
// system whose metric exceeds the final budget is a hard error naming the
// system's position in the input, never a silent clamp.
func NewChunking(model potential.Model, states []*state.SimState, opts Options) (*Chunking, error) {
	kind := opts.metricKind(model)
	metrics, err := Metrics(states, kind)
	if err != nil {
		return nil, err
	}

	budget := opts.MaxMetric
	if budget <= 0 {
		budget, err = EstimateMaxMetric(model, states, metrics, opts.atomCeiling())
		if err != nil {
			return nil, err
		}
	}

	for i, m := range metrics {
		if m > budget {
			return nil, fmt.Errorf(
				"%w: system %d has metric %.1f above max metric %.1f; raise the budget or run smaller systems",
				state.ErrConfiguration, i, m, budget)
		}
	}

	return &Chunking{
		states:    states,
		metrics:   metrics,
		maxMetric: budget,
		indexBins: packConstantVolume(metrics, budget),
	}, nil
}

// Metrics returns the per-system metric values, in input order.
func (c *Chunking) Metrics() []float64 { return c.metrics }

// MaxMetric returns the budget every bin respects.
func (c *Chunking) MaxMetric() float64 { return c.maxMetric }

// IndexBins returns the original-order indices of each bin.
func (c *Chunking) IndexBins() [][]int { return c.indexBins }

// NextBatch concatenates the next bin's systems and returns the batch with
// the bin's original-order indices. A nil batch means every bin has been
// handed out.
func (c *Chunking) NextBatch() (*state.SimState, []int, error) {
	if c.cursor >= len(c.indexBins) {
		return nil, nil, nil
	}
	bin := c.indexBins[c.cursor]
	members := make([]*state.SimState, len(bin))
	for i, idx := range bin {
		members[i] = c.states[idx]
	}
	batch, err := state.Concatenate(members)
	if err != nil {
		return nil, nil, err
	}
	c.cursor++
	return batch, bin, nil
}

// RestoreOriginalOrder splits every processed batch back into single
// systems and re-sorts them to the caller's input order. A count mismatch
// with the recorded bins fails loudly; it means a batch gained or lost
// systems while processing.
func (c *Chunking) RestoreOriginalOrder(batches []*state.SimState) ([]*state.SimState, error) {
	var flat []*state.SimState
	for _, b := range batches {
		split, err := b.Split()
		if err != nil {
			return nil, err
		}
		flat = append(flat, split...)
	}

	var order []int
	for _, bin := range c.indexBins {
		order = append(order, bin...)
	}
	if len(flat) != len(order) {
		return nil, fmt.Errorf(
			"%w: %d processed states do not match %d original indices",
			state.ErrShape, len(flat), len(order))
	}

	restored := make([]*state.SimState, len(flat))
	for i, idx := range order {
		restored[idx] = flat[i]
	}
	return restored, nil
}
