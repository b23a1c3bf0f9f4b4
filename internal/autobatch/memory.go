package autobatch

import (
	"errors"
	"fmt"
	"log"

	"github.com/dustin/go-humanize"

	"github.com/Radical-AI/atomsim/internal/device"
	"github.com/Radical-AI/atomsim/internal/potential"
	"github.com/Radical-AI/atomsim/internal/state"
)

// DefaultAtomCeiling bounds how many atoms a memory probe will ever try.
const DefaultAtomCeiling = 500_000

// MeasureForward measures the peak device memory in gigabytes consumed by
// one forward evaluation of model over s. The device's allocator state is
// cleared before the pass so earlier calls cannot contaminate the reading.
// An out-of-memory pass returns device.ErrOutOfMemory unmodified.
func MeasureForward(model potential.Model, s *state.SimState) (float64, error) {
	dev := model.Device()
	dev.Synchronize()
	dev.EmptyCache()
	dev.ResetPeakStats()

	if _, err := model.Forward(s); err != nil {
		return 0, err
	}
	return float64(dev.PeakAllocated()) / (1 << 30), nil
}

// DetermineMaxBatchSize finds the largest number of copies of single that
// fit on the model's device, probing batch sizes along the Fibonacci
// sequence up to atomCeiling atoms. The first out-of-memory probe ends the
// search and the second-to-last successful size is returned, keeping a
// margin below the exact boundary. Fibonacci keeps the number of expensive
// probes logarithmic without assuming memory grows perfectly linearly.
func DetermineMaxBatchSize(model potential.Model, single *state.SimState, atomCeiling int) (int, error) {
	if atomCeiling <= 0 {
		atomCeiling = DefaultAtomCeiling
	}
	fib := []int{1, 2}
	for fib[len(fib)-1] < atomCeiling {
		fib = append(fib, fib[len(fib)-1]+fib[len(fib)-2])
	}

	for i, n := range fib {
		replicas := make([]*state.SimState, n)
		for k := range replicas {
			replicas[k] = single
		}
		batch, err := state.Concatenate(replicas)
		if err != nil {
			return 0, err
		}

		if _, err := MeasureForward(model, batch); err != nil {
			if !errors.Is(err, device.ErrOutOfMemory) {
				return 0, err
			}
			if i < 2 {
				return 0, fmt.Errorf(
					"%w: a batch of %d copies of a %d-atom system does not fit on %s",
					state.ErrConfiguration, n, single.NAtoms(), model.Device().Name())
			}
			return fib[i-2], nil
		}
	}
	return fib[len(fib)-2], nil
}

// EstimateMaxMetric computes a conservative global metric budget by probing
// the smallest and largest systems independently and keeping the smaller of
// the two implied budgets. The dual probe guards against the estimate being
// wrong in either direction.
func EstimateMaxMetric(model potential.Model, states []*state.SimState, metrics []float64, atomCeiling int) (float64, error) {
	if len(states) == 0 || len(states) != len(metrics) {
		return 0, fmt.Errorf("%w: %d states with %d metrics", state.ErrShape, len(states), len(metrics))
	}

	minIdx, maxIdx := 0, 0
	for i, m := range metrics {
		if m < metrics[minIdx] {
			minIdx = i
		}
		if m > metrics[maxIdx] {
			maxIdx = i
		}
	}

	minBatches, err := DetermineMaxBatchSize(model, states[minIdx], atomCeiling)
	if err != nil {
		return 0, err
	}
	maxBatches, err := DetermineMaxBatchSize(model, states[maxIdx], atomCeiling)
	if err != nil {
		return 0, err
	}

	budget := float64(minBatches) * metrics[minIdx]
	if alt := float64(maxBatches) * metrics[maxIdx]; alt < budget {
		budget = alt
	}
	log.Printf("autobatch: estimated max metric %.1f on %s (%s)",
		budget, model.Device().Name(), humanize.IBytes(uint64(model.Device().Capacity())))
	return budget, nil
}
