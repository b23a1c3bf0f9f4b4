package autobatch

import "sort"

// packConstantVolume assigns each metric's index to a bin such that no
// bin's total exceeds budget, using first-fit decreasing. Bin count is not
// optimal, only valid: every index lands in exactly one bin. Callers must
// have rejected metrics above the budget already.
func packConstantVolume(metrics []float64, budget float64) [][]int {
	order := make([]int, len(metrics))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return metrics[order[a]] > metrics[order[b]]
	})

	var bins [][]int
	var totals []float64
	for _, idx := range order {
		placed := false
		for b := range bins {
			if totals[b]+metrics[idx] <= budget {
				bins[b] = append(bins[b], idx)
				totals[b] += metrics[idx]
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, []int{idx})
			totals = append(totals, metrics[idx])
		}
	}
	return bins
}
