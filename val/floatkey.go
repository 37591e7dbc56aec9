package val

import "math"

// FloatTotalCompare orders float64 values totally rather than by the
// partial order of `<`: every NaN compares equal to every other NaN and
// sorts after all non-NaN values, and -0 compares equal to +0, so the
// result is a total order usable as a map/priority-queue key. Grounded on
// original_source/core/src/idx/trees/knn.rs's FloatKey, whose Ord delegates
// to f64::total_cmp.
func FloatTotalCompare(a, b float64) int {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
