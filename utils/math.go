package utils

import (
	"math"
)

// RelativeError returns |a-b| scaled by the larger magnitude of the two, or the absolute difference when
// both are smaller than one.
func RelativeError(a, b float64) float64 {
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) / scale
}
