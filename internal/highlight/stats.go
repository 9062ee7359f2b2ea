package highlight

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between closest ranks, the same definition numpy uses by
// default. It returns 0 for empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	p = math.Max(0, math.Min(100, p))
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// MeanAt averages values at the given indices
func MeanAt(values []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	picked := make([]float64, len(indices))
	for i, idx := range indices {
		picked[i] = values[idx]
	}
	return stat.Mean(picked, nil)
}

// PopStdDev returns the population standard deviation of values
func PopStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	_, variance := stat.PopMeanVariance(values, nil)
	return math.Sqrt(variance)
}

// RatioConfidence turns a mean-over-threshold ratio into a confidence in [0,1].
// A non-positive threshold saturates any positive mean.
func RatioConfidence(mean, threshold float64) float64 {
	if math.IsNaN(mean) || mean <= 0 {
		return 0
	}
	if threshold <= 0 {
		return 1
	}
	return Clamp01(mean / threshold)
}

// Clamp01 limits x to [0,1]
func Clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// ClampWindow bounds [start,end] to [lo,hi]. ok is false when nothing of
// positive length is left.
func ClampWindow(start, end, lo, hi float64) (float64, float64, bool) {
	start = math.Max(lo, start)
	end = math.Min(hi, end)
	return start, end, end > start
}
