// Package stats provides order-independent summary statistics over
// float64 samples.
//
// All functions expect at least one value; callers check arity first.
// NaN values are ignored by every function. If all values are NaN the
// result is NaN.
package stats

import (
	"math"
	"slices"
)

// Max returns the largest value.
func Max(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if v > m || math.IsNaN(m) {
			m = v
		}
	}
	return m
}

// Min returns the smallest value.
func Min(values []float64) float64 {
	m := math.NaN()
	for _, v := range values {
		if v < m || math.IsNaN(m) {
			m = v
		}
	}
	return m
}

// Range returns Max - Min.
func Range(values []float64) float64 {
	return Max(values) - Min(values)
}

// Median returns the middle value of the sorted samples. For an even
// number of samples it returns the mean of the two middle values.
// NaN values are ignored; if every value is NaN the result is NaN.
func Median(values []float64) float64 {
	sorted := withoutNaN(values)
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	slices.Sort(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Mode returns the most frequent value. Ties go to the smallest value.
// NaN values are ignored; if every value is NaN the result is NaN.
func Mode(values []float64) float64 {
	sorted := withoutNaN(values)
	if len(sorted) == 0 {
		return math.NaN()
	}
	slices.Sort(sorted)

	best, bestCount := sorted[0], 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j] == sorted[i] {
			j++
		}
		// strictly greater keeps the smallest value on ties
		if j-i > bestCount {
			best, bestCount = sorted[i], j-i
		}
		i = j
	}
	return best
}

// withoutNaN returns a copy of values with NaN entries removed.
func withoutNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}
