// Package stats provides order-statistic summaries over numeric samples.
//
// Metric snapshots routinely arrive with missing or empty sample
// populations, so every function here tolerates empty input by returning 0
// instead of failing. Callers render an empty state; they never handle a
// statistics error.
package stats

import "math"

// Mean returns the arithmetic mean of seq, or 0 for empty input.
func Mean(seq []float64) float64 {
	if len(seq) == 0 {
		return 0
	}
	var sum float64
	for _, v := range seq {
		sum += v
	}
	return sum / float64(len(seq))
}

// Median returns the middle value of an ascending-sorted sequence, averaging
// the two middle elements for even-length input. Empty input yields 0.
func Median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 != 0 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// Quantile returns the p-quantile of an ascending-sorted sequence using
// linear interpolation at order-statistic position (n-1)·p. Out-of-range p
// pins to the nearest end. Empty input yields 0 for any p.
func Quantile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	pos := float64(n-1) * p
	base := int(math.Floor(pos))
	if base < 0 {
		return sorted[0]
	}
	if base >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(base)
	return sorted[base] + frac*(sorted[base+1]-sorted[base])
}

// Min returns the smallest value in seq, or 0 for empty input.
func Min(seq []float64) float64 {
	if len(seq) == 0 {
		return 0
	}
	m := seq[0]
	for _, v := range seq[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

// Max returns the largest value in seq, or 0 for empty input.
func Max(seq []float64) float64 {
	if len(seq) == 0 {
		return 0
	}
	m := seq[0]
	for _, v := range seq[1:] {
		if v > m {
			m = v
		}
	}
	return m
}
