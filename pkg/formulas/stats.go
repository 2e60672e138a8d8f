// Package formulas provides small numeric helpers shared by the analytics code.
package formulas

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Sum adds up a slice of float64 values. Empty input sums to 0.
func Sum(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Sum(data)
}

// CumulativeSum returns the running totals of data.
// out[i] = data[0] + ... + data[i]. The result has the same length as data.
func CumulativeSum(data []float64) []float64 {
	out := make([]float64, len(data))
	if len(data) == 0 {
		return out
	}
	return floats.CumSum(out, data)
}
