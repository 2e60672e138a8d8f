package formulas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		data     []float64
		expected float64
	}{
		{"empty", nil, 0},
		{"single", []float64{4}, 4},
		{"mixed", []float64{1, 2, 3, 4}, 2.5},
		{"negative", []float64{-10, -20}, -15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Mean(tt.data), 1e-9)
		})
	}
}

func TestMean_PropagatesNaN(t *testing.T) {
	assert.True(t, math.IsNaN(Mean([]float64{1, math.NaN()})))
}

func TestSum(t *testing.T) {
	assert.Equal(t, 0.0, Sum(nil))
	assert.InDelta(t, 85.5, Sum([]float64{125.5, -40}), 1e-9)
}

func TestCumulativeSum(t *testing.T) {
	assert.Empty(t, CumulativeSum(nil))
	assert.Equal(t, []float64{10, 5, 25}, CumulativeSum([]float64{10, -5, 20}))
}

func TestDrawdownPercent(t *testing.T) {
	tests := []struct {
		name        string
		peak, value float64
		expected    float64
	}{
		{"at peak", 100, 100, 0},
		{"quarter down", 100, 75, 25},
		{"below zero", 100, -50, 150},
		{"zero peak", 0, -10, 0},
		{"negative peak", -10, -20, 0},
		{"above peak", 100, 120, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, DrawdownPercent(tt.peak, tt.value), 1e-9)
		})
	}
}

func TestMaxDrawdownPercent(t *testing.T) {
	assert.Equal(t, 0.0, MaxDrawdownPercent(nil))
	assert.InDelta(t, 50.0, MaxDrawdownPercent([]float64{100, 50, 80, 120, 90}), 1e-9)
	assert.Equal(t, 0.0, MaxDrawdownPercent([]float64{-10, -20, -30}))
}
