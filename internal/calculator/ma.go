package calculator

import (
	"errors"
	"math"

	"TrendRadar/internal/model"
)

// TrailingMean returns the mean of the n values ending at index end (inclusive).
func TrailingMean(values []float64, end, n int) (float64, error) {
	if n <= 0 {
		return 0, errors.New("period must be positive")
	}
	if end < 0 || end >= len(values) {
		return 0, errors.New("index out of range")
	}
	if end+1 < n {
		return 0, errors.New("not enough data for trailing mean")
	}
	sum := 0.0
	for i := end - n + 1; i <= end; i++ {
		sum += values[i]
	}
	return sum / float64(n), nil
}

// Closes extracts closing prices as floats.
func Closes(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close.InexactFloat64()
	}
	return out
}

// Highs extracts high prices as floats.
func Highs(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High.InexactFloat64()
	}
	return out
}

// Lows extracts low prices as floats.
func Lows(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low.InexactFloat64()
	}
	return out
}

// Opens extracts open prices as floats.
func Opens(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Open.InexactFloat64()
	}
	return out
}

// Volumes extracts volumes as floats.
func Volumes(bars []model.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = float64(b.Volume)
	}
	return out
}

// maskLookback replaces the first lookback values with NaN.
func maskLookback(values []float64, lookback int) []float64 {
	for i := 0; i < lookback && i < len(values); i++ {
		values[i] = math.NaN()
	}
	return values
}
