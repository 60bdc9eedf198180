package calculator

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendRadar/internal/model"
)

func makeBars(n int, price func(i int) float64) []model.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]model.Bar, n)
	for i := 0; i < n; i++ {
		p := price(i)
		bars[i] = model.NewBar(start.AddDate(0, 0, i), p, p*1.01, p*0.99, p, int64(1000+i))
	}
	return bars
}

func TestCompute_InsufficientHistory(t *testing.T) {
	e := NewEngine()
	_, err := e.Compute("2330.TW", makeBars(MinBars-1, func(int) float64 { return 100 }))
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrInsufficientHistory))
}

func TestCompute_ColumnsAligned(t *testing.T) {
	bars := makeBars(120, func(i int) float64 { return 100 + 5*math.Sin(float64(i)/6) })
	s, err := NewEngine().Compute("2317.TW", bars)
	require.NoError(t, err)

	n := len(bars)
	assert.Equal(t, n, s.Len())
	for name, col := range map[string][]float64{
		"close": s.Close, "volume": s.Volume, "sma20": s.SMA20, "j": s.StochJ,
		"macd_hist": s.MACDHist, "bb_lower": s.BBLower, "bb_upper": s.BBUpper,
	} {
		assert.Len(t, col, n, name)
	}

	assert.True(t, math.IsNaN(s.SMA20[18]))
	assert.False(t, math.IsNaN(s.SMA20[19]))
	assert.True(t, math.IsNaN(s.StochJ[7]))
	assert.False(t, math.IsNaN(s.StochJ[8]))
	assert.True(t, math.IsNaN(s.MACDHist[32]))
	assert.False(t, math.IsNaN(s.MACDHist[33]))
	assert.True(t, math.IsNaN(s.BBLower[18]))
	assert.False(t, math.IsNaN(s.BBLower[19]))
}

func TestCompute_SMAAndBands(t *testing.T) {
	bars := makeBars(80, func(i int) float64 { return 50 + float64(i%7) })
	s, err := NewEngine().Compute("0050.TW", bars)
	require.NoError(t, err)

	last := s.Len() - 1
	mean, err := TrailingMean(s.Close, last, 20)
	require.NoError(t, err)
	assert.InDelta(t, mean, s.SMA20[last], 1e-9)

	variance := 0.0
	for i := last - 19; i <= last; i++ {
		variance += (s.Close[i] - mean) * (s.Close[i] - mean)
	}
	sd := math.Sqrt(variance / 20)
	assert.InDelta(t, mean-2*sd, s.BBLower[last], 1e-6)
	assert.InDelta(t, mean+2*sd, s.BBUpper[last], 1e-6)
}

func TestCalculateKDJ_FlatRange(t *testing.T) {
	flat := make([]float64, 30)
	for i := range flat {
		flat[i] = 10
	}
	k, d, j := CalculateKDJ(flat, flat, flat, 9, 3)
	for i := 8; i < len(flat); i++ {
		assert.InDelta(t, 50, k[i], 1e-9)
		assert.InDelta(t, 50, d[i], 1e-9)
		assert.InDelta(t, 50, j[i], 1e-9)
	}
}

func TestCalculateKDJ_RisingSeriesOverheats(t *testing.T) {
	n := 40
	high, low, close := make([]float64, n), make([]float64, n), make([]float64, n)
	for i := 0; i < n; i++ {
		close[i] = 100 + float64(i)
		high[i] = close[i]
		low[i] = close[i] - 1
	}
	k, d, j := CalculateKDJ(high, low, close, 9, 3)
	last := n - 1
	assert.Greater(t, k[last], 80.0)
	assert.Greater(t, j[last], k[last])
	assert.InDelta(t, 3*k[last]-2*d[last], j[last], 1e-9)
}

func TestTrailingMean(t *testing.T) {
	vals := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}
	got, err := TrailingMean(vals, 10, 10)
	require.NoError(t, err)
	assert.InDelta(t, 6.5, got, 1e-12)

	_, err = TrailingMean(vals, 5, 10)
	assert.Error(t, err)
	_, err = TrailingMean(vals, 11, 3)
	assert.Error(t, err)
	_, err = TrailingMean(vals, 3, 0)
	assert.Error(t, err)
}
