package strategy

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendRadar/internal/model"
)

// seriesOf builds an n-row series whose columns are all defined.
func seriesOf(n int) *model.IndicatorSeries {
	s := &model.IndicatorSeries{Symbol: "TEST"}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		f := float64(i)
		s.Dates = append(s.Dates, start.AddDate(0, 0, i))
		s.Open = append(s.Open, 100+f)
		s.High = append(s.High, 101+f)
		s.Low = append(s.Low, 99+f)
		s.Close = append(s.Close, 100+f)
		s.Volume = append(s.Volume, 1000+10*f)
		s.SMA20 = append(s.SMA20, 95+f)
		s.StochK = append(s.StochK, 50)
		s.StochD = append(s.StochD, 50)
		s.StochJ = append(s.StochJ, 10*f)
		s.MACD = append(s.MACD, 0)
		s.MACDSignal = append(s.MACDSignal, 0)
		s.MACDHist = append(s.MACDHist, 0.1*f)
		s.BBLower = append(s.BBLower, 90+f)
		s.BBMiddle = append(s.BBMiddle, 95+f)
		s.BBUpper = append(s.BBUpper, 110+f)
	}
	return s
}

func TestBuildSnapshot_Extracts(t *testing.T) {
	s := seriesOf(30)
	snap, err := BuildSnapshot(s, 20)
	require.NoError(t, err)

	assert.Equal(t, 120.0, snap.Price)
	assert.Equal(t, 119.0, snap.PrevClose)
	assert.Equal(t, 115.0, snap.MA20)
	assert.InDelta(t, (120.0-115.0)/115.0*100, snap.Bias20, 1e-12)
	assert.Equal(t, 200.0, snap.JCur)
	assert.Equal(t, 190.0, snap.JPrev)
	assert.Equal(t, 180.0, snap.JPrev2)
	assert.InDelta(t, 2.0, snap.MACDHistCur, 1e-12)
	assert.InDelta(t, 1.9, snap.MACDHistPrev, 1e-12)
	assert.Equal(t, 110.0, snap.BBLower)
	assert.Equal(t, 130.0, snap.BBUpper)
	assert.Equal(t, 1200.0, snap.VolCur)
	// mean of volumes at rows 11..20
	assert.InDelta(t, 1155.0, snap.VolAvg10, 1e-12)
}

func TestBuildLatestSnapshot(t *testing.T) {
	s := seriesOf(12)
	snap, err := BuildLatestSnapshot(s)
	require.NoError(t, err)
	assert.Equal(t, 111.0, snap.Price)
}

func TestBuildSnapshot_Errors(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*model.IndicatorSeries, int)
		want  error
	}{
		{"too few trailing rows", func() (*model.IndicatorSeries, int) { return seriesOf(30), 8 }, model.ErrInvalidSnapshot},
		{"negative index", func() (*model.IndicatorSeries, int) { return seriesOf(30), -1 }, model.ErrInvalidSnapshot},
		{"index past end", func() (*model.IndicatorSeries, int) { return seriesOf(30), 30 }, model.ErrInvalidSnapshot},
		{"nil series", func() (*model.IndicatorSeries, int) { return nil, 0 }, model.ErrInvalidSnapshot},
		{"undefined j two rows back", func() (*model.IndicatorSeries, int) {
			s := seriesOf(30)
			s.StochJ[18] = math.NaN()
			return s, 20
		}, model.ErrInvalidSnapshot},
		{"undefined sma", func() (*model.IndicatorSeries, int) {
			s := seriesOf(30)
			s.SMA20[20] = math.NaN()
			return s, 20
		}, model.ErrInvalidSnapshot},
		{"undefined band", func() (*model.IndicatorSeries, int) {
			s := seriesOf(30)
			s.BBUpper[20] = math.NaN()
			return s, 20
		}, model.ErrInvalidSnapshot},
		{"short column", func() (*model.IndicatorSeries, int) {
			s := seriesOf(30)
			s.MACDHist = s.MACDHist[:25]
			return s, 20
		}, model.ErrInvalidSnapshot},
		{"zero sma", func() (*model.IndicatorSeries, int) {
			s := seriesOf(30)
			s.SMA20[20] = 0
			return s, 20
		}, model.ErrDivisionByZero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, idx := tt.build()
			_, err := BuildSnapshot(s, idx)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestBuildSnapshot_MinimumRows(t *testing.T) {
	_, err := BuildSnapshot(seriesOf(10), 9)
	assert.NoError(t, err)
}

func TestPercentChange(t *testing.T) {
	got, err := PercentChange(95, 100)
	require.NoError(t, err)
	assert.InDelta(t, -5.0, got, 1e-12)

	_, err = PercentChange(1, 0)
	assert.True(t, errors.Is(err, model.ErrDivisionByZero))
}
