package strategy

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TrendRadar/internal/model"
)

func baseSnapshot() model.IndicatorSnapshot {
	return model.IndicatorSnapshot{
		Price:        100,
		PrevClose:    99,
		MA20:         100,
		Bias20:       0,
		JCur:         50,
		JPrev:        50,
		JPrev2:       50,
		MACDHistCur:  0.1,
		MACDHistPrev: 0.1,
		BBLower:      90,
		BBUpper:      110,
		VolCur:       1000,
		VolAvg10:     1000,
	}
}

func TestClassify_ScenarioA_Overheated(t *testing.T) {
	snap := baseSnapshot()
	snap.Price, snap.MA20, snap.JCur = 105, 100, 85

	r, err := Classify(snap)
	require.NoError(t, err)
	assert.Equal(t, model.Overheated, r.Kind)
	assert.Equal(t, model.ColorOrange, r.Color)
	require.NotEmpty(t, r.Risks)
	assert.Contains(t, r.Risks[0], "85")
	assert.Empty(t, r.Supporting)
}

func TestClassify_ScenarioB_OversoldBounce(t *testing.T) {
	snap := baseSnapshot()
	snap.Price, snap.MA20, snap.Bias20, snap.BBLower = 95, 100, -6, 94
	snap.JPrev2, snap.JPrev, snap.JCur = 10, 8, 15

	require.True(t, IsHook(snap))
	require.True(t, IsDeepNegativeBias(snap))

	r, err := Classify(snap)
	require.NoError(t, err)
	assert.Equal(t, model.OversoldBounce, r.Kind)
	assert.Equal(t, model.ColorBlue, r.Color)
	require.NotEmpty(t, r.Supporting)
	assert.Contains(t, r.Supporting[0], "-6.0%")
	assert.Equal(t, []string{msgCounterTrend}, r.Risks)
}

func TestClassify_ScenarioC_WeakBearish(t *testing.T) {
	snap := baseSnapshot()
	snap.Price, snap.MA20, snap.Bias20, snap.BBLower = 90, 100, -3, 80
	snap.JPrev2, snap.JPrev, snap.JCur = 5, 10, 8

	assert.False(t, IsHook(snap))

	r, err := Classify(snap)
	require.NoError(t, err)
	assert.Equal(t, model.WeakBearish, r.Kind)
	assert.Equal(t, []string{msgCappedByTrend}, r.Risks)
	assert.Empty(t, r.Supporting)
}

func TestClassify_ScenarioD_ZeroMA20(t *testing.T) {
	snap := baseSnapshot()
	snap.MA20 = 0

	_, err := Classify(snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrDivisionByZero))
}

func TestClassify_ZeroVolumeAverage(t *testing.T) {
	snap := baseSnapshot()
	snap.VolAvg10 = 0

	_, err := Classify(snap)
	assert.True(t, errors.Is(err, model.ErrDivisionByZero))
}

func TestClassify_UndefinedFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.IndicatorSnapshot)
	}{
		{"nan j", func(s *model.IndicatorSnapshot) { s.JPrev2 = math.NaN() }},
		{"nan ma20", func(s *model.IndicatorSnapshot) { s.MA20 = math.NaN() }},
		{"inf band", func(s *model.IndicatorSnapshot) { s.BBLower = math.Inf(-1) }},
		{"nan macd", func(s *model.IndicatorSnapshot) { s.MACDHistPrev = math.NaN() }},
		{"nan volume", func(s *model.IndicatorSnapshot) { s.VolCur = math.NaN() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseSnapshot()
			tt.mutate(&snap)
			_, err := Classify(snap)
			require.Error(t, err)
			assert.True(t, errors.Is(err, model.ErrInvalidSnapshot))
		})
	}
}

func TestClassify_OnTrendLineIsNeutral(t *testing.T) {
	snap := baseSnapshot()
	snap.JCur = 95

	r, err := Classify(snap)
	require.NoError(t, err)
	assert.Equal(t, model.Neutral, r.Kind)
	assert.Equal(t, model.ColorGray, r.Color)
	assert.Empty(t, r.Supporting)
	assert.Empty(t, r.Risks)
}

func TestClassify_OverheatedMACDShrinking(t *testing.T) {
	snap := baseSnapshot()
	snap.Price, snap.JCur = 110, 90
	snap.MACDHistPrev, snap.MACDHistCur = 0.8, 0.5

	r, err := Classify(snap)
	require.NoError(t, err)
	assert.Equal(t, model.Overheated, r.Kind)
	assert.Len(t, r.Risks, 2)
	assert.Equal(t, msgOverheatedMACD, r.Risks[1])
}

func TestClassify_TrendingBullishEvidence(t *testing.T) {
	tests := []struct {
		name           string
		rules          Rules
		volCur         float64
		histPrev, hist float64
		supporting     []string
		risks          []string
	}{
		{
			name:       "quiet",
			rules:      DefaultRules(),
			volCur:     900,
			histPrev:   0.2, hist: 0.3,
			supporting: []string{msgAboveTrend},
			risks:      []string{},
		},
		{
			name:       "volume and narrowing both fire",
			rules:      DefaultRules(),
			volCur:     1500,
			histPrev:   0.5, hist: 0.3,
			supporting: []string{msgAboveTrend, msgVolumeExpanding},
			risks:      []string{msgBullishNarrowing},
		},
		{
			name:       "negative histogram is not narrowing",
			rules:      DefaultRules(),
			volCur:     900,
			histPrev:   -0.1, hist: -0.3,
			supporting: []string{msgAboveTrend},
			risks:      []string{},
		},
		{
			name:       "volume check disabled",
			rules:      Rules{MACDNarrowing: true},
			volCur:     1500,
			histPrev:   0.5, hist: 0.3,
			supporting: []string{msgAboveTrend},
			risks:      []string{msgBullishNarrowing},
		},
		{
			name:       "narrowing check disabled",
			rules:      Rules{VolumeExpansion: true},
			volCur:     1500,
			histPrev:   0.5, hist: 0.3,
			supporting: []string{msgAboveTrend, msgVolumeExpanding},
			risks:      []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseSnapshot()
			snap.Price, snap.JCur = 103, 60
			snap.VolCur = tt.volCur
			snap.MACDHistPrev, snap.MACDHistCur = tt.histPrev, tt.hist

			r, err := NewClassifier(tt.rules).Classify(snap)
			require.NoError(t, err)
			assert.Equal(t, model.TrendingBullish, r.Kind)
			assert.Equal(t, tt.supporting, r.Supporting)
			assert.Equal(t, tt.risks, r.Risks)
			assert.InDelta(t, tt.volCur/1000, r.VolumeRatio, 1e-12)
		})
	}
}

func TestClassify_BounceAtFloorAndEasing(t *testing.T) {
	snap := baseSnapshot()
	// shallow bias, but within 2% of the lower band
	snap.Price, snap.Bias20, snap.BBLower = 97, -3, 95.2
	snap.JPrev2, snap.JPrev, snap.JCur = 20, 5, 12
	snap.MACDHistPrev, snap.MACDHistCur = -0.6, -0.4

	require.False(t, IsDeepNegativeBias(snap))
	require.True(t, IsAtFloor(snap))

	r, err := Classify(snap)
	require.NoError(t, err)
	assert.Equal(t, model.OversoldBounce, r.Kind)
	assert.Equal(t, []string{fmt.Sprintf(msgBounceSetup, -3.0), msgBearishEasing}, r.Supporting)
}

func TestIsAtFloor_Inclusive(t *testing.T) {
	snap := baseSnapshot()
	snap.BBLower = 50
	snap.Price = 51
	assert.True(t, IsAtFloor(snap))
	snap.Price = 51.0001
	assert.False(t, IsAtFloor(snap))
}

func TestClassify_StrictThresholds(t *testing.T) {
	below := func(s *model.IndicatorSnapshot) {
		s.Price, s.MA20, s.BBLower = 95, 100, 80
		s.JPrev2, s.JPrev, s.JCur = 20, 10, 15
		s.Bias20 = -6
		s.MACDHistPrev, s.MACDHistCur = -0.6, -0.4
	}
	tests := []struct {
		name       string
		mutate     func(s *model.IndicatorSnapshot)
		kind       model.RegimeKind
		supporting []string
		risks      []string
	}{
		{
			name: "j at 80 is not overheated",
			mutate: func(s *model.IndicatorSnapshot) {
				s.Price, s.JCur, s.VolCur = 103, 80, 900
			},
			kind:       model.TrendingBullish,
			supporting: []string{msgAboveTrend},
			risks:      []string{},
		},
		{
			name: "volume at average is not expansion",
			mutate: func(s *model.IndicatorSnapshot) {
				s.Price, s.JCur, s.VolCur = 103, 60, 1000
			},
			kind:       model.TrendingBullish,
			supporting: []string{msgAboveTrend},
			risks:      []string{},
		},
		{
			name: "flat bullish histogram is not narrowing",
			mutate: func(s *model.IndicatorSnapshot) {
				s.Price, s.JCur, s.VolCur = 103, 60, 900
				s.MACDHistPrev, s.MACDHistCur = 0.3, 0.3
			},
			kind:       model.TrendingBullish,
			supporting: []string{msgAboveTrend},
			risks:      []string{},
		},
		{
			name: "flat histogram while overheated adds no momentum risk",
			mutate: func(s *model.IndicatorSnapshot) {
				s.Price, s.JCur = 103, 90
				s.MACDHistPrev, s.MACDHistCur = 0.3, 0.3
			},
			kind:       model.Overheated,
			supporting: []string{},
			risks:      []string{fmt.Sprintf(msgOverheated, 90.0)},
		},
		{
			name: "bias of exactly -5 is not deep",
			mutate: func(s *model.IndicatorSnapshot) {
				below(s)
				s.Bias20 = -5
			},
			kind:       model.WeakBearish,
			supporting: []string{},
			risks:      []string{msgCappedByTrend},
		},
		{
			name: "bias just past -5 is deep",
			mutate: func(s *model.IndicatorSnapshot) {
				below(s)
				s.Bias20 = -5.0001
			},
			kind:       model.OversoldBounce,
			supporting: []string{fmt.Sprintf(msgBounceSetup, -5.0001), msgBearishEasing},
			risks:      []string{msgCounterTrend},
		},
		{
			name: "flat j before the dip is not a hook",
			mutate: func(s *model.IndicatorSnapshot) {
				below(s)
				s.JPrev2, s.JPrev, s.JCur = 10, 10, 15
			},
			kind:       model.WeakBearish,
			supporting: []string{},
			risks:      []string{msgCappedByTrend},
		},
		{
			name: "flat j after the dip is not a hook",
			mutate: func(s *model.IndicatorSnapshot) {
				below(s)
				s.JPrev2, s.JPrev, s.JCur = 20, 10, 10
			},
			kind:       model.WeakBearish,
			supporting: []string{},
			risks:      []string{msgCappedByTrend},
		},
		{
			name: "flat bearish histogram is not easing",
			mutate: func(s *model.IndicatorSnapshot) {
				below(s)
				s.MACDHistPrev, s.MACDHistCur = -0.4, -0.4
			},
			kind:       model.OversoldBounce,
			supporting: []string{fmt.Sprintf(msgBounceSetup, -6.0)},
			risks:      []string{msgCounterTrend},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := baseSnapshot()
			tt.mutate(&snap)

			r, err := Classify(snap)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, r.Kind)
			assert.ElementsMatch(t, tt.supporting, r.Supporting)
			assert.ElementsMatch(t, tt.risks, r.Risks)
		})
	}
}

func TestClassify_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		snap := baseSnapshot()
		snap.MA20 = 100
		snap.Price = 80 + rng.Float64()*40
		snap.Bias20 = (snap.Price - snap.MA20) / snap.MA20 * 100
		snap.JCur = rng.Float64()*140 - 20
		snap.JPrev = rng.Float64()*140 - 20
		snap.JPrev2 = rng.Float64()*140 - 20
		snap.BBLower = 75 + rng.Float64()*20
		snap.MACDHistCur = rng.Float64()*2 - 1
		snap.MACDHistPrev = rng.Float64()*2 - 1
		snap.VolCur = rng.Float64() * 2000

		r, err := Classify(snap)
		require.NoError(t, err)

		var want model.RegimeKind
		switch {
		case snap.Price > snap.MA20 && snap.JCur > 80:
			want = model.Overheated
		case snap.Price > snap.MA20:
			want = model.TrendingBullish
		case snap.Price < snap.MA20 && IsHook(snap) && (snap.Bias20 < -5 || snap.Price <= snap.BBLower*1.02):
			want = model.OversoldBounce
		case snap.Price < snap.MA20:
			want = model.WeakBearish
		default:
			want = model.Neutral
		}
		require.Equal(t, want, r.Kind, "snapshot %+v", snap)

		again, err := Classify(snap)
		require.NoError(t, err)
		require.Equal(t, r, again)
	}
}

func TestClassify_Concurrent(t *testing.T) {
	snap := baseSnapshot()
	snap.Price, snap.JCur, snap.VolCur = 104, 40, 1800
	want, err := Classify(snap)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := Classify(snap)
			if err != nil || got.Kind != want.Kind || strings.Join(got.Supporting, "|") != strings.Join(want.Supporting, "|") {
				errs <- "mismatch"
			}
		}()
	}
	wg.Wait()
	close(errs)
	assert.Empty(t, errs)
}
