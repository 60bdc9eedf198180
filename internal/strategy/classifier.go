package strategy

import (
	"fmt"

	"TrendRadar/internal/model"
)

const (
	// overheatJ is the J value above which an uptrend is considered overheated.
	overheatJ = 80.0
	// deepBias is the 20-day bias (percent) below which price is deeply oversold.
	deepBias = -5.0
	// floorMargin is how close (as a multiple of the lower band) price must be to count as at the floor.
	floorMargin = 1.02
)

// Evidence messages.
const (
	msgOverheated       = "J value %.1f overheated; do not chase despite uptrend."
	msgOverheatedMACD   = "MACD bullish histogram shrinking; buying momentum weakening."
	msgAboveTrend       = "Price holding above the 20-period trend line; uptrend intact."
	msgVolumeExpanding  = "Volume expanding; attack strength sufficient."
	msgBullishNarrowing = "Bullish but MACD histogram narrowing (rally losing steam); avoid chasing highs."
	msgBounceSetup      = "Excess negative deviation (%.1f%%) plus touch of lower band; rebound setup."
	msgBearishEasing    = "Bearish histogram shrinking; selling pressure easing, favorable for bounce."
	msgCounterTrend     = "This is a counter-trend entry; cap target at the trend line and do not get greedy."
	msgCappedByTrend    = "Price capped by trend line with no clear reversal signal yet."
)

// Rules toggles the optional evidence checks of the trending-bullish branch.
// Both are additive and independent.
type Rules struct {
	VolumeExpansion bool `yaml:"volume_expansion" default:"true"`
	MACDNarrowing   bool `yaml:"macd_narrowing" default:"true"`
}

// DefaultRules enables every check.
func DefaultRules() Rules {
	return Rules{VolumeExpansion: true, MACDNarrowing: true}
}

// Classifier maps an indicator snapshot to a regime. It holds no mutable state
// and is safe for concurrent use.
type Classifier struct {
	Rules Rules
}

// NewClassifier creates a Classifier with the given rules.
func NewClassifier(rules Rules) *Classifier {
	return &Classifier{Rules: rules}
}

var defaultClassifier = NewClassifier(DefaultRules())

// Classify runs the default classifier.
func Classify(snap model.IndicatorSnapshot) (model.Regime, error) {
	return defaultClassifier.Classify(snap)
}

// Classify returns the regime for snap. The first matching branch wins:
// above the 20-day line (overheated or trending), below it (bounce or weak),
// and exactly on it (neutral).
func (c *Classifier) Classify(snap model.IndicatorSnapshot) (model.Regime, error) {
	if err := Validate(snap); err != nil {
		return model.Regime{}, err
	}
	if snap.MA20 == 0 {
		return model.Regime{}, fmt.Errorf("%w: ma20 is zero", model.ErrDivisionByZero)
	}
	if snap.VolAvg10 == 0 {
		return model.Regime{}, fmt.Errorf("%w: vol_avg10 is zero", model.ErrDivisionByZero)
	}

	var r model.Regime
	switch {
	case snap.Price > snap.MA20:
		r = c.aboveTrend(snap)
	case snap.Price < snap.MA20:
		r = belowTrend(snap)
	default:
		r = model.NewRegime(model.Neutral)
	}
	r.VolumeRatio = snap.VolCur / snap.VolAvg10
	return r, nil
}

func (c *Classifier) aboveTrend(snap model.IndicatorSnapshot) model.Regime {
	bullishShrinking := snap.MACDHistCur < snap.MACDHistPrev && snap.MACDHistCur > 0

	if snap.JCur > overheatJ {
		r := model.NewRegime(model.Overheated)
		r.Risks = append(r.Risks, fmt.Sprintf(msgOverheated, snap.JCur))
		if bullishShrinking {
			r.Risks = append(r.Risks, msgOverheatedMACD)
		}
		return r
	}

	r := model.NewRegime(model.TrendingBullish)
	r.Supporting = append(r.Supporting, msgAboveTrend)
	if c.Rules.VolumeExpansion && snap.VolCur > snap.VolAvg10 {
		r.Supporting = append(r.Supporting, msgVolumeExpanding)
	}
	if c.Rules.MACDNarrowing && bullishShrinking {
		r.Risks = append(r.Risks, msgBullishNarrowing)
	}
	return r
}

func belowTrend(snap model.IndicatorSnapshot) model.Regime {
	if IsHook(snap) && (IsDeepNegativeBias(snap) || IsAtFloor(snap)) {
		r := model.NewRegime(model.OversoldBounce)
		r.Supporting = append(r.Supporting, fmt.Sprintf(msgBounceSetup, snap.Bias20))
		if snap.MACDHistCur > snap.MACDHistPrev && snap.MACDHistCur < 0 {
			r.Supporting = append(r.Supporting, msgBearishEasing)
		}
		r.Risks = append(r.Risks, msgCounterTrend)
		return r
	}

	r := model.NewRegime(model.WeakBearish)
	r.Risks = append(r.Risks, msgCappedByTrend)
	return r
}

// IsHook reports a V-shaped upward turn of the J line over the last three points.
func IsHook(snap model.IndicatorSnapshot) bool {
	return snap.JPrev2 > snap.JPrev && snap.JCur > snap.JPrev
}

// IsDeepNegativeBias reports whether price sits more than 5% below the 20-day line.
func IsDeepNegativeBias(snap model.IndicatorSnapshot) bool {
	return snap.Bias20 < deepBias
}

// IsAtFloor reports whether price is within 2% of the lower Bollinger band.
func IsAtFloor(snap model.IndicatorSnapshot) bool {
	return snap.Price <= snap.BBLower*floorMargin
}
