package strategy

import (
	"fmt"
	"math"

	"TrendRadar/internal/calculator"
	"TrendRadar/internal/model"
)

// volumeWindow is the trailing window for the average volume. It also covers
// the three J-line points needed for hook detection.
const volumeWindow = 10

// BuildSnapshot extracts the classifier input at row index of the series.
func BuildSnapshot(s *model.IndicatorSeries, index int) (model.IndicatorSnapshot, error) {
	var snap model.IndicatorSnapshot
	if s == nil {
		return snap, fmt.Errorf("%w: nil series", model.ErrInvalidSnapshot)
	}
	if index < 0 || index >= s.Len() {
		return snap, fmt.Errorf("%w: row %d out of range [0, %d)", model.ErrInvalidSnapshot, index, s.Len())
	}
	if index+1 < volumeWindow {
		return snap, fmt.Errorf("%w: row %d has %d trailing rows, need %d",
			model.ErrInvalidSnapshot, index, index+1, volumeWindow)
	}

	cols := []struct {
		name string
		col  []float64
	}{
		{"close", s.Close}, {"volume", s.Volume}, {"sma20", s.SMA20}, {"stoch_j", s.StochJ},
		{"macd_hist", s.MACDHist}, {"bb_lower", s.BBLower}, {"bb_upper", s.BBUpper},
	}
	for _, c := range cols {
		if len(c.col) != s.Len() {
			return snap, fmt.Errorf("%w: column %s has %d rows, want %d",
				model.ErrInvalidSnapshot, c.name, len(c.col), s.Len())
		}
	}

	volAvg, err := calculator.TrailingMean(s.Volume, index, volumeWindow)
	if err != nil {
		return snap, fmt.Errorf("%w: volume average: %v", model.ErrInvalidSnapshot, err)
	}

	snap = model.IndicatorSnapshot{
		Price:        s.Close[index],
		PrevClose:    s.Close[index-1],
		MA20:         s.SMA20[index],
		JCur:         s.StochJ[index],
		JPrev:        s.StochJ[index-1],
		JPrev2:       s.StochJ[index-2],
		MACDHistCur:  s.MACDHist[index],
		MACDHistPrev: s.MACDHist[index-1],
		BBLower:      s.BBLower[index],
		BBUpper:      s.BBUpper[index],
		VolCur:       s.Volume[index],
		VolAvg10:     volAvg,
	}

	// Bias is derived, so everything it depends on must be checked first.
	if math.IsNaN(snap.Price) || math.IsNaN(snap.MA20) {
		return snap, fmt.Errorf("%w: %s row %d: close or sma20 undefined", model.ErrInvalidSnapshot, s.Symbol, index)
	}
	bias, err := PercentChange(snap.Price, snap.MA20)
	if err != nil {
		return snap, fmt.Errorf("bias20 at row %d: %w", index, err)
	}
	snap.Bias20 = bias

	if err := Validate(snap); err != nil {
		return snap, fmt.Errorf("%s row %d: %w", s.Symbol, index, err)
	}
	return snap, nil
}

// BuildLatestSnapshot extracts the classifier input at the last row.
func BuildLatestSnapshot(s *model.IndicatorSeries) (model.IndicatorSnapshot, error) {
	if s == nil {
		return model.IndicatorSnapshot{}, fmt.Errorf("%w: nil series", model.ErrInvalidSnapshot)
	}
	return BuildSnapshot(s, s.Len()-1)
}

// PercentChange returns (value - base) / base * 100.
func PercentChange(value, base float64) (float64, error) {
	if base == 0 {
		return 0, fmt.Errorf("%w: base is zero", model.ErrDivisionByZero)
	}
	return (value - base) / base * 100, nil
}

// Validate rejects snapshots with undefined fields.
func Validate(snap model.IndicatorSnapshot) error {
	for _, f := range snap.Fields() {
		if !model.IsDefined(f.Value) {
			return fmt.Errorf("%w: %s is %v", model.ErrInvalidSnapshot, f.Name, f.Value)
		}
	}
	return nil
}
