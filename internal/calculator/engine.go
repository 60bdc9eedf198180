package calculator

import (
	"fmt"
	"time"

	talib "github.com/markcheno/go-talib"

	"TrendRadar/internal/model"
)

// MinBars is the minimum history needed for every indicator window to be defined.
const MinBars = 60

// Params holds indicator parameterizations.
type Params struct {
	SMAPeriod  int
	KDJLength  int
	KDJSignal  int
	MACDFast   int
	MACDSlow   int
	MACDSignal int
	BBPeriod   int
	BBStdDev   float64
}

// DefaultParams returns SMA 20, KDJ 9/3, MACD 12/26/9 and Bollinger 20/2.
func DefaultParams() Params {
	return Params{
		SMAPeriod:  20,
		KDJLength:  9,
		KDJSignal:  3,
		MACDFast:   12,
		MACDSlow:   26,
		MACDSignal: 9,
		BBPeriod:   20,
		BBStdDev:   2.0,
	}
}

// Engine turns daily bars into an IndicatorSeries.
type Engine struct {
	Params  Params
	MinBars int
}

// NewEngine creates an Engine with default parameters.
func NewEngine() *Engine {
	return &Engine{Params: DefaultParams(), MinBars: MinBars}
}

// Compute calculates all indicator columns for chronologically ordered bars.
// Values inside each indicator's lookback window are NaN.
func (e *Engine) Compute(symbol string, bars []model.Bar) (*model.IndicatorSeries, error) {
	if len(bars) < e.MinBars {
		return nil, fmt.Errorf("%w: %s has %d bars, need %d",
			model.ErrInsufficientHistory, symbol, len(bars), e.MinBars)
	}
	p := e.Params

	closes := Closes(bars)
	highs := Highs(bars)
	lows := Lows(bars)

	dates := make([]time.Time, len(bars))
	for i, b := range bars {
		dates[i] = b.Time
	}

	sma := maskLookback(talib.Sma(closes, p.SMAPeriod), p.SMAPeriod-1)

	k, d, j := CalculateKDJ(highs, lows, closes, p.KDJLength, p.KDJSignal)

	macd, signal, hist := talib.Macd(closes, p.MACDFast, p.MACDSlow, p.MACDSignal)
	macdLookback := (p.MACDSlow - 1) + (p.MACDSignal - 1)
	maskLookback(macd, macdLookback)
	maskLookback(signal, macdLookback)
	maskLookback(hist, macdLookback)

	upper, middle, lower := talib.BBands(closes, p.BBPeriod, p.BBStdDev, p.BBStdDev, talib.SMA)
	maskLookback(upper, p.BBPeriod-1)
	maskLookback(middle, p.BBPeriod-1)
	maskLookback(lower, p.BBPeriod-1)

	return &model.IndicatorSeries{
		Symbol:     symbol,
		Dates:      dates,
		Open:       Opens(bars),
		High:       highs,
		Low:        lows,
		Close:      closes,
		Volume:     Volumes(bars),
		SMA20:      sma,
		StochK:     k,
		StochD:     d,
		StochJ:     j,
		MACD:       macd,
		MACDSignal: signal,
		MACDHist:   hist,
		BBLower:    lower,
		BBMiddle:   middle,
		BBUpper:    upper,
	}, nil
}
