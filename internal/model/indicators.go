package model

import (
	"math"
	"time"
)

// IndicatorSeries is a time-aligned table of daily prices and derived indicators.
// Every column has the same length as Dates; leading values without enough
// history are NaN.
type IndicatorSeries struct {
	Symbol string      `json:"symbol"`
	Dates  []time.Time `json:"dates"`

	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []float64 `json:"volume"`

	SMA20      []float64 `json:"sma20"`
	StochK     []float64 `json:"stoch_k"`
	StochD     []float64 `json:"stoch_d"`
	StochJ     []float64 `json:"stoch_j"`
	MACD       []float64 `json:"macd"`
	MACDSignal []float64 `json:"macd_signal"`
	MACDHist   []float64 `json:"macd_hist"`
	BBLower    []float64 `json:"bb_lower"`
	BBMiddle   []float64 `json:"bb_middle"`
	BBUpper    []float64 `json:"bb_upper"`
}

// Len returns the number of rows.
func (s *IndicatorSeries) Len() int { return len(s.Dates) }

// Tail returns a copy of the last n rows. n <= 0 or n > Len returns all rows.
func (s *IndicatorSeries) Tail(n int) *IndicatorSeries {
	total := s.Len()
	if n <= 0 || n > total {
		n = total
	}
	start := total - n
	cut := func(col []float64) []float64 {
		out := make([]float64, n)
		copy(out, col[start:])
		return out
	}
	dates := make([]time.Time, n)
	copy(dates, s.Dates[start:])
	return &IndicatorSeries{
		Symbol:     s.Symbol,
		Dates:      dates,
		Open:       cut(s.Open),
		High:       cut(s.High),
		Low:        cut(s.Low),
		Close:      cut(s.Close),
		Volume:     cut(s.Volume),
		SMA20:      cut(s.SMA20),
		StochK:     cut(s.StochK),
		StochD:     cut(s.StochD),
		StochJ:     cut(s.StochJ),
		MACD:       cut(s.MACD),
		MACDSignal: cut(s.MACDSignal),
		MACDHist:   cut(s.MACDHist),
		BBLower:    cut(s.BBLower),
		BBMiddle:   cut(s.BBMiddle),
		BBUpper:    cut(s.BBUpper),
	}
}

// IndicatorSnapshot is the fixed window the classifier reads.
type IndicatorSnapshot struct {
	Price        float64 `json:"price"`
	PrevClose    float64 `json:"prev_close"`
	MA20         float64 `json:"ma20"`
	Bias20       float64 `json:"bias20"` // percent
	JCur         float64 `json:"j_cur"`
	JPrev        float64 `json:"j_prev"`
	JPrev2       float64 `json:"j_prev2"`
	MACDHistCur  float64 `json:"macd_hist_cur"`
	MACDHistPrev float64 `json:"macd_hist_prev"`
	BBLower      float64 `json:"bb_lower"`
	BBUpper      float64 `json:"bb_upper"`
	VolCur       float64 `json:"vol_cur"`
	VolAvg10     float64 `json:"vol_avg10"`
}

// Fields returns the snapshot values keyed by name, in declaration order.
func (s IndicatorSnapshot) Fields() []NamedValue {
	return []NamedValue{
		{"price", s.Price},
		{"prev_close", s.PrevClose},
		{"ma20", s.MA20},
		{"bias20", s.Bias20},
		{"j_cur", s.JCur},
		{"j_prev", s.JPrev},
		{"j_prev2", s.JPrev2},
		{"macd_hist_cur", s.MACDHistCur},
		{"macd_hist_prev", s.MACDHistPrev},
		{"bb_lower", s.BBLower},
		{"bb_upper", s.BBUpper},
		{"vol_cur", s.VolCur},
		{"vol_avg10", s.VolAvg10},
	}
}

// NamedValue pairs a field name with its value.
type NamedValue struct {
	Name  string
	Value float64
}

// IsDefined reports whether v is a usable number.
func IsDefined(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
