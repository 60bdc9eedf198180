package api

import "TrendRadar/internal/model"

// seriesDTO is the JSON form of an indicator series. Undefined values are null.
type seriesDTO struct {
	Symbol     string     `json:"symbol"`
	Dates      []string   `json:"dates"`
	Open       []*float64 `json:"open"`
	High       []*float64 `json:"high"`
	Low        []*float64 `json:"low"`
	Close      []*float64 `json:"close"`
	Volume     []*float64 `json:"volume"`
	SMA20      []*float64 `json:"sma20"`
	StochK     []*float64 `json:"stoch_k"`
	StochD     []*float64 `json:"stoch_d"`
	StochJ     []*float64 `json:"stoch_j"`
	MACD       []*float64 `json:"macd"`
	MACDSignal []*float64 `json:"macd_signal"`
	MACDHist   []*float64 `json:"macd_hist"`
	BBLower    []*float64 `json:"bb_lower"`
	BBMiddle   []*float64 `json:"bb_middle"`
	BBUpper    []*float64 `json:"bb_upper"`
}

func newSeriesDTO(s *model.IndicatorSeries) seriesDTO {
	dates := make([]string, len(s.Dates))
	for i, d := range s.Dates {
		dates[i] = d.Format("2006-01-02")
	}
	return seriesDTO{
		Symbol:     s.Symbol,
		Dates:      dates,
		Open:       nullable(s.Open),
		High:       nullable(s.High),
		Low:        nullable(s.Low),
		Close:      nullable(s.Close),
		Volume:     nullable(s.Volume),
		SMA20:      nullable(s.SMA20),
		StochK:     nullable(s.StochK),
		StochD:     nullable(s.StochD),
		StochJ:     nullable(s.StochJ),
		MACD:       nullable(s.MACD),
		MACDSignal: nullable(s.MACDSignal),
		MACDHist:   nullable(s.MACDHist),
		BBLower:    nullable(s.BBLower),
		BBMiddle:   nullable(s.BBMiddle),
		BBUpper:    nullable(s.BBUpper),
	}
}

func nullable(col []float64) []*float64 {
	out := make([]*float64, len(col))
	for i := range col {
		if model.IsDefined(col[i]) {
			v := col[i]
			out[i] = &v
		}
	}
	return out
}
