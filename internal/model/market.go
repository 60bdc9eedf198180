package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PricePlaces is the number of decimal places prices are rounded to on ingest.
const PricePlaces = 4

// Bar represents a single daily candlestick.
type Bar struct {
	Time   time.Time       `json:"time"`
	Open   decimal.Decimal `json:"open"`
	High   decimal.Decimal `json:"high"`
	Low    decimal.Decimal `json:"low"`
	Close  decimal.Decimal `json:"close"`
	Volume int64           `json:"volume"`
}

// NewBar builds a Bar from raw float quotes, rounding prices to PricePlaces.
func NewBar(t time.Time, open, high, low, close float64, volume int64) Bar {
	return Bar{
		Time:   t,
		Open:   decimal.NewFromFloat(open).Round(PricePlaces),
		High:   decimal.NewFromFloat(high).Round(PricePlaces),
		Low:    decimal.NewFromFloat(low).Round(PricePlaces),
		Close:  decimal.NewFromFloat(close).Round(PricePlaces),
		Volume: volume,
	}
}
