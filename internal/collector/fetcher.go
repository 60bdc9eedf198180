package collector

import (
	"context"

	"TrendRadar/internal/model"
)

// Fetcher defines the interface for fetching daily market data.
// Bars are returned in chronological order.
type Fetcher interface {
	FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error)
	Name() string
}
