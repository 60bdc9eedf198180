package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendRadar/internal/calculator"
	"TrendRadar/internal/model"
)

// DefaultHistoryDays is how many daily bars are requested per instrument.
const DefaultHistoryDays = 120

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher     Fetcher
	Engine      *calculator.Engine
	HistoryDays int
	logger      zerolog.Logger
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, historyDays int) *Collector {
	if historyDays < calculator.MinBars {
		historyDays = DefaultHistoryDays
	}
	return &Collector{
		Fetcher:     fetcher,
		Engine:      calculator.NewEngine(),
		HistoryDays: historyDays,
		logger:      log.With().Str("component", "collector").Logger(),
	}
}

// Collect fetches daily bars for symbol and computes the indicator series.
func (c *Collector) Collect(ctx context.Context, symbol string) (*model.IndicatorSeries, error) {
	bars, err := c.Fetcher.FetchDailyBars(ctx, symbol, c.HistoryDays)
	if err != nil {
		return nil, fmt.Errorf("fetch %s from %s: %w", symbol, c.Fetcher.Name(), err)
	}
	if len(bars) < c.Engine.MinBars {
		return nil, fmt.Errorf("%w: %s returned %d bars, need %d",
			model.ErrInsufficientHistory, symbol, len(bars), c.Engine.MinBars)
	}
	c.logger.Debug().Str("symbol", symbol).Int("bars", len(bars)).Msg("bars fetched")
	return c.Engine.Compute(symbol, bars)
}
