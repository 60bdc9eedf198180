package collector

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"TrendRadar/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price float64
	Bars  map[string][]model.Bar
	Errs  map[string]error

	mu    sync.Mutex
	calls map[string]int
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.Bar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	if m.calls == nil {
		m.calls = make(map[string]int)
	}
	m.calls[symbol]++
	m.mu.Unlock()

	if err, ok := m.Errs[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Bars[symbol]; ok {
		if len(bars) > days {
			bars = bars[len(bars)-days:]
		}
		return bars, nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("mock: unknown symbol %s", symbol)
	}
	return GenerateBars(m.Price, days, nil), nil
}

// Calls returns how many times symbol was fetched.
func (m *MockFetcher) Calls(symbol string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[symbol]
}

// GenerateBars builds count daily bars ending yesterday. shape returns the close
// for bar i; nil gives a gentle wave around basePrice.
func GenerateBars(basePrice float64, count int, shape func(i int) float64) []model.Bar {
	if shape == nil {
		shape = func(i int) float64 {
			return basePrice * (1 + 0.03*math.Sin(float64(i)/5) + float64(i-count/2)*0.0005)
		}
	}
	end := time.Now().UTC().Truncate(24 * time.Hour)
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := shape(i)
		bars[i] = model.NewBar(end.AddDate(0, 0, -(count-i)), p*0.999, p*1.005, p*0.995, p, int64(1000000+(i%10)*50000))
	}
	return bars
}
