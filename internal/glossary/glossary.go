package glossary

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one market term.
type Entry struct {
	Term       string `yaml:"term" json:"term"`
	Definition string `yaml:"definition" json:"definition"`
}

// Glossary is an ordered term table.
type Glossary struct {
	entries []Entry
}

var defaultEntries = []Entry{
	{"Long-term holding", "Buying shares and holding them for years, collecting the yearly dividend rather than trading."},
	{"Diversification", "Spreading capital over assets with low return correlation to cut risk without giving up return."},
	{"Margin buying", "Borrowing money from the broker to buy shares. Rising margin balances usually mean retail money is entering and holdings are scattered."},
	{"Short selling", "Borrowing shares from the broker to sell them (a bearish bet), then buying them back to return later."},
	{"Breaking even", "A stock bought and then trapped at a loss climbs back to the original purchase price."},
	{"Net buying/selling", "One side's volume exceeds the other's. Net buying by foreign investors is usually read as bullish."},
	{"Bull market", "Prices are expected to rise: big up days, small down days, moving averages fanning upward."},
	{"Bear market", "Prices are expected to fall: big down days, small up days, moving averages pressing down."},
	{"Short squeeze", "Short sellers forced to buy back at higher prices when the stock rises instead of falling, pushing it up even faster."},
	{"Gap", "The open is above the previous close (gap up) or below it (gap down) with no trades in between."},
	{"P/E ratio", "Price divided by EPS. Measures how expensive a stock is; lower is usually cheaper, but can also hide trouble."},
	{"EPS", "Company earnings divided by shares outstanding: how much each share earns for you."},
	{"Bias", "Distance of price from its moving average, (price - MA) / MA. Large positive bias tends to pull back; large negative bias tends to rebound."},
	{"Bollinger Bands", "A band of middle line (20-day MA), upper band (resistance) and lower band (support). Touching the lower band often rebounds; touching the upper band often pulls back."},
	{"MACD", "Gauges the medium to long term trend. Positive bars show bullish momentum, negative bars bearish momentum. Shrinking positive bars mean the rally is slowing."},
	{"KD indicator", "Gauges overbought and oversold. K above 80 is overheated, below 20 oversold. A golden cross is a buy, a death cross a sell."},
	{"Institutional investors", "Foreign investors, investment trusts (fund companies) and dealers (brokers trading their own book)."},
	{"Volume contraction", "Trading volume shrinks. On a decline it means selling pressure is easing (good); on a rally it means nobody is chasing (bad)."},
}

// Default returns the built-in glossary.
func Default() *Glossary {
	return New(defaultEntries)
}

// New builds a glossary from entries, keeping their order.
func New(entries []Entry) *Glossary {
	cp := make([]Entry, len(entries))
	copy(cp, entries)
	return &Glossary{entries: cp}
}

// Load reads a glossary from a YAML list of term/definition pairs.
func Load(path string) (*Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read glossary: %w", err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse glossary: %w", err)
	}
	for i, e := range entries {
		if strings.TrimSpace(e.Term) == "" {
			return nil, fmt.Errorf("glossary entry %d: empty term", i)
		}
	}
	return New(entries), nil
}

// Entries returns all entries in table order.
func (g *Glossary) Entries() []Entry {
	return g.Search("")
}

// Len returns the number of terms.
func (g *Glossary) Len() int { return len(g.entries) }

// Search returns entries whose term or definition contains query, ignoring case.
// An empty query matches everything.
func (g *Glossary) Search(query string) []Entry {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Entry, 0, len(g.entries))
	for _, e := range g.entries {
		if q == "" ||
			strings.Contains(strings.ToLower(e.Term), q) ||
			strings.Contains(strings.ToLower(e.Definition), q) {
			out = append(out, e)
		}
	}
	return out
}
