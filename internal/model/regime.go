package model

import "fmt"

// RegimeKind is the categorical verdict on an instrument's technical posture.
type RegimeKind int

const (
	Neutral RegimeKind = iota
	TrendingBullish
	Overheated
	OversoldBounce
	WeakBearish
)

var regimeNames = map[RegimeKind]string{
	Neutral:         "NEUTRAL",
	TrendingBullish: "TRENDING_BULLISH",
	Overheated:      "OVERHEATED",
	OversoldBounce:  "OVERSOLD_BOUNCE",
	WeakBearish:     "WEAK_BEARISH",
}

var regimeLabels = map[RegimeKind]string{
	Neutral:         "Neutral (watching)",
	TrendingBullish: "Trending bullish (hold/add)",
	Overheated:      "Overheated (watch for pullback)",
	OversoldBounce:  "Oversold bounce (short-term)",
	WeakBearish:     "Weak/bearish (stay aside)",
}

var regimeColors = map[RegimeKind]Color{
	Neutral:         ColorGray,
	TrendingBullish: ColorGreen,
	Overheated:      ColorOrange,
	OversoldBounce:  ColorBlue,
	WeakBearish:     ColorRed,
}

func (k RegimeKind) String() string {
	if name, ok := regimeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("RegimeKind(%d)", int(k))
}

// MarshalText encodes the kind by name.
func (k RegimeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its name.
func (k *RegimeKind) UnmarshalText(b []byte) error {
	for kind, name := range regimeNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown regime %q", string(b))
}

// Label is the human-readable name of the regime.
func (k RegimeKind) Label() string { return regimeLabels[k] }

// Color is the presentation tag of the regime.
func (k RegimeKind) Color() Color { return regimeColors[k] }

// Color tags a regime for presentation.
type Color string

const (
	ColorGray   Color = "gray"
	ColorGreen  Color = "green"
	ColorOrange Color = "orange"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
)

// Regime is the classifier output: a verdict plus supporting and risk evidence.
type Regime struct {
	Kind        RegimeKind `json:"kind"`
	Label       string     `json:"label"`
	Color       Color      `json:"color"`
	Supporting  []string   `json:"supporting"`
	Risks       []string   `json:"risks"`
	VolumeRatio float64    `json:"volume_ratio"` // latest volume / 10-day average
}

// NewRegime creates an empty verdict of the given kind.
func NewRegime(kind RegimeKind) Regime {
	return Regime{
		Kind:       kind,
		Label:      kind.Label(),
		Color:      kind.Color(),
		Supporting: []string{},
		Risks:      []string{},
	}
}
