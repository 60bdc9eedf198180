package recorder

import (
	"time"

	"TrendRadar/internal/model"
)

// Verdict is one persisted classification.
type Verdict struct {
	ID          int64            `json:"id"`
	Symbol      string           `json:"symbol"`
	RecordedAt  time.Time        `json:"recorded_at"`
	AsOf        time.Time        `json:"as_of"`
	Kind        model.RegimeKind `json:"kind"`
	Price       float64          `json:"price"`
	MA20        float64          `json:"ma20"`
	Bias20      float64          `json:"bias20"`
	JCur        float64          `json:"j_cur"`
	VolumeRatio float64          `json:"volume_ratio"`
	Supporting  []string         `json:"supporting"`
	Risks       []string         `json:"risks"`
}

// VerdictFromDiagnosis flattens a diagnosis into its persisted form.
func VerdictFromDiagnosis(d *model.Diagnosis) *Verdict {
	return &Verdict{
		Symbol:      d.Symbol,
		AsOf:        d.AsOf,
		Kind:        d.Regime.Kind,
		Price:       d.Snapshot.Price,
		MA20:        d.Snapshot.MA20,
		Bias20:      d.Snapshot.Bias20,
		JCur:        d.Snapshot.JCur,
		VolumeRatio: d.Regime.VolumeRatio,
		Supporting:  d.Regime.Supporting,
		Risks:       d.Regime.Risks,
	}
}

// Recorder persists verdict history for later review.
type Recorder interface {
	RecordVerdict(v *Verdict) error
	RecordScan(report *model.ScanReport) error
	// RecentVerdicts returns the latest verdicts for symbol, newest first.
	RecentVerdicts(symbol string, limit int) ([]Verdict, error)
	Close() error
}
