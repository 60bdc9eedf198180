package model

import "time"

// Diagnosis is the full verdict for one instrument.
type Diagnosis struct {
	Symbol    string            `json:"symbol"`
	AsOf      time.Time         `json:"as_of"`
	Snapshot  IndicatorSnapshot `json:"snapshot"`
	Regime    Regime            `json:"regime"`
	Change    float64           `json:"change"`
	ChangePct float64           `json:"change_pct"`
}

// ScanResult is one classified instrument of a batch scan.
type ScanResult struct {
	Symbol      string     `json:"symbol"`
	Price       float64    `json:"price"`
	Kind        RegimeKind `json:"kind"`
	Label       string     `json:"label"`
	VolumeRatio float64    `json:"volume_ratio"`
	Bias20      float64    `json:"bias20"`
	JPrev       float64    `json:"j_prev"`
	JCur        float64    `json:"j_cur"`
}

// ScanFailure is an instrument that could not be classified.
type ScanFailure struct {
	Symbol string `json:"symbol"`
	Reason string `json:"reason"`
	Err    string `json:"error"`
}

// ScanReport aggregates a batch scan.
type ScanReport struct {
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Scanned       int           `json:"scanned"`
	Results       []ScanResult  `json:"results"`
	Opportunities []ScanResult  `json:"opportunities"`
	Failures      []ScanFailure `json:"failures"`
}
