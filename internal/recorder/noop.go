package recorder

import "TrendRadar/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordVerdict(_ *Verdict) error                     { return nil }
func (n *NoopRecorder) RecordScan(_ *model.ScanReport) error               { return nil }
func (n *NoopRecorder) RecentVerdicts(_ string, _ int) ([]Verdict, error) { return nil, nil }
func (n *NoopRecorder) Close() error                                       { return nil }
