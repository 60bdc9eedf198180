package scanner

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendRadar/internal/metrics"
	"TrendRadar/internal/model"
	"TrendRadar/internal/recorder"
	"TrendRadar/internal/strategy"
)

// SeriesSource produces the indicator series of one instrument.
type SeriesSource interface {
	Collect(ctx context.Context, symbol string) (*model.IndicatorSeries, error)
}

// Options tunes batch scans.
type Options struct {
	Concurrency       int
	// ExcludeOverheated drops overheated uptrends from the opportunity list.
	ExcludeOverheated bool
}

// Scanner classifies instruments one at a time or in batches.
type Scanner struct {
	source     SeriesSource
	classifier *strategy.Classifier
	recorder   recorder.Recorder
	opts       Options
	now        func() time.Time
	logger     zerolog.Logger
}

// New creates a Scanner. A nil recorder disables history.
func New(source SeriesSource, classifier *strategy.Classifier, rec recorder.Recorder, opts Options) *Scanner {
	if classifier == nil {
		classifier = strategy.NewClassifier(strategy.DefaultRules())
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	return &Scanner{
		source:     source,
		classifier: classifier,
		recorder:   rec,
		opts:       opts,
		now:        time.Now,
		logger:     log.With().Str("component", "scanner").Logger(),
	}
}

// Diagnose collects, extracts and classifies the latest row of one instrument.
func (s *Scanner) Diagnose(ctx context.Context, symbol string) (*model.Diagnosis, error) {
	d, err := s.diagnose(ctx, symbol)
	if err != nil {
		metrics.ObserveFailure(model.FailureReason(err))
		return nil, err
	}
	metrics.ObserveClassification(d.Regime.Kind.String())
	if err := s.recorder.RecordVerdict(recorder.VerdictFromDiagnosis(d)); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("record verdict failed")
	}
	return d, nil
}

func (s *Scanner) diagnose(ctx context.Context, symbol string) (*model.Diagnosis, error) {
	series, err := s.source.Collect(ctx, symbol)
	if err != nil {
		return nil, err
	}
	snap, err := strategy.BuildLatestSnapshot(series)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}
	regime, err := s.classifier.Classify(snap)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", symbol, err)
	}

	d := &model.Diagnosis{
		Symbol:   symbol,
		AsOf:     series.Dates[series.Len()-1],
		Snapshot: snap,
		Regime:   regime,
		Change:   snap.Price - snap.PrevClose,
	}
	// A zero previous close only loses the percentage.
	if pct, err := strategy.PercentChange(snap.Price, snap.PrevClose); err == nil {
		d.ChangePct = pct
	}
	return d, nil
}

type outcome struct {
	diag *model.Diagnosis
	err  error
}

// Scan diagnoses every symbol with bounded concurrency. One instrument failing
// never aborts the batch; its reason lands in the report's failures. On context
// cancellation no further instruments start and the partial report is returned
// together with the context error.
func (s *Scanner) Scan(ctx context.Context, symbols []string) (*model.ScanReport, error) {
	started := s.now()
	unique := Dedupe(symbols)
	outcomes := make([]outcome, len(unique))

	sem := make(chan struct{}, s.opts.Concurrency)
	var wg sync.WaitGroup

	cancelFrom := func(i int) {
		for j := i; j < len(unique); j++ {
			outcomes[j].err = ctx.Err()
		}
	}

dispatch:
	for i, symbol := range unique {
		// select picks randomly when both cases are ready, so check first.
		if ctx.Err() != nil {
			cancelFrom(i)
			break
		}
		select {
		case <-ctx.Done():
			cancelFrom(i)
			break dispatch
		case sem <- struct{}{}:
		}
		if ctx.Err() != nil {
			<-sem
			cancelFrom(i)
			break
		}

		wg.Add(1)
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			d, err := s.Diagnose(ctx, symbol)
			outcomes[i] = outcome{diag: d, err: err}
		}(i, symbol)
	}
	wg.Wait()

	report := &model.ScanReport{
		StartedAt:     started,
		Scanned:       len(unique),
		Results:       []model.ScanResult{},
		Opportunities: []model.ScanResult{},
		Failures:      []model.ScanFailure{},
	}
	for i, o := range outcomes {
		if o.err != nil {
			reason := model.FailureReason(o.err)
			s.logger.Warn().Err(o.err).Str("symbol", unique[i]).Str("reason", reason).Msg("instrument skipped")
			report.Failures = append(report.Failures, model.ScanFailure{
				Symbol: unique[i],
				Reason: reason,
				Err:    o.err.Error(),
			})
			continue
		}
		res := resultOf(o.diag)
		report.Results = append(report.Results, res)
		if s.isOpportunity(res.Kind) {
			report.Opportunities = append(report.Opportunities, res)
		}
	}
	report.FinishedAt = s.now()

	metrics.ObserveScan(report.FinishedAt.Sub(started), len(report.Opportunities))
	if err := s.recorder.RecordScan(report); err != nil {
		s.logger.Warn().Err(err).Msg("record scan failed")
	}
	s.logger.Info().
		Int("scanned", report.Scanned).
		Int("opportunities", len(report.Opportunities)).
		Int("failures", len(report.Failures)).
		Msg("scan finished")

	return report, ctx.Err()
}

func (s *Scanner) isOpportunity(kind model.RegimeKind) bool {
	switch kind {
	case model.TrendingBullish, model.OversoldBounce:
		return true
	case model.Overheated:
		return !s.opts.ExcludeOverheated
	}
	return false
}

func resultOf(d *model.Diagnosis) model.ScanResult {
	return model.ScanResult{
		Symbol:      d.Symbol,
		Price:       d.Snapshot.Price,
		Kind:        d.Regime.Kind,
		Label:       d.Regime.Label,
		VolumeRatio: d.Regime.VolumeRatio,
		Bias20:      d.Snapshot.Bias20,
		JPrev:       d.Snapshot.JPrev,
		JCur:        d.Snapshot.JCur,
	}
}

// Dedupe trims symbols and drops blanks and repeats, keeping first-seen order.
func Dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			continue
		}
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}
