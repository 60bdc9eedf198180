package scheduler

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendRadar/internal/glossary"
	"TrendRadar/internal/model"
	"TrendRadar/internal/notifier"
)

// DefaultScanCron runs after the Taiwan close on weekdays.
const DefaultScanCron = "0 40 13 * * 1-5"

// Runner diagnoses instruments.
type Runner interface {
	Diagnose(ctx context.Context, symbol string) (*model.Diagnosis, error)
	Scan(ctx context.Context, symbols []string) (*model.ScanReport, error)
}

// Scheduler manages cron tasks and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   Runner
	Notifier notifier.Notifier // nil disables delivery
	Glossary *glossary.Glossary
	Targets  []string
	Ctx      context.Context

	mu     sync.RWMutex
	latest *model.ScanReport
	logger zerolog.Logger
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner, n notifier.Notifier, g *glossary.Glossary, targets []string) *Scheduler {
	if g == nil {
		g = glossary.Default()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Runner:   runner,
		Notifier: n,
		Glossary: g,
		Targets:  targets,
		Ctx:      ctx,
		logger:   log.With().Str("component", "scheduler").Logger(),
	}
}

// Register adds the daily scan task.
func (s *Scheduler) Register(scanCron string) error {
	if scanCron == "" {
		scanCron = DefaultScanCron
	}
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.logger.Info().Int("targets", len(s.Targets)).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.logger.Info().Msg("scheduler stopped")
}

// RunScanNow executes the scan task immediately (manual trigger / run on start).
func (s *Scheduler) RunScanNow() *model.ScanReport {
	return s.runScan()
}

func (s *Scheduler) scanTask() { s.runScan() }

func (s *Scheduler) runScan() *model.ScanReport {
	s.logger.Info().Msg("running scan task")
	report, err := s.Runner.Scan(s.Ctx, s.Targets)
	if err != nil {
		s.logger.Error().Err(err).Msg("scan interrupted")
	}
	if report == nil {
		return nil
	}
	s.setLatest(report)
	s.trySend(notifier.FormatScanReport(report))
	return report
}

// LatestReport returns the most recent scan report, if any.
func (s *Scheduler) LatestReport() (*model.ScanReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

func (s *Scheduler) setLatest(r *model.ScanReport) {
	s.mu.Lock()
	s.latest = r
	s.mu.Unlock()
}

const helpText = "Available commands:\n" +
	"• /scan: scan the watch list now\n" +
	"• /diag &lt;symbols&gt;: diagnose one or more instruments\n" +
	"• /term &lt;query&gt;: look up a market term"

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	// Telegram appends the bot name in groups: /scan@radar_bot
	name := strings.ToLower(strings.SplitN(fields[0], "@", 2)[0])
	args := fields[1:]

	switch name {
	case "/scan":
		report, err := s.Runner.Scan(ctx, s.Targets)
		if report == nil {
			if err == nil {
				err = errors.New("no report")
			}
			return fmt.Sprintf("❌ Scan failed: %s", html.EscapeString(err.Error()))
		}
		s.setLatest(report)
		return notifier.FormatScanReport(report)
	case "/diag":
		if len(args) == 0 {
			return "Usage: /diag &lt;symbol&gt; [symbol...]"
		}
		parts := make([]string, 0, len(args))
		for _, symbol := range args {
			d, err := s.Runner.Diagnose(ctx, symbol)
			if err != nil {
				parts = append(parts, fmt.Sprintf("❌ <b>%s</b>: %s (%s)",
					html.EscapeString(symbol), html.EscapeString(err.Error()), model.FailureReason(err)))
				continue
			}
			parts = append(parts, notifier.FormatDiagnosis(d))
		}
		return strings.Join(parts, "\n")
	case "/term":
		return notifier.FormatGlossary(s.Glossary.Search(strings.Join(args, " ")))
	default:
		return helpText
	}
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, 3); err != nil {
		s.logger.Error().Err(err).Msg("send notification failed")
	}
}
