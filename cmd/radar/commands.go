package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"TrendRadar/internal/api"
	"TrendRadar/internal/glossary"
	"TrendRadar/internal/model"
	"TrendRadar/internal/notifier"
	"TrendRadar/internal/scheduler"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func newScanCmd(opts *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "scan [symbols...]",
		Short: "Scan the watch list (or the given symbols) for opportunities",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			asJSON, err := useJSON(opts.output)
			if err != nil {
				return err
			}
			targets := args
			if len(targets) == 0 {
				targets = a.cfg.Scan.Targets
			}

			report, scanErr := a.scanner.Scan(ctx, targets)
			if asJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else if err := renderScanReport(cmd.OutOrStdout(), report, all); err != nil {
				return err
			}
			return scanErr
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "List every classified instrument, not only opportunities")
	return cmd
}

func newDiagnoseCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "diagnose <symbol> [symbol...]",
		Aliases: []string{"diag"},
		Short:   "Classify the latest session of one or more instruments",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()

			asJSON, err := useJSON(opts.output)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			var diags []*model.Diagnosis
			var failures []model.ScanFailure
			for _, symbol := range args {
				d, err := a.scanner.Diagnose(ctx, symbol)
				if err != nil {
					failures = append(failures, model.ScanFailure{
						Symbol: symbol, Reason: model.FailureReason(err), Err: err.Error(),
					})
					if !asJSON {
						fmt.Fprintf(out, "[%s] error: %v\n\n", symbol, err)
					}
					continue
				}
				diags = append(diags, d)
				if !asJSON {
					renderDiagnosis(out, d)
					fmt.Fprintln(out)
				}
			}

			if asJSON {
				if err := writeJSON(out, map[string]interface{}{"results": diags, "failures": failures}); err != nil {
					return err
				}
			}
			if len(failures) > 0 {
				return fmt.Errorf("%d of %d instruments could not be classified", len(failures), len(args))
			}
			return nil
		},
	}
}

func newGlossaryCmd(opts *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "glossary [query]",
		Short: "Look up market terms",
		RunE: func(cmd *cobra.Command, args []string) error {
			g := glossary.Default()
			if path != "" {
				loaded, err := glossary.Load(path)
				if err != nil {
					return err
				}
				g = loaded
			}
			asJSON, err := useJSON(opts.output)
			if err != nil {
				return err
			}
			entries := g.Search(strings.Join(args, " "))
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			renderGlossary(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "Load terms from a YAML file instead of the built-in table")
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daily scan scheduler, Telegram bot and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			a, err := newApp(ctx, opts, true)
			if err != nil {
				return err
			}
			defer a.Close()
			cfg := a.cfg

			var tn *notifier.TelegramNotifier
			var n notifier.Notifier
			if cfg.TelegramEnabled() {
				tn, err = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID,
					notifier.TelegramOptions{Proxy: cfg.Proxy})
				if err != nil {
					return err
				}
				n = tn
			} else {
				a.logger.Warn().Msg("telegram not configured, reports are only logged and served over HTTP")
			}

			sched := scheduler.NewScheduler(ctx, a.scanner, n, a.glossary, cfg.Scan.Targets)
			if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				a.logger.Info().Msg("telegram polling started")
			}
			if cfg.Schedule.RunOnStart {
				a.logger.Info().Msg("run_on_start enabled, scanning now")
				go sched.RunScanNow()
			}

			srv := api.NewServer(&api.Handler{
				Diagnoser: a.scanner,
				Series:    a.collector,
				Reports:   sched,
				History:   a.recorder,
				Glossary:  a.glossary,
			}, cfg.API.Addr)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			a.logger.Info().Msg("TrendRadar is running. Press Ctrl+C to stop.")
			select {
			case <-ctx.Done():
				a.logger.Info().Msg("shutdown signal received, stopping")
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			if err := srv.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		},
	}
}
