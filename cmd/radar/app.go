package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"TrendRadar/internal/collector"
	"TrendRadar/internal/config"
	"TrendRadar/internal/glossary"
	"TrendRadar/internal/logger"
	"TrendRadar/internal/recorder"
	"TrendRadar/internal/scanner"
	"TrendRadar/internal/strategy"
)

// app holds the components shared by every command.
type app struct {
	cfg       *config.Config
	collector *collector.Collector
	scanner   *scanner.Scanner
	recorder  recorder.Recorder
	glossary  *glossary.Glossary
	closers   []func() error
	logger    zerolog.Logger
}

func loadConfig(opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newApp wires configuration into components. withHistory opens the
// SQLite recorder; one-shot commands skip it.
func newApp(ctx context.Context, opts *rootOptions, withHistory bool) (*app, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, logger: log.With().Str("component", "app").Logger()}

	fetcher, err := a.buildFetcher(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.logger.Info().Str("source", fetcher.Name()).Msg("data source ready")
	a.collector = collector.NewCollector(fetcher, cfg.DataSource.HistoryDays)

	a.recorder = recorder.NewNoopRecorder()
	if withHistory && cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			a.logger.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			a.recorder = sr
			a.closers = append(a.closers, sr.Close)
		}
	}

	a.glossary = glossary.Default()
	if cfg.Glossary.Path != "" {
		g, err := glossary.Load(cfg.Glossary.Path)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.glossary = g
	}

	a.scanner = scanner.New(a.collector, strategy.NewClassifier(cfg.Rules), a.recorder, scanner.Options{
		Concurrency:       cfg.Scan.Concurrency,
		ExcludeOverheated: !cfg.Scan.IncludeOverheated,
	})
	return a, nil
}

func (a *app) buildFetcher(ctx context.Context) (collector.Fetcher, error) {
	ds := a.cfg.DataSource
	clientOpts := collector.ClientOptions{
		Timeout:        ds.Timeout,
		RequestsPerSec: ds.RequestsPerSec,
		MaxRetries:     ds.MaxRetries,
		Proxy:          a.cfg.Proxy,
	}

	var f collector.Fetcher
	switch ds.Provider {
	case "rest":
		f = collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, clientOpts)
	case "mock":
		f = &collector.MockFetcher{Price: 100}
	default:
		f = collector.NewYahooFetcher(clientOpts)
	}

	c := a.cfg.Cache
	switch c.Backend {
	case "redis":
		rc, err := collector.NewRedisCache(ctx, c.RedisAddr, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		a.closers = append(a.closers, rc.Close)
		return collector.NewCachedFetcher(f, rc, c.TTL), nil
	case "memory":
		return collector.NewCachedFetcher(f, collector.NewMemoryCache(), c.TTL), nil
	default:
		return f, nil
	}
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn().Err(err).Msg("close failed")
		}
	}
	a.closers = nil
}
