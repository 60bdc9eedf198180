package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "v1.0.0"

type rootOptions struct {
	configPath string
	logLevel   string
	output     string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:     "radar",
		Short:   "Technical regime scanner for equities and indices",
		Version: version,
		Long: `TrendRadar classifies instruments into one of five technical regimes
(trending bullish, overheated, oversold bounce, weak/bearish, neutral)
from daily bars, moving averages, KDJ, MACD and Bollinger Bands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultConfig = v
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "Path to YAML config")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Override log level (trace|debug|info|warn|error)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "auto", "Output format (auto|text|json)")

	root.AddCommand(
		newScanCmd(opts),
		newDiagnoseCmd(opts),
		newGlossaryCmd(opts),
		newServeCmd(opts),
	)
	return root
}
