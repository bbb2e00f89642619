package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "vammsim",
		Short:        "Interest-rate swap VAMM replay tool",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	replayCmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay an operation script against the engine",
		RunE:  runReplay,
	}

	replayCmd.Flags().String("script", "", "operation script JSONL path")
	replayCmd.Flags().String("out", "./data/results.jsonl", "output results JSONL path")
	replayCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	replayCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	replayCmd.Flags().Int("batch-size", 100, "results per storage batch")
	replayCmd.Flags().Uint64("start-time", 0, "logical clock start (unix seconds, 0 means now)")
	replayCmd.Flags().String("spread", "0", "twap half-spread")
	replayCmd.Flags().String("price-impact-phi", "0", "price impact coefficient")
	replayCmd.Flags().String("price-impact-beta", "1", "price impact exponent")
	replayCmd.Flags().String("oracle-index", "1", "rate oracle start index")
	replayCmd.Flags().String("oracle-apy", "0", "rate oracle drift APY (0 means constant)")
	replayCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(replayCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Load replay results into Postgres",
		RunE:  runExport,
	}

	exportCmd.Flags().String("in", "", "input results JSONL path")
	exportCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	exportCmd.Flags().Int("batch-size", 1000, "rows per DB batch")
	exportCmd.Flags().Int("max-retries", 5, "maximum retry attempts")
	exportCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	exportCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(exportCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
