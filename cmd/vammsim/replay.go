package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"rateVamm/internal/config"
	"rateVamm/internal/sim"
	"rateVamm/internal/storage"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Script == "" {
		return fmt.Errorf("script path is required")
	}

	spread, err := decimal.NewFromString(cfg.Spread)
	if err != nil {
		return fmt.Errorf("parse spread: %w", err)
	}
	phi, err := decimal.NewFromString(cfg.PriceImpactPhi)
	if err != nil {
		return fmt.Errorf("parse price-impact-phi: %w", err)
	}
	beta, err := decimal.NewFromString(cfg.PriceImpactBeta)
	if err != nil {
		return fmt.Errorf("parse price-impact-beta: %w", err)
	}
	oracleIndex, err := decimal.NewFromString(cfg.OracleIndex)
	if err != nil {
		return fmt.Errorf("parse oracle-index: %w", err)
	}
	oracleAPY, err := decimal.NewFromString(cfg.OracleAPY)
	if err != nil {
		return fmt.Errorf("parse oracle-apy: %w", err)
	}

	startTime := cfg.StartTime
	if startTime == 0 {
		startTime = uint64(time.Now().Unix())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storageSink := storage.NewJsonlStorage(cfg.Out)

	runner := sim.NewRunner(sim.RunConfig{
		ScriptPath:        cfg.Script,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
		StartTime:         startTime,
		Spread:            spread,
		PriceImpactPhi:    phi,
		PriceImpactBeta:   beta,
		OracleIndex:       oracleIndex,
		OracleAPY:         oracleAPY,
	}, storageSink, logger)

	logger.Info("replay start",
		zap.String("script", cfg.Script),
		zap.String("out", cfg.Out),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Uint64("start_time", startTime),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
	)

	return runner.Run(ctx)
}
