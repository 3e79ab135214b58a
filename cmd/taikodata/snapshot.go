package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taikodata/internal/config"
	"taikodata/internal/model"
	"taikodata/internal/snapshot"
)

func runSnapshot(cmd *cobra.Command, _ []string) error {
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

	if cfg.PGDSN == "" {
		return fmt.Errorf("pg dsn is required")
	}
	period, err := model.ParseTimePeriod(cfg.SnapshotPeriod)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	var stateStore snapshot.StateStore
	if cfg.StateFile != "" {
		stateStore = &snapshot.FileStateStore{Path: cfg.StateFile}
	} else {
		stateStore = &snapshot.DBStateStore{Backend: d.store, Name: "snapshot:" + period.String()}
	}

	runner := snapshot.NewRunner(snapshot.Config{
		Chains:       cfg.SnapshotChains,
		Period:       period,
		Interval:     cfg.PollInterval,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Refresher:    d.subgraphs,
		StateStore:   stateStore,
	}, d.router, d.store, d.metrics, logger)

	logger.Info("snapshot start",
		zap.Int("chains", len(cfg.SnapshotChains)),
		zap.String("period", period.String()),
		zap.Duration("interval", cfg.PollInterval),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.String("state_file", cfg.StateFile),
	)

	return runner.Run(ctx)
}
