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
	"taikodata/internal/storage"
)

func runExport(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	account, _ := cmd.Flags().GetString("account")
	activityOut, _ := cmd.Flags().GetString("activity-out")

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
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

	sink := storage.NewJsonlStorage(cfg.Out)
	runner := snapshot.NewRunner(snapshot.Config{
		Chains:       cfg.SnapshotChains,
		Period:       period,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
		Refresher:    d.subgraphs,
	}, d.router, sink, d.metrics, logger)

	rows, err := runner.RunOnce(ctx)
	if err != nil {
		return err
	}
	logger.Info("export complete", zap.Int("rows", rows), zap.String("out", sink.Path()))

	if account == "" {
		return nil
	}
	return exportActivity(ctx, d, cfg, account, storage.NewJsonlStorage(activityOut), logger)
}

func exportActivity(ctx context.Context, d *deps, cfg config.Config, account string, out *storage.JsonlStorage, logger *zap.Logger) error {
	total := 0
	for _, id := range cfg.SnapshotChains {
		activities, err := d.activity.All(ctx, id, account)
		if err != nil {
			return fmt.Errorf("activity on chain %d: %w", id, err)
		}
		records := make([]any, 0, len(activities))
		for _, a := range activities {
			records = append(records, a)
		}
		if err := out.Append(records...); err != nil {
			return err
		}
		total += len(activities)
	}
	logger.Info("activity export complete", zap.Int("rows", total), zap.String("out", out.Path()))
	return nil
}
