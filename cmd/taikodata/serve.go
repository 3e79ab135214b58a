package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"taikodata/internal/config"
	"taikodata/internal/metrics"
	"taikodata/internal/server"
)

func runServe(cmd *cobra.Command, _ []string) error {
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer d.close()

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = d.metrics
	}
	services := server.Services{
		Tokens:    d.router,
		Pools:     d.pools,
		Activity:  d.activity,
		Portfolio: d.portfolio,
		Chain:     d.rpc,
	}
	if d.store != nil {
		services.Snapshots = d.store
	}
	srv := server.New(services, m, logger)

	logger.Info("serve start",
		zap.String("listen", cfg.Listen),
		zap.Int("subgraph_chains", len(cfg.Subgraphs)),
		zap.Int("rpc_chains", len(cfg.RPCURLs)),
		zap.Bool("uniswap_api", cfg.UniswapAPIURL != ""),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("metrics_enabled", cfg.MetricsEnabled),
	)

	return srv.ListenAndServe(ctx, cfg.Listen)
}
