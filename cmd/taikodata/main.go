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
		Use:          "taikodata",
		Short:        "Token, pool and activity data service for Taiko and Uniswap chains",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		RunE:  runServe,
	}
	addCommonFlags(serveCmd)
	serveCmd.Flags().String("listen", ":8080", "HTTP listen address")
	serveCmd.Flags().Bool("metrics-enabled", true, "expose /metrics")
	serveCmd.Flags().Int("activity-page-size", 100, "activity rows requested per account")
	root.AddCommand(serveCmd)

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Poll top tokens and persist snapshots",
		RunE:  runSnapshot,
	}
	addCommonFlags(snapshotCmd)
	addSnapshotFlags(snapshotCmd)
	snapshotCmd.Flags().Duration("poll-interval", 60*time.Second, "time between polls")
	snapshotCmd.Flags().String("state-file", "", "optional local state file instead of the service_state table")
	root.AddCommand(snapshotCmd)

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Write one top-token snapshot (and optionally account activity) as JSONL",
		RunE:  runExport,
	}
	addCommonFlags(exportCmd)
	addSnapshotFlags(exportCmd)
	exportCmd.Flags().String("out", "./data/top_tokens.jsonl", "output JSONL path")
	exportCmd.Flags().String("account", "", "also export this account's activity")
	exportCmd.Flags().String("activity-out", "./data/activity.jsonl", "activity JSONL path")
	exportCmd.Flags().Int("activity-page-size", 100, "activity rows requested per account")
	root.AddCommand(exportCmd)

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded Postgres schema",
		RunE:  runMigrate,
	}
	migrateCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	migrateCmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.AddCommand(migrateCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN")
	cmd.Flags().Duration("request-timeout", 15*time.Second, "per-request upstream timeout")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 250*time.Millisecond, "initial retry backoff")
	cmd.Flags().Duration("cache-ttl", 60*time.Second, "subgraph response cache TTL")
	cmd.Flags().String("uniswap-api-url", "", "Uniswap data API GraphQL endpoint")
}

func addSnapshotFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("snapshot-chains", []string{"167000", "167013"}, "chains to snapshot (IDs or names, comma-separated)")
	cmd.Flags().String("snapshot-period", "DAY", "price change period (HOUR, DAY, WEEK, MONTH, YEAR)")
	cmd.Flags().Int("batch-size", 500, "rows per database batch")
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

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
