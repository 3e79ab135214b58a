package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"taikodata/internal/activity"
	"taikodata/internal/chain"
	"taikodata/internal/chains"
	"taikodata/internal/config"
	"taikodata/internal/metrics"
	"taikodata/internal/portfolio"
	"taikodata/internal/router"
	"taikodata/internal/storage/postgres"
	"taikodata/internal/subgraph"
	"taikodata/internal/taiko"
	"taikodata/internal/thegraph"
	"taikodata/internal/uniswapapi"
)

// deps are the services shared by the commands.
type deps struct {
	metrics   *metrics.Metrics
	subgraphs *subgraph.Registry
	taiko     *taiko.Adapter
	rpc       *chain.Registry
	uniswap   *uniswapapi.Client
	store     *postgres.Store

	router    *router.Router
	pools     *thegraph.Service
	activity  *activity.Service
	portfolio *portfolio.Service
}

func buildDeps(ctx context.Context, cfg config.Config, logger *zap.Logger) (*deps, error) {
	d := &deps{metrics: metrics.NewMetrics("taikodata")}

	endpoints := make(map[chains.ChainID]subgraph.Endpoints, len(cfg.Subgraphs))
	for id, urls := range cfg.Subgraphs {
		endpoints[id] = subgraph.Endpoints{Tokens: urls.Tokens, Pools: urls.Pools, Standard: urls.Standard}
	}
	attempts := cfg.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}
	reg, err := subgraph.NewRegistry(subgraph.RegistryOptions{
		Endpoints:     endpoints,
		CacheTTL:      cfg.CacheTTL,
		Timeout:       cfg.RequestTimeout,
		RetryAttempts: uint(attempts),
		RetryDelay:    cfg.RetryBackoff,
		Logger:        logger,
		Metrics:       d.metrics,
	})
	if err != nil {
		return nil, err
	}
	d.subgraphs = reg
	d.taiko = taiko.NewAdapter(reg, logger)
	d.rpc = chain.NewRegistry(cfg.RPCURLs, d.metrics, logger)

	var standard router.StandardTokens
	var remote activity.RemoteSource
	if cfg.UniswapAPIURL != "" {
		client, err := uniswapapi.New(uniswapapi.Options{
			Endpoint:   cfg.UniswapAPIURL,
			APIKey:     cfg.UniswapAPIKey,
			Timeout:    cfg.RequestTimeout,
			RetryCount: cfg.MaxRetries,
			PageSize:   cfg.ActivityPageSize,
			Logger:     logger,
			Metrics:    d.metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("uniswap data api: %w", err)
		}
		d.uniswap = client
		standard = client
		remote = client
	} else {
		logger.Info("uniswap data api not configured; non-taiko token and activity queries disabled")
	}

	var local activity.LocalStore = activity.NewMemoryStore()
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			d.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			store.Close()
			d.close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		store.SetBatchSize(cfg.BatchSize)
		d.store = store
		local = store.Activities()
	}

	d.router = router.New(d.taiko, standard, logger)
	d.pools = thegraph.NewService(reg, d.rpc, logger)
	d.activity = activity.NewService(d.taiko, remote, local, cfg.ActivityPageSize, logger)
	d.portfolio = portfolio.NewService(d.rpc, d.taiko, logger)
	return d, nil
}

func (d *deps) close() {
	if d.rpc != nil {
		d.rpc.Close()
	}
	if d.store != nil {
		d.store.Close()
	}
}
