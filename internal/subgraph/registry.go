package subgraph

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
)

// ErrNoClient is returned when no subgraph is configured for a chain. Callers treat it as
// "skip the query".
var ErrNoClient = errors.New("no subgraph client for chain")

// Endpoints lists the subgraph URLs for one chain. Tokens and Pools are the Taiko
// subgraphs; Standard is the Uniswap v3 subgraph of a non-Taiko chain.
type Endpoints struct {
	Tokens   string
	Pools    string
	Standard string
}

// RegistryOptions configures every client built by NewRegistry.
type RegistryOptions struct {
	Endpoints     map[chains.ChainID]Endpoints
	HTTPClient    *http.Client
	CacheTTL      time.Duration
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// Registry holds subgraph clients keyed by chain ID.
type Registry struct {
	tokens   map[chains.ChainID]*Client
	pools    map[chains.ChainID]*Client
	standard map[chains.ChainID]*Client
}

// NewRegistry builds clients for every non-empty endpoint.
func NewRegistry(opts RegistryOptions) (*Registry, error) {
	r := &Registry{
		tokens:   make(map[chains.ChainID]*Client),
		pools:    make(map[chains.ChainID]*Client),
		standard: make(map[chains.ChainID]*Client),
	}
	build := func(id chains.ChainID, name, url string, into map[chains.ChainID]*Client) error {
		if url == "" {
			return nil
		}
		client, err := NewClient(Options{
			ChainID:       id,
			Name:          name,
			Endpoint:      url,
			HTTPClient:    opts.HTTPClient,
			CacheTTL:      opts.CacheTTL,
			Timeout:       opts.Timeout,
			RetryAttempts: opts.RetryAttempts,
			RetryDelay:    opts.RetryDelay,
			Logger:        opts.Logger,
			Metrics:       opts.Metrics,
		})
		if err != nil {
			return fmt.Errorf("chain %d %s subgraph: %w", id, name, err)
		}
		into[id] = client
		return nil
	}

	for id, ep := range opts.Endpoints {
		if err := build(id, "tokens", ep.Tokens, r.tokens); err != nil {
			return nil, err
		}
		if err := build(id, "pools", ep.Pools, r.pools); err != nil {
			return nil, err
		}
		if err := build(id, "standard", ep.Standard, r.standard); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// TokenClient returns the Taiko token subgraph client for id.
func (r *Registry) TokenClient(id chains.ChainID) (*Client, error) {
	return lookup(r.tokens, id)
}

// PoolClient returns the Taiko pool subgraph client for id.
func (r *Registry) PoolClient(id chains.ChainID) (*Client, error) {
	return lookup(r.pools, id)
}

// StandardClient returns the Uniswap v3 subgraph client for a non-Taiko chain. Unknown
// chains fall back to Ethereum mainnet.
func (r *Registry) StandardClient(id chains.ChainID) (*Client, error) {
	if client, ok := r.standard[id]; ok {
		return client, nil
	}
	return lookup(r.standard, chains.Ethereum)
}

// InvalidateAll drops the cached responses of every client.
func (r *Registry) InvalidateAll() {
	for _, group := range []map[chains.ChainID]*Client{r.tokens, r.pools, r.standard} {
		for _, client := range group {
			client.Invalidate()
		}
	}
}

func lookup(clients map[chains.ChainID]*Client, id chains.ChainID) (*Client, error) {
	client, ok := clients[id]
	if !ok {
		return nil, fmt.Errorf("chain %d: %w", id, ErrNoClient)
	}
	return client, nil
}
