package chain

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
	"taikodata/internal/model"
)

// Registry holds RPC clients keyed by chain ID. Clients are dialed on first use.
type Registry struct {
	urls    map[chains.ChainID]string
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu      sync.Mutex
	clients map[chains.ChainID]*Client
}

func NewRegistry(urls map[chains.ChainID]string, m *metrics.Metrics, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	copied := make(map[chains.ChainID]string, len(urls))
	for id, url := range urls {
		if url != "" {
			copied[id] = url
		}
	}
	return &Registry{
		urls:    copied,
		metrics: m,
		logger:  logger,
		clients: make(map[chains.ChainID]*Client),
	}
}

// Client returns the RPC client for id.
func (r *Registry) Client(ctx context.Context, id chains.ChainID) (*Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if client, ok := r.clients[id]; ok {
		return client, nil
	}
	url, ok := r.urls[id]
	if !ok {
		return nil, fmt.Errorf("rpc for chain %d: %w", id, model.ErrUnsupportedChain)
	}
	client, err := NewClient(ctx, id, url, r.metrics)
	if err != nil {
		return nil, fmt.Errorf("dial rpc for chain %d: %w", id, err)
	}
	r.clients[id] = client
	r.logger.Info("rpc client ready", zap.Uint64("chain_id", uint64(id)))
	return client, nil
}

// BalanceOf reads an ERC20 balance at the latest block of chain id.
func (r *Registry) BalanceOf(ctx context.Context, id chains.ChainID, token, owner common.Address) (*big.Int, error) {
	client, err := r.Client(ctx, id)
	if err != nil {
		return nil, err
	}
	return client.BalanceOf(ctx, token, owner, nil)
}

// PoolState reads live pool state on chain id.
func (r *Registry) PoolState(ctx context.Context, id chains.ChainID, pool common.Address) (model.PoolMeta, error) {
	client, err := r.Client(ctx, id)
	if err != nil {
		return model.PoolMeta{}, err
	}
	return client.PoolState(ctx, pool, r.logger)
}

// TokenMeta reads ERC20 metadata for address on chain id.
func (r *Registry) TokenMeta(ctx context.Context, id chains.ChainID, address string) (model.TokenMeta, error) {
	if !common.IsHexAddress(address) {
		return model.TokenMeta{}, fmt.Errorf("token %q: %w", address, model.ErrInvalidInput)
	}
	client, err := r.Client(ctx, id)
	if err != nil {
		return model.TokenMeta{}, err
	}
	return client.TokenMeta(ctx, common.HexToAddress(address), r.logger)
}

// Close closes every dialed client.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, client := range r.clients {
		client.Close()
		delete(r.clients, id)
	}
}
