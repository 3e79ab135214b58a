package chain

import (
	"context"
	"encoding/hex"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
)

const defaultBlockTTL = 2 * time.Second

// Client wraps go-ethereum RPC. Calls against the latest block are pinned to the current
// block number and cached until the chain advances.
type Client struct {
	chainID   chains.ChainID
	rpcClient *rpc.Client
	ethClient *ethclient.Client
	metrics   *metrics.Metrics

	mu       sync.Mutex
	block    uint64
	blockAt  time.Time
	blockTTL time.Duration
	calls    map[string][]byte

	tokens sync.Map
}

// NewClient creates a new chain client from the RPC URL.
func NewClient(ctx context.Context, chainID chains.ChainID, rpcURL string, m *metrics.Metrics) (*Client, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}

	return &Client{
		chainID:   chainID,
		rpcClient: rpcClient,
		ethClient: ethclient.NewClient(rpcClient),
		metrics:   m,
		blockTTL:  defaultBlockTTL,
		calls:     make(map[string][]byte),
	}, nil
}

// Close closes the underlying RPC client.
func (c *Client) Close() {
	if c.rpcClient != nil {
		c.rpcClient.Close()
	}
}

// LatestBlockNumber returns the latest block number.
func (c *Client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	return c.ethClient.BlockNumber(ctx)
}

// currentBlock returns the latest block number, refreshed at most once per blockTTL.
// A new block drops every cached call result.
func (c *Client) currentBlock(ctx context.Context) (uint64, error) {
	c.mu.Lock()
	if !c.blockAt.IsZero() && time.Since(c.blockAt) < c.blockTTL {
		block := c.block
		c.mu.Unlock()
		return block, nil
	}
	c.mu.Unlock()

	latest, err := c.LatestBlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("block number: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if latest != c.block {
		c.block = latest
		c.calls = make(map[string][]byte)
	}
	c.blockAt = time.Now()
	return c.block, nil
}

// CallContract performs an eth_call. A nil blockNumber means the latest block and the
// result is cached for that block.
func (c *Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	if blockNumber != nil {
		return c.ethClient.CallContract(ctx, msg, blockNumber)
	}

	block, err := c.currentBlock(ctx)
	if err != nil {
		return nil, err
	}
	key := callKey(msg)

	c.mu.Lock()
	if c.block == block {
		if cached, ok := c.calls[key]; ok {
			c.mu.Unlock()
			c.metrics.ObserveRPC(c.chainID.String(), true)
			return cached, nil
		}
	}
	c.mu.Unlock()

	resp, err := c.ethClient.CallContract(ctx, msg, new(big.Int).SetUint64(block))
	c.metrics.ObserveRPC(c.chainID.String(), false)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.block == block {
		c.calls[key] = resp
	}
	c.mu.Unlock()
	return resp, nil
}

func callKey(msg ethereum.CallMsg) string {
	to := ""
	if msg.To != nil {
		to = msg.To.Hex()
	}
	return to + ":" + hex.EncodeToString(msg.Data)
}
