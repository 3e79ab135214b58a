package subgraph

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/machinebox/graphql"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
)

const (
	defaultCacheTTL      = 60 * time.Second
	defaultTimeout       = 15 * time.Second
	defaultRetryAttempts = 3
	defaultRetryDelay    = 250 * time.Millisecond
)

// Options configures a Client.
type Options struct {
	ChainID       chains.ChainID
	Name          string
	Endpoint      string
	HTTPClient    *http.Client
	CacheTTL      time.Duration
	Timeout       time.Duration
	RetryAttempts uint
	RetryDelay    time.Duration
	Logger        *zap.Logger
	Metrics       *metrics.Metrics
}

// Client queries one subgraph endpoint. Identical concurrent queries share a single
// request and results are cached until the TTL expires.
type Client struct {
	chainID  chains.ChainID
	name     string
	endpoint string
	gql      *graphql.Client
	cache    *cache.Cache
	flight   singleflight.Group

	timeout       time.Duration
	retryAttempts uint
	retryDelay    time.Duration

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewClient creates a subgraph client from opts.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("subgraph endpoint is required")
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryAttempts == 0 {
		opts.RetryAttempts = defaultRetryAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Name == "" {
		opts.Name = "subgraph"
	}

	return &Client{
		chainID:       opts.ChainID,
		name:          opts.Name,
		endpoint:      opts.Endpoint,
		gql:           graphql.NewClient(opts.Endpoint, graphql.WithHTTPClient(httpClient)),
		cache:         cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		timeout:       opts.Timeout,
		retryAttempts: opts.RetryAttempts,
		retryDelay:    opts.RetryDelay,
		logger:        opts.Logger.With(zap.String("subgraph", opts.Name), zap.Uint64("chain_id", uint64(opts.ChainID))),
		metrics:       opts.Metrics,
	}, nil
}

// ChainID returns the chain the client serves.
func (c *Client) ChainID() chains.ChainID {
	return c.chainID
}

// Endpoint returns the subgraph URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Invalidate drops every cached response.
func (c *Client) Invalidate() {
	c.cache.Flush()
}

// Query runs a GraphQL document and decodes its data into out. operation labels logs and
// metrics.
func (c *Client) Query(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	key, err := cacheKey(query, vars)
	if err != nil {
		return fmt.Errorf("%s: %w", operation, err)
	}

	if raw, ok := c.cache.Get(key); ok {
		c.metrics.ObserveCache(c.name, true)
		return decodeData(operation, raw.([]byte), out)
	}
	c.metrics.ObserveCache(c.name, false)

	// The shared fetch outlives any single caller; each caller only stops waiting on its
	// own context.
	flight := c.flight.DoChan(key, func() (any, error) {
		data, err := c.fetch(context.WithoutCancel(ctx), operation, query, vars)
		if err != nil {
			return nil, err
		}
		c.cache.Set(key, data, cache.DefaultExpiration)
		return data, nil
	})
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", operation, ctx.Err())
	case res := <-flight:
		if res.Err != nil {
			return res.Err
		}
		if res.Shared {
			c.logger.Debug("shared subgraph flight", zap.String("operation", operation))
		}
		return decodeData(operation, res.Val.([]byte), out)
	}
}

func (c *Client) fetch(ctx context.Context, operation, query string, vars map[string]any) ([]byte, error) {
	start := time.Now()
	data, err := retry.DoWithData(
		func() ([]byte, error) {
			callCtx, cancel := context.WithTimeout(ctx, c.timeout)
			defer cancel()

			req := graphql.NewRequest(query)
			for k, v := range vars {
				req.Var(k, v)
			}
			req.Header.Set("Cache-Control", "no-cache")

			var raw json.RawMessage
			if err := c.gql.Run(callCtx, req, &raw); err != nil {
				if ctx.Err() != nil {
					return nil, retry.Unrecoverable(ctx.Err())
				}
				if isQueryError(err) {
					return nil, retry.Unrecoverable(err)
				}
				return nil, err
			}
			return raw, nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("subgraph query retry",
				zap.String("operation", operation),
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.ObserveSubgraph(c.chainID.String(), c.name, operation, outcome, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s query: %w", operation, err)
	}
	return data, nil
}

func decodeData(operation string, raw []byte, out any) error {
	if out == nil || len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s decode: %w", operation, err)
	}
	return nil
}

func cacheKey(query string, vars map[string]any) (string, error) {
	encoded, err := json.Marshal(vars)
	if err != nil {
		return "", fmt.Errorf("encode variables: %w", err)
	}
	sum := sha256.New()
	sum.Write([]byte(query))
	sum.Write([]byte{0})
	sum.Write(encoded)
	return hex.EncodeToString(sum.Sum(nil)), nil
}

// isQueryError reports errors returned by the subgraph itself. Those fail the same way on
// every attempt.
func isQueryError(err error) bool {
	msg := err.Error()
	return strings.HasPrefix(msg, "graphql: ") && !strings.Contains(msg, "non-200")
}
