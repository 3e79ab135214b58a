// Package uniswapapi reads token and activity data for non-Taiko chains from the Uniswap
// data API.
package uniswapapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"taikodata/internal/metrics"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultRetryCount = 3
	defaultPageSize   = 100
)

// ErrNotConfigured is returned when no API endpoint is set.
var ErrNotConfigured = errors.New("uniswap data api not configured")

// Options configures a Client.
type Options struct {
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
	PageSize   int
	Transport  http.RoundTripper
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Client posts GraphQL documents to the data API.
type Client struct {
	http     *resty.Client
	endpoint string
	pageSize int
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, ErrNotConfigured
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.RetryCount < 0 {
		opts.RetryCount = 0
	} else if opts.RetryCount == 0 {
		opts.RetryCount = defaultRetryCount
	}
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(200*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if opts.Transport != nil {
		httpClient.SetTransport(opts.Transport)
	} else {
		httpClient.SetTransport(&http.Transport{Proxy: http.ProxyFromEnvironment})
	}
	if opts.APIKey != "" {
		httpClient.SetHeader("x-api-key", opts.APIKey)
	}

	return &Client{
		http:     httpClient,
		endpoint: opts.Endpoint,
		pageSize: opts.PageSize,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
	}, nil
}

type graphqlRequest struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func (c *Client) post(ctx context.Context, operation, query string, vars map[string]any, out any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graphqlRequest{OperationName: operation, Query: query, Variables: vars}).
		Post(c.endpoint)
	if err != nil {
		c.metrics.ObserveUpstream(operation, "error")
		return fmt.Errorf("%s: failed to execute request: %w", operation, err)
	}
	if resp.StatusCode() != http.StatusOK {
		c.metrics.ObserveUpstream(operation, "error")
		return fmt.Errorf("%s: unexpected status code: %d", operation, resp.StatusCode())
	}

	var result graphqlResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		c.metrics.ObserveUpstream(operation, "error")
		return fmt.Errorf("%s: failed to decode response: %w", operation, err)
	}
	if len(result.Errors) > 0 {
		c.metrics.ObserveUpstream(operation, "error")
		return fmt.Errorf("%s: graphql: %s", operation, result.Errors[0].Message)
	}
	c.metrics.ObserveUpstream(operation, "ok")

	if len(result.Data) == 0 || string(result.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(result.Data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", operation, err)
	}
	return nil
}
