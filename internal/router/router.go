// Package router sends token queries to the backend serving the requested chain: the
// Taiko subgraphs for Taiko networks and the Uniswap data API for every other chain.
package router

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/taiko"
)

// TaikoTokens is the Taiko side of token routing.
type TaikoTokens interface {
	TopTokens(ctx context.Context, id chains.ChainID, period model.TimePeriod, filter string) (model.TopTokens, error)
	Token(ctx context.Context, id chains.ChainID, address string) (*taiko.TokenDetail, error)
	PriceHistory(ctx context.Context, id chains.ChainID, address string, period model.TimePeriod) ([]model.PricePoint, error)
}

// StandardTokens is the Uniswap data API side of token routing.
type StandardTokens interface {
	Token(ctx context.Context, chain chains.GQLChain, address string) (*model.NormalizedToken, error)
	TokenPrice(ctx context.Context, chain chains.GQLChain, address string, duration model.TimePeriod) (*model.TokenPrice, error)
}

// Router routes on the chain ID in the request, never on a connected wallet. View chain
// names only label the IDs of the returned view-models.
type Router struct {
	taiko    TaikoTokens
	standard StandardTokens
	logger   *zap.Logger
}

// New creates a Router. standard may be nil when no data API is configured.
func New(taikoTokens TaikoTokens, standard StandardTokens, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{taiko: taikoTokens, standard: standard, logger: logger}
}

// standardChain returns the data API chain name for a non-Taiko chain.
func (r *Router) standardChain(id chains.ChainID, query string) (chains.GQLChain, error) {
	name, ok := chains.GQLChainFor(id)
	if !ok || r.standard == nil {
		return "", fmt.Errorf("%s on chain %d: %w", query, id, model.ErrUnsupportedChain)
	}
	return name, nil
}

// TopTokens returns the explore list for a Taiko chain.
func (r *Router) TopTokens(ctx context.Context, id chains.ChainID, period model.TimePeriod, filter string) (model.TopTokens, error) {
	if !chains.IsTaiko(id) {
		return model.TopTokens{}, fmt.Errorf("top tokens on chain %d: %w", id, model.ErrUnsupportedChain)
	}
	return r.taiko.TopTokens(ctx, id, period, filter)
}

// TokenQuery returns the token detail view for address on chain id.
func (r *Router) TokenQuery(ctx context.Context, id chains.ChainID, address string) (*model.NormalizedToken, error) {
	if address == "" {
		return nil, fmt.Errorf("token address: %w", model.ErrInvalidInput)
	}
	if !chains.IsTaiko(id) {
		name, err := r.standardChain(id, "token query")
		if err != nil {
			return nil, err
		}
		return r.standard.Token(ctx, name, address)
	}

	detail, err := r.taiko.Token(ctx, id, address)
	if err != nil {
		return nil, err
	}
	return tokenFromDetail(detail), nil
}

func tokenFromDetail(d *taiko.TokenDetail) *model.NormalizedToken {
	base := d.Address + "-" + d.Chain
	return &model.NormalizedToken{
		ID:       base,
		Address:  d.Address,
		Chain:    d.Chain,
		Symbol:   d.Symbol,
		Name:     d.Name,
		Decimals: d.Decimals,
		Standard: "ERC20",
		Market: &model.TokenMarket{
			ID:               base + "-USD",
			TotalValueLocked: &model.Amount{ID: base + "-tvl", Value: d.TVLUSD, Currency: "USD"},
			Price:            &model.Amount{ID: base + "-price", Value: d.PriceUSD, Currency: "USD"},
			Volume24H:        &model.Amount{ID: base + "-volume24h", Value: d.VolumeUSD, Currency: "USD"},
		},
	}
}

// TokenPriceQuery returns the latest price and price history of address on chain id over
// duration. A Taiko token without history is ErrNotFound.
func (r *Router) TokenPriceQuery(ctx context.Context, id chains.ChainID, address string, duration model.TimePeriod) (*model.TokenPrice, error) {
	if address == "" {
		return nil, fmt.Errorf("token address: %w", model.ErrInvalidInput)
	}
	if !chains.IsTaiko(id) {
		name, err := r.standardChain(id, "token price query")
		if err != nil {
			return nil, err
		}
		return r.standard.TokenPrice(ctx, name, address, duration)
	}

	history, err := r.taiko.PriceHistory(ctx, id, address, duration)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("price history of %s: %w", address, model.ErrNotFound)
	}

	view, _ := chains.GQLChainFor(id)
	chain := string(view)
	base := address + "-" + chain
	points := make([]model.TimestampedAmount, 0, len(history))
	for _, p := range history {
		points = append(points, model.TimestampedAmount{
			ID:        address + "-" + strconv.FormatInt(p.Timestamp, 10),
			Timestamp: p.Timestamp,
			Value:     p.Value,
		})
	}
	latest := history[len(history)-1]
	r.logger.Debug("taiko price history routed",
		zap.String("chain", chain),
		zap.String("token", address),
		zap.Int("points", len(points)),
	)
	return &model.TokenPrice{
		Token: model.NormalizedToken{
			ID:      base,
			Address: address,
			Chain:   chain,
			Market:  &model.TokenMarket{ID: base + "-USD"},
		},
		Price:        &model.Amount{ID: base + "-USD-price", Value: latest.Value},
		PriceHistory: points,
	}, nil
}
