package uniswapapi

import (
	"context"
	"fmt"
	"strings"

	"taikodata/internal/chains"
	"taikodata/internal/model"
)

type tokenResponse struct {
	Token *model.NormalizedToken `json:"token"`
}

// Token returns the token view for address on chain.
func (c *Client) Token(ctx context.Context, chain chains.GQLChain, address string) (*model.NormalizedToken, error) {
	if address == "" {
		return nil, fmt.Errorf("token address: %w", model.ErrInvalidInput)
	}
	var resp tokenResponse
	vars := map[string]any{"chain": string(chain), "address": address}
	if err := c.post(ctx, "Token", tokenQuery, vars, &resp); err != nil {
		return nil, err
	}
	if resp.Token == nil {
		return nil, fmt.Errorf("token %s on %s: %w", address, chain, model.ErrNotFound)
	}
	resp.Token.Address = strings.ToLower(resp.Token.Address)
	return resp.Token, nil
}

// TokenPrice returns the latest price and price history of address over duration.
func (c *Client) TokenPrice(ctx context.Context, chain chains.GQLChain, address string, duration model.TimePeriod) (*model.TokenPrice, error) {
	if address == "" {
		return nil, fmt.Errorf("token address: %w", model.ErrInvalidInput)
	}
	var resp tokenResponse
	vars := map[string]any{"chain": string(chain), "address": address, "duration": duration.String()}
	if err := c.post(ctx, "TokenPrice", tokenPriceQuery, vars, &resp); err != nil {
		return nil, err
	}
	if resp.Token == nil {
		return nil, fmt.Errorf("token %s on %s: %w", address, chain, model.ErrNotFound)
	}

	token := *resp.Token
	out := &model.TokenPrice{Token: token, PriceHistory: []model.TimestampedAmount{}}
	if token.Market != nil {
		out.Price = token.Market.Price
		if token.Market.PriceHistory != nil {
			out.PriceHistory = token.Market.PriceHistory
		}
	}
	return out, nil
}
