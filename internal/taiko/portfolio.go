package taiko

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
)

var two = decimal.NewFromInt(2)

// TokenPrice is a token's USD price derived from the subgraph bundle.
type TokenPrice struct {
	Address  string          `json:"address"`
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Decimals int             `json:"decimals"`
	PriceUSD decimal.Decimal `json:"priceUSD"`
}

type tokenPricesResponse struct {
	Tokens []subgraphToken `json:"tokens"`
	Bundle *bundle         `json:"bundle"`
}

// TokenPrices returns USD prices keyed by lowercase address. The map is empty when the
// subgraph has no ETH price bundle.
func (a *Adapter) TokenPrices(ctx context.Context, chainID chains.ChainID, addresses []string) (map[string]TokenPrice, error) {
	prices := make(map[string]TokenPrice)
	if len(addresses) == 0 {
		return prices, nil
	}
	client, err := a.subgraphs.PoolClient(chainID)
	if err != nil {
		return prices, err
	}

	lower := make([]string, 0, len(addresses))
	for _, addr := range addresses {
		lower = append(lower, strings.ToLower(addr))
	}

	var resp tokenPricesResponse
	if err := client.Query(ctx, "TaikoTokenPrices", tokenPricesQuery, map[string]any{"tokenAddresses": lower}, &resp); err != nil {
		return prices, fmt.Errorf("token prices: %w", err)
	}
	if resp.Bundle == nil || resp.Bundle.EthPriceUSD == "" {
		return prices, nil
	}

	ethPrice := num.Parse(resp.Bundle.EthPriceUSD)
	for _, token := range resp.Tokens {
		prices[strings.ToLower(token.ID)] = TokenPrice{
			Address:  token.ID,
			Symbol:   token.Symbol,
			Name:     token.Name,
			Decimals: int(num.ParseInt(token.Decimals)),
			PriceUSD: num.Parse(token.DerivedETH).Mul(ethPrice),
		}
	}
	return prices, nil
}

type positionRow struct {
	ID        string        `json:"id"`
	Owner     string        `json:"owner"`
	Liquidity string        `json:"liquidity"`
	Token0    subgraphToken `json:"token0"`
	Token1    subgraphToken `json:"token1"`
	Pool      struct {
		ID                     string `json:"id"`
		Token0Price            string `json:"token0Price"`
		Token1Price            string `json:"token1Price"`
		TotalValueLockedUSD    string `json:"totalValueLockedUSD"`
		TotalValueLockedToken0 string `json:"totalValueLockedToken0"`
		TotalValueLockedToken1 string `json:"totalValueLockedToken1"`
	} `json:"pool"`
	DepositedToken0     string `json:"depositedToken0"`
	DepositedToken1     string `json:"depositedToken1"`
	WithdrawnToken0     string `json:"withdrawnToken0"`
	WithdrawnToken1     string `json:"withdrawnToken1"`
	CollectedFeesToken0 string `json:"collectedFeesToken0"`
	CollectedFeesToken1 string `json:"collectedFeesToken1"`
}

// Positions returns the account's open liquidity positions.
func (a *Adapter) Positions(ctx context.Context, chainID chains.ChainID, account string) ([]model.Position, error) {
	if account == "" {
		return nil, fmt.Errorf("account: %w", model.ErrInvalidInput)
	}
	client, err := a.subgraphs.PoolClient(chainID)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Positions []positionRow `json:"positions"`
	}
	if err := client.Query(ctx, "TaikoUserPositions", userPositionsQuery, map[string]any{"account": strings.ToLower(account)}, &resp); err != nil {
		return nil, fmt.Errorf("user positions: %w", err)
	}

	out := make([]model.Position, 0, len(resp.Positions))
	for _, row := range resp.Positions {
		out = append(out, model.Position{
			ID:                  row.ID,
			Owner:               row.Owner,
			Liquidity:           row.Liquidity,
			PoolID:              row.Pool.ID,
			Token0:              strings.ToLower(row.Token0.ID),
			Token0Symbol:        row.Token0.Symbol,
			Token1:              strings.ToLower(row.Token1.ID),
			Token1Symbol:        row.Token1.Symbol,
			PoolTVLUSD:          row.Pool.TotalValueLockedUSD,
			PoolTVLToken0:       row.Pool.TotalValueLockedToken0,
			PoolTVLToken1:       row.Pool.TotalValueLockedToken1,
			DepositedToken0:     row.DepositedToken0,
			DepositedToken1:     row.DepositedToken1,
			WithdrawnToken0:     row.WithdrawnToken0,
			WithdrawnToken1:     row.WithdrawnToken1,
			CollectedFeesToken0: row.CollectedFeesToken0,
			CollectedFeesToken1: row.CollectedFeesToken1,
		})
	}
	return out, nil
}

// PositionValueUSD estimates a position's value. Each token is priced at half the pool
// TVL over the pool's balance of that token; net amounts exclude withdrawals and fees.
func PositionValueUSD(p model.Position) decimal.Decimal {
	net0 := num.Parse(p.DepositedToken0).Sub(num.Parse(p.WithdrawnToken0)).Sub(num.Parse(p.CollectedFeesToken0))
	net1 := num.Parse(p.DepositedToken1).Sub(num.Parse(p.WithdrawnToken1)).Sub(num.Parse(p.CollectedFeesToken1))

	halfTVL := num.Parse(p.PoolTVLUSD).Div(two)
	price0 := unitPrice(halfTVL, num.ParseOr(p.PoolTVLToken0, decimal.NewFromInt(1)))
	price1 := unitPrice(halfTVL, num.ParseOr(p.PoolTVLToken1, decimal.NewFromInt(1)))

	return net0.Mul(price0).Add(net1.Mul(price1))
}

func unitPrice(halfTVL, poolBalance decimal.Decimal) decimal.Decimal {
	if poolBalance.IsZero() {
		return decimal.Zero
	}
	return halfTVL.Div(poolBalance)
}

// PositionsValueUSD sums the positive position values.
func PositionsValueUSD(positions []model.Position) decimal.Decimal {
	total := decimal.Zero
	for _, p := range positions {
		if v := PositionValueUSD(p); v.Sign() > 0 {
			total = total.Add(v)
		}
	}
	return total
}
