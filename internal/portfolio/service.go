// Package portfolio values an account's holdings on Taiko chains: common-token balances
// read on chain plus liquidity positions read from the subgraph.
package portfolio

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
	"taikodata/internal/taiko"
)

const defaultConcurrency = 4

// Balances reads ERC20 balances on a chain.
type Balances interface {
	BalanceOf(ctx context.Context, id chains.ChainID, token, owner common.Address) (*big.Int, error)
}

// Pricing supplies token prices and liquidity positions.
type Pricing interface {
	TokenPrices(ctx context.Context, id chains.ChainID, addresses []string) (map[string]taiko.TokenPrice, error)
	Positions(ctx context.Context, id chains.ChainID, account string) ([]model.Position, error)
}

// Service computes balances and portfolio value.
type Service struct {
	balances    Balances
	pricing     Pricing
	logger      *zap.Logger
	concurrency int
}

func NewService(balances Balances, pricing Pricing, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		balances:    balances,
		pricing:     pricing,
		logger:      logger,
		concurrency: defaultConcurrency,
	}
}

// TokenBalances returns the account's non-zero balances of the chain's common tokens.
// Tokens whose balance cannot be read are skipped.
func (s *Service) TokenBalances(ctx context.Context, id chains.ChainID, account string) ([]model.TokenBalance, error) {
	owner, err := parseAccount(account)
	if err != nil {
		return nil, err
	}
	return s.readBalances(ctx, id, owner, chains.CommonTokens(id))
}

func (s *Service) readBalances(ctx context.Context, id chains.ChainID, owner common.Address, tokens []chains.CommonToken) ([]model.TokenBalance, error) {
	results := make([]*model.TokenBalance, len(tokens))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, token := range tokens {
		i, token := i, token
		g.Go(func() error {
			raw, err := s.balances.BalanceOf(gctx, id, common.HexToAddress(token.Address), owner)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.logger.Warn("balance fetch failed",
					zap.Uint64("chain_id", uint64(id)),
					zap.String("token", token.Address),
					zap.String("account", owner.Hex()),
					zap.Error(err),
				)
				return nil
			}
			if raw == nil || raw.Sign() <= 0 {
				return nil
			}
			results[i] = &model.TokenBalance{
				ChainID:    uint64(id),
				Address:    token.Address,
				Symbol:     token.Symbol,
				Name:       token.Name,
				Decimals:   token.Decimals,
				RawBalance: raw.String(),
				Balance:    num.FormatTokenAmount(raw, uint8(token.Decimals)),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.TokenBalance, 0, len(tokens))
	for _, balance := range results {
		if balance != nil {
			out = append(out, *balance)
		}
	}
	return out, nil
}

// Value prices the account's common-token balances and liquidity positions. Only tokens
// with a subgraph price are counted.
func (s *Service) Value(ctx context.Context, id chains.ChainID, account string) (model.PortfolioValue, error) {
	if !chains.IsTaiko(id) {
		return model.PortfolioValue{}, fmt.Errorf("portfolio on chain %d: %w", id, model.ErrUnsupportedChain)
	}
	owner, err := parseAccount(account)
	if err != nil {
		return model.PortfolioValue{}, err
	}
	value := model.PortfolioValue{
		ChainID:       uint64(id),
		Account:       strings.ToLower(owner.Hex()),
		TokenBalances: []model.TokenBalance{},
		LPPositions:   []model.Position{},
	}

	tracked := chains.CommonTokens(id)
	addresses := make([]string, 0, len(tracked))
	for _, token := range tracked {
		addresses = append(addresses, token.Address)
	}
	prices, err := s.pricing.TokenPrices(ctx, id, addresses)
	if err != nil {
		s.logger.Warn("token prices failed", zap.Uint64("chain_id", uint64(id)), zap.Error(err))
	}

	priced := make([]chains.CommonToken, 0, len(tracked))
	for _, token := range tracked {
		info, ok := prices[strings.ToLower(token.Address)]
		if !ok {
			continue
		}
		token.Decimals = info.Decimals
		priced = append(priced, token)
	}

	balances, err := s.readBalances(ctx, id, owner, priced)
	if err != nil {
		return value, err
	}
	tokensTotal := decimal.Zero
	for _, balance := range balances {
		info := prices[strings.ToLower(balance.Address)]
		raw, _ := new(big.Int).SetString(balance.RawBalance, 10)
		units := num.ToUnits(raw, info.Decimals)
		usd := units.Mul(info.PriceUSD)

		balance.Balance = units.StringFixed(6)
		balance.PriceUSD = num.Float(info.PriceUSD)
		balance.BalanceUSD = num.Float(usd)
		value.TokenBalances = append(value.TokenBalances, balance)
		tokensTotal = tokensTotal.Add(usd)
	}

	lpTotal := decimal.Zero
	positions, err := s.pricing.Positions(ctx, id, value.Account)
	if err != nil {
		s.logger.Warn("positions failed",
			zap.Uint64("chain_id", uint64(id)),
			zap.String("account", value.Account),
			zap.Error(err),
		)
	} else {
		value.LPPositions = positions
		lpTotal = taiko.PositionsValueUSD(positions)
	}

	value.TokensValueUSD = num.Float(tokensTotal)
	value.LPPositionsValueUSD = num.Float(lpTotal)
	value.TotalValueUSD = num.Float(tokensTotal.Add(lpTotal))
	return value, nil
}

func parseAccount(account string) (common.Address, error) {
	if !common.IsHexAddress(account) {
		return common.Address{}, fmt.Errorf("account %q: %w", account, model.ErrInvalidInput)
	}
	return common.HexToAddress(account), nil
}
