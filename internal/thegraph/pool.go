// Package thegraph serves pool detail data from the pool subgraphs: the Taiko pool
// subgraph for Taiko chains and the standard Uniswap v3 subgraph elsewhere.
package thegraph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
	"taikodata/internal/subgraph"
)

const secondsPerDay = 86400

// LiveState reads a pool's current on-chain state.
type LiveState interface {
	PoolState(ctx context.Context, id chains.ChainID, pool common.Address) (model.PoolMeta, error)
}

// Service resolves pool queries against the right subgraph for a chain.
type Service struct {
	subgraphs *subgraph.Registry
	live      LiveState
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a Service. live may be nil, in which case pool details carry no
// on-chain state.
func NewService(reg *subgraph.Registry, live LiveState, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{subgraphs: reg, live: live, logger: logger, now: time.Now}
}

func (s *Service) client(id chains.ChainID) (*subgraph.Client, error) {
	if chains.IsTaiko(id) {
		return s.subgraphs.PoolClient(id)
	}
	return s.subgraphs.StandardClient(id)
}

type poolToken struct {
	ID         string `json:"id"`
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Decimals   string `json:"decimals"`
	DerivedETH string `json:"derivedETH"`
}

type poolRow struct {
	ID                     string    `json:"id"`
	FeeTier                string    `json:"feeTier"`
	Liquidity              string    `json:"liquidity"`
	SqrtPrice              string    `json:"sqrtPrice"`
	Tick                   string    `json:"tick"`
	Token0                 poolToken `json:"token0"`
	Token1                 poolToken `json:"token1"`
	Token0Price            string    `json:"token0Price"`
	Token1Price            string    `json:"token1Price"`
	VolumeUSD              string    `json:"volumeUSD"`
	TxCount                string    `json:"txCount"`
	TotalValueLockedToken0 string    `json:"totalValueLockedToken0"`
	TotalValueLockedToken1 string    `json:"totalValueLockedToken1"`
	TotalValueLockedUSD    string    `json:"totalValueLockedUSD"`
}

type poolDataResponse struct {
	Data    []poolRow `json:"data"`
	Bundles []struct {
		EthPriceUSD string `json:"ethPriceUSD"`
	} `json:"bundles"`
}

// PoolData returns the subgraph view of pool. An unknown pool is ErrNotFound.
func (s *Service) PoolData(ctx context.Context, id chains.ChainID, pool string) (*model.Pool, error) {
	if pool == "" {
		return nil, fmt.Errorf("pool address: %w", model.ErrInvalidInput)
	}
	client, err := s.client(id)
	if err != nil {
		return nil, err
	}

	var resp poolDataResponse
	vars := map[string]any{"poolId": []string{strings.ToLower(pool)}}
	if err := client.Query(ctx, "PoolData", poolDataQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("pool %s: %w", pool, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("pool %s: %w", pool, model.ErrNotFound)
	}

	row := resp.Data[0]
	ethPrice := 0.0
	if len(resp.Bundles) > 0 {
		ethPrice = num.Float(num.Parse(resp.Bundles[0].EthPriceUSD))
	}
	return &model.Pool{
		ChainID:                uint64(id),
		Address:                strings.ToLower(row.ID),
		FeeTier:                num.ParseInt(row.FeeTier),
		Liquidity:              row.Liquidity,
		SqrtPrice:              row.SqrtPrice,
		Tick:                   num.ParseInt(row.Tick),
		Token0:                 toPoolToken(row.Token0, ethPrice),
		Token1:                 toPoolToken(row.Token1, ethPrice),
		Token0Price:            num.Float(num.Parse(row.Token0Price)),
		Token1Price:            num.Float(num.Parse(row.Token1Price)),
		VolumeUSD:              num.Float(num.Parse(row.VolumeUSD)),
		TxCount:                num.ParseInt(row.TxCount),
		TotalValueLockedToken0: num.Float(num.Parse(row.TotalValueLockedToken0)),
		TotalValueLockedToken1: num.Float(num.Parse(row.TotalValueLockedToken1)),
		TotalValueLockedUSD:    num.Float(num.Parse(row.TotalValueLockedUSD)),
		ETHPriceUSD:            ethPrice,
	}, nil
}

func toPoolToken(t poolToken, ethPrice float64) model.PoolToken {
	return model.PoolToken{
		ID:       strings.ToLower(t.ID),
		Symbol:   t.Symbol,
		Name:     t.Name,
		Decimals: int(num.ParseInt(t.Decimals)),
		PriceUSD: num.Float(num.Parse(t.DerivedETH)) * ethPrice,
	}
}

// PoolDetail returns pool data with derived stats against the previous day and, when
// configured, live on-chain state. Failures of the supplementary reads are logged and
// leave the respective fields empty.
func (s *Service) PoolDetail(ctx context.Context, id chains.ChainID, pool string) (*model.Pool, error) {
	out, err := s.PoolData(ctx, id, pool)
	if err != nil {
		return nil, err
	}

	historical, err := s.PoolHistoricalData(ctx, id, pool, 1)
	if err != nil {
		s.logger.Warn("pool historical data failed",
			zap.Uint64("chain_id", uint64(id)),
			zap.String("pool", out.Address),
			zap.Error(err),
		)
	}
	stats := PoolStats(*out, historical)
	out.Stats = &stats

	if s.live != nil && common.IsHexAddress(out.Address) {
		meta, err := s.live.PoolState(ctx, id, common.HexToAddress(out.Address))
		if err != nil {
			s.logger.Warn("pool live state failed",
				zap.Uint64("chain_id", uint64(id)),
				zap.String("pool", out.Address),
				zap.Error(err),
			)
		} else {
			out.Live = &meta
		}
	}
	return out, nil
}
