package chain

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taikodata/internal/model"
)

const (
	minInt24 = -1 << 23
	maxInt24 = 1<<23 - 1
)

// PoolState reads a pool's configuration and its live slot0 and liquidity. The
// configuration reads must succeed; live fields that fail to load are left empty.
func (c *Client) PoolState(ctx context.Context, pool common.Address, logger *zap.Logger) (model.PoolMeta, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	poolABI, err := V3PoolABI()
	if err != nil {
		return model.PoolMeta{}, fmt.Errorf("parse pool abi: %w", err)
	}

	var (
		token0, token1 common.Address
		fee            *big.Int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		values, err := c.call(gctx, pool, poolABI, "token0", nil)
		if err != nil {
			return err
		}
		token0, err = asAddress(values[0])
		return err
	})
	g.Go(func() error {
		values, err := c.call(gctx, pool, poolABI, "token1", nil)
		if err != nil {
			return err
		}
		token1, err = asAddress(values[0])
		return err
	})
	g.Go(func() error {
		values, err := c.call(gctx, pool, poolABI, "fee", nil)
		if err != nil {
			return err
		}
		fee, err = asBigInt(values[0])
		return err
	})
	if err := g.Wait(); err != nil {
		return model.PoolMeta{}, fmt.Errorf("pool %s: %w", pool.Hex(), err)
	}

	meta := model.PoolMeta{
		Address: strings.ToLower(pool.Hex()),
		Token0:  strings.ToLower(token0.Hex()),
		Token1:  strings.ToLower(token1.Hex()),
		Fee:     uint32(fee.Uint64()),
	}

	debug := func(method string, err error) {
		logger.Debug("pool read failed", zap.String("pool", meta.Address), zap.String("method", method), zap.Error(err))
	}
	if values, err := c.call(ctx, pool, poolABI, "tickSpacing", nil); err != nil {
		debug("tickSpacing", err)
	} else if spacing, err := asInt24(values[0]); err == nil {
		meta.TickSpacing = spacing
	}
	if values, err := c.call(ctx, pool, poolABI, "liquidity", nil); err != nil {
		debug("liquidity", err)
	} else if liq, err := asBigInt(values[0]); err == nil {
		meta.Liquidity = liq.String()
	}
	if values, err := c.call(ctx, pool, poolABI, "slot0", nil); err != nil {
		debug("slot0", err)
	} else if len(values) >= 2 {
		sqrt, errSqrt := asBigInt(values[0])
		tick, errTick := asInt24(values[1])
		if errSqrt == nil && errTick == nil {
			meta.Slot0 = &model.PoolSlot0{SqrtPriceX96: sqrt.String(), Tick: tick}
		}
	}
	return meta, nil
}

func asAddress(value interface{}) (common.Address, error) {
	if v, ok := value.(common.Address); ok {
		return v, nil
	}
	return common.Address{}, fmt.Errorf("unexpected address type %T", value)
}

// asBigInt accepts the *big.Int the ABI decoder produces for integer widths other than
// 8, 16, 32 and 64 bits.
func asBigInt(value interface{}) (*big.Int, error) {
	if v, ok := value.(*big.Int); ok && v != nil {
		return new(big.Int).Set(v), nil
	}
	return nil, fmt.Errorf("unexpected integer type %T", value)
}

func asInt24(value interface{}) (int32, error) {
	v, err := asBigInt(value)
	if err != nil {
		return 0, err
	}
	if !v.IsInt64() || v.Int64() < minInt24 || v.Int64() > maxInt24 {
		return 0, fmt.Errorf("int24 overflow: %s", v.String())
	}
	return int32(v.Int64()), nil
}
