package chain

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"taikodata/internal/model"
)

// BalanceOf reads an ERC20 balance. A nil blockNumber reads the latest block.
func (c *Client) BalanceOf(ctx context.Context, token, owner common.Address, blockNumber *big.Int) (*big.Int, error) {
	parsed, err := ERC20ABI()
	if err != nil {
		return nil, fmt.Errorf("parse erc20 abi: %w", err)
	}
	values, err := c.call(ctx, token, parsed, "balanceOf", blockNumber, owner)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("balanceOf return size %d", len(values))
	}
	bal, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("balanceOf unexpected type %T", values[0])
	}
	return bal, nil
}

// TokenMeta loads ERC20 metadata, falling back to bytes32 symbol and name. Results are
// cached for the client's lifetime.
func (c *Client) TokenMeta(ctx context.Context, token common.Address, logger *zap.Logger) (model.TokenMeta, error) {
	if cached, ok := c.tokens.Load(token); ok {
		return cached.(model.TokenMeta), nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	stringABI, err := ERC20ABI()
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("parse erc20 abi: %w", err)
	}
	bytes32ABI, err := erc20Bytes32ABIInstance()
	if err != nil {
		return model.TokenMeta{}, fmt.Errorf("parse erc20 bytes32 abi: %w", err)
	}

	meta := model.TokenMeta{ChainID: uint64(c.chainID), Address: strings.ToLower(token.Hex())}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		values, err := c.call(gctx, token, stringABI, "decimals", nil)
		if err != nil {
			return err
		}
		decimals, ok := values[0].(uint8)
		if !ok {
			return fmt.Errorf("decimals unexpected type %T", values[0])
		}
		meta.Decimals = decimals
		return nil
	})
	g.Go(func() error {
		meta.Symbol = c.readString(gctx, token, "symbol", stringABI, bytes32ABI, logger)
		return nil
	})
	g.Go(func() error {
		meta.Name = c.readString(gctx, token, "name", stringABI, bytes32ABI, logger)
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.TokenMeta{}, fmt.Errorf("token %s: %w", token.Hex(), err)
	}

	c.tokens.Store(token, meta)
	return meta, nil
}

func (c *Client) readString(ctx context.Context, token common.Address, method string, stringABI, bytes32ABI abi.ABI, logger *zap.Logger) string {
	if values, err := c.call(ctx, token, stringABI, method, nil); err == nil {
		if s, ok := values[0].(string); ok {
			return s
		}
	}
	values, err := c.call(ctx, token, bytes32ABI, method, nil)
	if err != nil {
		logger.Debug(method+" call failed", zap.String("token", token.Hex()), zap.Error(err))
		return ""
	}
	s, _ := bytes32ToString(values[0])
	return s
}

func (c *Client) call(ctx context.Context, to common.Address, parsed abi.ABI, method string, block *big.Int, args ...interface{}) ([]interface{}, error) {
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := c.CallContract(ctx, msg, block)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return values, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}
