package activity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/model"
)

// TaikoSource reads activity from the Taiko subgraphs.
type TaikoSource interface {
	Activities(ctx context.Context, id chains.ChainID, account string, first int) ([]model.Activity, error)
}

// RemoteSource reads activity from the Uniswap data API.
type RemoteSource interface {
	Activity(ctx context.Context, account string) ([]model.Activity, error)
}

// Service returns an account's combined activity.
type Service struct {
	taiko    TaikoSource
	remote   RemoteSource
	local    LocalStore
	pageSize int
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a Service. remote may be nil when no data API is configured.
func NewService(taiko TaikoSource, remote RemoteSource, local LocalStore, pageSize int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if local == nil {
		local = NewMemoryStore()
	}
	return &Service{
		taiko:    taiko,
		remote:   remote,
		local:    local,
		pageSize: pageSize,
		logger:   logger,
		now:      time.Now,
	}
}

// All returns local and remote activity for account on chain id, de-duplicated. Pending
// local transactions replaced on chain are marked cancelled first.
func (s *Service) All(ctx context.Context, id chains.ChainID, account string) ([]model.Activity, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("account %q: %w", account, model.ErrInvalidInput)
	}
	local, err := s.local.List(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("list local activity: %w", err)
	}

	if chains.IsTaiko(id) {
		if s.taiko == nil {
			return nil, fmt.Errorf("activity on chain %d: %w", id, model.ErrUnsupportedChain)
		}
		remote, err := s.taiko.Activities(ctx, id, account, s.pageSize)
		if err != nil {
			return nil, err
		}
		return CombineActivities(local, ToMap(remote)), nil
	}

	if s.remote == nil {
		return nil, fmt.Errorf("activity on chain %d: %w", id, model.ErrUnsupportedChain)
	}
	remoteList, err := s.remote.Activity(ctx, account)
	if err != nil {
		return nil, err
	}
	remote := ToMap(remoteList)

	cancelled := false
	for _, a := range local {
		if a == nil {
			continue
		}
		cancelHash, ok := FindCancelTx(*a, remote, account)
		if !ok {
			continue
		}
		if err := s.local.MarkCancelled(ctx, account, a.ChainID, a.Hash, cancelHash); err != nil {
			s.logger.Warn("mark cancelled failed",
				zap.String("account", strings.ToLower(account)),
				zap.String("hash", a.Hash),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("pending transaction replaced",
			zap.String("account", strings.ToLower(account)),
			zap.String("hash", a.Hash),
			zap.String("cancel_hash", cancelHash),
		)
		cancelled = true
	}
	if cancelled {
		if local, err = s.local.List(ctx, account); err != nil {
			return nil, fmt.Errorf("list local activity: %w", err)
		}
	}
	return CombineActivities(local, remote), nil
}

// RecordPending stores a transaction submitted by account so it shows up before any
// backend indexes it.
func (s *Service) RecordPending(ctx context.Context, id chains.ChainID, account string, a model.Activity) (model.Activity, error) {
	if !common.IsHexAddress(account) {
		return model.Activity{}, fmt.Errorf("account %q: %w", account, model.ErrInvalidInput)
	}
	if a.Hash == "" {
		return model.Activity{}, fmt.Errorf("activity hash: %w", model.ErrInvalidInput)
	}
	a.ChainID = uint64(id)
	if a.From == "" {
		a.From = account
	}
	if a.Status == "" {
		a.Status = model.StatusPending
	}
	if a.Timestamp == 0 {
		a.Timestamp = s.now().Unix()
	}
	if err := s.local.Put(ctx, account, a); err != nil {
		return model.Activity{}, fmt.Errorf("store pending activity: %w", err)
	}
	return a, nil
}
