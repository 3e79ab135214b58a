// Package snapshot polls the top-token lists of the configured chains and persists each
// poll as ranked snapshot rows.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
	"taikodata/internal/model"
	"taikodata/internal/storage"
)

// DefaultInterval matches the polling cadence of the top-token views.
const DefaultInterval = 60 * time.Second

// TopTokensSource returns the ranked token list of a chain.
type TopTokensSource interface {
	TopTokens(ctx context.Context, id chains.ChainID, period model.TimePeriod, filter string) (model.TopTokens, error)
}

// Refresher drops cached upstream responses.
type Refresher interface {
	InvalidateAll()
}

// Config holds runtime settings for the snapshot runner.
type Config struct {
	Chains       []chains.ChainID
	Period       model.TimePeriod
	Interval     time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	StateStore   StateStore
	// Refresher, when set, is invalidated before every run so each snapshot reads
	// fresh subgraph data.
	Refresher Refresher
}

// Runner polls top tokens and writes them to a sink.
type Runner struct {
	cfg     Config
	source  TopTokensSource
	sink    storage.Sink
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewRunner builds a Runner with its dependencies.
func NewRunner(cfg Config, source TopTokensSource, sink storage.Sink, m *metrics.Metrics, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Runner{
		cfg:     cfg,
		source:  source,
		sink:    sink,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Run polls until ctx is cancelled. A recent run recorded in the state store delays the
// first poll to keep the cadence across restarts. Failed polls are logged and retried on
// the next tick.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.validate(); err != nil {
		return err
	}

	wait := time.Duration(0)
	if r.cfg.StateStore != nil {
		last, ok, err := r.cfg.StateStore.Load(ctx)
		if err != nil {
			return err
		}
		if ok {
			elapsed := r.now().Sub(time.Unix(int64(last), 0))
			if elapsed < r.cfg.Interval {
				wait = r.cfg.Interval - elapsed
				r.logger.Info("resume from state", zap.Uint64("last_run", last), zap.Duration("wait", wait))
			}
		}
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}

		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			r.logger.Error("snapshot run failed", zap.Error(err))
		}
		timer.Reset(r.cfg.Interval)
	}
}

// RunOnce captures every configured chain once and writes the rows. Chains that fail
// after retries are reported in the returned error; rows from the other chains are still
// written.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	if err := r.validate(); err != nil {
		return 0, err
	}

	if r.cfg.Refresher != nil {
		r.cfg.Refresher.InvalidateAll()
	}
	capturedAt := r.now().UTC()
	var (
		rows    []model.TokenSnapshot
		errList []error
	)
	for _, id := range r.cfg.Chains {
		top, err := r.topTokensWithRetry(ctx, id)
		if err != nil {
			errList = append(errList, fmt.Errorf("chain %d: %w", id, err))
			continue
		}
		chainRows := Rows(id, r.cfg.Period, top, capturedAt.Unix())
		r.logger.Info("chain captured", zap.Uint64("chain_id", uint64(id)), zap.Int("tokens", len(chainRows)))
		rows = append(rows, chainRows...)
	}

	if len(rows) > 0 {
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(attempt int, err error) {
			r.logger.Warn("store snapshots failed", zap.Int("attempt", attempt), zap.Error(err))
		}, func(ctx context.Context) error {
			return r.sink.PutSnapshots(ctx, rows)
		})
		if err != nil {
			r.metrics.ObserveSnapshot("error", 0, capturedAt)
			return 0, fmt.Errorf("store snapshots: %w", err)
		}
	}

	if err := errors.Join(errList...); err != nil {
		r.metrics.ObserveSnapshot("partial", len(rows), capturedAt)
		return len(rows), err
	}

	if r.cfg.StateStore != nil {
		if err := r.cfg.StateStore.Save(ctx, uint64(capturedAt.Unix())); err != nil {
			return len(rows), fmt.Errorf("save state: %w", err)
		}
	}
	r.metrics.ObserveSnapshot("success", len(rows), capturedAt)
	r.logger.Info("snapshot complete", zap.Int("rows", len(rows)), zap.Int64("captured_at", capturedAt.Unix()))
	return len(rows), nil
}

func (r *Runner) validate() error {
	if r.source == nil {
		return fmt.Errorf("top tokens source is nil")
	}
	if r.sink == nil {
		return fmt.Errorf("sink is nil")
	}
	if len(r.cfg.Chains) == 0 {
		return fmt.Errorf("at least one chain is required")
	}
	return nil
}

func (r *Runner) topTokensWithRetry(ctx context.Context, id chains.ChainID) (model.TopTokens, error) {
	var top model.TopTokens
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(attempt int, err error) {
		r.logger.Warn("top tokens fetch failed",
			zap.Uint64("chain_id", uint64(id)),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}, func(ctx context.Context) error {
		var err error
		top, err = r.source.TopTokens(ctx, id, r.cfg.Period, "")
		return err
	})
	return top, err
}

// Rows flattens a top-token list into snapshot rows. Rank comes from the sort rank map,
// keyed by lowercase address, and falls back to list position.
func Rows(id chains.ChainID, period model.TimePeriod, top model.TopTokens, capturedAt int64) []model.TokenSnapshot {
	out := make([]model.TokenSnapshot, 0, len(top.Tokens))
	for i, token := range top.Tokens {
		rank, ok := top.TokenSortRank[strings.ToLower(token.Address)]
		if !ok {
			rank = i + 1
		}
		row := model.TokenSnapshot{
			ChainID:    uint64(id),
			Address:    token.Address,
			Symbol:     token.Symbol,
			Name:       token.Name,
			Decimals:   token.Decimals,
			Rank:       rank,
			Period:     period.String(),
			CapturedAt: capturedAt,
		}
		if m := token.Market; m != nil {
			row.PriceUSD = amountValue(m.Price)
			row.PricePercentChange = amountValue(m.PricePercentChange)
			row.VolumeUSD = amountValue(m.Volume)
			row.TVLUSD = amountValue(m.TotalValueLocked)
		}
		out = append(out, row)
	}
	return out
}

func amountValue(a *model.Amount) float64 {
	if a == nil {
		return 0
	}
	return a.Value
}
