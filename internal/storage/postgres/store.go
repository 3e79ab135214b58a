package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taikodata/internal/model"
	"taikodata/internal/storage/migrations"
)

// Store provides Postgres persistence for snapshots, local activity, and service state.
type Store struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool, batchSize: 500}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SetBatchSize caps the rows sent per batch. Non-positive values are ignored.
func (s *Store) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies the embedded schema.
func (s *Store) Migrate(ctx context.Context) error {
	return migrations.RunPostgresMigrations(ctx, s.pool)
}

// PutSnapshots upserts top-token snapshot rows in batches.
func (s *Store) PutSnapshots(ctx context.Context, rows []model.TokenSnapshot) error {
	for start := 0; start < len(rows); start += s.batchSize {
		end := start + s.batchSize
		if end > len(rows) {
			end = len(rows)
		}
		if err := s.upsertSnapshots(ctx, rows[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) upsertSnapshots(ctx context.Context, rows []model.TokenSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, row := range rows {
		batch.Queue(`
			INSERT INTO token_snapshots (
				chain_id, address, period, captured_at, symbol, name, decimals, rank,
				price_usd, price_percent_change, volume_usd, tvl_usd, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
			ON CONFLICT (chain_id, address, period, captured_at)
			DO UPDATE SET
				symbol = EXCLUDED.symbol,
				name = EXCLUDED.name,
				decimals = EXCLUDED.decimals,
				rank = EXCLUDED.rank,
				price_usd = EXCLUDED.price_usd,
				price_percent_change = EXCLUDED.price_percent_change,
				volume_usd = EXCLUDED.volume_usd,
				tvl_usd = EXCLUDED.tvl_usd,
				updated_at = now()
		`,
			int64(row.ChainID),
			row.Address,
			row.Period,
			row.CapturedAt,
			row.Symbol,
			row.Name,
			row.Decimals,
			row.Rank,
			row.PriceUSD,
			row.PricePercentChange,
			row.VolumeUSD,
			row.TVLUSD,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range rows {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert token snapshot: %w", err)
		}
	}
	return nil
}

// LatestSnapshots returns the most recent snapshot rows for chainID and period ordered
// by rank.
func (s *Store) LatestSnapshots(ctx context.Context, chainID uint64, period string) ([]model.TokenSnapshot, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT chain_id, address, period, captured_at, symbol, name, decimals, rank,
			price_usd, price_percent_change, volume_usd, tvl_usd
		FROM token_snapshots
		WHERE chain_id = $1 AND period = $2 AND captured_at = (
			SELECT max(captured_at) FROM token_snapshots WHERE chain_id = $1 AND period = $2
		)
		ORDER BY rank
	`, int64(chainID), period)
	if err != nil {
		return nil, fmt.Errorf("query token snapshots: %w", err)
	}
	defer rows.Close()

	var out []model.TokenSnapshot
	for rows.Next() {
		var (
			row     model.TokenSnapshot
			chainID int64
		)
		if err := rows.Scan(&chainID, &row.Address, &row.Period, &row.CapturedAt, &row.Symbol, &row.Name,
			&row.Decimals, &row.Rank, &row.PriceUSD, &row.PricePercentChange, &row.VolumeUSD, &row.TVLUSD); err != nil {
			return nil, fmt.Errorf("scan token snapshot: %w", err)
		}
		row.ChainID = uint64(chainID)
		out = append(out, row)
	}
	return out, rows.Err()
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM service_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(ts), true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO service_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, int64(ts))
	return err
}
