package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"taikodata/internal/model"
)

// ActivityStore keeps locally submitted transactions in the local_activities table.
type ActivityStore struct {
	store *Store
}

// Activities returns the activity view of s.
func (s *Store) Activities() *ActivityStore {
	return &ActivityStore{store: s}
}

func (a *ActivityStore) Put(ctx context.Context, account string, act model.Activity) error {
	if act.Hash == "" {
		return fmt.Errorf("activity hash: %w", model.ErrInvalidInput)
	}
	logos, err := json.Marshal(nonNil(act.Logos))
	if err != nil {
		return fmt.Errorf("marshal logos: %w", err)
	}
	currencies, err := json.Marshal(nonNil(act.Currencies))
	if err != nil {
		return fmt.Errorf("marshal currencies: %w", err)
	}
	var nonce *int64
	if act.Nonce != nil {
		n := int64(*act.Nonce)
		nonce = &n
	}

	_, err = a.store.pool.Exec(ctx, `
		INSERT INTO local_activities (
			account, hash, chain_id, status, ts, from_address, nonce, title, descriptor,
			logos, currencies, cancelled, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,now(),now())
		ON CONFLICT (account, hash)
		DO UPDATE SET
			chain_id = EXCLUDED.chain_id,
			status = EXCLUDED.status,
			ts = EXCLUDED.ts,
			from_address = EXCLUDED.from_address,
			nonce = EXCLUDED.nonce,
			title = EXCLUDED.title,
			descriptor = EXCLUDED.descriptor,
			logos = EXCLUDED.logos,
			currencies = EXCLUDED.currencies,
			cancelled = EXCLUDED.cancelled,
			updated_at = now()
	`,
		strings.ToLower(account),
		act.Hash,
		int64(act.ChainID),
		string(act.Status),
		act.Timestamp,
		act.From,
		nonce,
		act.Title,
		act.Descriptor,
		string(logos),
		string(currencies),
		act.Cancelled,
	)
	if err != nil {
		return fmt.Errorf("upsert local activity: %w", err)
	}
	return nil
}

func (a *ActivityStore) List(ctx context.Context, account string) (model.ActivityMap, error) {
	rows, err := a.store.pool.Query(ctx, `
		SELECT hash, chain_id, status, ts, from_address, nonce, title, descriptor,
			logos::text, currencies::text, cancelled
		FROM local_activities
		WHERE account = $1
	`, strings.ToLower(account))
	if err != nil {
		return nil, fmt.Errorf("query local activities: %w", err)
	}
	defer rows.Close()

	out := make(model.ActivityMap)
	for rows.Next() {
		var (
			act        model.Activity
			chainID    int64
			status     string
			nonce      *int64
			logos      string
			currencies string
		)
		if err := rows.Scan(&act.Hash, &chainID, &status, &act.Timestamp, &act.From, &nonce,
			&act.Title, &act.Descriptor, &logos, &currencies, &act.Cancelled); err != nil {
			return nil, fmt.Errorf("scan local activity: %w", err)
		}
		act.ChainID = uint64(chainID)
		act.Status = model.TransactionStatus(status)
		if nonce != nil {
			n := uint64(*nonce)
			act.Nonce = &n
		}
		if err := json.Unmarshal([]byte(logos), &act.Logos); err != nil {
			return nil, fmt.Errorf("decode logos: %w", err)
		}
		if err := json.Unmarshal([]byte(currencies), &act.Currencies); err != nil {
			return nil, fmt.Errorf("decode currencies: %w", err)
		}
		if len(act.Logos) == 0 {
			act.Logos = nil
		}
		if len(act.Currencies) == 0 {
			act.Currencies = nil
		}
		out[act.Hash] = &act
	}
	return out, rows.Err()
}

// MarkCancelled moves the row for hash to cancelHash and flags it cancelled. A
// replacement row already stored under cancelHash is overwritten.
func (a *ActivityStore) MarkCancelled(ctx context.Context, account string, chainID uint64, hash, cancelHash string) error {
	tx, err := a.store.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	account = strings.ToLower(account)
	if _, err := tx.Exec(ctx, `DELETE FROM local_activities WHERE account = $1 AND hash = $2 AND hash <> $3`,
		account, cancelHash, hash); err != nil {
		return fmt.Errorf("clear replacement activity: %w", err)
	}
	tag, err := tx.Exec(ctx, `
		UPDATE local_activities
		SET hash = $4, cancelled = true, updated_at = now()
		WHERE account = $1 AND hash = $2 AND chain_id = $3
	`, account, hash, int64(chainID), cancelHash)
	if err != nil {
		return fmt.Errorf("mark activity cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activity %s: %w", hash, model.ErrNotFound)
	}
	return tx.Commit(ctx)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
