package activity

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"taikodata/internal/model"
)

// LocalStore keeps the transactions an account submitted through this service until
// they show up remotely.
type LocalStore interface {
	Put(ctx context.Context, account string, a model.Activity) error
	List(ctx context.Context, account string) (model.ActivityMap, error)
	// MarkCancelled re-keys the transaction under cancelHash and flags it cancelled.
	MarkCancelled(ctx context.Context, account string, chainID uint64, hash, cancelHash string) error
}

// MemoryStore is an in-process LocalStore.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]model.Activity
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]model.Activity)}
}

func (s *MemoryStore) Put(_ context.Context, account string, a model.Activity) error {
	if a.Hash == "" {
		return fmt.Errorf("activity hash: %w", model.ErrInvalidInput)
	}
	key := strings.ToLower(account)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data[key] == nil {
		s.data[key] = make(map[string]model.Activity)
	}
	s.data[key][a.Hash] = a
	return nil
}

func (s *MemoryStore) List(_ context.Context, account string) (model.ActivityMap, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.data[strings.ToLower(account)]
	out := make(model.ActivityMap, len(stored))
	for hash, a := range stored {
		a := a
		out[hash] = &a
	}
	return out, nil
}

func (s *MemoryStore) MarkCancelled(_ context.Context, account string, chainID uint64, hash, cancelHash string) error {
	key := strings.ToLower(account)
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.data[key][hash]
	if !ok || a.ChainID != chainID {
		return fmt.Errorf("activity %s: %w", hash, model.ErrNotFound)
	}
	delete(s.data[key], hash)
	a.Hash = cancelHash
	a.Cancelled = true
	s.data[key][cancelHash] = a
	return nil
}
