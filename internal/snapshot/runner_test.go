package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
	"taikodata/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	calls    map[chains.ChainID]int
	failures map[chains.ChainID]int
	top      model.TopTokens
}

func (f *fakeSource) TopTokens(_ context.Context, id chains.ChainID, _ model.TimePeriod, _ string) (model.TopTokens, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[chains.ChainID]int)
	}
	f.calls[id]++
	if f.failures[id] > 0 {
		f.failures[id]--
		return model.TopTokens{}, errors.New("subgraph unavailable")
	}
	return f.top, nil
}

type countingRefresher struct{ n int }

func (c *countingRefresher) InvalidateAll() { c.n++ }

type memorySink struct {
	mu      sync.Mutex
	batches [][]model.TokenSnapshot
}

func (m *memorySink) PutSnapshots(_ context.Context, rows []model.TokenSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, rows)
	return nil
}

func (m *memorySink) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

type memoryState struct {
	mu   sync.Mutex
	ts   uint64
	set  bool
	name string
}

func (m *memoryState) LoadState(_ context.Context, name string) (uint64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
	return m.ts, m.set, nil
}

func (m *memoryState) SaveState(_ context.Context, name string, ts uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name, m.ts, m.set = name, ts, true
	return nil
}

func testTop() model.TopTokens {
	return model.TopTokens{
		Tokens: []model.NormalizedToken{
			{ID: "0xb-TAIKO", Address: "0xb", Symbol: "USDC", Market: &model.TokenMarket{Price: &model.Amount{Value: 1}}},
			{ID: "0xa-TAIKO", Address: "0xa", Symbol: "WETH", Market: &model.TokenMarket{
				Price:              &model.Amount{Value: 2000},
				PricePercentChange: &model.Amount{Value: -1.5},
				TotalValueLocked:   &model.Amount{Value: 5e6},
			}},
			{ID: "0xc-TAIKO", Address: "0xc", Symbol: "NEW"},
		},
		TokenSortRank: map[string]int{"0xa": 1, "0xb": 2},
	}
}

func TestRows(t *testing.T) {
	rows := Rows(chains.TaikoMainnet, model.PeriodWeek, testTop(), 1234)
	require.Len(t, rows, 3)
	assert.Equal(t, 2, rows[0].Rank)
	assert.Equal(t, 1, rows[1].Rank)
	assert.Equal(t, 3, rows[2].Rank, "tokens without a rank use their list position")
	assert.Equal(t, "WEEK", rows[1].Period)
	assert.Equal(t, int64(1234), rows[1].CapturedAt)
	assert.InDelta(t, 2000.0, rows[1].PriceUSD, 1e-9)
	assert.InDelta(t, -1.5, rows[1].PricePercentChange, 1e-9)
	assert.InDelta(t, 5e6, rows[1].TVLUSD, 1e-9)
	assert.Zero(t, rows[2].PriceUSD)
}

func TestRunOnceRetriesAndRecordsState(t *testing.T) {
	source := &fakeSource{top: testTop(), failures: map[chains.ChainID]int{chains.TaikoHoodi: 1}}
	sink := &memorySink{}
	backend := &memoryState{}
	m := metrics.NewMetrics("test")
	refresher := &countingRefresher{}

	runner := NewRunner(Config{
		Chains:       []chains.ChainID{chains.TaikoMainnet, chains.TaikoHoodi},
		Period:       model.PeriodDay,
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
		StateStore:   &DBStateStore{Backend: backend, Name: "snapshot"},
		Refresher:    refresher,
	}, source, sink, m, nil)
	runner.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	n, err := runner.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, n)
	require.Equal(t, 1, sink.count())
	assert.Len(t, sink.batches[0], 6)
	assert.Equal(t, 2, source.calls[chains.TaikoHoodi])
	assert.Equal(t, uint64(1_700_000_000), backend.ts)
	assert.Equal(t, "snapshot", backend.name)
	assert.Equal(t, 1, refresher.n)
}

func TestRunOncePartialFailure(t *testing.T) {
	source := &fakeSource{top: testTop(), failures: map[chains.ChainID]int{chains.TaikoHoodi: 10}}
	sink := &memorySink{}
	state := &memoryState{}

	runner := NewRunner(Config{
		Chains:       []chains.ChainID{chains.TaikoMainnet, chains.TaikoHoodi},
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
		StateStore:   &DBStateStore{Backend: state, Name: "snapshot"},
	}, source, sink, nil, nil)

	n, err := runner.RunOnce(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chain 167013")
	assert.Equal(t, 3, n)
	assert.Equal(t, 1, sink.count())
	assert.False(t, state.set, "partial runs do not advance state")
}

func TestRunOnceValidates(t *testing.T) {
	_, err := NewRunner(Config{}, &fakeSource{}, &memorySink{}, nil, nil).RunOnce(context.Background())
	assert.Error(t, err)
	_, err = NewRunner(Config{Chains: []chains.ChainID{chains.TaikoMainnet}}, nil, &memorySink{}, nil, nil).RunOnce(context.Background())
	assert.Error(t, err)
}

func TestRunPollsUntilCancelled(t *testing.T) {
	source := &fakeSource{top: testTop()}
	sink := &memorySink{}
	runner := NewRunner(Config{
		Chains:   []chains.ChainID{chains.TaikoMainnet},
		Interval: 10 * time.Millisecond,
	}, source, sink, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runner.Run(ctx) }()

	require.Eventually(t, func() bool { return sink.count() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
	}
}

func TestRunWaitsForRecentState(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	state := &memoryState{ts: uint64(now.Unix()), set: true}
	sink := &memorySink{}
	runner := NewRunner(Config{
		Chains:     []chains.ChainID{chains.TaikoMainnet},
		Interval:   time.Hour,
		StateStore: &DBStateStore{Backend: state, Name: "snapshot"},
	}, &fakeSource{top: testTop()}, sink, nil, nil)
	runner.now = func() time.Time { return now }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, runner.Run(ctx))
	assert.Zero(t, sink.count())
}

func TestFileStateStore(t *testing.T) {
	ctx := context.Background()
	store := &FileStateStore{Path: filepath.Join(t.TempDir(), "state", "snapshot.json")}

	_, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, 42))
	ts, ok, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(42), ts)
}

func TestWithRetryStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, 5, time.Hour, nil, func(context.Context) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryBacksOffUntilSuccess(t *testing.T) {
	var attempts []int
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func(attempt int, err error) {
		attempts = append(attempts, attempt)
	}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("fail")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, attempts)
}

func TestWithRetryReturnsLastError(t *testing.T) {
	sentinel := errors.New("still failing")
	calls := 0
	err := withRetry(context.Background(), 2, time.Millisecond, nil, func(context.Context) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 3, calls)
}
