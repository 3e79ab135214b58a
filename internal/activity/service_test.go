package activity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taikodata/internal/chains"
	"taikodata/internal/model"
)

const testAccount = "0x1111111111111111111111111111111111111111"

type fakeTaiko struct {
	activities []model.Activity
	gotFirst   int
}

func (f *fakeTaiko) Activities(_ context.Context, _ chains.ChainID, _ string, first int) ([]model.Activity, error) {
	f.gotFirst = first
	return f.activities, nil
}

type fakeRemote struct {
	activities []model.Activity
	err        error
}

func (f *fakeRemote) Activity(context.Context, string) ([]model.Activity, error) {
	return f.activities, f.err
}

func TestServiceAllTaiko(t *testing.T) {
	ctx := context.Background()
	taiko := &fakeTaiko{activities: []model.Activity{
		{Hash: "0x1", ChainID: 167000, Timestamp: 100, Title: "Swapped"},
	}}
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, testAccount, model.Activity{Hash: "0x2", ChainID: 167000, Timestamp: 200, Status: model.StatusPending}))

	svc := NewService(taiko, nil, store, 50, nil)
	out, err := svc.All(ctx, chains.TaikoMainnet, testAccount)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "0x2", out[0].Hash)
	assert.Equal(t, "0x1", out[1].Hash)
	assert.Equal(t, 50, taiko.gotFirst)
}

func TestServiceAllMarksReplacedTransactions(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Put(ctx, testAccount, model.Activity{
		Hash: "0xlocal", ChainID: 1, Status: model.StatusPending, Nonce: nonce(9), Timestamp: 10, Title: "Swapping",
	}))
	remote := &fakeRemote{activities: []model.Activity{
		{Hash: "0xreplacement", ChainID: 1, Nonce: nonce(9), From: testAccount, Timestamp: 11, Title: "Sent"},
	}}

	svc := NewService(nil, remote, store, 100, nil)
	out, err := svc.All(ctx, chains.Ethereum, testAccount)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "0xreplacement", out[0].Hash)
	assert.True(t, out[0].Cancelled)
	assert.Equal(t, "Swapping", out[0].Title)

	local, err := store.List(ctx, testAccount)
	require.NoError(t, err)
	assert.NotContains(t, local, "0xlocal")
	assert.Contains(t, local, "0xreplacement")
}

func TestServiceAllErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewService(nil, nil, nil, 100, nil)
	_, err := svc.All(ctx, chains.Ethereum, "not-an-address")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = svc.All(ctx, chains.Ethereum, testAccount)
	assert.ErrorIs(t, err, model.ErrUnsupportedChain)

	boom := errors.New("boom")
	svc = NewService(nil, &fakeRemote{err: boom}, nil, 100, nil)
	_, err = svc.All(ctx, chains.Ethereum, testAccount)
	assert.ErrorIs(t, err, boom)
}

func TestServiceRecordPending(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	svc := NewService(nil, nil, store, 100, nil)
	svc.now = func() time.Time { return time.Unix(1_700_000_000, 0) }

	a, err := svc.RecordPending(ctx, chains.TaikoHoodi, testAccount, model.Activity{Hash: "0xabc", Title: "Swapping"})
	require.NoError(t, err)
	assert.Equal(t, uint64(chains.TaikoHoodi), a.ChainID)
	assert.Equal(t, model.StatusPending, a.Status)
	assert.Equal(t, testAccount, a.From)
	assert.Equal(t, int64(1_700_000_000), a.Timestamp)

	_, err = svc.RecordPending(ctx, chains.TaikoHoodi, testAccount, model.Activity{})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	local, err := store.List(ctx, testAccount)
	require.NoError(t, err)
	assert.Len(t, local, 1)
}

func TestMemoryStoreMarkCancelledMissing(t *testing.T) {
	store := NewMemoryStore()
	err := store.MarkCancelled(context.Background(), testAccount, 1, "0xnone", "0xother")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
