package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/taiko"
)

type fakeTaiko struct {
	gotID   chains.ChainID
	detail  *taiko.TokenDetail
	history []model.PricePoint
}

func (f *fakeTaiko) TopTokens(_ context.Context, id chains.ChainID, _ model.TimePeriod, _ string) (model.TopTokens, error) {
	f.gotID = id
	return model.TopTokens{Tokens: []model.NormalizedToken{{ID: "t"}}}, nil
}

func (f *fakeTaiko) Token(_ context.Context, id chains.ChainID, _ string) (*taiko.TokenDetail, error) {
	f.gotID = id
	return f.detail, nil
}

func (f *fakeTaiko) PriceHistory(_ context.Context, id chains.ChainID, _ string, _ model.TimePeriod) ([]model.PricePoint, error) {
	f.gotID = id
	return f.history, nil
}

type fakeStandard struct {
	gotChain chains.GQLChain
}

func (f *fakeStandard) Token(_ context.Context, chain chains.GQLChain, address string) (*model.NormalizedToken, error) {
	f.gotChain = chain
	return &model.NormalizedToken{Address: address, Chain: string(chain)}, nil
}

func (f *fakeStandard) TokenPrice(_ context.Context, chain chains.GQLChain, address string, _ model.TimePeriod) (*model.TokenPrice, error) {
	f.gotChain = chain
	return &model.TokenPrice{Token: model.NormalizedToken{Address: address}}, nil
}

func TestTokenQueryTaikoReshape(t *testing.T) {
	tk := &fakeTaiko{detail: &taiko.TokenDetail{
		Address: "0xabc", Chain: "TAIKO_HOODI", Symbol: "USDC", Name: "USD Coin", Decimals: 6,
		VolumeUSD: 100, TVLUSD: 200, PriceUSD: 1,
	}}
	r := New(tk, &fakeStandard{}, nil)

	token, err := r.TokenQuery(context.Background(), chains.TaikoHoodi, "0xABC")
	require.NoError(t, err)
	assert.Equal(t, chains.TaikoHoodi, tk.gotID)
	assert.Equal(t, "0xabc-TAIKO_HOODI", token.ID)
	assert.Equal(t, "ERC20", token.Standard)
	require.NotNil(t, token.Market)
	assert.Equal(t, "0xabc-TAIKO_HOODI-USD", token.Market.ID)
	assert.Equal(t, "0xabc-TAIKO_HOODI-tvl", token.Market.TotalValueLocked.ID)
	assert.Equal(t, "0xabc-TAIKO_HOODI-price", token.Market.Price.ID)
	assert.Equal(t, "0xabc-TAIKO_HOODI-volume24h", token.Market.Volume24H.ID)
	assert.InDelta(t, 200.0, token.Market.TotalValueLocked.Value, 1e-9)
	assert.Nil(t, token.Market.PriceHigh52W)
	assert.Nil(t, token.Project)
}

func TestTokenQueryStandard(t *testing.T) {
	std := &fakeStandard{}
	r := New(&fakeTaiko{}, std, nil)

	token, err := r.TokenQuery(context.Background(), chains.Ethereum, "0x1")
	require.NoError(t, err)
	assert.Equal(t, chains.GQLEthereum, std.gotChain)
	assert.Equal(t, "0x1", token.Address)

	_, err = r.TokenQuery(context.Background(), chains.Ethereum, "")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = r.TokenQuery(context.Background(), chains.ChainID(999), "0x1")
	assert.ErrorIs(t, err, model.ErrUnsupportedChain)

	r = New(&fakeTaiko{}, nil, nil)
	_, err = r.TokenQuery(context.Background(), chains.Ethereum, "0x1")
	assert.ErrorIs(t, err, model.ErrUnsupportedChain)
}

func TestTokenQueriesKeepTaikoChainID(t *testing.T) {
	for _, id := range []chains.ChainID{chains.TaikoInternal, chains.TaikoL3Testnet, chains.TaikoHekla} {
		tk := &fakeTaiko{
			detail:  &taiko.TokenDetail{Address: "0xabc", Chain: "TAIKO_HOODI"},
			history: []model.PricePoint{{Timestamp: 10, Value: 1}},
		}
		r := New(tk, &fakeStandard{}, nil)

		_, err := r.TokenQuery(context.Background(), id, "0xabc")
		require.NoError(t, err)
		assert.Equal(t, id, tk.gotID, "token query must not be rerouted to another Taiko chain")

		tk.gotID = 0
		price, err := r.TokenPriceQuery(context.Background(), id, "0xabc", model.PeriodDay)
		require.NoError(t, err)
		assert.Equal(t, id, tk.gotID, "price query must not be rerouted to another Taiko chain")
		assert.Equal(t, "0xabc-TAIKO_HOODI", price.Token.ID)
	}
}

func TestTokenPriceQueryTaiko(t *testing.T) {
	tk := &fakeTaiko{history: []model.PricePoint{{Timestamp: 10, Value: 1.5}, {Timestamp: 20, Value: 2.5}}}
	r := New(tk, nil, nil)

	price, err := r.TokenPriceQuery(context.Background(), chains.TaikoMainnet, "0xabc", model.PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, chains.TaikoMainnet, tk.gotID)
	assert.Equal(t, "0xabc-TAIKO", price.Token.ID)
	require.NotNil(t, price.Price)
	assert.Equal(t, "0xabc-TAIKO-USD-price", price.Price.ID)
	assert.InDelta(t, 2.5, price.Price.Value, 1e-9)
	require.Len(t, price.PriceHistory, 2)
	assert.Equal(t, "0xabc-10", price.PriceHistory[0].ID)

	tk.history = nil
	_, err = r.TokenPriceQuery(context.Background(), chains.TaikoMainnet, "0xabc", model.PeriodWeek)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTopTokensOnlyOnTaiko(t *testing.T) {
	tk := &fakeTaiko{}
	r := New(tk, nil, nil)

	top, err := r.TopTokens(context.Background(), chains.TaikoMainnet, model.PeriodDay, "")
	require.NoError(t, err)
	assert.Len(t, top.Tokens, 1)

	_, err = r.TopTokens(context.Background(), chains.Base, model.PeriodDay, "")
	assert.ErrorIs(t, err, model.ErrUnsupportedChain)
}
