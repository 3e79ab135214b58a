package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taikodata/internal/chains"
	"taikodata/internal/metrics"
	"taikodata/internal/model"
	"taikodata/internal/subgraph"
)

type fakeTokens struct {
	gotID       chains.ChainID
	gotPeriod   model.TimePeriod
	gotDuration model.TimePeriod
	err         error
}

func (f *fakeTokens) TopTokens(_ context.Context, id chains.ChainID, period model.TimePeriod, filter string) (model.TopTokens, error) {
	f.gotPeriod = period
	if f.err != nil {
		return model.TopTokens{}, f.err
	}
	return model.TopTokens{
		Tokens:        []model.NormalizedToken{{ID: "0xa-TAIKO", Address: "0xa", Symbol: filter}},
		TokenSortRank: map[string]int{"0xa": 1},
		Sparklines:    map[string][]model.PricePoint{},
	}, nil
}

func (f *fakeTokens) TokenQuery(_ context.Context, id chains.ChainID, address string) (*model.NormalizedToken, error) {
	f.gotID = id
	if f.err != nil {
		return nil, f.err
	}
	return &model.NormalizedToken{ID: fmt.Sprintf("%s-%d", address, id), Address: address}, nil
}

func (f *fakeTokens) TokenPriceQuery(_ context.Context, id chains.ChainID, address string, duration model.TimePeriod) (*model.TokenPrice, error) {
	f.gotID = id
	f.gotDuration = duration
	return &model.TokenPrice{Token: model.NormalizedToken{Address: address}, Price: &model.Amount{Value: 2}}, nil
}

type fakePools struct{}

func (fakePools) PoolDetail(_ context.Context, id chains.ChainID, pool string) (*model.Pool, error) {
	if pool == "0xmissing" {
		return nil, fmt.Errorf("pool %s: %w", pool, model.ErrNotFound)
	}
	return &model.Pool{ChainID: uint64(id), Address: pool, Stats: &model.PoolStats{APR: 12.5}}, nil
}

func (fakePools) PoolChartData(_ context.Context, _ chains.ChainID, _ string, period model.TimePeriod) ([]model.ChartDataPoint, error) {
	return []model.ChartDataPoint{{Timestamp: int64(period), VolumeUSD: 1, TVLUSD: 2}}, nil
}

type fakeActivity struct {
	recorded model.Activity
}

func (f *fakeActivity) All(_ context.Context, id chains.ChainID, account string) ([]model.Activity, error) {
	if id == chains.Ethereum {
		return nil, fmt.Errorf("chain 1: %w", subgraph.ErrNoClient)
	}
	return nil, nil
}

func (f *fakeActivity) RecordPending(_ context.Context, id chains.ChainID, account string, a model.Activity) (model.Activity, error) {
	a.ChainID = uint64(id)
	a.From = account
	a.Status = model.StatusPending
	f.recorded = a
	return a, nil
}

type fakePortfolio struct{}

func (fakePortfolio) TokenBalances(context.Context, chains.ChainID, string) ([]model.TokenBalance, error) {
	return nil, nil
}

func (fakePortfolio) Value(_ context.Context, id chains.ChainID, account string) (model.PortfolioValue, error) {
	if account == "bad" {
		return model.PortfolioValue{}, fmt.Errorf("account: %w", model.ErrInvalidInput)
	}
	return model.PortfolioValue{ChainID: uint64(id), Account: account, TotalValueUSD: 42}, nil
}

type fakeChain struct{}

func (fakeChain) TokenMeta(_ context.Context, id chains.ChainID, address string) (model.TokenMeta, error) {
	if address == "bad" {
		return model.TokenMeta{}, fmt.Errorf("token: %w", model.ErrInvalidInput)
	}
	return model.TokenMeta{ChainID: uint64(id), Address: address, Decimals: 18, Symbol: "WETH"}, nil
}

type fakeSnapshots struct{}

func (fakeSnapshots) LatestSnapshots(_ context.Context, chainID uint64, period string) ([]model.TokenSnapshot, error) {
	if chainID != uint64(chains.TaikoMainnet) {
		return nil, nil
	}
	return []model.TokenSnapshot{{ChainID: chainID, Address: "0xa", Period: period, Rank: 1}}, nil
}

func newTestServer(tokens *fakeTokens, act *fakeActivity) *Server {
	return New(Services{
		Tokens:    tokens,
		Pools:     fakePools{},
		Activity:  act,
		Portfolio: fakePortfolio{},
		Chain:     fakeChain{},
		Snapshots: fakeSnapshots{},
	}, metrics.NewMetrics("test"), nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthzAndRequestID(t *testing.T) {
	s := newTestServer(&fakeTokens{}, &fakeActivity{})

	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(&fakeTokens{}, &fakeActivity{})
	do(t, s, http.MethodGet, "/healthz", "")

	rec := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestTopTokens(t *testing.T) {
	tokens := &fakeTokens{}
	s := newTestServer(tokens, &fakeActivity{})

	rec := do(t, s, http.MethodGet, "/v1/chains/167000/tokens?period=week&filter=USD", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.PeriodWeek, tokens.gotPeriod)

	var body model.TopTokens
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Tokens, 1)
	assert.Equal(t, "USD", body.Tokens[0].Symbol)
	assert.Equal(t, 1, body.TokenSortRank["0xa"])

	rec = do(t, s, http.MethodGet, "/v1/chains/167000/tokens?period=decade", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/chains/nowhere/tokens", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTokenRoutesPassExactChainID(t *testing.T) {
	tokens := &fakeTokens{}
	s := newTestServer(tokens, &fakeActivity{})

	rec := do(t, s, http.MethodGet, "/v1/chains/167009/tokens/0xabc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chains.TaikoHekla, tokens.gotID)
	assert.Contains(t, rec.Body.String(), `"0xabc-167009"`)

	rec = do(t, s, http.MethodGet, "/v1/chains/ethereum/tokens/0xabc/price?duration=MONTH", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, chains.Ethereum, tokens.gotID)
	assert.Equal(t, model.PeriodMonth, tokens.gotDuration)

	rec = do(t, s, http.MethodGet, "/v1/chains/not-a-chain/tokens/0xabc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("x: %w", model.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("x: %w", model.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("x: %w", subgraph.ErrNoClient), http.StatusNotFound},
		{fmt.Errorf("x: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{errors.New("graphql: boom"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		s := newTestServer(&fakeTokens{err: tc.err}, &fakeActivity{})
		rec := do(t, s, http.MethodGet, "/v1/chains/167000/tokens/0xabc", "")
		assert.Equal(t, tc.code, rec.Code, tc.err.Error())

		var body errorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Error)
		assert.NotEmpty(t, body.RequestID)
	}
}

func TestPoolRoutes(t *testing.T) {
	s := newTestServer(&fakeTokens{}, &fakeActivity{})

	rec := do(t, s, http.MethodGet, "/v1/chains/167000/pools/0xpool", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pool model.Pool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pool))
	assert.Equal(t, uint64(167000), pool.ChainID)
	assert.InDelta(t, 12.5, pool.Stats.APR, 1e-9)

	rec = do(t, s, http.MethodGet, "/v1/chains/167000/pools/0xmissing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/chains/167000/pools/0xpool/chart?period=YEAR", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var chart struct {
		Data []model.ChartDataPoint `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &chart))
	require.Len(t, chart.Data, 1)
	assert.Equal(t, int64(model.PeriodYear), chart.Data[0].Timestamp)
}

func TestTokenOnChainRoute(t *testing.T) {
	s := newTestServer(&fakeTokens{}, &fakeActivity{})

	rec := do(t, s, http.MethodGet, "/v1/chains/167000/tokens/0xa/onchain", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var meta model.TokenMeta
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &meta))
	assert.Equal(t, uint64(chains.TaikoMainnet), meta.ChainID)
	assert.Equal(t, "WETH", meta.Symbol)

	rec = do(t, s, http.MethodGet, "/v1/chains/167000/tokens/bad/onchain", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bare := New(Services{}, nil, nil)
	rec = do(t, bare, http.MethodGet, "/v1/chains/167000/tokens/0xa/onchain", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLatestSnapshotsRoute(t *testing.T) {
	s := newTestServer(&fakeTokens{}, &fakeActivity{})

	rec := do(t, s, http.MethodGet, "/v1/chains/167000/snapshots/latest?period=week", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Snapshots []model.TokenSnapshot `json:"snapshots"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Snapshots, 1)
	assert.Equal(t, "WEEK", body.Snapshots[0].Period)

	rec = do(t, s, http.MethodGet, "/v1/chains/167013/snapshots/latest", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"snapshots":[]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/chains/167000/snapshots/latest?period=decade", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActivityRoutes(t *testing.T) {
	act := &fakeActivity{}
	s := newTestServer(&fakeTokens{}, act)

	rec := do(t, s, http.MethodGet, "/v1/chains/167000/accounts/0xme/activity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"activities":[]}`, rec.Body.String())

	rec = do(t, s, http.MethodGet, "/v1/chains/1/accounts/0xme/activity", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "unable to load")

	rec = do(t, s, http.MethodPost, "/v1/chains/167000/accounts/0xme/pending", `{"hash":"0xh","title":"Swapping","nonce":3}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "0xh", act.recorded.Hash)
	require.NotNil(t, act.recorded.Nonce)
	assert.Equal(t, uint64(3), *act.recorded.Nonce)
	assert.Equal(t, uint64(167000), act.recorded.ChainID)

	rec = do(t, s, http.MethodPost, "/v1/chains/167000/accounts/0xme/pending", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPortfolioRoutes(t *testing.T) {
	s := newTestServer(&fakeTokens{}, &fakeActivity{})

	rec := do(t, s, http.MethodGet, "/v1/chains/167000/accounts/0xme/portfolio", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var value model.PortfolioValue
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &value))
	assert.InDelta(t, 42.0, value.TotalValueUSD, 1e-9)

	rec = do(t, s, http.MethodGet, "/v1/chains/167000/accounts/bad/portfolio", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/v1/chains/167000/accounts/0xme/balances", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"balances":[]}`, rec.Body.String())
}
