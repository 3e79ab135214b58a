package taiko

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taikodata/internal/chains"
	"taikodata/internal/model"
)

func TestPriceHistoryHourly(t *testing.T) {
	fake := newFakeSubgraph(map[string]string{
		"TaikoTokenHourData": `{"data":{"tokenHourDatas":[
      {"periodStartUnix":1700000000,"priceUSD":"1.5","close":"1.4"},
      {"periodStartUnix":1700003600,"priceUSD":"","close":"1.6"},
      {"periodStartUnix":1700007200,"priceUSD":"","close":""}
    ]}}`,
	})
	now := time.Unix(1700010000, 0)
	adapter := newTestAdapter(t, fake, now)

	points, err := adapter.PriceHistory(context.Background(), chains.TaikoMainnet, "0xABC", model.PeriodDay)
	require.NoError(t, err)
	assert.Equal(t, []model.PricePoint{
		{Timestamp: 1700000000, Value: 1.5},
		{Timestamp: 1700003600, Value: 1.6},
		{Timestamp: 1700007200, Value: 0},
	}, points)

	vars := fake.vars("TaikoTokenHourData")
	assert.Equal(t, "0xabc", vars["tokenAddress"])
	assert.Equal(t, float64(now.Unix()-secondsPerDay), vars["startTime"])
}

func TestPriceHistoryDaily(t *testing.T) {
	fake := newFakeSubgraph(map[string]string{
		"TaikoTokenDayData": `{"data":{"tokenDayDatas":[{"date":1699920000,"priceUSD":"2","close":"3"}]}}`,
	})
	now := time.Unix(1700010000, 0)
	adapter := newTestAdapter(t, fake, now)

	points, err := adapter.PriceHistory(context.Background(), chains.TaikoMainnet, "0xabc", model.PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, []model.PricePoint{{Timestamp: 1699920000, Value: 2}}, points)
	assert.Equal(t, float64(now.Unix()-30*secondsPerDay), fake.vars("TaikoTokenDayData")["startDate"])
}

func TestHistoryStart(t *testing.T) {
	now := time.Unix(1700000000, 0)
	assert.Equal(t, int64(1700000000-3600), HistoryStart(now, model.PeriodHour))
	assert.Equal(t, int64(1700000000-7*86400), HistoryStart(now, model.PeriodWeek))
	assert.Equal(t, int64(1700000000-365*86400), HistoryStart(now, model.PeriodYear))
}
