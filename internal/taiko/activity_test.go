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

const poolJSON = `"pool":{"id":"0xpool","token0":{"id":"0xt0","symbol":"WETH","name":"Wrapped Ether","decimals":"18"},"token1":{"id":"0xt1","symbol":"USDC","name":"USD Coin","decimals":"6"}}`

const activityBody = `{"data":{
  "swaps":[{"id":"s1","timestamp":"300","sender":"0xrouter","origin":"0xUser","amount0":"-1.5","amount1":"3000.25","amountUSD":"3000",` + poolJSON + `,"transaction":{"id":"0xswap","blockNumber":"1","timestamp":"300"}}],
  "mints":[{"id":"m1","timestamp":"200","sender":"0xpm","origin":"0xUser","amount0":"1.23456","amount1":"2","amountUSD":"10",` + poolJSON + `,"transaction":{"id":"0xmint","blockNumber":"1","timestamp":"200"}}],
  "burns":[{"id":"b1","timestamp":"400","owner":"0xpm","origin":"0xUser","amount0":"0.5","amount1":"0","amountUSD":"1",` + poolJSON + `,"transaction":{"id":"0xburn","blockNumber":"1","timestamp":"400"}}],
  "collects":[{"id":"c1","timestamp":"100","owner":"0xOwner","amount0":"0.1","amount1":"0.000001","amountUSD":"1",` + poolJSON + `,"transaction":{"id":"0xcollect","blockNumber":"1","timestamp":"100"}}]
}}`

func TestActivities(t *testing.T) {
	fake := newFakeSubgraph(map[string]string{"TaikoUserActivity": activityBody})
	adapter := newTestAdapter(t, fake, time.Now())

	activities, err := adapter.Activities(context.Background(), chains.TaikoMainnet, "0xUSER", 0)
	require.NoError(t, err)
	require.Len(t, activities, 4)

	hashes := []string{activities[0].Hash, activities[1].Hash, activities[2].Hash, activities[3].Hash}
	assert.Equal(t, []string{"0xburn", "0xswap", "0xmint", "0xcollect"}, hashes)

	burn := activities[0]
	assert.Equal(t, "Remove WETH/USDC Liquidity", burn.Title)
	assert.Equal(t, "0.5000 WETH + 0.0000 USDC", burn.Descriptor)

	swap := activities[1]
	assert.Equal(t, "Swap WETH for USDC", swap.Title)
	assert.Equal(t, "1.5 WETH → 3000.25 USDC", swap.Descriptor)
	assert.Equal(t, model.StatusConfirmed, swap.Status)
	assert.Equal(t, uint64(chains.TaikoMainnet), swap.ChainID)
	assert.Equal(t, "0xUser", swap.From)
	assert.Nil(t, swap.Nonce)
	assert.Equal(t, []string{"0xt0", "0xt1"}, swap.Logos)
	assert.Equal(t, 6, swap.Currencies[1].Decimals)

	mint := activities[2]
	assert.Equal(t, "Add WETH/USDC Liquidity", mint.Title)
	assert.Equal(t, "1.2346 WETH + 2.0000 USDC", mint.Descriptor)

	collect := activities[3]
	assert.Equal(t, "Collect WETH/USDC Fees", collect.Title)
	assert.Equal(t, "0.100000 WETH + 0.000001 USDC", collect.Descriptor)
	assert.Equal(t, "0xOwner", collect.From)
	assert.Equal(t, int64(100), collect.Timestamp)

	vars := fake.vars("TaikoUserActivity")
	assert.Equal(t, "0xuser", vars["account"])
	assert.Equal(t, float64(DefaultActivityPageSize), vars["first"])
}
