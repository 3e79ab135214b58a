package model

// PoolToken is a pool side as reported by the subgraph.
type PoolToken struct {
	ID       string  `json:"id"`
	Symbol   string  `json:"symbol"`
	Name     string  `json:"name"`
	Decimals int     `json:"decimals"`
	PriceUSD float64 `json:"priceUSD,omitempty"`
}

// Pool is the pool-detail view.
type Pool struct {
	ChainID                uint64     `json:"chainId"`
	Address                string     `json:"address"`
	FeeTier                int64      `json:"feeTier"`
	Liquidity              string     `json:"liquidity"`
	SqrtPrice              string     `json:"sqrtPrice"`
	Tick                   int64      `json:"tick"`
	Token0                 PoolToken  `json:"token0"`
	Token1                 PoolToken  `json:"token1"`
	Token0Price            float64    `json:"token0Price"`
	Token1Price            float64    `json:"token1Price"`
	VolumeUSD              float64    `json:"volumeUSD"`
	TxCount                int64      `json:"txCount"`
	TotalValueLockedToken0 float64    `json:"tvlToken0"`
	TotalValueLockedToken1 float64    `json:"tvlToken1"`
	TotalValueLockedUSD    float64    `json:"tvlUSD"`
	ETHPriceUSD            float64    `json:"ethPriceUSD"`
	Live                   *PoolMeta  `json:"live,omitempty"`
	Stats                  *PoolStats `json:"stats,omitempty"`
}

// PoolDayData is one day of pool history.
type PoolDayData struct {
	Date      int64   `json:"date"`
	VolumeUSD float64 `json:"volumeUSD"`
	TVLUSD    float64 `json:"tvlUSD"`
	FeesUSD   float64 `json:"feesUSD"`
}

// PoolStats are the derived pool figures.
type PoolStats struct {
	TVLUSD       float64 `json:"tvlUSD"`
	VolumeUSD    float64 `json:"volumeUSD"`
	FeeTier      float64 `json:"feeTier"`
	FeesUSD      float64 `json:"feesUSD"`
	APR          float64 `json:"apr"`
	TVLChange    float64 `json:"tvlChange"`
	VolumeChange float64 `json:"volumeChange"`
}

// ChartDataPoint is one pool chart sample.
type ChartDataPoint struct {
	Timestamp int64   `json:"timestamp"`
	VolumeUSD float64 `json:"volumeUSD"`
	TVLUSD    float64 `json:"tvlUSD"`
}
