package model

// Amount is a single value with an optional currency.
type Amount struct {
	ID       string  `json:"id,omitempty"`
	Value    float64 `json:"value"`
	Currency string  `json:"currency,omitempty"`
}

// TimestampedAmount is one point in a price history.
type TimestampedAmount struct {
	ID        string  `json:"id,omitempty"`
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// PricePoint is one sparkline point. Timestamp is unix seconds.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Project carries token presentation data.
type Project struct {
	ID      string `json:"id,omitempty"`
	LogoURL string `json:"logoUrl,omitempty"`
}

// TokenMarket holds market data. Every field is optional.
type TokenMarket struct {
	ID                 string              `json:"id,omitempty"`
	Price              *Amount             `json:"price,omitempty"`
	PricePercentChange *Amount             `json:"pricePercentChange,omitempty"`
	Volume             *Amount             `json:"volume,omitempty"`
	Volume24H          *Amount             `json:"volume24H,omitempty"`
	TotalValueLocked   *Amount             `json:"totalValueLocked,omitempty"`
	PriceHigh52W       *Amount             `json:"priceHigh52W,omitempty"`
	PriceLow52W        *Amount             `json:"priceLow52W,omitempty"`
	PriceHistory       []TimestampedAmount `json:"priceHistory,omitempty"`
}

// NormalizedToken is the token view shared by the Taiko and standard backends.
// ID is "<lowercase address>-<chain>".
type NormalizedToken struct {
	ID       string       `json:"id"`
	Address  string       `json:"address"`
	Chain    string       `json:"chain"`
	Symbol   string       `json:"symbol,omitempty"`
	Name     string       `json:"name,omitempty"`
	Decimals int          `json:"decimals,omitempty"`
	Standard string       `json:"standard,omitempty"`
	Project  *Project     `json:"project,omitempty"`
	Market   *TokenMarket `json:"market,omitempty"`
}

// TopTokens is the explore-page result.
type TopTokens struct {
	Tokens        []NormalizedToken       `json:"tokens"`
	TokenSortRank map[string]int          `json:"tokenSortRank"`
	Sparklines    map[string][]PricePoint `json:"sparklines"`
}

// TokenPrice is the price-query result: latest price and its history.
type TokenPrice struct {
	Token        NormalizedToken     `json:"token"`
	Price        *Amount             `json:"price,omitempty"`
	PriceHistory []TimestampedAmount `json:"priceHistory"`
}

// TokenSnapshot is one persisted top-tokens row.
type TokenSnapshot struct {
	ChainID            uint64  `json:"chain_id"`
	Address            string  `json:"address"`
	Symbol             string  `json:"symbol"`
	Name               string  `json:"name"`
	Decimals           int     `json:"decimals"`
	Rank               int     `json:"rank"`
	Period             string  `json:"period"`
	PriceUSD           float64 `json:"price_usd"`
	PricePercentChange float64 `json:"price_percent_change"`
	VolumeUSD          float64 `json:"volume_usd"`
	TVLUSD             float64 `json:"tvl_usd"`
	CapturedAt         int64   `json:"captured_at"`
}
