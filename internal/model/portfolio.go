package model

// TokenBalance is a non-zero balance of a common token.
type TokenBalance struct {
	ChainID    uint64  `json:"chainId"`
	Address    string  `json:"address"`
	Symbol     string  `json:"symbol"`
	Name       string  `json:"name"`
	Decimals   int     `json:"decimals"`
	RawBalance string  `json:"rawBalance"`
	Balance    string  `json:"balance"`
	PriceUSD   float64 `json:"priceUSD,omitempty"`
	BalanceUSD float64 `json:"balanceUSD"`
}

// Position is a concentrated-liquidity position held by an account.
type Position struct {
	ID                  string `json:"id"`
	Owner               string `json:"owner"`
	Liquidity           string `json:"liquidity"`
	PoolID              string `json:"poolId"`
	Token0              string `json:"token0"`
	Token0Symbol        string `json:"token0Symbol"`
	Token1              string `json:"token1"`
	Token1Symbol        string `json:"token1Symbol"`
	PoolTVLUSD          string `json:"poolTvlUSD"`
	PoolTVLToken0       string `json:"poolTvlToken0"`
	PoolTVLToken1       string `json:"poolTvlToken1"`
	DepositedToken0     string `json:"depositedToken0"`
	DepositedToken1     string `json:"depositedToken1"`
	WithdrawnToken0     string `json:"withdrawnToken0"`
	WithdrawnToken1     string `json:"withdrawnToken1"`
	CollectedFeesToken0 string `json:"collectedFeesToken0"`
	CollectedFeesToken1 string `json:"collectedFeesToken1"`
}

// PortfolioValue is the USD valuation of an account on one chain.
type PortfolioValue struct {
	ChainID             uint64         `json:"chainId"`
	Account             string         `json:"account"`
	TokenBalances       []TokenBalance `json:"tokenBalances"`
	TokensValueUSD      float64        `json:"tokensValueUSD"`
	LPPositions         []Position     `json:"lpPositions"`
	LPPositionsValueUSD float64        `json:"lpPositionsValueUSD"`
	TotalValueUSD       float64        `json:"totalValueUSD"`
}
