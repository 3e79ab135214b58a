package chains

// CommonToken is a well-known ERC20 on a chain.
type CommonToken struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
}

var commonTokens = map[ChainID][]CommonToken{
	TaikoMainnet: {
		{Address: "0xA51894664A773981C6C112C43ce576f315d5b1B6", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
		{Address: "0x07d83526730c7438048D55A4fc0b850e2aaB6f0b", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
		{Address: "0xA9d23408b9bA935c230493c40C73824Df71A0975", Symbol: "TAIKO", Name: "Taiko Token", Decimals: 18},
		{Address: "0x9c2dc7377717603eB92b2655c5f2E7997a4945BD", Symbol: "USDT", Name: "Tether USD", Decimals: 6},
	},
	TaikoHoodi: {
		{Address: "0x3B39685B5495359c892DDD1057B5712F49976835", Symbol: "WETH", Name: "Wrapped Ether", Decimals: 18},
		{Address: "0xF2382db1E08b17A81566093f59E46F8db2026202", Symbol: "USDC", Name: "USD Coin", Decimals: 6},
	},
}

// CommonTokens returns the common tokens for id, or nil when none are known.
func CommonTokens(id ChainID) []CommonToken {
	tokens := commonTokens[id]
	if len(tokens) == 0 {
		return nil
	}
	out := make([]CommonToken, len(tokens))
	copy(out, tokens)
	return out
}
