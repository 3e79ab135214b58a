package chains

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ChainID identifies a network. It is the routing key for every data query.
type ChainID uint64

const (
	Ethereum       ChainID = 1
	Optimism       ChainID = 10
	Polygon        ChainID = 137
	Base           ChainID = 8453
	Arbitrum       ChainID = 42161
	Sepolia        ChainID = 11155111
	TaikoMainnet   ChainID = 167000
	TaikoInternal  ChainID = 167001
	TaikoL3Testnet ChainID = 167007
	TaikoHekla     ChainID = 167009
	TaikoHoodi     ChainID = 167013
)

// GQLChain is the chain name used in view-model IDs and by the Uniswap data API.
type GQLChain string

const (
	GQLTaiko           GQLChain = "TAIKO"
	GQLTaikoHoodi      GQLChain = "TAIKO_HOODI"
	GQLEthereum        GQLChain = "ETHEREUM"
	GQLEthereumSepolia GQLChain = "ETHEREUM_SEPOLIA"
	GQLOptimism        GQLChain = "OPTIMISM"
	GQLPolygon         GQLChain = "POLYGON"
	GQLBase            GQLChain = "BASE"
	GQLArbitrum        GQLChain = "ARBITRUM"
)

var taikoChains = map[ChainID]struct{}{
	TaikoMainnet:   {},
	TaikoInternal:  {},
	TaikoL3Testnet: {},
	TaikoHekla:     {},
	TaikoHoodi:     {},
}

var standardGQL = map[ChainID]GQLChain{
	Ethereum: GQLEthereum,
	Sepolia:  GQLEthereumSepolia,
	Optimism: GQLOptimism,
	Polygon:  GQLPolygon,
	Base:     GQLBase,
	Arbitrum: GQLArbitrum,
}

// IsTaiko reports whether id belongs to a Taiko network.
func IsTaiko(id ChainID) bool {
	_, ok := taikoChains[id]
	return ok
}

// GQLChainFor returns the view chain name for id. Taiko mainnet is TAIKO and every
// other Taiko network is reported as TAIKO_HOODI.
func GQLChainFor(id ChainID) (GQLChain, bool) {
	if id == TaikoMainnet {
		return GQLTaiko, true
	}
	if IsTaiko(id) {
		return GQLTaikoHoodi, true
	}
	name, ok := standardGQL[id]
	return name, ok
}

// ChainIDFromGQLChain maps a view chain name back to its chain ID.
func ChainIDFromGQLChain(name string) (ChainID, bool) {
	switch GQLChain(strings.ToUpper(strings.TrimSpace(name))) {
	case GQLTaiko:
		return TaikoMainnet, true
	case GQLTaikoHoodi:
		return TaikoHoodi, true
	}
	upper := GQLChain(strings.ToUpper(strings.TrimSpace(name)))
	for id, gql := range standardGQL {
		if gql == upper {
			return id, true
		}
	}
	return 0, false
}

// ParseChainID accepts either a decimal chain ID or a view chain name.
func ParseChainID(input string) (ChainID, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("chain is required")
	}
	if n, err := strconv.ParseUint(input, 10, 64); err == nil {
		if n == 0 {
			return 0, fmt.Errorf("invalid chain id: %s", input)
		}
		return ChainID(n), nil
	}
	if id, ok := ChainIDFromGQLChain(input); ok {
		return id, nil
	}
	return 0, fmt.Errorf("unknown chain: %s", input)
}

// TaikoChains returns the known Taiko chain IDs in ascending order.
func TaikoChains() []ChainID {
	out := make([]ChainID, 0, len(taikoChains))
	for id := range taikoChains {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (id ChainID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}
