// Package taiko reads Taiko subgraphs and reshapes their rows into the view-models served
// for Taiko chains.
package taiko

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/subgraph"
)

const secondsPerDay = 86400

// Adapter answers token, activity and portfolio queries for Taiko chains.
type Adapter struct {
	subgraphs *subgraph.Registry
	logger    *zap.Logger
	now       func() time.Time
}

// NewAdapter creates an adapter over the Taiko token and pool subgraphs in reg.
func NewAdapter(reg *subgraph.Registry, logger *zap.Logger) *Adapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adapter{
		subgraphs: reg,
		logger:    logger,
		now:       time.Now,
	}
}

// chainName is the view chain for id: TAIKO for mainnet, TAIKO_HOODI otherwise.
func chainName(id chains.ChainID) string {
	if id == chains.TaikoMainnet {
		return string(chains.GQLTaiko)
	}
	return string(chains.GQLTaikoHoodi)
}

func tokenID(address string, id chains.ChainID) string {
	return strings.ToLower(address) + "-" + chainName(id)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

type bundle struct {
	EthPriceUSD string `json:"ethPriceUSD"`
}

type subgraphToken struct {
	ID                  string `json:"id"`
	Symbol              string `json:"symbol"`
	Name                string `json:"name"`
	Decimals            string `json:"decimals"`
	VolumeUSD           string `json:"volumeUSD"`
	TotalValueLockedUSD string `json:"totalValueLockedUSD"`
	FeesUSD             string `json:"feesUSD"`
	TxCount             string `json:"txCount"`
	DerivedETH          string `json:"derivedETH"`
}
