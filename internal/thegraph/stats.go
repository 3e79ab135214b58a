package thegraph

import (
	"github.com/shopspring/decimal"

	"taikodata/internal/model"
	"taikodata/internal/num"
)

var (
	hundred      = decimal.NewFromInt(100)
	feeTierScale = decimal.NewFromInt(10000)
	daysPerYear  = decimal.NewFromInt(365)
)

// PoolStats derives fee, APR and day-over-day change figures for pool. The fee tier is
// reported in percent. APR is 0 for an empty pool; changes are 0 without a previous
// day or when the previous value is 0.
func PoolStats(pool model.Pool, previous *model.PoolDayData) model.PoolStats {
	tvl := decimal.NewFromFloat(pool.TotalValueLockedUSD)
	volume := decimal.NewFromFloat(pool.VolumeUSD)
	feeTier := decimal.NewFromInt(pool.FeeTier).Div(feeTierScale)
	fees := volume.Mul(feeTier).Div(hundred)

	apr := decimal.Zero
	if tvl.IsPositive() {
		apr = fees.Div(tvl).Mul(daysPerYear).Mul(hundred)
	}

	stats := model.PoolStats{
		TVLUSD:    num.Float(tvl),
		VolumeUSD: num.Float(volume),
		FeeTier:   num.Float(feeTier),
		FeesUSD:   num.Float(fees),
		APR:       num.Float(apr),
	}
	if previous == nil {
		return stats
	}
	if change, ok := num.PercentChange(tvl, decimal.NewFromFloat(previous.TVLUSD)); ok {
		stats.TVLChange = num.Float(change)
	}
	if change, ok := num.PercentChange(volume, decimal.NewFromFloat(previous.VolumeUSD)); ok {
		stats.VolumeChange = num.Float(change)
	}
	return stats
}
