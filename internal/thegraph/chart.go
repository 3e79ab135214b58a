package thegraph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
)

// ChartRange is the [start, end] window a chart over p covers, and whether hourly rows
// back it.
func ChartRange(now time.Time, p model.TimePeriod) (start, end int64, hourly bool) {
	end = now.Unix()
	switch p {
	case model.PeriodHour:
		return end - 3600, end, true
	case model.PeriodWeek:
		return end - 7*secondsPerDay, end, false
	case model.PeriodMonth:
		return end - 30*secondsPerDay, end, false
	case model.PeriodYear:
		return end - 365*secondsPerDay, end, false
	default:
		return end - secondsPerDay, end, true
	}
}

type chartRow struct {
	Date            int64  `json:"date"`
	PeriodStartUnix int64  `json:"periodStartUnix"`
	VolumeUSD       string `json:"volumeUSD"`
	TVLUSD          string `json:"tvlUSD"`
	FeesUSD         string `json:"feesUSD"`
}

type chartResponse struct {
	PoolDayDatas  []chartRow `json:"poolDayDatas"`
	PoolHourDatas []chartRow `json:"poolHourDatas"`
}

// PoolChartData returns ascending volume and TVL samples for pool over period.
func (s *Service) PoolChartData(ctx context.Context, id chains.ChainID, pool string, period model.TimePeriod) ([]model.ChartDataPoint, error) {
	if pool == "" {
		return nil, fmt.Errorf("pool address: %w", model.ErrInvalidInput)
	}
	client, err := s.client(id)
	if err != nil {
		return nil, err
	}

	start, end, hourly := ChartRange(s.now(), period)
	vars := map[string]any{
		"poolAddress": strings.ToLower(pool),
		"startTime":   start,
		"endTime":     end,
	}

	var resp chartResponse
	if hourly {
		err = client.Query(ctx, "PoolHourData", poolHourDataQuery, vars, &resp)
	} else {
		err = client.Query(ctx, "PoolDayData", poolDayDataQuery, vars, &resp)
	}
	if err != nil {
		return nil, fmt.Errorf("pool %s chart: %w", pool, err)
	}

	rows := resp.PoolDayDatas
	if hourly {
		rows = resp.PoolHourDatas
	}
	out := make([]model.ChartDataPoint, 0, len(rows))
	for _, row := range rows {
		ts := row.Date
		if hourly {
			ts = row.PeriodStartUnix
		}
		out = append(out, model.ChartDataPoint{
			Timestamp: ts,
			VolumeUSD: num.Float(num.Parse(row.VolumeUSD)),
			TVLUSD:    num.Float(num.Parse(row.TVLUSD)),
		})
	}
	s.logger.Debug("pool chart data",
		zap.Uint64("chain_id", uint64(id)),
		zap.String("pool", pool),
		zap.Stringer("period", period),
		zap.Int("points", len(out)),
	)
	return out, nil
}

// HistoricalDate is the UTC day start daysAgo days before now.
func HistoricalDate(now time.Time, daysAgo int) int64 {
	target := now.Unix() - int64(daysAgo)*secondsPerDay
	return target / secondsPerDay * secondsPerDay
}

// PoolHistoricalData returns the pool's day row for the day daysAgo days back. It
// returns nil without error when the subgraph has no row for that day.
func (s *Service) PoolHistoricalData(ctx context.Context, id chains.ChainID, pool string, daysAgo int) (*model.PoolDayData, error) {
	if pool == "" {
		return nil, fmt.Errorf("pool address: %w", model.ErrInvalidInput)
	}
	client, err := s.client(id)
	if err != nil {
		return nil, err
	}

	vars := map[string]any{
		"poolId": strings.ToLower(pool),
		"date":   HistoricalDate(s.now(), daysAgo),
	}
	var resp chartResponse
	if err := client.Query(ctx, "PoolHistoricalData", poolHistoricalDataQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("pool %s historical data: %w", pool, err)
	}
	if len(resp.PoolDayDatas) == 0 {
		return nil, nil
	}
	row := resp.PoolDayDatas[0]
	return &model.PoolDayData{
		Date:      row.Date,
		VolumeUSD: num.Float(num.Parse(row.VolumeUSD)),
		TVLUSD:    num.Float(num.Parse(row.TVLUSD)),
		FeesUSD:   num.Float(num.Parse(row.FeesUSD)),
	}, nil
}
