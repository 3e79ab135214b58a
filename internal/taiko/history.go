package taiko

import (
	"context"
	"fmt"
	"strings"
	"time"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
)

type hourDataRow struct {
	PeriodStartUnix int64  `json:"periodStartUnix"`
	PriceUSD        string `json:"priceUSD"`
	Close           string `json:"close"`
}

type dailyRow struct {
	Date     int64  `json:"date"`
	PriceUSD string `json:"priceUSD"`
	Close    string `json:"close"`
}

// HistoryStart is the unix time a price history over p begins at.
func HistoryStart(now time.Time, p model.TimePeriod) int64 {
	ts := now.Unix()
	switch p {
	case model.PeriodHour:
		return ts - 60*60
	case model.PeriodWeek:
		return ts - 7*secondsPerDay
	case model.PeriodMonth:
		return ts - 30*secondsPerDay
	case model.PeriodYear:
		return ts - 365*secondsPerDay
	default:
		return ts - secondsPerDay
	}
}

func useHourlyData(p model.TimePeriod) bool {
	return p == model.PeriodHour || p == model.PeriodDay
}

// PriceHistory returns ascending price points for address over period. HOUR and DAY use
// hourly samples, longer periods use daily samples.
func (a *Adapter) PriceHistory(ctx context.Context, chainID chains.ChainID, address string, period model.TimePeriod) ([]model.PricePoint, error) {
	if address == "" {
		return nil, fmt.Errorf("token address: %w", model.ErrInvalidInput)
	}
	client, err := a.subgraphs.TokenClient(chainID)
	if err != nil {
		return nil, err
	}
	start := HistoryStart(a.now(), period)
	address = strings.ToLower(address)

	if useHourlyData(period) {
		var resp struct {
			TokenHourDatas []hourDataRow `json:"tokenHourDatas"`
		}
		vars := map[string]any{"tokenAddress": address, "startTime": start}
		if err := client.Query(ctx, "TaikoTokenHourData", tokenHourDataQuery, vars, &resp); err != nil {
			return nil, fmt.Errorf("token hour data: %w", err)
		}
		points := make([]model.PricePoint, 0, len(resp.TokenHourDatas))
		for _, row := range resp.TokenHourDatas {
			points = append(points, model.PricePoint{
				Timestamp: row.PeriodStartUnix,
				Value:     num.Float(num.Parse(firstNonEmpty(row.PriceUSD, row.Close))),
			})
		}
		return points, nil
	}

	var resp struct {
		TokenDayDatas []dailyRow `json:"tokenDayDatas"`
	}
	vars := map[string]any{"tokenAddress": address, "startDate": start}
	if err := client.Query(ctx, "TaikoTokenDayData", tokenDayDataQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("token day data: %w", err)
	}
	points := make([]model.PricePoint, 0, len(resp.TokenDayDatas))
	for _, row := range resp.TokenDayDatas {
		points = append(points, model.PricePoint{
			Timestamp: row.Date,
			Value:     num.Float(num.Parse(firstNonEmpty(row.PriceUSD, row.Close))),
		})
	}
	return points, nil
}
