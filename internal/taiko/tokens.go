package taiko

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
)

type topTokensResponse struct {
	Tokens []subgraphToken `json:"tokens"`
	Bundle *bundle         `json:"bundle"`
}

type dayDataRow struct {
	ID    string `json:"id"`
	Date  int64  `json:"date"`
	Token struct {
		ID string `json:"id"`
	} `json:"token"`
	PriceUSD string `json:"priceUSD"`
}

type dayDataResponse struct {
	TokenDayDatas []dayDataRow `json:"tokenDayDatas"`
}

// TopTokens returns the top 100 tokens by TVL with price changes over period. Sort ranks
// cover every token; filter only narrows the returned list.
func (a *Adapter) TopTokens(ctx context.Context, chainID chains.ChainID, period model.TimePeriod, filter string) (model.TopTokens, error) {
	result := model.TopTokens{
		TokenSortRank: map[string]int{},
		Sparklines:    map[string][]model.PricePoint{},
	}

	client, err := a.subgraphs.TokenClient(chainID)
	if err != nil {
		return result, err
	}

	var resp topTokensResponse
	vars := map[string]any{"orderBy": "totalValueLockedUSD", "orderDirection": "desc"}
	if err := client.Query(ctx, "TaikoTopTokens", topTokensQuery, vars, &resp); err != nil {
		return result, fmt.Errorf("top tokens: %w", err)
	}
	if resp.Bundle == nil {
		a.logger.Warn("top tokens bundle missing", zap.Uint64("chain_id", uint64(chainID)))
		return result, nil
	}

	now := a.now()
	history := a.topTokensDayData(ctx, chainID, resp.Tokens, period)
	ethPrice := num.Parse(resp.Bundle.EthPriceUSD)

	tokens := make([]model.NormalizedToken, 0, len(resp.Tokens))
	for i, token := range resp.Tokens {
		address := strings.ToLower(token.ID)
		change := decimal.Zero
		if points, ok := history[address]; ok {
			if pct, ok := PriceChange(points, period, now); ok {
				change = pct
				a.logger.Debug("price change",
					zap.Uint64("chain_id", uint64(chainID)),
					zap.String("token", address),
					zap.String("period", period.String()),
					zap.String("change", pct.StringFixed(2)),
				)
			}
		}

		normalized := normalizeToken(token, chainID, ethPrice)
		normalized.Market.PricePercentChange = &model.Amount{Value: num.Float(change)}
		tokens = append(tokens, normalized)
		result.TokenSortRank[address] = i + 1
	}

	result.Sparklines = sparklines(history)
	result.Tokens = FilterTokens(tokens, filter)
	return result, nil
}

// topTokensDayData loads day data for tokens grouped by lowercase address, newest first.
// Failures are logged and yield no history.
func (a *Adapter) topTokensDayData(ctx context.Context, chainID chains.ChainID, tokens []subgraphToken, period model.TimePeriod) map[string][]DayPrice {
	grouped := make(map[string][]DayPrice)
	if len(tokens) == 0 {
		return grouped
	}
	client, err := a.subgraphs.PoolClient(chainID)
	if err != nil {
		a.logger.Debug("no pool subgraph for day data", zap.Uint64("chain_id", uint64(chainID)))
		return grouped
	}

	ids := make([]string, 0, len(tokens))
	for _, token := range tokens {
		ids = append(ids, strings.ToLower(token.ID))
	}
	startDate := DayStartTime(a.now(), period)

	var resp dayDataResponse
	vars := map[string]any{"tokenIds": ids, "startDate": startDate}
	if err := client.Query(ctx, "TaikoTopTokensDayData", topTokensDayDataQuery, vars, &resp); err != nil {
		a.logger.Warn("top tokens day data failed",
			zap.Uint64("chain_id", uint64(chainID)),
			zap.Int64("start_date", startDate),
			zap.Error(err),
		)
		return grouped
	}

	for _, row := range resp.TokenDayDatas {
		address := strings.ToLower(row.Token.ID)
		grouped[address] = append(grouped[address], DayPrice{
			Day:   dayIndex(row.Date),
			Price: num.Parse(row.PriceUSD),
		})
	}
	return grouped
}

// sparklines orders each token's samples oldest first and drops zero prices.
func sparklines(history map[string][]DayPrice) map[string][]model.PricePoint {
	out := make(map[string][]model.PricePoint, len(history))
	for address, samples := range history {
		sorted := make([]DayPrice, len(samples))
		copy(sorted, samples)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })

		points := make([]model.PricePoint, 0, len(sorted))
		for _, sample := range sorted {
			if sample.Price.Sign() <= 0 {
				continue
			}
			points = append(points, model.PricePoint{
				Timestamp: sample.Day * secondsPerDay,
				Value:     num.Float(sample.Price),
			})
		}
		if len(points) > 0 {
			out[address] = points
		}
	}
	return out
}

func normalizeToken(token subgraphToken, chainID chains.ChainID, ethPrice decimal.Decimal) model.NormalizedToken {
	address := strings.ToLower(token.ID)
	price := num.Parse(token.DerivedETH).Mul(ethPrice)
	return model.NormalizedToken{
		ID:       tokenID(address, chainID),
		Address:  address,
		Chain:    chainName(chainID),
		Symbol:   token.Symbol,
		Name:     token.Name,
		Decimals: int(num.ParseInt(token.Decimals)),
		Standard: "ERC20",
		Project:  &model.Project{},
		Market: &model.TokenMarket{
			Price:            &model.Amount{Value: num.Float(price)},
			Volume:           &model.Amount{Value: num.Float(num.Parse(token.VolumeUSD))},
			TotalValueLocked: &model.Amount{Value: num.Float(num.Parse(token.TotalValueLockedUSD))},
		},
	}
}

// FilterTokens keeps tokens whose address, name or symbol contains filter, ignoring case.
// An empty filter keeps every token.
func FilterTokens(tokens []model.NormalizedToken, filter string) []model.NormalizedToken {
	filter = strings.ToLower(filter)
	if filter == "" {
		return tokens
	}
	out := make([]model.NormalizedToken, 0, len(tokens))
	for _, token := range tokens {
		if strings.Contains(strings.ToLower(token.Address), filter) ||
			strings.Contains(strings.ToLower(token.Name), filter) ||
			strings.Contains(strings.ToLower(token.Symbol), filter) {
			out = append(out, token)
		}
	}
	return out
}

// TokenDetail is a single token's market data on a Taiko chain.
type TokenDetail struct {
	ID          string  `json:"id"`
	Address     string  `json:"address"`
	Chain       string  `json:"chain"`
	Symbol      string  `json:"symbol"`
	Name        string  `json:"name"`
	Decimals    int     `json:"decimals"`
	VolumeUSD   float64 `json:"volumeUSD"`
	TVLUSD      float64 `json:"totalValueLockedUSD"`
	FeesUSD     float64 `json:"feesUSD"`
	TxCount     int64   `json:"txCount"`
	PriceUSD    float64 `json:"priceUSD"`
	DerivedETH  float64 `json:"derivedETH"`
	ETHPriceUSD float64 `json:"ethPriceUSD"`
}

type tokenResponse struct {
	Token  *subgraphToken `json:"token"`
	Bundle *bundle        `json:"bundle"`
}

// Token returns market data for address. A missing token or bundle is ErrNotFound.
func (a *Adapter) Token(ctx context.Context, chainID chains.ChainID, address string) (*TokenDetail, error) {
	if address == "" {
		return nil, fmt.Errorf("token address: %w", model.ErrInvalidInput)
	}
	client, err := a.subgraphs.TokenClient(chainID)
	if err != nil {
		return nil, err
	}

	var resp tokenResponse
	vars := map[string]any{"tokenId": strings.ToLower(address)}
	if err := client.Query(ctx, "TaikoToken", tokenQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("token %s: %w", address, err)
	}
	if resp.Token == nil || resp.Bundle == nil {
		return nil, fmt.Errorf("token %s: %w", address, model.ErrNotFound)
	}

	token := resp.Token
	ethPrice := num.Parse(resp.Bundle.EthPriceUSD)
	derived := num.Parse(token.DerivedETH)
	lower := strings.ToLower(token.ID)
	return &TokenDetail{
		ID:          lower,
		Address:     lower,
		Chain:       chainName(chainID),
		Symbol:      token.Symbol,
		Name:        token.Name,
		Decimals:    int(num.ParseInt(token.Decimals)),
		VolumeUSD:   num.Float(num.Parse(token.VolumeUSD)),
		TVLUSD:      num.Float(num.Parse(token.TotalValueLockedUSD)),
		FeesUSD:     num.Float(num.Parse(token.FeesUSD)),
		TxCount:     num.ParseInt(token.TxCount),
		PriceUSD:    num.Float(derived.Mul(ethPrice)),
		DerivedETH:  num.Float(derived),
		ETHPriceUSD: num.Float(ethPrice),
	}, nil
}
