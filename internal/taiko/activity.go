package taiko

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
)

// DefaultActivityPageSize is the number of rows fetched per event type.
const DefaultActivityPageSize = 100

type activityToken struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals string `json:"decimals"`
}

type activityPool struct {
	ID     string        `json:"id"`
	Token0 activityToken `json:"token0"`
	Token1 activityToken `json:"token1"`
}

// poolEvent covers swaps, mints, burns and collects. Collects carry no origin.
type poolEvent struct {
	ID          string       `json:"id"`
	Timestamp   string       `json:"timestamp"`
	Sender      string       `json:"sender"`
	Owner       string       `json:"owner"`
	Origin      string       `json:"origin"`
	Amount0     string       `json:"amount0"`
	Amount1     string       `json:"amount1"`
	AmountUSD   string       `json:"amountUSD"`
	Pool        activityPool `json:"pool"`
	Transaction struct {
		ID          string `json:"id"`
		BlockNumber string `json:"blockNumber"`
		Timestamp   string `json:"timestamp"`
	} `json:"transaction"`
}

type activityResponse struct {
	Swaps    []poolEvent `json:"swaps"`
	Mints    []poolEvent `json:"mints"`
	Burns    []poolEvent `json:"burns"`
	Collects []poolEvent `json:"collects"`
}

// Activities returns the account's swaps, liquidity changes and fee collections, newest
// first. first caps each event type and defaults to DefaultActivityPageSize.
func (a *Adapter) Activities(ctx context.Context, chainID chains.ChainID, account string, first int) ([]model.Activity, error) {
	if account == "" {
		return nil, fmt.Errorf("account: %w", model.ErrInvalidInput)
	}
	if first <= 0 {
		first = DefaultActivityPageSize
	}
	client, err := a.subgraphs.PoolClient(chainID)
	if err != nil {
		return nil, err
	}

	var resp activityResponse
	vars := map[string]any{"account": strings.ToLower(account), "first": first}
	if err := client.Query(ctx, "TaikoUserActivity", userActivityQuery, vars, &resp); err != nil {
		return nil, fmt.Errorf("user activity: %w", err)
	}

	id := uint64(chainID)
	out := make([]model.Activity, 0, len(resp.Swaps)+len(resp.Mints)+len(resp.Burns)+len(resp.Collects))
	for _, ev := range resp.Swaps {
		t0, t1 := ev.Pool.Token0.Symbol, ev.Pool.Token1.Symbol
		out = append(out, eventActivity(id, ev, ev.Origin,
			fmt.Sprintf("Swap %s for %s", t0, t1),
			fmt.Sprintf("%s %s → %s %s", num.Parse(ev.Amount0).Abs().String(), t0, num.Parse(ev.Amount1).Abs().String(), t1),
		))
	}
	for _, ev := range resp.Mints {
		t0, t1 := ev.Pool.Token0.Symbol, ev.Pool.Token1.Symbol
		out = append(out, eventActivity(id, ev, ev.Origin,
			fmt.Sprintf("Add %s/%s Liquidity", t0, t1),
			fmt.Sprintf("%s %s + %s %s", num.Parse(ev.Amount0).StringFixed(4), t0, num.Parse(ev.Amount1).StringFixed(4), t1),
		))
	}
	for _, ev := range resp.Burns {
		t0, t1 := ev.Pool.Token0.Symbol, ev.Pool.Token1.Symbol
		out = append(out, eventActivity(id, ev, ev.Origin,
			fmt.Sprintf("Remove %s/%s Liquidity", t0, t1),
			fmt.Sprintf("%s %s + %s %s", num.Parse(ev.Amount0).StringFixed(4), t0, num.Parse(ev.Amount1).StringFixed(4), t1),
		))
	}
	for _, ev := range resp.Collects {
		t0, t1 := ev.Pool.Token0.Symbol, ev.Pool.Token1.Symbol
		out = append(out, eventActivity(id, ev, ev.Owner,
			fmt.Sprintf("Collect %s/%s Fees", t0, t1),
			fmt.Sprintf("%s %s + %s %s", num.Parse(ev.Amount0).StringFixed(6), t0, num.Parse(ev.Amount1).StringFixed(6), t1),
		))
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func eventActivity(chainID uint64, ev poolEvent, from, title, descriptor string) model.Activity {
	return model.Activity{
		Hash:       ev.Transaction.ID,
		ChainID:    chainID,
		Status:     model.StatusConfirmed,
		Timestamp:  num.ParseInt(ev.Timestamp),
		From:       from,
		Title:      title,
		Descriptor: descriptor,
		Logos:      []string{ev.Pool.Token0.ID, ev.Pool.Token1.ID},
		Currencies: []model.Currency{
			currency(chainID, ev.Pool.Token0),
			currency(chainID, ev.Pool.Token1),
		},
	}
}

func currency(chainID uint64, token activityToken) model.Currency {
	return model.Currency{
		ChainID:  chainID,
		Address:  token.ID,
		Symbol:   token.Symbol,
		Name:     token.Name,
		Decimals: int(num.ParseInt(token.Decimals)),
	}
}
