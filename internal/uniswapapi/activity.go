package uniswapapi

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"taikodata/internal/chains"
	"taikodata/internal/model"
	"taikodata/internal/num"
)

type activityAsset struct {
	Address  string `json:"address"`
	Chain    string `json:"chain"`
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals int    `json:"decimals"`
	Project  *struct {
		LogoURL string `json:"logoUrl"`
	} `json:"project"`
}

type assetChange struct {
	Direction string         `json:"direction"`
	Quantity  string         `json:"quantity"`
	Asset     *activityAsset `json:"asset"`
}

type transactionDetails struct {
	Type         string        `json:"type"`
	Hash         string        `json:"hash"`
	From         string        `json:"from"`
	To           string        `json:"to"`
	Nonce        *uint64       `json:"nonce"`
	Status       string        `json:"status"`
	AssetChanges []assetChange `json:"assetChanges"`
}

type assetActivity struct {
	ID        string              `json:"id"`
	Timestamp int64               `json:"timestamp"`
	Chain     string              `json:"chain"`
	Details   *transactionDetails `json:"details"`
}

type activityResponse struct {
	Portfolios []struct {
		AssetActivities []assetActivity `json:"assetActivities"`
	} `json:"portfolios"`
}

var activityTitles = map[string][3]string{
	"SWAP":     {"Swapping", "Swapped", "Swap failed"},
	"SEND":     {"Sending", "Sent", "Send failed"},
	"RECEIVE":  {"Receiving", "Received", "Receive failed"},
	"APPROVE":  {"Approving", "Approved", "Approval failed"},
	"LEND":     {"Adding liquidity", "Added liquidity", "Add liquidity failed"},
	"WITHDRAW": {"Removing liquidity", "Removed liquidity", "Remove liquidity failed"},
	"CLAIM":    {"Claiming", "Claimed", "Claim failed"},
	"WRAP":     {"Wrapping", "Wrapped", "Wrap failed"},
	"UNWRAP":   {"Unwrapping", "Unwrapped", "Unwrap failed"},
	"MINT":     {"Minting", "Minted", "Mint failed"},
	"BURN":     {"Burning", "Burned", "Burn failed"},
}

// Activity returns the recent transactions of account across every chain the API
// indexes. Entries on chains without a known chain ID are skipped.
func (c *Client) Activity(ctx context.Context, account string) ([]model.Activity, error) {
	if account == "" {
		return nil, fmt.Errorf("account: %w", model.ErrInvalidInput)
	}
	var resp activityResponse
	vars := map[string]any{"account": account, "pageSize": c.pageSize}
	if err := c.post(ctx, "Activity", activityQuery, vars, &resp); err != nil {
		return nil, err
	}

	var out []model.Activity
	for _, portfolio := range resp.Portfolios {
		for _, item := range portfolio.AssetActivities {
			a, ok := toActivity(item)
			if !ok {
				continue
			}
			out = append(out, a)
		}
	}
	return out, nil
}

func toActivity(item assetActivity) (model.Activity, bool) {
	if item.Details == nil || item.Details.Hash == "" {
		return model.Activity{}, false
	}
	id, ok := chains.ChainIDFromGQLChain(item.Chain)
	if !ok {
		return model.Activity{}, false
	}
	d := item.Details
	status := parseStatus(d.Status)

	a := model.Activity{
		Hash:      d.Hash,
		ChainID:   uint64(id),
		Status:    status,
		Timestamp: item.Timestamp,
		From:      d.From,
		Nonce:     d.Nonce,
		Title:     title(d.Type, status),
	}

	var sent, received []string
	for _, change := range d.AssetChanges {
		if change.Asset == nil {
			continue
		}
		a.Currencies = append(a.Currencies, model.Currency{
			ChainID:  uint64(id),
			Address:  strings.ToLower(change.Asset.Address),
			Symbol:   change.Asset.Symbol,
			Name:     change.Asset.Name,
			Decimals: change.Asset.Decimals,
		})
		if change.Asset.Project != nil && change.Asset.Project.LogoURL != "" {
			a.Logos = append(a.Logos, change.Asset.Project.LogoURL)
		}
		amount := num.ParseOr(change.Quantity, decimal.Zero).String() + " " + change.Asset.Symbol
		if change.Direction == "OUT" {
			sent = append(sent, amount)
		} else {
			received = append(received, amount)
		}
	}
	a.Descriptor = descriptor(sent, received)
	return a, true
}

func parseStatus(s string) model.TransactionStatus {
	switch strings.ToUpper(s) {
	case "PENDING":
		return model.StatusPending
	case "FAILED":
		return model.StatusFailed
	default:
		return model.StatusConfirmed
	}
}

func title(txType string, status model.TransactionStatus) string {
	titles, ok := activityTitles[strings.ToUpper(txType)]
	if !ok {
		return "Contract interaction"
	}
	switch status {
	case model.StatusPending:
		return titles[0]
	case model.StatusFailed:
		return titles[2]
	default:
		return titles[1]
	}
}

func descriptor(sent, received []string) string {
	switch {
	case len(sent) > 0 && len(received) > 0:
		return strings.Join(sent, ", ") + " for " + strings.Join(received, ", ")
	case len(sent) > 0:
		return strings.Join(sent, ", ")
	default:
		return strings.Join(received, ", ")
	}
}
