// Package num holds the numeric helpers shared by the adapters. Subgraphs return
// BigDecimal fields as strings; parsing never fails loudly, an unparsable value is zero.
package num

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Parse converts a subgraph numeric string. Empty or invalid input yields zero.
func Parse(s string) decimal.Decimal {
	return ParseOr(s, decimal.Zero)
}

// ParseOr is Parse with a fallback used only for empty input.
func ParseOr(s string, fallback decimal.Decimal) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseInt parses an integer string, falling back to zero.
func ParseInt(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		if d, derr := decimal.NewFromString(strings.TrimSpace(s)); derr == nil {
			return d.IntPart()
		}
		return 0
	}
	return n
}

// Float renders d for view-models.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// PercentChange returns (current-previous)/previous*100. ok is false when previous <= 0.
func PercentChange(current, previous decimal.Decimal) (decimal.Decimal, bool) {
	if previous.Sign() <= 0 {
		return decimal.Zero, false
	}
	return current.Sub(previous).Div(previous).Mul(hundred), true
}

// ToUnits scales a raw token amount down by decimals.
func ToUnits(value *big.Int, decimals int) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, int32(-decimals))
}

// FormatTokenAmount renders a raw amount with exactly decimals fractional digits.
func FormatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}
