package num

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParse(t *testing.T) {
	if got := Parse("1.25"); !got.Equal(decimal.RequireFromString("1.25")) {
		t.Fatalf("parse mismatch: %s", got)
	}
	if got := Parse(""); !got.IsZero() {
		t.Fatalf("expected zero for empty, got %s", got)
	}
	if got := Parse("abc"); !got.IsZero() {
		t.Fatalf("expected zero for invalid, got %s", got)
	}
	if got := ParseOr("", decimal.NewFromInt(1)); !got.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := ParseOr("0", decimal.NewFromInt(1)); !got.IsZero() {
		t.Fatalf("fallback must only apply to empty input, got %s", got)
	}
}

func TestParseInt(t *testing.T) {
	if ParseInt("1700000000") != 1700000000 {
		t.Fatalf("parse int mismatch")
	}
	if ParseInt("12.9") != 12 {
		t.Fatalf("decimal input should truncate")
	}
	if ParseInt("x") != 0 {
		t.Fatalf("invalid input should be zero")
	}
}

func TestPercentChange(t *testing.T) {
	got, ok := PercentChange(decimal.NewFromInt(110), decimal.NewFromInt(100))
	if !ok || !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("percent change mismatch: %s %v", got, ok)
	}
	if _, ok := PercentChange(decimal.NewFromInt(1), decimal.Zero); ok {
		t.Fatalf("expected no value for zero previous")
	}
}

func TestFormatTokenAmount(t *testing.T) {
	cases := []struct {
		value    *big.Int
		decimals uint8
		want     string
	}{
		{big.NewInt(1500000), 6, "1.500000"},
		{big.NewInt(-25), 2, "-0.25"},
		{big.NewInt(42), 0, "42"},
		{nil, 18, "0"},
	}
	for _, tc := range cases {
		if got := FormatTokenAmount(tc.value, tc.decimals); got != tc.want {
			t.Fatalf("format %v/%d: got %s want %s", tc.value, tc.decimals, got, tc.want)
		}
	}
}

func TestToUnits(t *testing.T) {
	got := ToUnits(big.NewInt(2500000), 6)
	if !got.Equal(decimal.RequireFromString("2.5")) {
		t.Fatalf("units mismatch: %s", got)
	}
}
