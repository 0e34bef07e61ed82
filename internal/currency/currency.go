// Package currency formats donation amounts for display.
package currency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Code string

const (
	USD   Code = "USD"
	EUR   Code = "EUR"
	GBP   Code = "GBP"
	CUSD  Code = "cUSD"
	CEUR  Code = "cEUR"
	USDC  Code = "USDC"
	Cents Code = "CENTS"
)

var ErrUnknownCurrency = errors.New("unknown currency")

var symbols = map[Code]string{
	USD: "$",
	EUR: "€",
	GBP: "£",
}

var tokens = map[Code]bool{
	CUSD: true,
	CEUR: true,
	USDC: true,
}

// Parse matches a currency code case-insensitively, keeping the canonical
// spelling (cUSD, cEUR).
func Parse(s string) (Code, error) {
	for _, c := range []Code{USD, EUR, GBP, CUSD, CEUR, USDC, Cents} {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

// Format renders amount in the given currency. Amounts are in whole units of
// the currency except for CENTS, where 0.05 renders as "5¢".
func Format(amount decimal.Decimal, code Code) string {
	if sym, ok := symbols[code]; ok {
		if amount.IsNegative() {
			return "-" + sym + amount.Abs().StringFixed(2)
		}
		return sym + amount.StringFixed(2)
	}
	if tokens[code] {
		return amount.StringFixed(2) + " " + string(code)
	}
	if code == Cents {
		cents := amount.Shift(2).Round(2)
		return cents.String() + "¢"
	}
	return amount.StringFixed(2)
}
