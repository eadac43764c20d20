// Package display formats money for terminal output.
package display

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"

	"github.com/budgetwise-dev/budgetwise/internal/model"
)

// DefaultCurrency is used when none is configured.
const DefaultCurrency = "INR"

// Money formats decimal amounts with a currency symbol and two decimals.
type Money struct {
	code   string
	symbol string
}

// NewMoney resolves the symbol for an ISO 4217 code such as "INR".
func NewMoney(code string) (*Money, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = DefaultCurrency
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return nil, fmt.Errorf("unknown currency %q: %w", code, err)
	}
	return &Money{
		code:   unit.String(),
		symbol: fmt.Sprintf("%s", currency.NarrowSymbol(unit)),
	}, nil
}

func (m *Money) Code() string   { return m.code }
func (m *Money) Symbol() string { return m.symbol }

// Format renders d as "₹1234.50". Negative values keep the sign in front.
func (m *Money) Format(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + m.symbol + d.Neg().StringFixed(2)
	}
	return m.symbol + d.StringFixed(2)
}

// Amount renders a transaction amount, showing non-numeric text as is.
func (m *Money) Amount(a model.Amount) string {
	d, ok := a.Decimal()
	if !ok {
		if a.Raw() == "" {
			return "-"
		}
		return fmt.Sprintf("%q (invalid)", a.Raw())
	}
	return m.Format(d)
}

// Percent renders a fraction such as 0.25 as "25%".
func Percent(f decimal.Decimal) string {
	return f.Mul(decimal.NewFromInt(100)).StringFixed(0) + "%"
}
