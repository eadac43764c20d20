package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a transaction amount as received from or sent to the server.
// The raw text is kept, so a record with an unparseable amount round-trips
// unchanged; callers decide how to treat it when summing.
type Amount struct {
	raw string
}

// NewAmount wraps a decimal value.
func NewAmount(d decimal.Decimal) Amount {
	return Amount{raw: d.String()}
}

// ParseAmount parses user input such as "12.50". It rejects empty,
// non-numeric and negative values.
func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Amount{}, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("amount %q is not a number", s)
	}
	if d.IsNegative() {
		return Amount{}, fmt.Errorf("amount %q must not be negative", s)
	}
	return NewAmount(d), nil
}

// Decimal returns the numeric value and whether the raw text was numeric.
func (a Amount) Decimal() (decimal.Decimal, bool) {
	if a.raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(a.raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// OrZero returns the numeric value, or zero when the amount is not numeric.
func (a Amount) OrZero() decimal.Decimal {
	d, _ := a.Decimal()
	return d
}

// Raw returns the text as received.
func (a Amount) Raw() string { return a.raw }

// String implements fmt.Stringer.
func (a Amount) String() string { return a.raw }

// MarshalJSON writes numeric amounts as JSON numbers and anything else as the
// original string.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.raw == "" {
		return []byte("null"), nil
	}
	if d, ok := a.Decimal(); ok {
		return []byte(d.String()), nil
	}
	return json.Marshal(a.raw)
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		a.raw = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		a.raw = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	a.raw = n.String()
	return nil
}
