package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary or quantity value carried through the pipeline.
// It decodes leniently because model output is not always well typed:
// JSON numbers, numeric strings ("1200", "₹1,200.50", "INR 900") and null
// are all accepted. Strings with no usable digits decode to zero.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal value
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// AmountFromInt returns an Amount for an integer value
func AmountFromInt(v int64) Amount {
	return Amount{Decimal: decimal.NewFromInt(v)}
}

// MarshalJSON encodes the amount as a bare JSON number
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(numericPart(s))
		if err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		a.Decimal = d
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// numericPart returns the first number in s, without currency symbols or
// grouping commas. A range such as "500-700" yields its first bound.
func numericPart(s string) string {
	var b strings.Builder
	started, seenDot := false, false
	prev := rune(0)

	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if !started && prev == '-' {
				b.WriteRune('-')
			}
			started = true
			b.WriteRune(r)
		case started && r == ',':
		case started && r == '.' && !seenDot:
			seenDot = true
			b.WriteRune(r)
		case started:
			return strings.TrimSuffix(b.String(), ".")
		}
		prev = r
	}
	return strings.TrimSuffix(b.String(), ".")
}
