// Package core provides the MapleBudget domain model.
//
// This file holds the wire amount type and the fr-CA money formatting used by
// every page. The budgeting API sends amounts as JSON numbers, but some
// payloads carry them as strings, so Amount keeps the raw text and parsing is
// deferred to the caller.
package core

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value as received from, or sent to, the API.
type Amount struct {
	raw string
}

// NewAmount builds an Amount from a float.
func NewAmount(f float64) Amount {
	return Amount{raw: strconv.FormatFloat(f, 'f', -1, 64)}
}

// AmountFromDecimal builds an Amount from a decimal value.
func AmountFromDecimal(d decimal.Decimal) Amount {
	return Amount{raw: d.String()}
}

// RawAmount keeps s untouched, as the API sent it.
func RawAmount(s string) Amount {
	return Amount{raw: s}
}

func (a Amount) String() string {
	return a.raw
}

// Decimal parses the raw text.
func (a Amount) Decimal() (decimal.Decimal, error) {
	s := strings.TrimSpace(a.raw)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Float returns the numeric value, or 0 when the raw text is not a finite number.
func (a Amount) Float() float64 {
	d, err := a.Decimal()
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		a.raw = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = RawAmount(s)
		return nil
	}
	*a = RawAmount(string(b))
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	d, err := a.Decimal()
	if err != nil {
		return []byte("0"), nil
	}
	return []byte(d.String()), nil
}

// ParseAmountInput parses a user-entered positive amount. Both "12.50" and
// "12,50" are accepted.
func ParseAmountInput(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, nbsp, "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

const nbsp = "\u00a0"

// FormatMoney renders v in Canadian dollars with French (Canada) conventions,
// e.g. "1 234,56 $".
func FormatMoney(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	s := decimal.NewFromFloat(v).StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	intPart, frac, _ := strings.Cut(s, ".")
	out := groupThousands(intPart) + "," + frac + nbsp + "$"
	if neg {
		return "-" + out
	}
	return out
}

// FormatNumber renders an integer with fr-CA digit grouping.
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + groupThousands(strconv.Itoa(-n))
	}
	return groupThousands(strconv.Itoa(n))
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(nbsp)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
