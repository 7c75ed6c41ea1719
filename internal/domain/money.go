package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const moneyScale = 2

// Money is an exact, currency-agnostic amount with two fractional digits.
// It is stored as DECIMAL(10,2) and never passes through float64.
type Money struct{ d decimal.Decimal }

// ParseMoney parses a decimal literal such as "250" or "250.50".
// More than two significant fractional digits is rejected.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, invalid("amount %q is not a decimal", s)
	}
	return MoneyFromDecimal(d)
}

func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func MoneyFromDecimal(d decimal.Decimal) (Money, error) {
	r := d.Round(moneyScale)
	if !r.Equal(d) {
		return Money{}, invalid("amount %s has more than %d fractional digits", d.String(), moneyScale)
	}
	return Money{d: r}, nil
}

func MoneyFromCents(cents int64) Money { return Money{d: decimal.New(cents, -moneyScale)} }

func (m Money) Decimal() decimal.Decimal { return m.d }

func (m Money) Cents() int64 { return m.d.Shift(moneyScale).IntPart() }

func (m Money) String() string { return m.d.StringFixed(moneyScale) }

func (m Money) Add(o Money) Money { return Money{d: m.d.Add(o.d)} }

func (m Money) Sub(o Money) Money { return Money{d: m.d.Sub(o.d)} }

// Times multiplies by a whole quantity (nights, rooms).
func (m Money) Times(n int64) Money { return Money{d: m.d.Mul(decimal.NewFromInt(n))} }

func (m Money) Cmp(o Money) int { return m.d.Cmp(o.d) }

func (m Money) Equal(o Money) bool { return m.d.Equal(o.d) }

func (m Money) IsZero() bool { return m.d.IsZero() }

func (m Money) IsNegative() bool { return m.d.IsNegative() }

// MarshalJSON renders the amount as a fixed-point string, e.g. "250.00".
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.String() + `"`), nil
}

// UnmarshalJSON accepts a JSON number literal or a quoted decimal string.
// Number literals are read as text so no binary rounding can happen.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Money{}
		return nil
	case []byte:
		return m.scanString(string(v))
	case string:
		return m.scanString(v)
	case int64:
		*m = Money{d: decimal.NewFromInt(v)}
		return nil
	default:
		return fmt.Errorf("money: cannot scan %T", src)
	}
}

func (m *Money) scanString(s string) error {
	v, err := ParseMoney(s)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = v
	return nil
}

func (m Money) Value() (driver.Value, error) { return m.String(), nil }
