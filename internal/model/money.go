package model

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

func init() {
	// Rates and quantities travel as JSON numbers, like amounts.
	decimal.MarshalJSONWithoutQuotes = true
}

// Money is an amount in cents (minor units).
type Money int64

// Euros returns a whole number of euros as Money.
func Euros(units int64) Money {
	return Money(units * 100)
}

// MoneyFromDecimal rounds d (in major units) half away from zero to the cent.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money(d.Shift(2).Round(0).IntPart())
}

// ParseMoney parses "1250", "12.5", "12,50" or "1 250,00 €".
func ParseMoney(s string) (Money, error) {
	clean := strings.NewReplacer(" ", "", "\u00a0", "", "\u202f", "", "€", "", ",", ".").Replace(strings.TrimSpace(s))
	if clean == "" {
		return 0, fmt.Errorf("%w: empty amount", ErrInvalid)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", ErrInvalid, s)
	}
	return MoneyFromDecimal(d), nil
}

// Decimal returns m in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(int64(m), -2)
}

// Mul multiplies m by a decimal factor, rounding to the cent.
func (m Money) Mul(factor decimal.Decimal) Money {
	return MoneyFromDecimal(m.Decimal().Mul(factor))
}

// String formats m as "1 234,56 €".
func (m Money) String() string {
	return FormatEUR(m)
}

// FormatEUR renders an amount with French grouping and a comma decimal separator.
func FormatEUR(m Money) string {
	return FormatAmount(m) + " €"
}

// FormatAmount is FormatEUR without the currency symbol.
func FormatAmount(m Money) string {
	v := int64(m)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	units := strconv.FormatInt(v/100, 10)
	var b strings.Builder
	for i, r := range units {
		if i > 0 && (len(units)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s%s,%02d", sign, b.String(), v%100)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}
	raw := strings.Trim(string(data), `"`)
	if raw == "" {
		*m = 0
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	*m = MoneyFromDecimal(d)
	return nil
}
