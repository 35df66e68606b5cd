package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Money
		out  string
	}{
		{`5000`, 500000, `5000`},
		{`12.5`, 1250, `12.5`},
		{`"12.345"`, 1235, `12.35`},
		{`-0.005`, -1, `-0.01`},
		{`null`, 0, `0`},
	}
	for _, tt := range tests {
		var m Money
		require.NoError(t, json.Unmarshal([]byte(tt.in), &m), tt.in)
		require.Equal(t, tt.want, m, tt.in)

		data, err := json.Marshal(m)
		require.NoError(t, err)
		require.Equal(t, tt.out, string(data))
	}

	var m Money
	require.Error(t, json.Unmarshal([]byte(`"abc"`), &m))
}

func TestParseMoney(t *testing.T) {
	for in, want := range map[string]Money{
		"1250":       125000,
		"12,50":      1250,
		"1 250,00 €": 125000,
		"0.1":        10,
	} {
		got, err := ParseMoney(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := ParseMoney("")
	require.ErrorIs(t, err, ErrInvalid)
	_, err = ParseMoney("douze")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestFormatEUR(t *testing.T) {
	require.Equal(t, "0,00 €", FormatEUR(0))
	require.Equal(t, "8 190,00 €", FormatEUR(819000))
	require.Equal(t, "45 000 000,00 €", FormatEUR(Euros(45000000)))
	require.Equal(t, "-12,05 €", FormatEUR(-1205))
}

func TestMoneyMul(t *testing.T) {
	require.Equal(t, Money(136500), Money(682500).Mul(decimal.RequireFromString("0.20")))
	require.Equal(t, Money(3), Money(5).Mul(decimal.RequireFromString("0.5")))
}
