package board

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func qty(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Order
		want int
	}{
		{"sell before buy", NewOrder("u", qty("1"), 500, Sell), NewOrder("u", qty("1"), 100, Buy), -1},
		{"buy after sell", NewOrder("u", qty("1"), 100, Buy), NewOrder("u", qty("1"), 500, Sell), 1},
		{"sell ascending", NewOrder("u", qty("1"), 100, Sell), NewOrder("u", qty("1"), 200, Sell), -1},
		{"sell ascending reversed", NewOrder("u", qty("1"), 200, Sell), NewOrder("u", qty("1"), 100, Sell), 1},
		{"buy descending", NewOrder("u", qty("1"), 200, Buy), NewOrder("u", qty("1"), 100, Buy), -1},
		{"buy descending reversed", NewOrder("u", qty("1"), 100, Buy), NewOrder("u", qty("1"), 200, Buy), 1},
		{"same side same price", NewOrder("a", qty("1"), 100, Buy), NewOrder("b", qty("9"), 100, Buy), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompare_BuyMirrorsSell(t *testing.T) {
	prices := []int64{1, 50, 100, 200}
	for _, p := range prices {
		for _, q := range prices {
			s, err := Compare(NewOrder("u", qty("1"), p, Sell), NewOrder("u", qty("1"), q, Sell))
			require.NoError(t, err)
			b, err := Compare(NewOrder("u", qty("1"), p, Buy), NewOrder("u", qty("1"), q, Buy))
			require.NoError(t, err)
			assert.Equal(t, -s, b, "prices %d vs %d", p, q)
		}
	}
}

func TestCompare_MissingSide(t *testing.T) {
	sideless := NewOrder("u", qty("1"), 100, SideUnset)
	sell := NewOrder("u", qty("1"), 100, Sell)

	for _, pair := range [][2]Order{{sideless, sell}, {sell, sideless}, {sideless, sideless}} {
		_, err := Compare(pair[0], pair[1])
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrComparison))

		var cmpErr *ComparisonError
		require.True(t, errors.As(err, &cmpErr))
	}
}

func TestOrderEqual(t *testing.T) {
	base := NewOrder("some-user", qty("10.0"), 10, Sell)

	assert.True(t, base.Equal(NewOrder("some-user", qty("10.000"), 10, Sell)))
	assert.False(t, base.Equal(NewOrder("other-user", qty("10.0"), 10, Sell)))
	assert.False(t, base.Equal(NewOrder("some-user", qty("10.5"), 10, Sell)))
	assert.False(t, base.Equal(NewOrder("some-user", qty("10.0"), 11, Sell)))
	assert.False(t, base.Equal(NewOrder("some-user", qty("10.0"), 10, Buy)))
}

func TestParseSide(t *testing.T) {
	s, err := ParseSide("sell")
	require.NoError(t, err)
	assert.Equal(t, Sell, s)

	s, err = ParseSide(" BUY ")
	require.NoError(t, err)
	assert.Equal(t, Buy, s)

	s, err = ParseSide("")
	require.NoError(t, err)
	assert.Equal(t, SideUnset, s)

	_, err = ParseSide("HOLD")
	assert.Error(t, err)
}

func TestLevelString(t *testing.T) {
	assert.Equal(t, "SELL: 33.8 kg for £200", Level{Side: Sell, UnitPrice: 200, Quantity: qty("33.75")}.String())
	assert.Equal(t, "BUY: 40.0 kg for £100", Level{Side: Buy, UnitPrice: 100, Quantity: qty("40")}.String())
	assert.Equal(t, "BUY: 0.1 kg for £1234567", Level{Side: Buy, UnitPrice: 1234567, Quantity: qty("0.14")}.String())
}
