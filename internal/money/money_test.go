package money

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		cur     string
		want    int64
		wantErr error
	}{
		{name: "dollars and cents", input: "33.34", cur: "USD", want: 3334},
		{name: "whole dollars", input: "100", cur: "usd", want: 10000},
		{name: "negative", input: "-5.5", cur: "USD", want: -550},
		{name: "yen has no minor digits", input: "1000", cur: "JPY", want: 1000},
		{name: "dinar has three", input: "1.005", cur: "BHD", want: 1005},
		{name: "too precise", input: "1.005", cur: "USD", wantErr: ErrTooPrecise},
		{name: "yen fraction", input: "10.5", cur: "JPY", wantErr: ErrTooPrecise},
		{name: "garbage", input: "abc", cur: "USD", wantErr: ErrInvalidAmount},
		{name: "unknown currency", input: "1", cur: "ZZZ", wantErr: ErrUnknownCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input, tt.cur)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Minor)
		})
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "33.34", New(3334, "USD").String())
	assert.Equal(t, "-0.05", New(-5, "USD").String())
	assert.Equal(t, "1000", New(1000, "JPY").String())
	assert.Equal(t, "100.00", MustParse("100", "USD").String())
}

func TestArithmetic(t *testing.T) {
	a := MustParse("10.25", "USD")
	b := MustParse("0.75", "USD")

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1100), sum.Minor)

	diff, err := b.Sub(a)
	require.NoError(t, err)
	assert.Equal(t, int64(-950), diff.Minor)
	assert.Equal(t, -1, diff.Sign())
	assert.Equal(t, int64(950), diff.Abs().Minor)

	_, err = a.Add(MustParse("1", "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestSum(t *testing.T) {
	total, err := Sum(New(3334, "USD"), New(3333, "USD"), New(3333, "USD"))
	require.NoError(t, err)
	assert.Equal(t, New(10000, "USD"), total)

	// A zero-value accumulator takes the currency of what is added to it.
	acc, err := Amount{}.Add(New(5, "USD"))
	require.NoError(t, err)
	assert.Equal(t, "USD", acc.Currency)

	_, err = Sum(New(1, "USD"), New(1, "EUR"))
	assert.ErrorIs(t, err, ErrCurrencyMismatch)
}

func TestOverflow(t *testing.T) {
	big := New(math.MaxInt64-1, "USD")

	_, err := big.Add(New(2, "USD"))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = New(math.MinInt64+1, "USD").Sub(New(2, "USD"))
	assert.ErrorIs(t, err, ErrOverflow)

	_, err = Sum(New(1<<62, "USD"), New(1<<62, "USD"))
	assert.ErrorIs(t, err, ErrOverflow)

	sum, err := AddMinor(math.MaxInt64-1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), sum)

	diff, err := SubMinor(math.MinInt64+1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), diff)

	_, err = SubMinor(0, math.MinInt64)
	assert.ErrorIs(t, err, ErrOverflow)
}
