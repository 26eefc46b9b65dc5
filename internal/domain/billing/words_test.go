package billing

import (
	"math"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

func TestAmountToWords(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Zero Rupees Only"},
		{1, "One Rupees Only"},
		{10, "Ten Rupees Only"},
		{11, "Eleven Rupees Only"},
		{19, "Nineteen Rupees Only"},
		{20, "Twenty Rupees Only"},
		{42, "Forty Two Rupees Only"},
		{100, "One Hundred Rupees Only"},
		{115, "One Hundred Fifteen Rupees Only"},
		{999, "Nine Hundred Ninety Nine Rupees Only"},
		{1000, "One Thousand Rupees Only"},
		{1005, "One Thousand Five Rupees Only"},
		{12350, "Twelve Thousand Three Hundred Fifty Rupees Only"},
		{100000, "One Hundred Thousand Rupees Only"},
		{1000000, "One Million Rupees Only"},
		{1000001, "One Million One Rupees Only"},
		{2500300, "Two Million Five Hundred Thousand Three Hundred Rupees Only"},
		{1000000000, "One Billion Rupees Only"},
		{1000000000000, "One Trillion Rupees Only"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, AmountToWords(tt.amount))
		})
	}
}

func TestAmountToWordsNegativeIsZero(t *testing.T) {
	assert.Equal(t, "Zero Rupees Only", AmountToWords(-15))
}

func TestAmountToWordsLargestValue(t *testing.T) {
	assert.NotPanics(t, func() {
		words := AmountToWords(math.MaxInt64)
		assert.Contains(t, words, "Nine Quintillion")
	})
}

func TestAmountToWordsDeterministic(t *testing.T) {
	first := AmountToWords(987654321)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, AmountToWords(987654321))
	}
	assert.Equal(t, "Nine Hundred Eighty Seven Million Six Hundred Fifty Four Thousand Three Hundred Twenty One Rupees Only", first)
}

func TestAmountToWordsIn(t *testing.T) {
	assert.Equal(t, "Five Dollars Only", AmountToWordsIn(5, "Dollars"))
}

func TestAmountToWordsDecimal(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		want    string
		wantErr bool
	}{
		{name: "rounds half up", amount: "99.5", want: "One Hundred Rupees Only"},
		{name: "negative reads as zero", amount: "-3", want: "Zero Rupees Only"},
		{name: "first value past int64", amount: "9223372036854775808", want: "Nine Quintillion Two Hundred Twenty Three Quadrillion Three Hundred Seventy Two Trillion Thirty Six Billion Eight Hundred Fifty Four Million Seven Hundred Seventy Five Thousand Eight Hundred Eight Rupees Only"},
		{name: "sextillion", amount: "18446744073709551616000", want: "Eighteen Sextillion Four Hundred Forty Six Quintillion Seven Hundred Forty Four Quadrillion Seventy Three Trillion Seven Hundred Nine Billion Five Hundred Fifty One Million Six Hundred Sixteen Thousand Rupees Only"},
		{name: "largest spelled", amount: "999999999999999999999999999999999999", want: ""},
		{name: "rounds up past the scale", amount: "999999999999999999999999999999999999.5", wantErr: true},
		{name: "past the scale", amount: "1000000000000000000000000000000000000", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			words, err := AmountToWordsDecimal(d(tt.amount))
			if tt.wantErr {
				assert.True(t, ierr.IsValidation(err), err)
				assert.Empty(t, words)
				return
			}
			require.NoError(t, err)
			if tt.want != "" {
				assert.Equal(t, tt.want, words)
			} else {
				assert.True(t, strings.HasPrefix(words, "Nine Hundred Ninety Nine Decillion"), words)
			}
		})
	}
}

func TestAmountToWordsDecimalMatchesInt64(t *testing.T) {
	for _, n := range []int64{0, 7, 1005, 2500300, math.MaxInt64} {
		words, err := AmountToWordsDecimal(decimal.NewFromInt(n))
		require.NoError(t, err)
		assert.Equal(t, AmountToWords(n), words)
	}
}
