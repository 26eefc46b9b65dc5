package billing

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

// DefaultCurrency is the currency word used on invoices
const DefaultCurrency = "Rupees"

var (
	onesWords = [...]string{
		"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
		"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
		"Seventeen", "Eighteen", "Nineteen",
	}
	tensWords = [...]string{
		"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
	}
	scaleWords = [...]string{
		"", "Thousand", "Million", "Billion", "Trillion", "Quadrillion", "Quintillion",
		"Sextillion", "Septillion", "Octillion", "Nonillion", "Decillion",
	}

	thousand = big.NewInt(1000)

	// MaxWordsAmount is the first amount without a scale word, 10^36
	MaxWordsAmount = decimal.New(1, 3*int32(len(scaleWords)))
)

// AmountToWords spells a whole rupee amount, e.g. 1250 is
// "One Thousand Two Hundred Fifty Rupees Only". Negative amounts read as zero.
func AmountToWords(amount int64) string {
	return AmountToWordsIn(amount, DefaultCurrency)
}

// AmountToWordsIn is AmountToWords with a custom currency word
func AmountToWordsIn(amount int64, currency string) string {
	if amount <= 0 {
		return zeroWords(currency)
	}
	// every int64 is below MaxWordsAmount
	words, _ := spell(big.NewInt(amount), currency)
	return words
}

// AmountToWordsDecimal rounds amount half up to whole rupees and spells it.
// Amounts of MaxWordsAmount and above are a validation error.
func AmountToWordsDecimal(amount decimal.Decimal) (string, error) {
	if err := ValidateWordsAmount(amount); err != nil {
		return "", err
	}
	rounded := amount.Round(0)
	if !rounded.IsPositive() {
		return zeroWords(DefaultCurrency), nil
	}
	return spell(rounded.BigInt(), DefaultCurrency)
}

// ValidateWordsAmount reports whether amount can be spelled once rounded
func ValidateWordsAmount(amount decimal.Decimal) error {
	if amount.Round(0).GreaterThanOrEqual(MaxWordsAmount) {
		return ierr.NewErrorf("amount %s is too large to spell", amount.String()).
			WithHint("Amount is too large").
			WithReportableDetails(map[string]any{
				"amount": amount.String(),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

func zeroWords(currency string) string {
	return "Zero " + currency + " Only"
}

func spell(amount *big.Int, currency string) (string, error) {
	n := new(big.Int).Set(amount)
	chunk := new(big.Int)

	var groups []string
	for scale := 0; n.Sign() > 0; scale++ {
		if scale >= len(scaleWords) {
			return "", ierr.NewErrorf("amount %s is too large to spell", amount.String()).
				WithHint("Amount is too large").
				Mark(ierr.ErrValidation)
		}
		n.QuoRem(n, thousand, chunk)
		if chunk.Sign() == 0 {
			continue
		}
		words := chunkToWords(chunk.Int64())
		if scaleWords[scale] != "" {
			words += " " + scaleWords[scale]
		}
		groups = append(groups, words)
	}

	// most significant group first
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}

	return strings.Join(groups, " ") + " " + currency + " Only", nil
}

// chunkToWords renders 1..999
func chunkToWords(n int64) string {
	words := make([]string, 0, 4)
	if h := n / 100; h > 0 {
		words = append(words, onesWords[h], "Hundred")
	}
	rest := n % 100
	switch {
	case rest == 0:
	case rest < 20:
		words = append(words, onesWords[rest])
	default:
		words = append(words, tensWords[rest/10])
		if rest%10 > 0 {
			words = append(words, onesWords[rest%10])
		}
	}
	return strings.Join(words, " ")
}
