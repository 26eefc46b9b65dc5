package billing

import (
	"sync"
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, d(want).Equal(got), append([]interface{}{"want %s got %s", want, got.String()}, msgAndArgs...)...)
}

func TestNewLineDefaults(t *testing.T) {
	tests := []struct {
		name        string
		item        LineItem
		wantQty     int
		wantPercent string
		wantPrice   string
	}{
		{
			name:        "missing quantity and percent",
			item:        LineItem{Name: "Bumper", UnitPrice: d("5500")},
			wantQty:     1,
			wantPercent: "0",
			wantPrice:   "5500",
		},
		{
			name:        "explicit percent kept",
			item:        LineItem{Name: "Bonnet", UnitPrice: d("100"), AdjustmentPercent: lo.ToPtr(d("12.5"))},
			wantQty:     1,
			wantPercent: "12.5",
			wantPrice:   "100",
		},
		{
			name:        "zero quantity becomes one",
			item:        LineItem{Name: "Bolt", UnitPrice: d("20"), Quantity: lo.ToPtr(0)},
			wantQty:     1,
			wantPercent: "0",
			wantPrice:   "20",
		},
		{
			name:        "negatives coerced to zero",
			item:        LineItem{Name: "Bad", UnitPrice: d("-20"), AdjustmentPercent: lo.ToPtr(d("-5")), Quantity: lo.ToPtr(-3)},
			wantQty:     1,
			wantPercent: "0",
			wantPrice:   "0",
		},
		{
			name:        "quantity kept",
			item:        LineItem{Name: "Clip", UnitPrice: d("15"), Quantity: lo.ToPtr(4)},
			wantQty:     4,
			wantPercent: "0",
			wantPrice:   "15",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := NewPartLine(tt.item)
			assert.Equal(t, SectionParts, line.Section)
			assert.Equal(t, tt.wantQty, line.Quantity)
			assertDecimal(t, tt.wantPercent, line.AdjustmentPercent)
			assertDecimal(t, tt.wantPrice, line.UnitPrice)
		})
	}
}

func TestNewBillIgnoresBillPercentsForLines(t *testing.T) {
	bill := NewBill(
		[]LineItem{{Name: "Bumper", UnitPrice: d("5500")}},
		[]LineItem{{Name: "Denting", UnitPrice: d("6000")}},
		lo.ToPtr(d("16")), lo.ToPtr(d("10")),
	)

	assertDecimal(t, "16", bill.TaxPercent)
	assertDecimal(t, "10", bill.DeprPercent)
	assertDecimal(t, "0", bill.Parts[0].AdjustmentPercent)
	assertDecimal(t, "0", bill.Labour[0].AdjustmentPercent)

	summary := bill.Summarize(DepreciationSurcharge)
	assertDecimal(t, "0", summary.Parts.AdjustmentTotal)
	assertDecimal(t, "5500", summary.Parts.Total)
	assertDecimal(t, "6000", summary.Labour.Total)
	assertDecimal(t, "11500", summary.GrandTotal)
}

func TestNewBillWithSectionPercents(t *testing.T) {
	parts := []LineItem{
		{Name: "Bumper", UnitPrice: d("5500")},
		{Name: "Mirror", UnitPrice: d("100"), AdjustmentPercent: lo.ToPtr(decimal.Zero)},
	}
	labour := []LineItem{{Name: "Denting", UnitPrice: d("6000")}}

	bill := NewBillWithSectionPercents(parts, labour, lo.ToPtr(d("5")), lo.ToPtr(d("10")))

	assertDecimal(t, "10", bill.Parts[0].AdjustmentPercent)
	assertDecimal(t, "0", bill.Parts[1].AdjustmentPercent, "an explicit zero is kept")
	assertDecimal(t, "5", bill.Labour[0].AdjustmentPercent)
	assert.Nil(t, parts[0].AdjustmentPercent, "input items are not modified")

	summary := bill.Summarize(DepreciationSurcharge)
	assertDecimal(t, "6150", summary.Parts.Total)
	assertDecimal(t, "6300", summary.Labour.Total)

	plain := NewBillWithSectionPercents(parts, labour, nil, nil)
	assertDecimal(t, "0", plain.Parts[0].AdjustmentPercent)
}

func TestComputeLine(t *testing.T) {
	line := NewPartLine(LineItem{Name: "Door", UnitPrice: d("1200"), Quantity: lo.ToPtr(3), AdjustmentPercent: lo.ToPtr(d("10"))})
	res := ComputeLine(line)

	assertDecimal(t, "3600", res.Actual)
	assertDecimal(t, "360", res.AdjustmentAmount)
	assertDecimal(t, "3960", res.FinalPrice)
}

func TestComputeLineFinalNeverBelowActual(t *testing.T) {
	prices := []string{"0", "1", "99.99", "5500", "123456.78"}
	quantities := []int{1, 2, 7}
	percents := []string{"0", "0.5", "5", "10", "100", "250"}

	for _, p := range prices {
		for _, q := range quantities {
			for _, pct := range percents {
				line := Line{Section: SectionLabour, UnitPrice: d(p), Quantity: q, AdjustmentPercent: d(pct)}
				res := ComputeLine(line)

				actual := d(p).Mul(decimal.NewFromInt(int64(q)))
				want := actual.Add(actual.Mul(d(pct)).Div(decimal.NewFromInt(100)))
				assert.True(t, want.Equal(res.FinalPrice), "price=%s qty=%d pct=%s", p, q, pct)
				assert.True(t, res.FinalPrice.GreaterThanOrEqual(res.Actual))
			}
		}
	}
}

func TestComputeLineWithDeductPolicy(t *testing.T) {
	part := Line{Section: SectionParts, UnitPrice: d("5500"), Quantity: 1, AdjustmentPercent: d("10")}
	res := ComputeLineWithPolicy(part, DepreciationDeduct)
	assertDecimal(t, "550", res.AdjustmentAmount)
	assertDecimal(t, "4950", res.FinalPrice)

	// labour tax is always added
	labour := Line{Section: SectionLabour, UnitPrice: d("6000"), Quantity: 1, AdjustmentPercent: d("5")}
	res = ComputeLineWithPolicy(labour, DepreciationDeduct)
	assertDecimal(t, "6300", res.FinalPrice)

	over := Line{Section: SectionParts, UnitPrice: d("100"), Quantity: 1, AdjustmentPercent: d("150")}
	res = ComputeLineWithPolicy(over, DepreciationDeduct)
	assertDecimal(t, "0", res.FinalPrice)
}

func TestComputeSectionTotalsEmpty(t *testing.T) {
	totals := ComputeSectionTotals(nil)
	assertDecimal(t, "0", totals.Subtotal)
	assertDecimal(t, "0", totals.AdjustmentTotal)
	assertDecimal(t, "0", totals.EffectivePercent)
	assertDecimal(t, "0", totals.Total)

	zeroPriced := ComputeSectionTotals([]Line{{Section: SectionParts, Quantity: 1, AdjustmentPercent: d("10")}})
	assertDecimal(t, "0", zeroPriced.EffectivePercent)
}

func TestComputeSectionTotalsEffectivePercentRounding(t *testing.T) {
	tests := []struct {
		name  string
		lines []Line
		want  string
	}{
		{
			name: "exact",
			lines: []Line{
				{Section: SectionLabour, UnitPrice: d("1000"), Quantity: 1, AdjustmentPercent: d("5")},
				{Section: SectionLabour, UnitPrice: d("1000"), Quantity: 1, AdjustmentPercent: d("15")},
			},
			want: "10",
		},
		{
			name: "half rounds up",
			lines: []Line{
				{Section: SectionLabour, UnitPrice: d("100"), Quantity: 1, AdjustmentPercent: d("2.5")},
			},
			want: "3",
		},
		{
			name: "below half rounds down",
			lines: []Line{
				{Section: SectionLabour, UnitPrice: d("300"), Quantity: 1, AdjustmentPercent: d("0")},
				{Section: SectionLabour, UnitPrice: d("100"), Quantity: 1, AdjustmentPercent: d("9")},
			},
			// 9 / 400 = 2.25%
			want: "2",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertDecimal(t, tt.want, ComputeSectionTotals(tt.lines).EffectivePercent)
		})
	}
}

func TestSummarizeScenario(t *testing.T) {
	bill := NewBill(
		[]LineItem{{Name: "Front bumper", UnitPrice: d("5500"), Quantity: lo.ToPtr(1), AdjustmentPercent: lo.ToPtr(d("10"))}},
		[]LineItem{{Name: "Denting", UnitPrice: d("6000"), Quantity: lo.ToPtr(1), AdjustmentPercent: lo.ToPtr(d("5"))}},
		nil, nil,
	)

	summary := bill.Summarize(DepreciationSurcharge)

	assertDecimal(t, "5500", summary.Parts.Subtotal)
	assertDecimal(t, "550", summary.Parts.AdjustmentTotal)
	assertDecimal(t, "6050", summary.Parts.Total)
	assertDecimal(t, "10", summary.Parts.EffectivePercent)
	assertDecimal(t, "6000", summary.Labour.Subtotal)
	assertDecimal(t, "300", summary.Labour.AdjustmentTotal)
	assertDecimal(t, "6300", summary.Labour.Total)
	assertDecimal(t, "5", summary.Labour.EffectivePercent)
	assertDecimal(t, "12350", summary.GrandTotal)
	assert.Equal(t, "Twelve Thousand Three Hundred Fifty Rupees Only", summary.AmountInWords)
	require.Len(t, summary.PartLines, 1)
	require.Len(t, summary.LabourLines, 1)
	assertDecimal(t, "6050", summary.PartLines[0].FinalPrice)
}

func TestSummarizeDeductScenario(t *testing.T) {
	bill := NewBillWithSectionPercents(
		[]LineItem{{Name: "Front bumper", UnitPrice: d("5500")}},
		[]LineItem{{Name: "Denting", UnitPrice: d("6000")}},
		lo.ToPtr(d("5")), lo.ToPtr(d("10")),
	)

	summary := bill.Summarize(DepreciationDeduct)
	assertDecimal(t, "4950", summary.Parts.Total)
	assertDecimal(t, "6300", summary.Labour.Total)
	assertDecimal(t, "11250", summary.GrandTotal)
	assert.Equal(t, DepreciationDeduct, summary.Policy)
}

func TestSummarizeRoundsGrandTotalForWords(t *testing.T) {
	bill := NewBill(nil, []LineItem{{Name: "Polish", UnitPrice: d("99.5")}}, nil, nil)
	summary := bill.Summarize(DepreciationSurcharge)
	assertDecimal(t, "99.5", summary.GrandTotal)
	assert.Equal(t, "One Hundred Rupees Only", summary.AmountInWords)
}

func TestSummarizeReflectsCurrentLines(t *testing.T) {
	bill := NewBill([]LineItem{{Name: "Grill", UnitPrice: d("1000")}}, nil, nil, nil)
	first := bill.Summarize(DepreciationSurcharge)

	bill.Parts = append(bill.Parts, NewPartLine(LineItem{Name: "Lamp", UnitPrice: d("500")}))
	second := bill.Summarize(DepreciationSurcharge)

	assertDecimal(t, "1000", first.GrandTotal)
	assertDecimal(t, "1500", second.GrandTotal)
}

func TestComputeGrandTotal(t *testing.T) {
	assertDecimal(t, "12350.75", ComputeGrandTotal(d("6050.25"), d("6300.50")))
}

func TestCalculatorConcurrentUse(t *testing.T) {
	bill := NewBill(
		[]LineItem{{Name: "A", UnitPrice: d("5500"), AdjustmentPercent: lo.ToPtr(d("10"))}},
		[]LineItem{{Name: "B", UnitPrice: d("6000"), AdjustmentPercent: lo.ToPtr(d("5"))}},
		nil, nil,
	)

	var wg sync.WaitGroup
	results := make([]Summary, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = bill.Summarize(DepreciationSurcharge)
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assertDecimal(t, "12350", s.GrandTotal)
	}
}

func TestParsePolicy(t *testing.T) {
	assert.Equal(t, DepreciationDeduct, ParsePolicy("deduct"))
	assert.Equal(t, DepreciationDeduct, ParsePolicy(" DEDUCT "))
	assert.Equal(t, DepreciationSurcharge, ParsePolicy("surcharge"))
	assert.Equal(t, DepreciationSurcharge, ParsePolicy(""))
	assert.Equal(t, DepreciationSurcharge, ParsePolicy("unknown"))
}

func TestSummarizeLeavesWordsEmptyBeyondScale(t *testing.T) {
	bill := NewBill(nil, []LineItem{{Name: "Fleet", UnitPrice: MaxWordsAmount}}, nil, nil)
	summary := bill.Summarize(DepreciationSurcharge)
	assert.True(t, MaxWordsAmount.Equal(summary.GrandTotal))
	assert.Empty(t, summary.AmountInWords)
}
