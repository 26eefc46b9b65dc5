package billing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// LineResult is the computed price breakdown of one line
type LineResult struct {
	Actual           decimal.Decimal `json:"actual"`
	AdjustmentAmount decimal.Decimal `json:"adjustment_amount"`
	FinalPrice       decimal.Decimal `json:"final_price"`
}

// SectionTotals aggregates a list of lines
type SectionTotals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	AdjustmentTotal  decimal.Decimal `json:"adjustment_total"`
	EffectivePercent decimal.Decimal `json:"effective_percent"`
	Total            decimal.Decimal `json:"total"`
}

// Summary is everything a bill preview or invoice shows
type Summary struct {
	Parts         SectionTotals      `json:"parts"`
	Labour        SectionTotals      `json:"labour"`
	PartLines     []LineResult       `json:"part_lines"`
	LabourLines   []LineResult       `json:"labour_lines"`
	GrandTotal    decimal.Decimal    `json:"grand_total"`
	AmountInWords string             `json:"amount_in_words"`
	Policy        DepreciationPolicy `json:"depreciation_policy"`
}

// ComputeLine prices a line with the adjustment added on top
func ComputeLine(line Line) LineResult {
	return ComputeLineWithPolicy(line, DepreciationSurcharge)
}

// ComputeLineWithPolicy prices a line. Tax is always added; depreciation on
// parts follows the policy. A deducted price never goes below zero.
func ComputeLineWithPolicy(line Line, policy DepreciationPolicy) LineResult {
	qty := line.Quantity
	if qty < 1 {
		qty = 1
	}
	actual := nonNegative(line.UnitPrice).Mul(decimal.NewFromInt(int64(qty)))
	adjustment := actual.Mul(nonNegative(line.AdjustmentPercent)).Div(hundred)

	final := actual.Add(adjustment)
	if line.Section == SectionParts && policy == DepreciationDeduct {
		final = actual.Sub(adjustment)
		if final.IsNegative() {
			final = decimal.Zero
		}
	}

	return LineResult{
		Actual:           actual,
		AdjustmentAmount: adjustment,
		FinalPrice:       final,
	}
}

// ComputeSectionTotals sums lines with the adjustment added on top
func ComputeSectionTotals(lines []Line) SectionTotals {
	return ComputeSectionTotalsWithPolicy(lines, DepreciationSurcharge)
}

// ComputeSectionTotalsWithPolicy sums lines priced under policy.
// An empty or zero priced section reports an effective percent of 0.
func ComputeSectionTotalsWithPolicy(lines []Line, policy DepreciationPolicy) SectionTotals {
	return totalsOf(computeLines(lines, policy))
}

func computeLines(lines []Line, policy DepreciationPolicy) []LineResult {
	return lo.Map(lines, func(line Line, _ int) LineResult {
		return ComputeLineWithPolicy(line, policy)
	})
}

func totalsOf(results []LineResult) SectionTotals {
	totals := SectionTotals{
		Subtotal:         decimal.Zero,
		AdjustmentTotal:  decimal.Zero,
		EffectivePercent: decimal.Zero,
		Total:            decimal.Zero,
	}
	for _, r := range results {
		totals.Subtotal = totals.Subtotal.Add(r.Actual)
		totals.AdjustmentTotal = totals.AdjustmentTotal.Add(r.AdjustmentAmount)
		totals.Total = totals.Total.Add(r.FinalPrice)
	}
	if totals.Subtotal.IsPositive() {
		// Round is half away from zero, which is half up for non negative values
		totals.EffectivePercent = totals.AdjustmentTotal.Div(totals.Subtotal).Mul(hundred).Round(0)
	}
	return totals
}

// ComputeGrandTotal is a plain sum of both section totals
func ComputeGrandTotal(partsTotal, labourTotal decimal.Decimal) decimal.Decimal {
	return partsTotal.Add(labourTotal)
}

// Summarize recomputes the whole bill from its current lines.
// AmountInWords stays empty when the grand total is too large to spell,
// see ValidateWordsAmount.
func (b Bill) Summarize(policy DepreciationPolicy) Summary {
	partLines := computeLines(b.Parts, policy)
	labourLines := computeLines(b.Labour, policy)
	parts := totalsOf(partLines)
	labour := totalsOf(labourLines)
	grand := ComputeGrandTotal(parts.Total, labour.Total)
	words, _ := AmountToWordsDecimal(grand)

	return Summary{
		Parts:         parts,
		Labour:        labour,
		PartLines:     partLines,
		LabourLines:   labourLines,
		GrandTotal:    grand,
		AmountInWords: words,
		Policy:        policy,
	}
}
