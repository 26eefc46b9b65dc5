package billing

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Section tells which side of the bill a line belongs to.
// Parts carry depreciation, labour carries tax.
type Section string

const (
	SectionParts  Section = "parts"
	SectionLabour Section = "labour"
)

// LineItem is a line as received from a caller, optional fields unresolved
type LineItem struct {
	Name              string           `json:"name"`
	UnitPrice         decimal.Decimal  `json:"price"`
	Quantity          *int             `json:"qty,omitempty"`
	AdjustmentPercent *decimal.Decimal `json:"percent,omitempty"`
}

// Line is a resolved line item. Every field holds a usable value.
type Line struct {
	Section           Section         `json:"section"`
	Name              string          `json:"name"`
	UnitPrice         decimal.Decimal `json:"price"`
	Quantity          int             `json:"qty"`
	AdjustmentPercent decimal.Decimal `json:"percent"`
}

// NewPartLine resolves a part. A missing depreciation is 0.
func NewPartLine(item LineItem) Line {
	return newLine(SectionParts, item)
}

// NewLabourLine resolves a labour entry. A missing tax is 0.
func NewLabourLine(item LineItem) Line {
	return newLine(SectionLabour, item)
}

func newLine(section Section, item LineItem) Line {
	qty := 1
	if item.Quantity != nil && *item.Quantity >= 1 {
		qty = *item.Quantity
	}

	percent := decimal.Zero
	if item.AdjustmentPercent != nil {
		percent = *item.AdjustmentPercent
	}

	return Line{
		Section:           section,
		Name:              item.Name,
		UnitPrice:         nonNegative(item.UnitPrice),
		Quantity:          qty,
		AdjustmentPercent: nonNegative(percent),
	}
}

func nonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Bill is the full estimate. Totals are never stored on it, see Summarize.
type Bill struct {
	Parts       []Line          `json:"parts"`
	Labour      []Line          `json:"labour"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	DeprPercent decimal.Decimal `json:"depr_percent"`
}

// NewBill resolves raw items. Nil percentages mean 0. The bill level
// percentages are recorded on the bill but do not price any line, see
// NewBillWithSectionPercents for that.
func NewBill(parts, labour []LineItem, taxPercent, deprPercent *decimal.Decimal) Bill {
	bill := Bill{
		Parts:       make([]Line, 0, len(parts)),
		Labour:      make([]Line, 0, len(labour)),
		TaxPercent:  decimal.Zero,
		DeprPercent: decimal.Zero,
	}
	if taxPercent != nil {
		bill.TaxPercent = nonNegative(*taxPercent)
	}
	if deprPercent != nil {
		bill.DeprPercent = nonNegative(*deprPercent)
	}

	for _, item := range parts {
		bill.Parts = append(bill.Parts, NewPartLine(item))
	}
	for _, item := range labour {
		bill.Labour = append(bill.Labour, NewLabourLine(item))
	}
	return bill
}

// NewBillWithSectionPercents is NewBill where a line without its own percent
// takes the bill level percent of its section: deprPercent for parts,
// taxPercent for labour.
func NewBillWithSectionPercents(parts, labour []LineItem, taxPercent, deprPercent *decimal.Decimal) Bill {
	return NewBill(
		withDefaultPercent(parts, deprPercent),
		withDefaultPercent(labour, taxPercent),
		taxPercent, deprPercent,
	)
}

func withDefaultPercent(items []LineItem, percent *decimal.Decimal) []LineItem {
	if percent == nil {
		return items
	}
	return lo.Map(items, func(item LineItem, _ int) LineItem {
		if item.AdjustmentPercent == nil {
			item.AdjustmentPercent = lo.ToPtr(*percent)
		}
		return item
	})
}
