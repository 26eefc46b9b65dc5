package pdf

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceData represents the data model for invoice PDF generation
type InvoiceData struct {
	Currency      string     `json:"currency"`
	InvoiceNumber string     `json:"invoice_number"`
	IssuingDate   CustomTime `json:"issuing_date"`
	Paid          bool       `json:"paid"`
	Remarks       string     `json:"remarks,omitempty"`

	Biller BillerInfo `json:"biller"`
	// label/value pairs printed in the details grid, in order
	Details []DetailField `json:"details"`

	Parts        []LineItemData `json:"parts"`
	Labour       []LineItemData `json:"labour"`
	PartsTotals  SectionTotals  `json:"parts_totals"`
	LabourTotals SectionTotals  `json:"labour_totals"`

	GrandTotal    decimal.Decimal `json:"grand_total"`
	AmountInWords string          `json:"amount_in_words"`
}

// BillerInfo is the workshop printed in the header
type BillerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
}

type DetailField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LineItemData is one priced row of the parts or labour table
type LineItemData struct {
	Name             string          `json:"name"`
	Quantity         int             `json:"quantity"`
	Actual           decimal.Decimal `json:"actual"`
	Percent          decimal.Decimal `json:"percent"`
	AdjustmentAmount decimal.Decimal `json:"adjustment_amount"`
	Final            decimal.Decimal `json:"final"`
}

type SectionTotals struct {
	Subtotal         decimal.Decimal `json:"subtotal"`
	AdjustmentTotal  decimal.Decimal `json:"adjustment_total"`
	EffectivePercent decimal.Decimal `json:"effective_percent"`
	Total            decimal.Decimal `json:"total"`
}

type CustomTime struct {
	time.Time
}

func (ct CustomTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ct.Format("2006-01-02")) // Format to YYYY-MM-DD
}
