package dto

import (
	"github.com/shopspring/decimal"
	"github.com/yadgarautos/jobfiles/internal/domain/billing"
	"github.com/yadgarautos/jobfiles/internal/validator"
)

// BillPreviewRequest is an unsaved bill. A missing quantity is 1 and a
// missing line percent is 0 unless ApplyBillPercents is set, in which case
// the line takes the bill percent of its section like a saved job file does.
type BillPreviewRequest struct {
	Parts             []billing.LineItem `json:"parts" validate:"dive"`
	Labour            []billing.LineItem `json:"labour" validate:"dive"`
	TaxPercent        *decimal.Decimal   `json:"tax_percent,omitempty"`
	DeprPercent       *decimal.Decimal   `json:"depr_percent,omitempty"`
	ApplyBillPercents bool               `json:"apply_bill_percents,omitempty"`
}

func (r *BillPreviewRequest) Validate() error {
	return validator.ValidateRequest(r)
}

func (r *BillPreviewRequest) ToBill() billing.Bill {
	if r.ApplyBillPercents {
		return billing.NewBillWithSectionPercents(r.Parts, r.Labour, r.TaxPercent, r.DeprPercent)
	}
	return billing.NewBill(r.Parts, r.Labour, r.TaxPercent, r.DeprPercent)
}

type BillPreviewResponse struct {
	Bill billing.Bill `json:"bill"`
	billing.Summary
}

type AmountInWordsRequest struct {
	Amount decimal.Decimal `form:"amount" json:"amount"`
}

type AmountInWordsResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Words  string          `json:"words"`
}
