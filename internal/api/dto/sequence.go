package dto

import (
	"github.com/yadgarautos/jobfiles/internal/validator"
)

// SequenceResponse shows where the invoice counter stands
type SequenceResponse struct {
	Current      int64  `json:"current"`
	LastIssued   string `json:"last_issued"`
	NextExpected string `json:"next_expected"`
}

type CommitSequenceResponse struct {
	InvoiceNumber string `json:"invoice_number"`
}

type InitCounterRequest struct {
	Value int64 `json:"value" validate:"min=0"`
}

func (r *InitCounterRequest) Validate() error {
	return validator.ValidateRequest(r)
}

type InitCounterResponse struct {
	Created bool `json:"created"`
	SequenceResponse
}
