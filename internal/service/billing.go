package service

import (
	"context"

	"github.com/yadgarautos/jobfiles/internal/api/dto"
	"github.com/yadgarautos/jobfiles/internal/domain/billing"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

// BillingService prices bills that are not saved yet
type BillingService interface {
	Preview(ctx context.Context, req *dto.BillPreviewRequest) (*dto.BillPreviewResponse, error)
	AmountInWords(ctx context.Context, req *dto.AmountInWordsRequest) (*dto.AmountInWordsResponse, error)
	// Policy is the configured depreciation policy
	Policy() billing.DepreciationPolicy
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) Policy() billing.DepreciationPolicy {
	return billing.ParsePolicy(s.Config.Billing.DepreciationMode)
}

func (s *billingService) Preview(ctx context.Context, req *dto.BillPreviewRequest) (*dto.BillPreviewResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	bill := req.ToBill()
	summary := bill.Summarize(s.Policy())
	if err := billing.ValidateWordsAmount(summary.GrandTotal); err != nil {
		return nil, err
	}
	return &dto.BillPreviewResponse{
		Bill:    bill,
		Summary: summary,
	}, nil
}

func (s *billingService) AmountInWords(ctx context.Context, req *dto.AmountInWordsRequest) (*dto.AmountInWordsResponse, error) {
	if req.Amount.IsNegative() {
		return nil, ierr.NewError("amount must not be negative").
			WithHint("Amount must be zero or more").
			Mark(ierr.ErrValidation)
	}

	words, err := billing.AmountToWordsDecimal(req.Amount)
	if err != nil {
		return nil, err
	}
	return &dto.AmountInWordsResponse{
		Amount: req.Amount,
		Words:  words,
	}, nil
}
