package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/service"
)

type BillingHandler struct {
	billingService service.BillingService
	logger         *logger.Logger
}

func NewBillingHandler(billingService service.BillingService, logger *logger.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// @Summary Preview a bill
// @Description Price parts and labour lines without saving anything
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param bill body dto.BillPreviewRequest true "Bill"
// @Success 200 {object} dto.BillPreviewResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /billing/preview [post]
func (h *BillingHandler) Preview(c *gin.Context) {
	var req dto.BillPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billingService.Preview(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Amount in words
// @Description Spell a rupee amount the way invoices print it
// @Tags Billing
// @Produce json
// @Security BearerAuth
// @Param amount query string true "Amount"
// @Success 200 {object} dto.AmountInWordsResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /billing/words [get]
func (h *BillingHandler) AmountInWords(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		c.Error(ierr.WithError(err).
			WithHint("amount must be a number").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billingService.AmountInWords(c.Request.Context(), &dto.AmountInWordsRequest{Amount: amount})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
