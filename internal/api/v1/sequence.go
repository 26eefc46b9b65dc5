package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/service"
)

type SequenceHandler struct {
	sequenceService service.SequenceService
	logger          *logger.Logger
}

func NewSequenceHandler(sequenceService service.SequenceService, logger *logger.Logger) *SequenceHandler {
	return &SequenceHandler{
		sequenceService: sequenceService,
		logger:          logger,
	}
}

// @Summary Invoice counter
// @Description Last issued and next expected invoice number. Reading never creates the counter.
// @Tags Sequence
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SequenceResponse
// @Failure 503 {object} ierr.ErrorResponse
// @Router /sequence [get]
func (h *SequenceHandler) Get(c *gin.Context) {
	resp, err := h.sequenceService.Preview(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Issue an invoice number
// @Description Consumes the next invoice number. Numbers are never reused.
// @Tags Sequence
// @Produce json
// @Security BearerAuth
// @Success 201 {object} dto.CommitSequenceResponse
// @Failure 503 {object} ierr.ErrorResponse
// @Router /sequence/commit [post]
func (h *SequenceHandler) Commit(c *gin.Context) {
	number, err := h.sequenceService.CommitNext(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, dto.CommitSequenceResponse{InvoiceNumber: number})
}

// @Summary Initialise the invoice counter
// @Description Creates the counter at value. An existing counter is left as it is.
// @Tags Sequence
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.InitCounterRequest true "Initial value"
// @Success 200 {object} dto.InitCounterResponse
// @Success 201 {object} dto.InitCounterResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /sequence/init [post]
func (h *SequenceHandler) Init(c *gin.Context) {
	var req dto.InitCounterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	if err := req.Validate(); err != nil {
		c.Error(err)
		return
	}

	created, err := h.sequenceService.InitCounter(c.Request.Context(), req.Value)
	if err != nil {
		c.Error(err)
		return
	}

	preview, err := h.sequenceService.Preview(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.InitCounterResponse{Created: created, SequenceResponse: *preview})
}
