package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/logger"
	"github.com/yadgarautos/jobfiles/internal/service"
	"github.com/yadgarautos/jobfiles/internal/types"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type JobFileHandler struct {
	jobFileService service.JobFileService
	logger         *logger.Logger
}

func NewJobFileHandler(jobFileService service.JobFileService, logger *logger.Logger) *JobFileHandler {
	return &JobFileHandler{
		jobFileService: jobFileService,
		logger:         logger,
	}
}

// @Summary Create a job file
// @Description Saves a survey and assigns it the next invoice number. Send an Idempotency-Key header to make retries safe.
// @Tags JobFiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string false "Client generated key"
// @Param jobfile body dto.CreateJobFileRequest true "Job file"
// @Success 201 {object} dto.JobFileResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 503 {object} ierr.ErrorResponse
// @Router /jobfiles [post]
func (h *JobFileHandler) Create(c *gin.Context) {
	var req dto.CreateJobFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.jobFileService.Create(c.Request.Context(), &req, c.GetHeader(types.HeaderIdempotency))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary List job files
// @Description Newest first unless order=asc
// @Tags JobFiles
// @Produce json
// @Security BearerAuth
// @Param filter query types.JobFileFilter false "Filter"
// @Success 200 {object} dto.ListJobFilesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /jobfiles [get]
func (h *JobFileHandler) List(c *gin.Context) {
	filter := types.NewDefaultJobFileFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid filter parameters").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.jobFileService.List(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Get a job file
// @Tags JobFiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job file ID"
// @Success 200 {object} dto.JobFileResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /jobfiles/{id} [get]
func (h *JobFileHandler) Get(c *gin.Context) {
	resp, err := h.jobFileService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Update a job file
// @Description Replaces the fields and items sent, totals are recomputed. The invoice number never changes.
// @Tags JobFiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job file ID"
// @Param jobfile body dto.UpdateJobFileRequest true "Changes"
// @Success 200 {object} dto.JobFileResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /jobfiles/{id} [put]
func (h *JobFileHandler) Update(c *gin.Context) {
	var req dto.UpdateJobFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Please check the request payload").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.jobFileService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Mark a job file paid
// @Description An empty body marks the file paid
// @Tags JobFiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job file ID"
// @Param request body dto.MarkPaidRequest false "Paid flag"
// @Success 200 {object} dto.JobFileResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /jobfiles/{id}/paid [post]
func (h *JobFileHandler) MarkPaid(c *gin.Context) {
	var req dto.MarkPaidRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Error(ierr.WithError(err).
				WithHint("Please check the request payload").
				Mark(ierr.ErrValidation))
			return
		}
	}

	paid := true
	if req.Paid != nil {
		paid = *req.Paid
	}

	resp, err := h.jobFileService.MarkPaid(c.Request.Context(), c.Param("id"), paid)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// @Summary Delete a job file
// @Description The invoice number of a deleted file is not reissued
// @Tags JobFiles
// @Security BearerAuth
// @Param id path string true "Job file ID"
// @Success 204
// @Failure 404 {object} ierr.ErrorResponse
// @Router /jobfiles/{id} [delete]
func (h *JobFileHandler) Delete(c *gin.Context) {
	if err := h.jobFileService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary Download the invoice PDF
// @Tags JobFiles
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Job file ID"
// @Param download query bool false "Send as attachment"
// @Success 200 {file} file
// @Failure 404 {object} ierr.ErrorResponse
// @Router /jobfiles/{id}/invoice.pdf [get]
func (h *JobFileHandler) GetInvoicePDF(c *gin.Context) {
	invoice, err := h.jobFileService.RenderInvoicePDF(c.Request.Context(), c.Param("id"), false)
	if err != nil {
		c.Error(err)
		return
	}

	disposition := "inline"
	if c.Query("download") == "true" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, invoice.FileName))
	c.Data(http.StatusOK, contentTypePDF, invoice.Content)
}

// @Summary Publish the invoice PDF
// @Description Renders the invoice and stores it in the blob store
// @Tags JobFiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job file ID"
// @Success 201 {object} dto.InvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /jobfiles/{id}/invoice [post]
func (h *JobFileHandler) UploadInvoice(c *gin.Context) {
	invoice, err := h.jobFileService.RenderInvoicePDF(c.Request.Context(), c.Param("id"), true)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, invoice)
}

// @Summary Export job files
// @Description All job files as an xlsx workbook
// @Tags JobFiles
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Success 200 {file} file
// @Router /jobfiles/export [get]
func (h *JobFileHandler) Export(c *gin.Context) {
	content, err := h.jobFileService.Export(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	fileName := fmt.Sprintf("jobfiles-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentTypeXLSX, content)
}
