package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/iter"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	"github.com/yadgarautos/jobfiles/internal/domain/billing"
	"github.com/yadgarautos/jobfiles/internal/domain/jobfile"
	"github.com/yadgarautos/jobfiles/internal/domain/pdf"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/export"
	"github.com/yadgarautos/jobfiles/internal/idempotency"
	"github.com/yadgarautos/jobfiles/internal/s3"
	"github.com/yadgarautos/jobfiles/internal/types"
)

// JobFileService manages surveys and their bills
type JobFileService interface {
	// Create spends an invoice number on a valid job file. A repeated
	// idempotency key returns the file created the first time.
	Create(ctx context.Context, req *dto.CreateJobFileRequest, idempotencyKey string) (*dto.JobFileResponse, error)
	Get(ctx context.Context, id string) (*dto.JobFileResponse, error)
	List(ctx context.Context, filter *types.JobFileFilter) (*dto.ListJobFilesResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateJobFileRequest) (*dto.JobFileResponse, error)
	MarkPaid(ctx context.Context, id string, paid bool) (*dto.JobFileResponse, error)
	Delete(ctx context.Context, id string) error
	RenderInvoicePDF(ctx context.Context, id string, upload bool) (*dto.InvoiceResponse, error)
	Export(ctx context.Context) ([]byte, error)
}

type jobFileService struct {
	ServiceParams
	sequence SequenceService
}

func NewJobFileService(params ServiceParams, sequenceService SequenceService) JobFileService {
	return &jobFileService{
		ServiceParams: params,
		sequence:      sequenceService,
	}
}

// preparedUpload is an image whose content type was checked
type preparedUpload struct {
	kind        jobfile.ImageKind
	contentType string
	data        []byte
}

func (s *jobFileService) policy() billing.DepreciationPolicy {
	return billing.ParsePolicy(s.Config.Billing.DepreciationMode)
}

func (s *jobFileService) Create(ctx context.Context, req *dto.CreateJobFileRequest, idempotencyKey string) (*dto.JobFileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	j := req.ToJobFile()
	if err := j.Validate(); err != nil {
		return nil, err
	}

	// everything that can be rejected is checked before a number is spent
	uploads, err := s.prepareUploads(req.Uploads)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		key := s.Idempotency.GenerateKey(idempotency.ScopeJobFileCreate, map[string]interface{}{
			"key": idempotencyKey,
		})
		existing, err := s.JobFileRepo.GetByIdempotencyKey(ctx, key)
		if err == nil {
			s.Logger.Infow("job file already created for idempotency key",
				"id", existing.ID,
				"bill_no", existing.BillNo)
			return s.toResponse(existing), nil
		}
		if !ierr.IsNotFound(err) {
			return nil, err
		}
		j.IdempotencyKey = key
	}

	j.Summarize(s.policy())

	billNo, err := s.sequence.CommitNext(ctx)
	if err != nil {
		return nil, err
	}
	j.BillNo = billNo
	s.Sentry.AddBreadcrumb("sequence", "invoice number committed", map[string]interface{}{"bill_no": billNo})

	if err := s.uploadImages(ctx, j, uploads); err != nil {
		s.Logger.Errorw("invoice number spent without a saved job file",
			"bill_no", billNo,
			"stage", "upload",
			"error", err)
		return nil, err
	}

	now := time.Now().UTC()
	j.CreatedAt = now
	j.UpdatedAt = now

	if err := s.JobFileRepo.Create(ctx, j); err != nil {
		s.Logger.Errorw("invoice number spent without a saved job file",
			"bill_no", billNo,
			"stage", "persist",
			"error", err)
		return nil, err
	}

	s.Logger.Infow("created job file",
		"id", j.ID,
		"bill_no", j.BillNo,
		"vehicle_no", j.VehicleNo,
		"grand_total", j.Items.GrandTotal.String())

	return s.toResponse(j), nil
}

func (s *jobFileService) Get(ctx context.Context, id string) (*dto.JobFileResponse, error) {
	if id == "" {
		return nil, ierr.NewError("job file id is required").
			WithHint("Job file ID is required").
			Mark(ierr.ErrValidation)
	}

	j, err := s.JobFileRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(j), nil
}

func (s *jobFileService) List(ctx context.Context, filter *types.JobFileFilter) (*dto.ListJobFilesResponse, error) {
	if filter == nil {
		filter = types.NewDefaultJobFileFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	files, err := s.JobFileRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	total, err := s.JobFileRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := lo.Map(files, func(j *jobfile.JobFile, _ int) *dto.JobFileResponse {
		return s.toResponse(j)
	})

	response := types.NewListResponse(items, total, filter.Limit, filter.Offset)
	return &response, nil
}

func (s *jobFileService) Update(ctx context.Context, id string, req *dto.UpdateJobFileRequest) (*dto.JobFileResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	j, err := s.JobFileRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	req.Apply(j)
	if err := j.Validate(); err != nil {
		return nil, err
	}

	uploads, err := s.prepareUploads(req.Uploads)
	if err != nil {
		return nil, err
	}
	if err := s.uploadImages(ctx, j, uploads); err != nil {
		return nil, err
	}

	j.Summarize(s.policy())
	j.UpdatedAt = time.Now().UTC()

	doc, err := j.ToDocument()
	if err != nil {
		return nil, err
	}
	// the bill number and creation time never change after create
	delete(doc, "billNo")
	delete(doc, "createdAt")
	delete(doc, "idempotencyKey")

	if err := s.JobFileRepo.Update(ctx, id, doc); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated job file", "id", id, "bill_no", j.BillNo)
	return s.toResponse(j), nil
}

func (s *jobFileService) MarkPaid(ctx context.Context, id string, paid bool) (*dto.JobFileResponse, error) {
	j, err := s.JobFileRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	j.Paid = paid
	j.UpdatedAt = time.Now().UTC()
	if err := s.JobFileRepo.Update(ctx, id, map[string]any{
		"paid":      j.Paid,
		"updatedAt": j.UpdatedAt,
	}); err != nil {
		return nil, err
	}

	s.Logger.Infow("marked job file paid", "id", id, "bill_no", j.BillNo, "paid", paid)
	return s.toResponse(j), nil
}

func (s *jobFileService) Delete(ctx context.Context, id string) error {
	if err := s.JobFileRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.Logger.Infow("deleted job file", "id", id)
	return nil
}

func (s *jobFileService) RenderInvoicePDF(ctx context.Context, id string, upload bool) (*dto.InvoiceResponse, error) {
	j, err := s.JobFileRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	content, err := s.PDFGenerator.RenderInvoicePdf(ctx, s.invoiceData(j))
	if err != nil {
		return nil, err
	}

	resp := &dto.InvoiceResponse{
		BillNo:   j.BillNo,
		FileName: fmt.Sprintf("%s.pdf", j.BillNo),
		Content:  content,
	}
	if !upload {
		return resp, nil
	}

	contentType, err := s3.DetectContentType(content, s3.ContentKindPdf, "application/pdf")
	if err != nil {
		return nil, err
	}

	// one object per saved version of the job file
	version := s.Idempotency.GenerateKey(idempotency.ScopeInvoiceRender, map[string]interface{}{
		"bill_no":    j.BillNo,
		"updated_at": j.UpdatedAt.UnixNano(),
	})
	path := fmt.Sprintf("invoices/%s/%s.pdf", j.BillNo, version)
	exists, err := s.S3.Exists(ctx, path)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.S3.Upload(ctx, path, content, contentType); err != nil {
			return nil, err
		}
	}

	url, err := s.S3.GetPublicURL(ctx, path)
	if err != nil {
		return nil, err
	}
	resp.URL = url

	s.Logger.Infow("uploaded invoice", "id", id, "bill_no", j.BillNo, "path", path, "reused", exists)
	return resp, nil
}

func (s *jobFileService) Export(ctx context.Context) ([]byte, error) {
	files, err := s.JobFileRepo.List(ctx, types.NewNoLimitJobFileFilter())
	if err != nil {
		return nil, err
	}

	content, err := export.JobFilesWorkbook(files, s.policy())
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("exported job files", "count", len(files), "size", len(content))
	return content, nil
}

func (s *jobFileService) toResponse(j *jobfile.JobFile) *dto.JobFileResponse {
	copied := *j
	return &dto.JobFileResponse{
		JobFile: &copied,
		Summary: copied.Summarize(s.policy()),
	}
}

func (s *jobFileService) prepareUploads(uploads []dto.ImageUpload) ([]preparedUpload, error) {
	maxSize := s.Config.S3.MaxUploadSize
	prepared := make([]preparedUpload, 0, len(uploads))

	for i, u := range uploads {
		if maxSize > 0 && int64(len(u.Data)) > maxSize {
			return nil, ierr.NewErrorf("upload %d is %d bytes", i, len(u.Data)).
				WithHintf("Photos must be smaller than %d MB", maxSize>>20).
				WithReportableDetails(map[string]any{"index": i, "size": len(u.Data)}).
				Mark(ierr.ErrValidation)
		}

		contentType, err := s3.DetectContentType(u.Data, s3.ContentKindImage, u.ContentType)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, preparedUpload{kind: u.Kind, contentType: contentType, data: u.Data})
	}
	return prepared, nil
}

// uploadImages stores photos concurrently and appends their urls in request order
func (s *jobFileService) uploadImages(ctx context.Context, j *jobfile.JobFile, uploads []preparedUpload) error {
	if len(uploads) == 0 {
		return nil
	}

	urls, err := iter.MapErr(uploads, func(u *preparedUpload) (string, error) {
		path := fmt.Sprintf("jobFiles/%s/%s/%s", j.BillNo, u.kind, types.GenerateShortID())
		if err := s.S3.Upload(ctx, path, u.data, u.contentType); err != nil {
			return "", err
		}
		return s.S3.GetPublicURL(ctx, path)
	})
	if err != nil {
		return err
	}

	for i, u := range uploads {
		j.Images.Append(u.kind, urls[i])
	}
	return nil
}

func (s *jobFileService) invoiceData(j *jobfile.JobFile) *pdf.InvoiceData {
	bill := j.Bill()
	summary := bill.Summarize(s.policy())
	business := s.Config.Billing.Business

	return &pdf.InvoiceData{
		Currency:      s.Config.Billing.Currency,
		InvoiceNumber: j.BillNo,
		IssuingDate:   pdf.CustomTime{Time: lo.Ternary(j.CreatedAt.IsZero(), time.Now(), j.CreatedAt)},
		Paid:          j.Paid,
		Remarks:       j.Remarks,
		Biller: pdf.BillerInfo{
			Name:    business.Name,
			Address: business.Address,
			Phone:   business.Phone,
			Email:   business.Email,
		},
		Details: []pdf.DetailField{
			{Label: "Vehicle No", Value: j.VehicleNo},
			{Label: "Make", Value: j.Make},
			{Label: "Model", Value: j.Model},
			{Label: "Colour", Value: j.Colour},
			{Label: "Chassis No", Value: j.ChassisNo},
			{Label: "Engine No", Value: j.EngineNo},
			{Label: "Mileage", Value: j.Mileage},
			{Label: "Loss No", Value: j.LossNo},
			{Label: "Customer", Value: j.CustomerName},
			{Label: "Contact", Value: j.CustomerContact},
			{Label: "Owner", Value: j.OwnerName},
			{Label: "Insurance", Value: j.InsuranceCompany},
			{Label: "Surveyor Company", Value: j.SurveyorCompany},
			{Label: "Surveyor", Value: j.SurveyorName},
			{Label: "Surveyor Contact", Value: j.SurveyorContact},
			{Label: "Survey Date", Value: j.SurveyDate},
		},
		Parts:         invoiceLines(bill.Parts, summary.PartLines),
		Labour:        invoiceLines(bill.Labour, summary.LabourLines),
		PartsTotals:   invoiceTotals(summary.Parts),
		LabourTotals:  invoiceTotals(summary.Labour),
		GrandTotal:    summary.GrandTotal,
		AmountInWords: summary.AmountInWords,
	}
}

func invoiceLines(lines []billing.Line, results []billing.LineResult) []pdf.LineItemData {
	return lo.Map(lines, func(line billing.Line, i int) pdf.LineItemData {
		r := results[i]
		return pdf.LineItemData{
			Name:             line.Name,
			Quantity:         line.Quantity,
			Actual:           r.Actual,
			Percent:          line.AdjustmentPercent,
			AdjustmentAmount: r.AdjustmentAmount,
			Final:            r.FinalPrice,
		}
	})
}

func invoiceTotals(t billing.SectionTotals) pdf.SectionTotals {
	return pdf.SectionTotals{
		Subtotal:         t.Subtotal,
		AdjustmentTotal:  t.AdjustmentTotal,
		EffectivePercent: t.EffectivePercent,
		Total:            t.Total,
	}
}
