package service

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/yadgarautos/jobfiles/internal/api/dto"
	"github.com/yadgarautos/jobfiles/internal/domain/jobfile"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/testutil"
	"github.com/yadgarautos/jobfiles/internal/types"
)

var (
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")
	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01")
	pdfBytes  = []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n")
)

type JobFileServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  JobFileService
	sequence SequenceService
}

func TestJobFileService(t *testing.T) {
	suite.Run(t, new(JobFileServiceSuite))
}

func (s *JobFileServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	params := newTestParams(&s.BaseServiceTestSuite)
	s.sequence = NewSequenceService(params)
	s.service = NewJobFileService(params, s.sequence)
}

func (s *JobFileServiceSuite) newRequest(vehicleNo string) *dto.CreateJobFileRequest {
	depr := decimal.NewFromInt(10)
	tax := decimal.NewFromInt(16)
	return &dto.CreateJobFileRequest{
		JobFileFields: dto.JobFileFields{
			VehicleNo:        vehicleNo,
			Make:             "Toyota",
			Model:            "Corolla",
			CustomerName:     "Imran Qureshi",
			InsuranceCompany: "Adamjee Insurance",
		},
		Items: dto.ItemsRequest{
			Parts: []jobfile.PartItem{
				{Name: "Front bumper", Price: decimal.NewFromInt(1000)},
			},
			Labour: []jobfile.LabourItem{
				{Name: "Denting", Price: decimal.NewFromInt(500)},
			},
			TaxPercent:  &tax,
			DeprPercent: &depr,
		},
	}
}

func (s *JobFileServiceSuite) TestCreate() {
	req := s.newRequest("LEA-1234")
	req.Uploads = []dto.ImageUpload{
		{Kind: jobfile.ImageKindBefore, Data: pngBytes},
		{Kind: jobfile.ImageKindBefore, Data: jpegBytes},
		{Kind: jobfile.ImageKindAfter, Data: pngBytes},
	}

	resp, err := s.service.Create(s.GetContext(), req, "")
	s.Require().NoError(err)

	s.NotEmpty(resp.ID)
	s.Equal("YAI-0001", resp.BillNo)
	s.True(decimal.NewFromInt(1100).Equal(resp.Items.PartsTotal))
	s.True(decimal.NewFromInt(580).Equal(resp.Items.LabourTotal))
	s.True(decimal.NewFromInt(1680).Equal(resp.Items.GrandTotal))
	s.Equal("One Thousand Six Hundred Eighty Rupees Only", resp.Summary.AmountInWords)
	s.False(resp.CreatedAt.IsZero())

	s.Len(resp.Images.Before, 2)
	s.Len(resp.Images.After, 1)
	s.Empty(resp.Images.Reinspection)
	for _, url := range append(resp.Images.Before, resp.Images.After...) {
		s.True(strings.HasPrefix(url, testutil.TestBlobBaseURL+"/jobFiles/YAI-0001/"), url)
	}
	s.Len(s.GetBlobs().Paths(), 3)
	s.Equal(1, s.GetStores().DocumentStore.Count(jobfile.Collection))

	stored, err := s.service.Get(s.GetContext(), resp.ID)
	s.Require().NoError(err)
	s.Equal(resp.BillNo, stored.BillNo)
	s.Equal("LEA-1234", stored.VehicleNo)
}

func (s *JobFileServiceSuite) TestCreateRejectsBeforeSpendingANumber() {
	testCases := []struct {
		name   string
		mutate func(req *dto.CreateJobFileRequest)
	}{
		{
			name:   "missing_vehicle_number",
			mutate: func(req *dto.CreateJobFileRequest) { req.VehicleNo = "  " },
		},
		{
			name: "unnamed_part",
			mutate: func(req *dto.CreateJobFileRequest) {
				req.Items.Parts = append(req.Items.Parts, jobfile.PartItem{Price: decimal.NewFromInt(10)})
			},
		},
		{
			name: "negative_price_and_quantity",
			mutate: func(req *dto.CreateJobFileRequest) {
				req.Items.Parts = append(req.Items.Parts, jobfile.PartItem{
					Name:  "Headlight",
					Price: decimal.NewFromInt(-100),
					Qty:   lo.ToPtr(-3),
				})
			},
		},
		{
			name: "negative_tax",
			mutate: func(req *dto.CreateJobFileRequest) {
				req.Items.Labour[0].Tax = lo.ToPtr(decimal.NewFromInt(-16))
			},
		},
		{
			name: "pdf_as_photo",
			mutate: func(req *dto.CreateJobFileRequest) {
				req.Uploads = []dto.ImageUpload{{Kind: jobfile.ImageKindBefore, Data: pdfBytes}}
			},
		},
		{
			name: "unknown_image_kind",
			mutate: func(req *dto.CreateJobFileRequest) {
				req.Uploads = []dto.ImageUpload{{Kind: "side", Data: pngBytes}}
			},
		},
		{
			name: "photo_too_large",
			mutate: func(req *dto.CreateJobFileRequest) {
				big := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0}, 2<<20)...)
				req.Uploads = []dto.ImageUpload{{Kind: jobfile.ImageKindAfter, Data: big}}
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			req := s.newRequest("LEA-1234")
			tc.mutate(req)

			_, err := s.service.Create(s.GetContext(), req, "")
			s.Error(err)
			s.True(ierr.IsValidation(err), err)
			s.Equal(0, s.GetStores().CounterRepo.Increments())
			s.False(s.GetStores().CounterRepo.Exists(s.GetConfig().Sequence.CounterName))
			s.Equal(0, s.GetStores().DocumentStore.Count(jobfile.Collection))
		})
	}
}

func (s *JobFileServiceSuite) TestCreateWithIdempotencyKey() {
	first, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "client-key-1")
	s.Require().NoError(err)

	again, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "client-key-1")
	s.Require().NoError(err)
	s.Equal(first.ID, again.ID)
	s.Equal(first.BillNo, again.BillNo)
	s.Equal(1, s.GetStores().CounterRepo.Increments())

	other, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "client-key-2")
	s.Require().NoError(err)
	s.Equal("YAI-0002", other.BillNo)
	s.Equal(2, s.GetStores().DocumentStore.Count(jobfile.Collection))
}

func (s *JobFileServiceSuite) TestCreateStoreUnavailable() {
	s.GetStores().CounterRepo.FailNext(1)

	_, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "")
	s.Error(err)
	s.True(ierr.IsStoreUnavailable(err))
	s.Equal(0, s.GetStores().DocumentStore.Count(jobfile.Collection))
}

func (s *JobFileServiceSuite) TestDeductPolicy() {
	cfg := s.GetConfig()
	previous := cfg.Billing.DepreciationMode
	cfg.Billing.DepreciationMode = "deduct"
	defer func() { cfg.Billing.DepreciationMode = previous }()

	resp, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "")
	s.Require().NoError(err)

	s.True(decimal.NewFromInt(900).Equal(resp.Items.PartsTotal))
	s.True(decimal.NewFromInt(580).Equal(resp.Items.LabourTotal))
	s.True(decimal.NewFromInt(1480).Equal(resp.Items.GrandTotal))
	s.Equal("deduct", resp.Summary.Policy.String())
}

func (s *JobFileServiceSuite) TestList() {
	for _, vehicle := range []string{"LEA-1111", "KHI-2222", "LEA-3333"} {
		_, err := s.service.Create(s.GetContext(), s.newRequest(vehicle), "")
		s.Require().NoError(err)
		time.Sleep(2 * time.Millisecond)
	}

	all, err := s.service.List(s.GetContext(), nil)
	s.Require().NoError(err)
	s.Equal(3, all.Pagination.Total)
	s.Equal([]string{"YAI-0003", "YAI-0002", "YAI-0001"}, lo.Map(all.Items, func(r *dto.JobFileResponse, _ int) string {
		return r.BillNo
	}))

	filter := types.NewDefaultJobFileFilter()
	filter.VehicleNo = lo.ToPtr("lea")
	filter.Limit = 1
	page, err := s.service.List(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Equal(2, page.Pagination.Total)
	s.Require().Len(page.Items, 1)
	s.Equal("LEA-3333", page.Items[0].VehicleNo)

	filter.Order = types.OrderAsc
	page, err = s.service.List(s.GetContext(), filter)
	s.Require().NoError(err)
	s.Equal("LEA-1111", page.Items[0].VehicleNo)

	_, err = s.service.List(s.GetContext(), &types.JobFileFilter{Limit: -1})
	s.True(ierr.IsValidation(err))
}

func (s *JobFileServiceSuite) TestUpdate() {
	created, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "")
	s.Require().NoError(err)

	fields := dto.JobFileFields{VehicleNo: "LEA-9999", Remarks: "Reinspected"}
	updated, err := s.service.Update(s.GetContext(), created.ID, &dto.UpdateJobFileRequest{
		Fields: &fields,
		Items: &dto.ItemsRequest{
			Parts: []jobfile.PartItem{{Name: "Headlamp", Price: decimal.NewFromInt(2000), Qty: lo.ToPtr(2)}},
		},
		Uploads: []dto.ImageUpload{{Kind: jobfile.ImageKindReinspection, Data: pngBytes}},
	})
	s.Require().NoError(err)

	s.Equal(created.BillNo, updated.BillNo)
	s.Equal("LEA-9999", updated.VehicleNo)
	s.True(decimal.NewFromInt(4000).Equal(updated.Items.GrandTotal))
	s.Len(updated.Images.Reinspection, 1)
	s.Equal(1, s.GetStores().CounterRepo.Increments())

	stored, err := s.service.Get(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.Equal("Reinspected", stored.Remarks)
	s.Equal(created.BillNo, stored.BillNo)
	s.True(decimal.NewFromInt(4000).Equal(stored.Items.GrandTotal))
	s.Equal(created.CreatedAt.UnixNano(), stored.CreatedAt.UnixNano())

	cleared := dto.JobFileFields{}
	_, err = s.service.Update(s.GetContext(), created.ID, &dto.UpdateJobFileRequest{Fields: &cleared})
	s.True(ierr.IsValidation(err))

	_, err = s.service.Update(s.GetContext(), created.ID, &dto.UpdateJobFileRequest{
		Items: &dto.ItemsRequest{
			Parts: []jobfile.PartItem{{Name: "Headlamp", Price: decimal.NewFromInt(-2000)}},
		},
	})
	s.True(ierr.IsValidation(err))

	_, err = s.service.Update(s.GetContext(), "missing", &dto.UpdateJobFileRequest{})
	s.True(ierr.IsNotFound(err))
}

func (s *JobFileServiceSuite) TestMarkPaidAndDelete() {
	created, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "")
	s.Require().NoError(err)
	s.False(created.Paid)

	paid, err := s.service.MarkPaid(s.GetContext(), created.ID, true)
	s.Require().NoError(err)
	s.True(paid.Paid)

	stored, err := s.service.Get(s.GetContext(), created.ID)
	s.Require().NoError(err)
	s.True(stored.Paid)

	s.NoError(s.service.Delete(s.GetContext(), created.ID))
	_, err = s.service.Get(s.GetContext(), created.ID)
	s.True(ierr.IsNotFound(err))
	s.True(ierr.IsNotFound(s.service.Delete(s.GetContext(), created.ID)))

	_, err = s.service.MarkPaid(s.GetContext(), created.ID, true)
	s.True(ierr.IsNotFound(err))
}

func (s *JobFileServiceSuite) TestRenderInvoicePDF() {
	created, err := s.service.Create(s.GetContext(), s.newRequest("LEA-1234"), "")
	s.Require().NoError(err)

	invoice, err := s.service.RenderInvoicePDF(s.GetContext(), created.ID, false)
	s.Require().NoError(err)
	s.Equal("YAI-0001.pdf", invoice.FileName)
	s.True(bytes.HasPrefix(invoice.Content, []byte("%PDF")))
	s.Empty(invoice.URL)
	s.Empty(s.GetBlobs().Paths())

	uploaded, err := s.service.RenderInvoicePDF(s.GetContext(), created.ID, true)
	s.Require().NoError(err)
	s.True(strings.HasPrefix(uploaded.URL, testutil.TestBlobBaseURL+"/invoices/YAI-0001/invoice_render-"), uploaded.URL)
	s.True(strings.HasSuffix(uploaded.URL, ".pdf"), uploaded.URL)
	s.Require().Len(s.GetBlobs().Paths(), 1)
	s.Equal("application/pdf", s.GetBlobs().ContentType(s.GetBlobs().Paths()[0]))

	// an unchanged job file reuses the uploaded invoice
	again, err := s.service.RenderInvoicePDF(s.GetContext(), created.ID, true)
	s.Require().NoError(err)
	s.Equal(uploaded.URL, again.URL)
	s.Len(s.GetBlobs().Paths(), 1)

	time.Sleep(2 * time.Millisecond)
	_, err = s.service.MarkPaid(s.GetContext(), created.ID, true)
	s.Require().NoError(err)
	afterPaid, err := s.service.RenderInvoicePDF(s.GetContext(), created.ID, true)
	s.Require().NoError(err)
	s.NotEqual(uploaded.URL, afterPaid.URL)
	s.Len(s.GetBlobs().Paths(), 2)

	_, err = s.service.RenderInvoicePDF(s.GetContext(), "missing", false)
	s.True(ierr.IsNotFound(err))
}

func (s *JobFileServiceSuite) TestExport() {
	for _, vehicle := range []string{"LEA-1111", "KHI-2222"} {
		_, err := s.service.Create(s.GetContext(), s.newRequest(vehicle), "")
		s.Require().NoError(err)
	}

	content, err := s.service.Export(s.GetContext())
	s.Require().NoError(err)
	s.True(bytes.HasPrefix(content, []byte("PK")), "xlsx is a zip archive")
}
