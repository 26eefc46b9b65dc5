package dto

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/yadgarautos/jobfiles/internal/domain/billing"
	"github.com/yadgarautos/jobfiles/internal/domain/jobfile"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
	"github.com/yadgarautos/jobfiles/internal/types"
	"github.com/yadgarautos/jobfiles/internal/validator"
)

// JobFileFields are the survey form fields shared by create and update
type JobFileFields struct {
	VehicleNo        string `json:"vehicleNo" validate:"max=32"`
	Make             string `json:"make,omitempty" validate:"max=64"`
	Model            string `json:"model,omitempty" validate:"max=64"`
	ChassisNo        string `json:"chassisNo,omitempty" validate:"max=64"`
	EngineNo         string `json:"engineNo,omitempty" validate:"max=64"`
	Colour           string `json:"colour,omitempty" validate:"max=32"`
	Mileage          string `json:"mileage,omitempty" validate:"max=32"`
	LossNo           string `json:"lossNo,omitempty" validate:"max=64"`
	CustomerName     string `json:"customerName,omitempty" validate:"max=128"`
	CustomerContact  string `json:"customerContact,omitempty" validate:"max=64"`
	OwnerName        string `json:"ownerName,omitempty" validate:"max=128"`
	InsuranceCompany string `json:"insuranceCompany,omitempty" validate:"max=128"`
	SurveyorCompany  string `json:"surveyorCompany,omitempty" validate:"max=128"`
	SurveyorName     string `json:"surveyorName,omitempty" validate:"max=128"`
	SurveyorContact  string `json:"surveyorContact,omitempty" validate:"max=64"`
	SurveyDate       string `json:"surveyDate,omitempty" validate:"max=32"`
	Remarks          string `json:"remarks,omitempty" validate:"max=2000"`
	Paid             bool   `json:"paid"`
}

// ItemsRequest is the bill part of a job file. Totals are always recomputed.
type ItemsRequest struct {
	Parts       []jobfile.PartItem   `json:"parts"`
	Labour      []jobfile.LabourItem `json:"labour"`
	TaxPercent  *decimal.Decimal     `json:"taxPercent,omitempty"`
	DeprPercent *decimal.Decimal     `json:"deprPercent,omitempty"`
}

func (r *ItemsRequest) ToItems() jobfile.Items {
	items := jobfile.Items{
		Parts:       r.Parts,
		Labour:      r.Labour,
		TaxPercent:  decimal.Zero,
		DeprPercent: decimal.Zero,
	}
	if items.Parts == nil {
		items.Parts = []jobfile.PartItem{}
	}
	if items.Labour == nil {
		items.Labour = []jobfile.LabourItem{}
	}
	if r.TaxPercent != nil {
		items.TaxPercent = *r.TaxPercent
	}
	if r.DeprPercent != nil {
		items.DeprPercent = *r.DeprPercent
	}
	return items
}

// ImageUpload is a photo sent inline, base64 in json
type ImageUpload struct {
	Kind        jobfile.ImageKind `json:"kind" validate:"required,oneof=before after reinspection"`
	ContentType string            `json:"content_type,omitempty"`
	Data        []byte            `json:"data" validate:"required"`
}

type CreateJobFileRequest struct {
	JobFileFields
	Items ItemsRequest `json:"items"`
	// already hosted photos, kept as they are
	Images  jobfile.Images `json:"images"`
	Uploads []ImageUpload  `json:"uploads,omitempty" validate:"omitempty,dive"`
}

func (r *CreateJobFileRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if strings.TrimSpace(r.VehicleNo) == "" {
		return ierr.NewError("vehicle number is required").
			WithHint("Please enter the vehicle number").
			Mark(ierr.ErrValidation)
	}
	return nil
}

func (r *CreateJobFileRequest) ToJobFile() *jobfile.JobFile {
	j := &jobfile.JobFile{Items: r.Items.ToItems(), Images: normalizeImages(r.Images)}
	applyFields(j, r.JobFileFields)
	return j
}

// UpdateJobFileRequest replaces the fields that are present. Items replace
// the whole bill, uploads are appended to the existing photos.
type UpdateJobFileRequest struct {
	Fields  *JobFileFields  `json:"fields,omitempty"`
	Items   *ItemsRequest   `json:"items,omitempty"`
	Images  *jobfile.Images `json:"images,omitempty"`
	Uploads []ImageUpload   `json:"uploads,omitempty" validate:"omitempty,dive"`
}

func (r *UpdateJobFileRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.Fields != nil && strings.TrimSpace(r.Fields.VehicleNo) == "" {
		return ierr.NewError("vehicle number is required").
			WithHint("Vehicle number cannot be cleared").
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Apply copies the request onto j, leaving the bill number alone
func (r *UpdateJobFileRequest) Apply(j *jobfile.JobFile) {
	if r.Fields != nil {
		applyFields(j, *r.Fields)
	}
	if r.Items != nil {
		j.Items = r.Items.ToItems()
	}
	if r.Images != nil {
		j.Images = normalizeImages(*r.Images)
	}
}

type MarkPaidRequest struct {
	Paid *bool `json:"paid"`
}

type JobFileResponse struct {
	*jobfile.JobFile
	Summary billing.Summary `json:"summary"`
}

// ListJobFilesResponse represents the response for listing job files
type ListJobFilesResponse = types.ListResponse[*JobFileResponse]

type InvoiceResponse struct {
	BillNo   string `json:"bill_no"`
	FileName string `json:"file_name"`
	URL      string `json:"url,omitempty"`
	Content  []byte `json:"-"`
}

func applyFields(j *jobfile.JobFile, f JobFileFields) {
	j.VehicleNo = strings.TrimSpace(f.VehicleNo)
	j.Make = f.Make
	j.Model = f.Model
	j.ChassisNo = f.ChassisNo
	j.EngineNo = f.EngineNo
	j.Colour = f.Colour
	j.Mileage = f.Mileage
	j.LossNo = f.LossNo
	j.CustomerName = f.CustomerName
	j.CustomerContact = f.CustomerContact
	j.OwnerName = f.OwnerName
	j.InsuranceCompany = f.InsuranceCompany
	j.SurveyorCompany = f.SurveyorCompany
	j.SurveyorName = f.SurveyorName
	j.SurveyorContact = f.SurveyorContact
	j.SurveyDate = f.SurveyDate
	j.Remarks = f.Remarks
	j.Paid = f.Paid
}

func normalizeImages(images jobfile.Images) jobfile.Images {
	if images.Before == nil {
		images.Before = []string{}
	}
	if images.After == nil {
		images.After = []string{}
	}
	if images.Reinspection == nil {
		images.Reinspection = []string{}
	}
	return images
}
