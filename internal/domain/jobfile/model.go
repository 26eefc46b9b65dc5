package jobfile

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yadgarautos/jobfiles/internal/domain/billing"
	"github.com/yadgarautos/jobfiles/internal/domain/document"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

// Collection is the document collection job files live in
const Collection = "jobSurveys"

// ImageKind is one of the three photo groups of a survey
type ImageKind string

const (
	ImageKindBefore       ImageKind = "before"
	ImageKindAfter        ImageKind = "after"
	ImageKindReinspection ImageKind = "reinspection"
)

// ImageKinds lists the photo groups in display order
var ImageKinds = []ImageKind{ImageKindBefore, ImageKindAfter, ImageKindReinspection}

// PartItem is a part line as stored, depreciation in percent
type PartItem struct {
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`
	Qty   *int             `json:"qty,omitempty"`
	Depr  *decimal.Decimal `json:"depr,omitempty"`
}

// LabourItem is a labour line as stored, tax in percent
type LabourItem struct {
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`
	Qty   *int             `json:"qty,omitempty"`
	Tax   *decimal.Decimal `json:"tax,omitempty"`
}

// Items is the bill of a job file with the totals computed at save time
type Items struct {
	Parts       []PartItem      `json:"parts"`
	Labour      []LabourItem    `json:"labour"`
	PartsTotal  decimal.Decimal `json:"partsTotal"`
	LabourTotal decimal.Decimal `json:"labourTotal"`
	GrandTotal  decimal.Decimal `json:"grandTotal"`
	TaxPercent  decimal.Decimal `json:"taxPercent"`
	DeprPercent decimal.Decimal `json:"deprPercent"`
}

// Images holds the public urls of uploaded photos
type Images struct {
	Before       []string `json:"before"`
	After        []string `json:"after"`
	Reinspection []string `json:"reinspection"`
}

// Append adds urls to the group of kind
func (i *Images) Append(kind ImageKind, urls ...string) {
	switch kind {
	case ImageKindBefore:
		i.Before = append(i.Before, urls...)
	case ImageKindAfter:
		i.After = append(i.After, urls...)
	case ImageKindReinspection:
		i.Reinspection = append(i.Reinspection, urls...)
	}
}

// JobFile is an insurance claim survey with its bill
type JobFile struct {
	ID               string    `json:"id,omitempty"`
	BillNo           string    `json:"billNo"`
	VehicleNo        string    `json:"vehicleNo"`
	Make             string    `json:"make,omitempty"`
	Model            string    `json:"model,omitempty"`
	ChassisNo        string    `json:"chassisNo,omitempty"`
	EngineNo         string    `json:"engineNo,omitempty"`
	Colour           string    `json:"colour,omitempty"`
	Mileage          string    `json:"mileage,omitempty"`
	LossNo           string    `json:"lossNo,omitempty"`
	CustomerName     string    `json:"customerName,omitempty"`
	CustomerContact  string    `json:"customerContact,omitempty"`
	OwnerName        string    `json:"ownerName,omitempty"`
	InsuranceCompany string    `json:"insuranceCompany,omitempty"`
	SurveyorCompany  string    `json:"surveyorCompany,omitempty"`
	SurveyorName     string    `json:"surveyorName,omitempty"`
	SurveyorContact  string    `json:"surveyorContact,omitempty"`
	SurveyDate       string    `json:"surveyDate,omitempty"`
	Remarks          string    `json:"remarks,omitempty"`
	Paid             bool      `json:"paid"`
	Items            Items     `json:"items"`
	Images           Images    `json:"images"`
	IdempotencyKey   string    `json:"idempotencyKey,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Validate checks what must hold before a bill number is spent on the file
func (j *JobFile) Validate() error {
	if strings.TrimSpace(j.VehicleNo) == "" {
		return ierr.NewError("vehicle number is required").
			WithHint("Please enter the vehicle number").
			Mark(ierr.ErrValidation)
	}
	if j.Items.TaxPercent.IsNegative() || j.Items.DeprPercent.IsNegative() {
		return ierr.NewError("bill percent is negative").
			WithHint("Tax and depreciation must be zero or more").
			Mark(ierr.ErrValidation)
	}
	for i, p := range j.Items.Parts {
		if err := validateLine("part", i, p.Name, p.Price, p.Qty, p.Depr); err != nil {
			return err
		}
	}
	for i, l := range j.Items.Labour {
		if err := validateLine("labour", i, l.Name, l.Price, l.Qty, l.Tax); err != nil {
			return err
		}
	}
	// surcharge gives the larger total of the two policies
	grand := j.Bill().Summarize(billing.DepreciationSurcharge).GrandTotal
	return billing.ValidateWordsAmount(grand)
}

func validateLine(kind string, i int, name string, price decimal.Decimal, qty *int, percent *decimal.Decimal) error {
	switch {
	case strings.TrimSpace(name) == "":
		return ierr.NewErrorf("%s %d has no name", kind, i).
			WithHintf("The %s on line %d needs a name", kind, i+1).
			Mark(ierr.ErrValidation)
	case price.IsNegative():
		return ierr.NewErrorf("%s %d has a negative price", kind, i).
			WithHintf("The %s on line %d needs a price of zero or more", kind, i+1).
			WithReportableDetails(map[string]any{"price": price.String()}).
			Mark(ierr.ErrValidation)
	case qty != nil && *qty < 1:
		return ierr.NewErrorf("%s %d has quantity %d", kind, i, *qty).
			WithHintf("The %s on line %d needs a quantity of at least 1", kind, i+1).
			WithReportableDetails(map[string]any{"qty": *qty}).
			Mark(ierr.ErrValidation)
	case percent != nil && percent.IsNegative():
		return ierr.NewErrorf("%s %d has a negative percent", kind, i).
			WithHintf("The %s on line %d needs a percent of zero or more", kind, i+1).
			WithReportableDetails(map[string]any{"percent": percent.String()}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// Bill resolves the stored items into a bill. Lines without their own
// depreciation or tax take the bill's deprPercent or taxPercent.
func (j *JobFile) Bill() billing.Bill {
	parts := make([]billing.LineItem, 0, len(j.Items.Parts))
	for _, p := range j.Items.Parts {
		parts = append(parts, billing.LineItem{
			Name:              p.Name,
			UnitPrice:         p.Price,
			Quantity:          p.Qty,
			AdjustmentPercent: p.Depr,
		})
	}
	labour := make([]billing.LineItem, 0, len(j.Items.Labour))
	for _, l := range j.Items.Labour {
		labour = append(labour, billing.LineItem{
			Name:              l.Name,
			UnitPrice:         l.Price,
			Quantity:          l.Qty,
			AdjustmentPercent: l.Tax,
		})
	}
	tax, depr := j.Items.TaxPercent, j.Items.DeprPercent
	return billing.NewBillWithSectionPercents(parts, labour, &tax, &depr)
}

// Summarize recomputes the bill and stores the totals on the items
func (j *JobFile) Summarize(policy billing.DepreciationPolicy) billing.Summary {
	bill := j.Bill()
	summary := bill.Summarize(policy)
	j.Items.TaxPercent = bill.TaxPercent
	j.Items.DeprPercent = bill.DeprPercent
	j.Items.PartsTotal = summary.Parts.Total
	j.Items.LabourTotal = summary.Labour.Total
	j.Items.GrandTotal = summary.GrandTotal
	return summary
}

// ToDocument encodes the job file into its persisted record shape
func (j *JobFile) ToDocument() (document.Document, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Job file could not be encoded").
			Mark(ierr.ErrSystem)
	}
	doc := document.Document{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Job file could not be encoded").
			Mark(ierr.ErrSystem)
	}
	delete(doc, document.FieldID)
	return doc, nil
}

// FromDocument decodes a stored record. Unknown keys are ignored.
func FromDocument(doc document.Document) (*JobFile, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Job file %s could not be read", doc.ID()).
			Mark(ierr.ErrDatabase)
	}
	j := &JobFile{}
	if err := json.Unmarshal(data, j); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Job file %s is malformed", doc.ID()).
			Mark(ierr.ErrDatabase)
	}
	j.ID = doc.ID()
	return j, nil
}
