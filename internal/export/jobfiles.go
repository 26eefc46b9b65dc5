package export

import (
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"github.com/yadgarautos/jobfiles/internal/domain/billing"
	"github.com/yadgarautos/jobfiles/internal/domain/jobfile"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

const (
	SheetJobFiles  = "Job Files"
	SheetLineItems = "Line Items"

	defaultSheet = "Sheet1"
	dateLayout   = "2006-01-02 15:04"
)

var (
	jobFileHeaders = []interface{}{
		"Bill No", "Vehicle No", "Make", "Model", "Chassis No", "Customer", "Contact",
		"Insurance Company", "Surveyor", "Loss No", "Parts Total", "Labour Total",
		"Grand Total", "Paid", "Created At",
	}
	lineItemHeaders = []interface{}{
		"Bill No", "Section", "Description", "Qty", "Unit Price", "Actual", "Percent",
		"Adjustment", "Final",
	}
)

// JobFilesWorkbook writes one summary row per job file and one row per bill
// line. Line prices are recomputed under policy so the sheet matches invoices.
func JobFilesWorkbook(files []*jobfile.JobFile, policy billing.DepreciationPolicy) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(defaultSheet, SheetJobFiles); err != nil {
		return nil, workbookError(err)
	}
	if _, err := f.NewSheet(SheetLineItems); err != nil {
		return nil, workbookError(err)
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, workbookError(err)
	}

	if err := writeRow(f, SheetJobFiles, 1, jobFileHeaders); err != nil {
		return nil, err
	}
	if err := writeRow(f, SheetLineItems, 1, lineItemHeaders); err != nil {
		return nil, err
	}
	for _, sheet := range []string{SheetJobFiles, SheetLineItems} {
		if err := f.SetRowStyle(sheet, 1, 1, header); err != nil {
			return nil, workbookError(err)
		}
	}

	lineRow := 2
	for i, j := range files {
		summary := j.Bill().Summarize(policy)
		row := []interface{}{
			j.BillNo, j.VehicleNo, j.Make, j.Model, j.ChassisNo, j.CustomerName, j.CustomerContact,
			j.InsuranceCompany, j.SurveyorName, j.LossNo,
			number(summary.Parts.Total), number(summary.Labour.Total), number(summary.GrandTotal),
			j.Paid, j.CreatedAt.Format(dateLayout),
		}
		if err := writeRow(f, SheetJobFiles, i+2, row); err != nil {
			return nil, err
		}

		bill := j.Bill()
		sections := []struct {
			lines   []billing.Line
			results []billing.LineResult
		}{
			{bill.Parts, summary.PartLines},
			{bill.Labour, summary.LabourLines},
		}
		for _, section := range sections {
			for k, line := range section.lines {
				res := section.results[k]
				row := []interface{}{
					j.BillNo, string(line.Section), line.Name, line.Quantity, number(line.UnitPrice),
					number(res.Actual), number(line.AdjustmentPercent), number(res.AdjustmentAmount),
					number(res.FinalPrice),
				}
				if err := writeRow(f, SheetLineItems, lineRow, row); err != nil {
					return nil, err
				}
				lineRow++
			}
		}
	}

	if err := f.SetColWidth(SheetJobFiles, "A", "O", 16); err != nil {
		return nil, workbookError(err)
	}
	if err := f.SetColWidth(SheetLineItems, "C", "C", 36); err != nil {
		return nil, workbookError(err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, workbookError(err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return workbookError(err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return workbookError(err)
	}
	return nil
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func workbookError(err error) error {
	return ierr.WithError(err).
		WithHint("Failed to build the export workbook").
		Mark(ierr.ErrSystem)
}
