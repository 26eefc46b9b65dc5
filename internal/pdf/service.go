package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/yadgarautos/jobfiles/internal/config"
	"github.com/yadgarautos/jobfiles/internal/domain/pdf"
	ierr "github.com/yadgarautos/jobfiles/internal/errors"
)

// Generator defines the interface for PDF generation operations
type Generator interface {
	RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error)
}

const (
	fontFamily = "Helvetica"
	lineHeight = 6.0
	pageMargin = 12.0
)

// column widths of the parts and labour tables, A4 minus margins
var tableColumns = []float64{10, 68, 14, 26, 18, 24, 26}

type service struct {
	currency string
}

// NewGenerator creates a gofpdf backed invoice renderer
func NewGenerator(config *config.Configuration) Generator {
	currency := config.Billing.Currency
	if currency == "" {
		currency = "Rs."
	}
	return &service{currency: currency}
}

// RenderInvoicePdf lays out an A4 invoice: header, details, parts, labour, summary
func (s *service) RenderInvoicePdf(ctx context.Context, data *pdf.InvoiceData) ([]byte, error) {
	if data == nil {
		return nil, ierr.NewError("missing invoice data").
			WithHint("Invoice data is required").
			Mark(ierr.ErrValidation)
	}

	currency := data.Currency
	if currency == "" {
		currency = s.currency
	}

	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(pageMargin, pageMargin, pageMargin)
	doc.SetAutoPageBreak(true, pageMargin+6)
	doc.SetTitle("Invoice "+data.InvoiceNumber, true)
	doc.SetCreator(data.Biller.Name, true)
	doc.AliasNbPages("")
	doc.SetFooterFunc(func() {
		doc.SetY(-pageMargin)
		doc.SetFont(fontFamily, "I", 8)
		doc.CellFormat(0, 5, fmt.Sprintf("%s  |  page %d of {nb}", data.InvoiceNumber, doc.PageNo()), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	writeHeader(doc, data)
	writeDetails(doc, data.Details)
	writeSection(doc, "Spare Parts & Lubricants", []string{"#", "Description", "Qty", "Actual", "Dep %", "Dep Amt", "Final"}, data.Parts, data.PartsTotals)
	writeSection(doc, "Labour Performed", []string{"#", "Voice of Customer", "Labour", "Actual", "Tax %", "Tax Amt", "Final"}, data.Labour, data.LabourTotals)
	writeSummary(doc, data, currency)

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, ierr.WithError(err).
			WithHint("failed to render invoice pdf").
			Mark(ierr.ErrSystem)
	}
	return buf.Bytes(), nil
}

func writeHeader(doc *gofpdf.Fpdf, data *pdf.InvoiceData) {
	doc.SetFont(fontFamily, "B", 18)
	doc.CellFormat(110, 9, data.Biller.Name, "", 0, "L", false, 0, "")
	doc.SetFont(fontFamily, "B", 14)
	doc.CellFormat(0, 9, "WORK / INVOICE", "", 1, "R", false, 0, "")

	doc.SetFont(fontFamily, "", 9)
	doc.CellFormat(110, 5, data.Biller.Address, "", 0, "L", false, 0, "")
	doc.CellFormat(0, 5, "Invoice No: "+data.InvoiceNumber, "", 1, "R", false, 0, "")
	contact := strings.Trim(strings.Join([]string{data.Biller.Phone, data.Biller.Email}, "  |  "), " |")
	doc.CellFormat(110, 5, contact, "", 0, "L", false, 0, "")
	doc.CellFormat(0, 5, "Date: "+data.IssuingDate.Format("02 Jan 2006"), "", 1, "R", false, 0, "")

	if data.Paid {
		doc.SetFont(fontFamily, "B", 10)
		doc.SetTextColor(0, 128, 0)
		doc.CellFormat(0, 6, "PAID", "", 1, "R", false, 0, "")
		doc.SetTextColor(0, 0, 0)
	}
	doc.Ln(2)
	x, y := doc.GetXY()
	pageWidth, _ := doc.GetPageSize()
	doc.Line(x, y, pageWidth-pageMargin, y)
	doc.Ln(3)
}

func writeDetails(doc *gofpdf.Fpdf, fields []pdf.DetailField) {
	if len(fields) == 0 {
		return
	}
	const perRow = 2
	pageWidth, _ := doc.GetPageSize()
	cell := (pageWidth - 2*pageMargin) / perRow

	doc.SetFont(fontFamily, "", 9)
	for i, f := range fields {
		value := f.Value
		if strings.TrimSpace(value) == "" {
			value = "-"
		}
		ln := 0
		if (i+1)%perRow == 0 || i == len(fields)-1 {
			ln = 1
		}
		doc.CellFormat(cell, lineHeight, fmt.Sprintf("%s: %s", f.Label, value), "1", ln, "L", false, 0, "")
	}
	doc.Ln(4)
}

func writeSection(doc *gofpdf.Fpdf, title string, headers []string, lines []pdf.LineItemData, totals pdf.SectionTotals) {
	doc.SetFont(fontFamily, "B", 11)
	doc.SetFillColor(40, 40, 40)
	doc.SetTextColor(255, 255, 255)
	doc.CellFormat(0, 7, title, "", 1, "L", true, 0, "")
	doc.SetTextColor(0, 0, 0)

	doc.SetFont(fontFamily, "B", 9)
	doc.SetFillColor(230, 230, 230)
	for i, h := range headers {
		doc.CellFormat(tableColumns[i], lineHeight, h, "1", 0, "C", true, 0, "")
	}
	doc.Ln(-1)

	doc.SetFont(fontFamily, "", 9)
	if len(lines) == 0 {
		doc.CellFormat(sum(tableColumns), lineHeight, "No entries", "1", 1, "C", false, 0, "")
	}
	for i, l := range lines {
		doc.CellFormat(tableColumns[0], lineHeight, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		doc.CellFormat(tableColumns[1], lineHeight, truncate(doc, l.Name, tableColumns[1]), "1", 0, "L", false, 0, "")
		doc.CellFormat(tableColumns[2], lineHeight, fmt.Sprintf("%d", l.Quantity), "1", 0, "C", false, 0, "")
		doc.CellFormat(tableColumns[3], lineHeight, FormatAmount(l.Actual), "1", 0, "R", false, 0, "")
		doc.CellFormat(tableColumns[4], lineHeight, l.Percent.String()+"%", "1", 0, "R", false, 0, "")
		doc.CellFormat(tableColumns[5], lineHeight, FormatAmount(l.AdjustmentAmount), "1", 0, "R", false, 0, "")
		doc.CellFormat(tableColumns[6], lineHeight, FormatAmount(l.Final), "1", 1, "R", false, 0, "")
	}

	doc.SetFont(fontFamily, "B", 9)
	lead := tableColumns[0] + tableColumns[1] + tableColumns[2]
	doc.CellFormat(lead, lineHeight, "Total", "1", 0, "R", false, 0, "")
	doc.CellFormat(tableColumns[3], lineHeight, FormatAmount(totals.Subtotal), "1", 0, "R", false, 0, "")
	doc.CellFormat(tableColumns[4], lineHeight, totals.EffectivePercent.String()+"%", "1", 0, "R", false, 0, "")
	doc.CellFormat(tableColumns[5], lineHeight, FormatAmount(totals.AdjustmentTotal), "1", 0, "R", false, 0, "")
	doc.CellFormat(tableColumns[6], lineHeight, FormatAmount(totals.Total), "1", 1, "R", false, 0, "")
	doc.Ln(4)
}

func writeSummary(doc *gofpdf.Fpdf, data *pdf.InvoiceData, currency string) {
	const labelWidth, valueWidth = 50.0, 40.0
	pageWidth, _ := doc.GetPageSize()
	left := pageWidth - pageMargin - labelWidth - valueWidth

	row := func(label string, amount decimal.Decimal, style string) {
		doc.SetX(left)
		doc.SetFont(fontFamily, style, 10)
		doc.CellFormat(labelWidth, 7, label, "1", 0, "L", false, 0, "")
		doc.CellFormat(valueWidth, 7, currency+" "+FormatAmount(amount), "1", 1, "R", false, 0, "")
	}

	doc.SetFont(fontFamily, "B", 11)
	doc.SetX(left)
	doc.CellFormat(labelWidth+valueWidth, 7, "Summary", "", 1, "L", false, 0, "")
	row("Parts", data.PartsTotals.Total, "")
	row("Labour", data.LabourTotals.Total, "")
	row("Net Amount", data.GrandTotal, "B")
	doc.Ln(3)

	doc.SetFont(fontFamily, "I", 9)
	doc.MultiCell(0, 5, "In Words: "+data.AmountInWords, "", "L", false)

	if strings.TrimSpace(data.Remarks) != "" {
		doc.Ln(2)
		doc.SetFont(fontFamily, "", 9)
		doc.MultiCell(0, 5, "Remarks: "+data.Remarks, "", "L", false)
	}
}

func truncate(doc *gofpdf.Fpdf, text string, width float64) string {
	limit := width - 2
	if doc.GetStringWidth(text) <= limit {
		return text
	}
	runes := []rune(text)
	for len(runes) > 0 && doc.GetStringWidth(string(runes)+"...") > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "..."
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// FormatAmount renders an amount with two decimals and thousands separators, 12,350.00
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
