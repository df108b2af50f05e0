// Package pdf renders finalized quotes into a fixed single-document layout:
// title, info block, line item table, totals block and optional notes.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
)

// Document is the read-only snapshot a PDF is rendered from.
type Document struct {
	Issuer       string
	QuoteNumber  string
	Date         time.Time
	Status       string
	Currency     string
	ClientName   string
	ClientEmail  string
	Lines        []Line
	Subtotal     decimal.Decimal
	Discount     decimal.Decimal
	TaxRate      decimal.Decimal
	TaxAmount    decimal.Decimal
	Total        decimal.Decimal
	Notes        string
	PaymentTerms string
}

type Line struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
}

// Renderer turns documents into PDF bytes.
type Renderer struct {
	company string
}

func NewRenderer(company string) *Renderer {
	return &Renderer{company: strings.TrimSpace(company)}
}

const (
	pageFont    = "Helvetica"
	colDesc     = 95.0
	colQty      = 20.0
	colPrice    = 35.0
	colTotal    = 40.0
	rowHeight   = 7.0
	labelWidth  = 150.0
	amountWidth = 40.0
)

func (r *Renderer) Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	title := fmt.Sprintf("Quote #%s", doc.QuoteNumber)
	pdf.SetTitle(title, true)
	if r.company != "" {
		pdf.SetCreator(r.company, true)
	}
	pdf.AddPage()

	issuer := doc.Issuer
	if issuer == "" {
		issuer = r.company
	}
	if issuer != "" {
		pdf.SetFont(pageFont, "", 10)
		pdf.CellFormat(0, 6, tr(issuer), "", 1, "R", false, 0, "")
	}

	pdf.SetFont(pageFont, "B", 18)
	pdf.CellFormat(0, 12, tr(title), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont(pageFont, "", 10)
	info := [][2]string{
		{"Date", doc.Date.Format("2006-01-02")},
		{"Status", doc.Status},
		{"Currency", doc.Currency},
	}
	if doc.ClientName != "" {
		info = append(info, [2]string{"Client", doc.ClientName})
	}
	if doc.ClientEmail != "" {
		info = append(info, [2]string{"Email", doc.ClientEmail})
	}
	for _, row := range info {
		pdf.SetFont(pageFont, "B", 10)
		pdf.CellFormat(30, 6, tr(row[0]+":"), "", 0, "L", false, 0, "")
		pdf.SetFont(pageFont, "", 10)
		pdf.CellFormat(0, 6, tr(row[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont(pageFont, "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colDesc, rowHeight, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colQty, rowHeight, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colPrice, rowHeight, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(colTotal, rowHeight, "Total", "1", 1, "R", true, 0, "")

	pdf.SetFont(pageFont, "", 10)
	for _, line := range doc.Lines {
		pdf.CellFormat(colDesc, rowHeight, tr(truncate(line.Description, 55)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colQty, rowHeight, line.Quantity.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colPrice, rowHeight, tr(FormatAmount(line.UnitPrice, doc.Currency)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colTotal, rowHeight, tr(FormatAmount(line.Total, doc.Currency)), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	totals := [][2]string{{"Subtotal", FormatAmount(doc.Subtotal, doc.Currency)}}
	if doc.Discount.IsPositive() {
		totals = append(totals, [2]string{"Discount", "-" + FormatAmount(doc.Discount, doc.Currency)})
	}
	totals = append(totals,
		[2]string{fmt.Sprintf("Tax (%s%%)", doc.TaxRate.StringFixed(2)), FormatAmount(doc.TaxAmount, doc.Currency)},
		[2]string{"Total", FormatAmount(doc.Total, doc.Currency)},
	)
	for i, row := range totals {
		style := ""
		if i == len(totals)-1 {
			style = "B"
		}
		pdf.SetFont(pageFont, style, 10)
		pdf.CellFormat(labelWidth, rowHeight, tr(row[0]), "", 0, "R", false, 0, "")
		pdf.CellFormat(amountWidth, rowHeight, tr(row[1]), "", 1, "R", false, 0, "")
	}

	if notes := strings.TrimSpace(doc.Notes); notes != "" {
		pdf.Ln(6)
		pdf.SetFont(pageFont, "B", 10)
		pdf.CellFormat(0, 6, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont(pageFont, "", 10)
		pdf.MultiCell(0, 5, tr(notes), "", "L", false)
	}
	if terms := strings.TrimSpace(doc.PaymentTerms); terms != "" {
		pdf.Ln(4)
		pdf.SetFont(pageFont, "B", 10)
		pdf.CellFormat(0, 6, "Payment terms", "", 1, "L", false, 0, "")
		pdf.SetFont(pageFont, "", 10)
		pdf.MultiCell(0, 5, tr(terms), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering quote %s: %w", doc.QuoteNumber, err)
	}
	return buf.Bytes(), nil
}

// FormatAmount renders amount with the currency's symbol and grouping.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2) + " " + currency
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
