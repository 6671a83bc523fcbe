package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/mmynk/kanakk/internal/ledger"
)

// Layout in millimetres on A4 portrait with 10mm margins.
const (
	pdfMargin       = 10.0
	pdfBottomMargin = 20.0
	pdfRowHeight    = 7.0
	pdfDateWidth    = 35.0
	pdfTitleWidth   = 115.0
	pdfAmountWidth  = 40.0
	pdfLabelWidth   = 60.0
)

// WritePDF renders the ledger as a paginated A4 document.
func WritePDF(w io.Writer, l *ledger.Ledger, generatedAt time.Time) error {
	return newPDF(NewView(l), generatedAt).Output(w)
}

func newPDF(v *View, generatedAt time.Time) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfBottomMargin)
	pdf.SetCreationDate(generatedAt)
	pdf.SetModificationDate(generatedAt)
	pdf.AliasNbPages("")

	// Core fonts are cp1252; translate from UTF-8.
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(v.CompanyName), false)

	stamp := generatedAt.Format("2006-01-02 15:04")
	pdf.SetFooterFunc(func() {
		half := contentWidth(pdf) / 2
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(110, 110, 110)
		pdf.CellFormat(half, 10, "Generated "+stamp, "", 0, "L", false, 0, "")
		pdf.CellFormat(half, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "R", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	})

	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(v.CompanyName), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, tr("Period: "+v.Period()), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	section(pdf, "Summary")
	summary := [][2]string{
		{"Opening Balance", v.OpeningBalance},
		{"Total Income", v.TotalIncome},
		{"Total Expense", v.TotalExpense},
		{"Balance", v.Balance},
	}
	for i, line := range summary {
		style := ""
		if i == len(summary)-1 {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 10)
		pdf.CellFormat(pdfLabelWidth, pdfRowHeight, line[0], "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfAmountWidth, pdfRowHeight, line[1], "1", 1, "R", false, 0, "")
	}
	pdf.Ln(6)

	section(pdf, "Income")
	entryTable(pdf, tr, v.Incomes, NoIncomeMessage)
	pdf.Ln(6)

	section(pdf, "Expense")
	entryTable(pdf, tr, v.Expenses, NoExpenseMessage)

	return pdf
}

func section(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
}

func entryTable(pdf *fpdf.Fpdf, tr func(string) string, rows []Row, empty string) {
	if len(rows) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.CellFormat(0, pdfRowHeight, empty, "", 1, "L", false, 0, "")
		return
	}

	tableHeader(pdf)
	_, pageHeight := pdf.GetPageSize()
	for _, row := range rows {
		// Break manually so the header repeats on the new page.
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfBottomMargin {
			pdf.AddPage()
			tableHeader(pdf)
		}
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(pdfDateWidth, pdfRowHeight, row.Date, "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfTitleWidth, pdfRowHeight, fit(pdf, tr, row.Title, pdfTitleWidth-2), "1", 0, "L", false, 0, "")
		pdf.CellFormat(pdfAmountWidth, pdfRowHeight, row.Amount, "1", 1, "R", false, 0, "")
	}
}

func tableHeader(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(pdfDateWidth, pdfRowHeight, "Date", "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfTitleWidth, pdfRowHeight, "Title", "1", 0, "L", true, 0, "")
	pdf.CellFormat(pdfAmountWidth, pdfRowHeight, "Amount", "1", 1, "R", true, 0, "")
}

// fit truncates the UTF-8 string s with "..." until its translation is at
// most width wide in the current font, and returns the translated text.
// Truncation happens before translation so multi-byte runes stay intact.
func fit(pdf *fpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}

func contentWidth(pdf *fpdf.Fpdf) float64 {
	pageWidth, _ := pdf.GetPageSize()
	left, _, right, _ := pdf.GetMargins()
	return pageWidth - left - right
}
