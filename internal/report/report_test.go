package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/kanakk/internal/ledger"
	"github.com/mmynk/kanakk/internal/models"
)

func testLedger(t *testing.T, rng ledger.Range) *ledger.Ledger {
	t.Helper()
	company := &models.Company{ID: "c1", Name: "Acme Trading Co", OpeningBalance: decimal.RequireFromString("100")}
	incomes := []*models.Entry{
		{Title: "Invoice 1", Amount: decimal.RequireFromString("50"), Date: models.NewDate(2024, 1, 5), CompanyID: "c1"},
		{Title: "Invoice 2", Amount: decimal.RequireFromString("20"), Date: models.NewDate(2024, 2, 1), CompanyID: "c1"},
	}
	expenses := []*models.Entry{
		{Title: "Rent", Amount: decimal.RequireFromString("30"), Date: models.NewDate(2024, 1, 10), CompanyID: "c1"},
	}
	l, err := ledger.Compute(company, incomes, expenses, rng)
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}
	return l
}

func TestNewView(t *testing.T) {
	v := NewView(testLedger(t, ledger.Range{}))

	if v.OpeningBalance != "100.00" || v.TotalIncome != "70.00" || v.TotalExpense != "30.00" || v.Balance != "140.00" {
		t.Errorf("totals = %s/%s/%s/%s", v.OpeningBalance, v.TotalIncome, v.TotalExpense, v.Balance)
	}
	if v.EmptyIncome != NoIncomeMessage || v.EmptyExpense != NoExpenseMessage {
		t.Errorf("empty-state text = %q/%q", v.EmptyIncome, v.EmptyExpense)
	}
	if v.Period() != "All to All" {
		t.Errorf("Period() = %q, want All to All", v.Period())
	}
	if len(v.Incomes) != 2 || v.Incomes[0].Date != "2024-02-01" || v.Incomes[0].Amount != "20.00" {
		t.Errorf("Incomes = %+v", v.Incomes)
	}

	filtered := NewView(testLedger(t, ledger.Range{Start: models.NewDate(2024, 2, 1)}))
	if filtered.Start != "2024-02-01" || filtered.End != "" {
		t.Errorf("filter values = %q/%q", filtered.Start, filtered.End)
	}
	if filtered.Period() != "2024-02-01 to All" {
		t.Errorf("Period() = %q", filtered.Period())
	}
	if len(filtered.Expenses) != 0 {
		t.Errorf("Expected no expenses, got %d", len(filtered.Expenses))
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name, ext, want string
	}{
		{"Acme Trading Co", "pdf", "report_Acme_Trading_Co.pdf"},
		{"  Solo ", "xlsx", "report_Solo.xlsx"},
		{`Evil"/\Name`, "pdf", "report_EvilName.pdf"},
	}
	for _, tt := range tests {
		if got := Filename(tt.name, tt.ext); got != tt.want {
			t.Errorf("Filename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func renderPDF(t *testing.T, l *ledger.Ledger) string {
	t.Helper()
	pdf := newPDF(NewView(l), time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC))
	pdf.SetCompression(false)
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	return buf.String()
}

func TestPDF(t *testing.T) {
	out := renderPDF(t, testLedger(t, ledger.Range{}))

	if !strings.HasPrefix(out, "%PDF-") {
		t.Fatal("output is not a PDF")
	}
	for _, want := range []string{"Acme Trading Co", "Period: All to All", "140.00", "70.00", "Invoice 2", "Rent", "Generated 2024-03-01 09:30"} {
		if !strings.Contains(out, want) {
			t.Errorf("PDF does not contain %q", want)
		}
	}
	if strings.Contains(out, NoIncomeMessage) {
		t.Error("PDF shows the empty income message despite rows")
	}
}

func TestPDFEmptyState(t *testing.T) {
	out := renderPDF(t, testLedger(t, ledger.Range{Start: models.NewDate(2030, 1, 1)}))

	for _, want := range []string{NoIncomeMessage, NoExpenseMessage, "Period: 2030-01-01 to All", "100.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("PDF does not contain %q", want)
		}
	}
}

func TestPDFPaginates(t *testing.T) {
	company := &models.Company{ID: "c1", Name: "Busy"}
	var incomes []*models.Entry
	for i := 0; i < 120; i++ {
		incomes = append(incomes, &models.Entry{
			Title:     strings.Repeat("Very long income title ", 10),
			Amount:    decimal.NewFromInt(int64(i)),
			Date:      models.NewDate(2024, 1, 1).AddDays(i),
			CompanyID: "c1",
		})
	}
	l, err := ledger.Compute(company, incomes, nil, ledger.Range{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	pdf := newPDF(NewView(l), time.Now())
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if pdf.PageCount() < 3 {
		t.Errorf("PageCount() = %d, expected the table to span several pages", pdf.PageCount())
	}
}

func TestFitKeepsAccentedTitles(t *testing.T) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 10)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	long := "Café " + strings.Repeat("x", 200)
	got := fit(pdf, tr, long, 50)

	if strings.Contains(got, "\uFFFD") {
		t.Fatalf("fit() = %q contains a replacement character", got)
	}
	if !strings.HasPrefix(got, "Caf\xe9 ") || !strings.HasSuffix(got, "...") {
		t.Errorf("fit() = %q, want the cp1252 prefix and an ellipsis", got)
	}
	if w := pdf.GetStringWidth(got); w > 50 {
		t.Errorf("width = %.1f, want <= 50", w)
	}

	if got := fit(pdf, tr, "Crème brûlée", 50); got != tr("Crème brûlée") {
		t.Errorf("short title changed: %q", got)
	}
}

func TestPDFLongAccentedTitle(t *testing.T) {
	company := &models.Company{ID: "c1", Name: "Café Zürich"}
	incomes := []*models.Entry{{
		Title:     "Café " + strings.Repeat("très long ", 40),
		Amount:    decimal.NewFromInt(5),
		Date:      models.NewDate(2024, 1, 1),
		CompanyID: "c1",
	}}
	l, err := ledger.Compute(company, incomes, nil, ledger.Range{})
	if err != nil {
		t.Fatalf("Compute failed: %v", err)
	}

	out := renderPDF(t, l)
	if strings.Contains(out, "\xef\xbf\xbd") {
		t.Error("PDF contains a UTF-8 replacement character")
	}
	if !strings.Contains(out, "Caf\xe9 tr\xe8s long") {
		t.Error("PDF does not contain the cp1252-encoded title prefix")
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, testLedger(t, ledger.Range{}), time.Now()); err != nil {
		t.Fatalf("WritePDF failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Error("WritePDF did not produce a PDF")
	}
}

func TestXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, testLedger(t, ledger.Range{})); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	raw := excelize.Options{RawCellValue: true}
	checks := []struct {
		sheet, cell, want string
	}{
		{SummarySheet, "A1", "Acme Trading Co"},
		{SummarySheet, "B7", "140"},
		{IncomeSheet, "A2", "2024-02-01"},
		{IncomeSheet, "C3", "50"},
		{ExpenseSheet, "B2", "Rent"},
	}
	for _, c := range checks {
		got, err := f.GetCellValue(c.sheet, c.cell, raw)
		if err != nil {
			t.Fatalf("GetCellValue(%s!%s) failed: %v", c.sheet, c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s!%s = %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}
}

func TestXLSXLayout(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, testLedger(t, ledger.Range{})); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	widths := []struct {
		sheet, col string
		want       float64
	}{
		{SummarySheet, "B", 28},
		{IncomeSheet, "B", 40},
		{ExpenseSheet, "C", 14},
	}
	for _, w := range widths {
		got, err := f.GetColWidth(w.sheet, w.col)
		if err != nil || got != w.want {
			t.Errorf("%s column %s width = %v (%v), want %v", w.sheet, w.col, got, err, w.want)
		}
	}

	for _, cell := range []string{"C2", "C3"} {
		style, err := f.GetCellStyle(IncomeSheet, cell)
		if err != nil || style == 0 {
			t.Errorf("%s!%s has no number style (%d, %v)", IncomeSheet, cell, style, err)
		}
	}
}

func TestXLSXEmptyState(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, testLedger(t, ledger.Range{Start: models.NewDate(2030, 1, 1)})); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	for sheet, want := range map[string]string{IncomeSheet: NoIncomeMessage, ExpenseSheet: NoExpenseMessage} {
		got, _ := f.GetCellValue(sheet, "A2")
		if got != want {
			t.Errorf("%s!A2 = %q, want %q", sheet, got, want)
		}
	}
}

// HTML and document renderings come from the same view, so the same
// filtered ledger yields identical totals and rows in both.
func TestRenderingsAgree(t *testing.T) {
	l := testLedger(t, ledger.Range{End: models.NewDate(2024, 1, 31)})
	screen := NewView(l)
	out := renderPDF(t, l)

	for _, figure := range []string{screen.TotalIncome, screen.TotalExpense, screen.Balance} {
		if !strings.Contains(out, figure) {
			t.Errorf("PDF is missing figure %s shown on screen", figure)
		}
	}
	for _, r := range append(screen.Incomes, screen.Expenses...) {
		if !strings.Contains(out, r.Title) {
			t.Errorf("PDF is missing row %q shown on screen", r.Title)
		}
	}
}
