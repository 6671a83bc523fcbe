package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mmynk/kanakk/internal/ledger"
	"github.com/mmynk/kanakk/internal/models"
)

// Sheet names of the XLSX export.
const (
	SummarySheet = "Summary"
	IncomeSheet  = "Income"
	ExpenseSheet = "Expense"
)

// WriteXLSX renders the ledger as a workbook with a summary sheet and one
// sheet per entry kind.
func WriteXLSX(w io.Writer, l *ledger.Ledger) error {
	v := NewView(l)
	f := excelize.NewFile()
	defer f.Close()

	money, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	summary := [][]interface{}{
		{v.CompanyName},
		{"Period", v.Period()},
		{},
		{"Opening Balance", l.OpeningBalance.InexactFloat64()},
		{"Total Income", l.TotalIncome.InexactFloat64()},
		{"Total Expense", l.TotalExpense.InexactFloat64()},
		{"Balance", l.Balance.InexactFloat64()},
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary: %w", err)
		}
	}
	if err := f.SetCellStyle(SummarySheet, "A1", "A1", bold); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	if err := f.SetCellStyle(SummarySheet, "B4", "B7", money); err != nil {
		return fmt.Errorf("failed to style summary: %w", err)
	}
	if err := setColWidths(f, SummarySheet, 20, 28); err != nil {
		return err
	}

	if err := entrySheet(f, IncomeSheet, l.Incomes, NoIncomeMessage, money, bold); err != nil {
		return err
	}
	if err := entrySheet(f, ExpenseSheet, l.Expenses, NoExpenseMessage, money, bold); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func entrySheet(f *excelize.File, sheet string, entries []*models.Entry, empty string, money, bold int) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	header := []interface{}{"Date", "Title", "Amount", "Notes"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "D1", bold); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	if err := setColWidths(f, sheet, 12, 40, 14, 40); err != nil {
		return err
	}

	if len(entries) == 0 {
		return f.SetCellValue(sheet, "A2", empty)
	}
	for i, e := range entries {
		row := []interface{}{e.Date.String(), e.Title, e.Amount.InexactFloat64(), e.Notes}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row: %w", sheet, err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(3, len(entries)+1)
	if err := f.SetCellStyle(sheet, "C2", last, money); err != nil {
		return fmt.Errorf("failed to style %s amounts: %w", sheet, err)
	}
	return nil
}

// setColWidths sets the widths of the leading columns of sheet.
func setColWidths(f *excelize.File, sheet string, widths ...float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("failed to size %s column %s: %w", sheet, col, err)
		}
	}
	return nil
}
