// Package spreadsheet renders cash book reports as xlsx workbooks.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/propdesk-cashbook/internal/domain/report"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	TransactionsSheet   = "Transactions"
	DailyBalancesSheet  = "Daily Balances"
	CategoryTotalsSheet = "Category Totals"

	// ContentType is the MIME type of the workbooks written here
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	numFmtThousands = 4 // #,##0.00
)

var (
	transactionHeaders = []string{
		"Voucher", "Date", "Name", "Description", "Type", "Category",
		"Amount", "Payment Method", "Status", "Reference", "Amount In Words",
	}
	balanceHeaders = []string{
		"Date", "Opening", "Cash In", "Cash Out", "Closing", "Bank", "Mobile Banking",
	}
	categoryHeaders = []string{"Type", "Category", "Entries", "Amount"}
)

type styles struct {
	header int
	money  int
}

// WriteRangeSummary renders s as a workbook and writes it to w
func WriteRangeSummary(w io.Writer, s *report.RangeSummary) error {
	f, err := Build(s)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Build lays out s across three sheets: entries, per-day balances and category totals
func Build(s *report.RangeSummary) (*excelize.File, error) {
	f := excelize.NewFile()

	st, err := newStyles(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{DailyBalancesSheet, CategoryTotalsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	steps := []func(*excelize.File, *report.RangeSummary, styles) error{
		writeTransactions,
		writeDailyBalances,
		writeCategoryTotals,
	}
	for _, step := range steps {
		if err := step(f, s, st); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

func newStyles(f *excelize.File) (styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create header style: %w", err)
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: numFmtThousands})
	if err != nil {
		return styles{}, fmt.Errorf("failed to create money style: %w", err)
	}

	return styles{header: header, money: money}, nil
}

func writeTransactions(f *excelize.File, s *report.RangeSummary, st styles) error {
	if err := writeHeader(f, TransactionsSheet, transactionHeaders, st); err != nil {
		return err
	}

	for i, txn := range s.Transactions {
		row := []interface{}{
			txn.VoucherNumber,
			shared.FormatDate(txn.BusinessDate),
			txn.Name,
			txn.Description,
			string(txn.Type),
			txn.Category,
			txn.Amount.InexactFloat64(),
			string(txn.PaymentMethod),
			string(txn.Status),
			txn.ReferenceNumber,
			txn.AmountInWords,
		}
		if err := writeRow(f, TransactionsSheet, i+2, row); err != nil {
			return err
		}
	}

	last := len(s.Transactions) + 1
	totalRow := []interface{}{"Total Income", "", "", "", "", "", s.Totals.Income.InexactFloat64()}
	if err := writeRow(f, TransactionsSheet, last+2, totalRow); err != nil {
		return err
	}
	totalRow = []interface{}{"Total Expense", "", "", "", "", "", s.Totals.Expense.InexactFloat64()}
	if err := writeRow(f, TransactionsSheet, last+3, totalRow); err != nil {
		return err
	}

	if err := styleColumn(f, TransactionsSheet, 7, 2, last+3, st.money); err != nil {
		return err
	}
	return setWidths(f, TransactionsSheet, map[string]float64{"A": 16, "B": 12, "C": 22, "D": 34, "K": 48})
}

func writeDailyBalances(f *excelize.File, s *report.RangeSummary, st styles) error {
	if err := writeHeader(f, DailyBalancesSheet, balanceHeaders, st); err != nil {
		return err
	}

	for i, b := range s.DailyBalances {
		row := []interface{}{shared.FormatDate(b.Date)}
		for _, v := range []decimal.Decimal{
			b.OpeningBalance, b.CashIn, b.CashOut, b.ClosingBalance, b.BankBalance, b.MobileBankingBalance,
		} {
			row = append(row, v.InexactFloat64())
		}
		if err := writeRow(f, DailyBalancesSheet, i+2, row); err != nil {
			return err
		}
	}

	last := len(s.DailyBalances) + 1
	for col := 2; col <= len(balanceHeaders); col++ {
		if err := styleColumn(f, DailyBalancesSheet, col, 2, last, st.money); err != nil {
			return err
		}
	}
	return setWidths(f, DailyBalancesSheet, map[string]float64{"A": 12, "B": 16, "C": 16, "D": 16, "E": 16, "F": 16, "G": 16})
}

func writeCategoryTotals(f *excelize.File, s *report.RangeSummary, st styles) error {
	if err := writeHeader(f, CategoryTotalsSheet, categoryHeaders, st); err != nil {
		return err
	}

	row := 2
	groups := []struct {
		label  string
		totals []report.CategoryTotal
	}{
		{string(shared.TransactionTypeIncome), s.IncomeByCategory},
		{string(shared.TransactionTypeExpense), s.ExpenseByCategory},
	}
	for _, g := range groups {
		for _, ct := range g.totals {
			if err := writeRow(f, CategoryTotalsSheet, row, []interface{}{g.label, ct.Category, ct.Count, ct.Amount.InexactFloat64()}); err != nil {
				return err
			}
			row++
		}
	}

	if err := styleColumn(f, CategoryTotalsSheet, 4, 2, row-1, st.money); err != nil {
		return err
	}
	return setWidths(f, CategoryTotalsSheet, map[string]float64{"A": 10, "B": 24, "C": 10, "D": 16})
}

func writeHeader(f *excelize.File, sheet string, headers []string, st styles) error {
	row := make([]interface{}, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	if err := writeRow(f, sheet, 1, row); err != nil {
		return err
	}

	end, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", end, st.header); err != nil {
		return fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func styleColumn(f *excelize.File, sheet string, col, fromRow, toRow, style int) error {
	if toRow < fromRow {
		return nil
	}
	start, err := excelize.CoordinatesToCellName(col, fromRow)
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(col, toRow)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, start, end, style); err != nil {
		return fmt.Errorf("failed to style %s:%s of %s: %w", start, end, sheet, err)
	}
	return nil
}

func setWidths(f *excelize.File, sheet string, widths map[string]float64) error {
	for col, width := range widths {
		if err := f.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", col, err)
		}
	}
	return nil
}
