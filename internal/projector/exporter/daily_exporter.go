// Package exporter writes spreadsheet reports from the read model on a schedule.
package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/propdesk-cashbook/internal/domain/report"
	"github.com/propdesk-cashbook/internal/domain/shared"
	"github.com/propdesk-cashbook/internal/platform/spreadsheet"
)

// DailyExporter renders one business date into ExportDir/cashbook-YYYY-MM-DD.xlsx
type DailyExporter struct {
	readModel report.ReadModel
	dir       string
	loc       *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

func NewDailyExporter(readModel report.ReadModel, dir string, loc *time.Location, logger *slog.Logger) *DailyExporter {
	if loc == nil {
		loc = time.UTC
	}
	return &DailyExporter{
		readModel: readModel,
		dir:       dir,
		loc:       loc,
		now:       time.Now,
		logger:    logger,
	}
}

// ExportPreviousDay exports the business date before today
func (e *DailyExporter) ExportPreviousDay(ctx context.Context) error {
	date := shared.BusinessDate(e.now(), e.loc).AddDate(0, 0, -1)
	_, err := e.ExportDate(ctx, date)
	return err
}

// ExportDate writes the report of date and returns the file path
func (e *DailyExporter) ExportDate(ctx context.Context, date time.Time) (string, error) {
	date = shared.TruncateDate(date)

	summary, err := e.buildSummary(ctx, date)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory %s: %w", e.dir, err)
	}

	path := filepath.Join(e.dir, FileName(date))
	if err := writeAtomically(path, summary); err != nil {
		e.logger.Error("Failed to write daily report", "date", shared.FormatDate(date), "path", path, "error", err)
		return "", err
	}

	e.logger.Info("Daily report exported",
		"date", shared.FormatDate(date),
		"path", path,
		"transactions", summary.Totals.TransactionCount,
	)
	return path, nil
}

// FileName is the export file name of date
func FileName(date time.Time) string {
	return "cashbook-" + shared.FormatDate(date) + ".xlsx"
}

func (e *DailyExporter) buildSummary(ctx context.Context, date time.Time) (*report.RangeSummary, error) {
	txns, err := e.readModel.GetTransactionsByDateRange(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for %s: %w", shared.FormatDate(date), err)
	}

	rows, err := e.readModel.GetDailyBalancesByDateRange(ctx, date, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load daily balances for %s: %w", shared.FormatDate(date), err)
	}

	previous, err := e.readModel.GetLatestDailyBalanceBefore(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous daily balance for %s: %w", shared.FormatDate(date), err)
	}

	return report.NewRangeSummary(date, date, txns, rows, report.OpeningBalance(date, rows, previous)), nil
}

// writeAtomically renders into a temp file next to path and renames it into place
func writeAtomically(path string, summary *report.RangeSummary) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cashbook-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := spreadsheet.WriteRangeSummary(tmp, summary); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to render report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
