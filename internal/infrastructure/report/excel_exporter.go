// Package report renders checklist statistics into spreadsheet documents.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/brokerage-backoffice/internal/application/port"
	"github.com/garyjia/brokerage-backoffice/internal/domain/entity"
)

const (
	// SummarySheet is the name of the statistics sheet
	SummarySheet = "集計"

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// first row of the per-type table
	tableHeaderRow = 4
)

var tableHeader = []interface{}{"種別", "件数", "平均進捗率(%)", "項目数", "完了項目数"}

// ExcelExporter implements port.StatsExporter with an xlsx workbook
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new Excel exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

// ContentType returns the MIME type of the produced document
func (e *ExcelExporter) ContentType() string {
	return xlsxContentType
}

// FileExtension returns the file extension of the produced document
func (e *ExcelExporter) FileExtension() string {
	return ".xlsx"
}

// WriteChecklistStats writes one summary sheet: a title block, one row per
// checklist type and a total row.
func (e *ExcelExporter) WriteChecklistStats(w io.Writer, stats *entity.ChecklistStats) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	if err := e.fillSummary(f, stats); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Checklist stats workbook written",
		zap.Int("total", stats.Total),
		zap.Int("types", len(stats.ByType)))
	return nil
}

func (e *ExcelExporter) fillSummary(f *excelize.File, stats *entity.ChecklistStats) error {
	rows := [][]interface{}{
		{"チェックリスト集計"},
		{"出力日時", stats.GeneratedAt.Format("2006/01/02 15:04"), "総件数", stats.Total},
	}
	for i, row := range rows {
		if err := e.setRow(f, 1, i+1, row); err != nil {
			return err
		}
	}

	if err := e.setRow(f, 1, tableHeaderRow, tableHeader); err != nil {
		return err
	}

	r := tableHeaderRow + 1
	for _, ts := range stats.ByType {
		row := []interface{}{ts.Label, ts.Count, ts.AverageProgress, ts.TotalItems, ts.CompletedItems}
		if err := e.setRow(f, 1, r, row); err != nil {
			return err
		}
		r++
	}

	total := []interface{}{"合計", stats.Total, stats.Overall.AverageProgress, stats.Overall.TotalItems, stats.Overall.CompletedItems}
	if err := e.setRow(f, 1, r, total); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	e.styleRow(f, tableHeaderRow, len(tableHeader), bold)
	e.styleRow(f, r, len(total), bold)
	e.styleRow(f, 1, 1, bold)

	if err := f.SetColWidth(SummarySheet, "A", "A", 16); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}
	if err := f.SetColWidth(SummarySheet, "B", "E", 14); err != nil {
		e.logger.Warn("Failed to set column width", zap.Error(err))
	}
	return nil
}

// setRow writes values starting at (col,row)
func (e *ExcelExporter) setRow(f *excelize.File, col, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("invalid cell %d,%d: %w", col, row, err)
	}
	if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

// styleRow applies a style to the first width cells of a row
func (e *ExcelExporter) styleRow(f *excelize.File, row, width, style int) {
	from, _ := excelize.CoordinatesToCellName(1, row)
	to, _ := excelize.CoordinatesToCellName(width, row)
	if err := f.SetCellStyle(SummarySheet, from, to, style); err != nil {
		e.logger.Warn("Failed to set cell style", zap.Int("row", row), zap.Error(err))
	}
}

var _ port.StatsExporter = (*ExcelExporter)(nil)
