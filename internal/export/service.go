package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/navlens/nav-audit/internal/repository"
)

// Service is a tiny façade over the report repository that produces XLSX
// bytes for exports.
type Service struct {
	reports repository.ReportRepository
	logger  *slog.Logger
}

func NewService(reports repository.ReportRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reports: reports, logger: logger}
}

// ExportReportsXLSX returns an XLSX workbook (as bytes) with one row per
// stored analysis report, newest first.
func (s *Service) ExportReportsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()

	reports, err := s.reports.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "NAV Reports"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Created",
		"Fund",
		"Document Date",
		"Total Assets",
		"Total Liabilities",
		"Net Assets",
		"Units Outstanding",
		"NAV/Unit (derived)",
		"Official NAV",
		"Discrepancy %",
		"Severity",
		"Valid",
		"Confidence",
		"Assessment",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range reports {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.Format("2006-01-02 15:04"))
		write(2, r.Record.FundName)
		write(3, r.Record.Date)
		write(4, r.Record.TotalAssets)
		write(5, r.Record.TotalLiabilities)
		write(6, r.Record.NetAssets)
		write(7, r.Record.UnitsOutstanding)
		write(8, r.Record.NAVPerUnit)
		write(9, r.Record.OfficialNAV)
		write(10, r.Analysis.DiscrepancyPct)
		write(11, r.Analysis.Severity)
		write(12, r.Validation.IsValid)
		write(13, r.Validation.Confidence)
		write(14, truncate(r.Analysis.Assessment, 140))

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 17)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "I", 16)
	_ = f.SetColWidth(sheet, "J", "J", 13)
	_ = f.SetColWidth(sheet, "K", "M", 10)
	_ = f.SetColWidth(sheet, "N", "N", 60)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(reports),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := n - 1
	// back up to a rune boundary so the cell stays valid UTF-8
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
