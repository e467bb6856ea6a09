package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/navlens/nav-audit/internal/common"
	"github.com/navlens/nav-audit/internal/entity"
)

// ReportRepository persists analysis reports. Persistence is a collaborator
// concern: the extraction/validation core never touches it.
type ReportRepository interface {
	Save(ctx context.Context, report *entity.AnalysisReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisReport, error)
	GetByContentHash(ctx context.Context, hash string) (*entity.AnalysisReport, error)
	List(ctx context.Context, limit int) ([]*entity.AnalysisReport, error)
}

type reportRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewReportRepository(db *sql.DB, logger *slog.Logger) ReportRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &reportRepository{db: db, logger: logger}
}

func (r *reportRepository) Save(ctx context.Context, report *entity.AnalysisReport) error {
	blob, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO analysis_reports
		(id, content_hash, source_name, created_at, fund_name, doc_date,
		 total_assets, total_liabilities, net_assets, units_outstanding,
		 nav_per_unit, official_nav, is_valid, confidence, severity,
		 discrepancy_pct, report_json)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		report.ID.String(), report.ContentHash, report.SourceName,
		report.CreatedAt.UTC().Unix(),
		report.Record.FundName, report.Record.Date,
		report.Record.TotalAssets, report.Record.TotalLiabilities,
		report.Record.NetAssets, report.Record.UnitsOutstanding,
		report.Record.NAVPerUnit, report.Record.OfficialNAV,
		boolToInt(report.Validation.IsValid), report.Validation.Confidence,
		report.Analysis.Severity, report.Analysis.DiscrepancyPct,
		string(blob),
	)
	if err != nil {
		r.logger.Error("store.save_failed", "report_id", report.ID, "error", err)
		return common.WrapError(common.ErrStore, err, "insert report")
	}
	r.logger.Info("store.saved", "report_id", report.ID, "fund", report.Record.FundName)
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.AnalysisReport, error) {
	return r.getOne(ctx, `SELECT report_json FROM analysis_reports WHERE id = ?`, id.String())
}

func (r *reportRepository) GetByContentHash(ctx context.Context, hash string) (*entity.AnalysisReport, error) {
	return r.getOne(ctx, `SELECT report_json FROM analysis_reports
		WHERE content_hash = ? ORDER BY created_at DESC LIMIT 1`, hash)
}

func (r *reportRepository) getOne(ctx context.Context, query string, arg any) (*entity.AnalysisReport, error) {
	var blob string
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.WrapError(common.ErrStore, err, "query report")
	}
	return decodeReport(blob)
}

func (r *reportRepository) List(ctx context.Context, limit int) ([]*entity.AnalysisReport, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT report_json FROM analysis_reports ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, common.WrapError(common.ErrStore, err, "list reports")
	}
	defer rows.Close()

	var out []*entity.AnalysisReport
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, common.WrapError(common.ErrStore, err, "scan report")
		}
		rep, err := decodeReport(blob)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func decodeReport(blob string) (*entity.AnalysisReport, error) {
	var rep entity.AnalysisReport
	if err := json.Unmarshal([]byte(blob), &rep); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &rep, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
