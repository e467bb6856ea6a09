package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/navlens/nav-audit/constants"
	"github.com/navlens/nav-audit/internal/common"
	"github.com/navlens/nav-audit/internal/entity"
	"github.com/navlens/nav-audit/internal/extract"
	"github.com/navlens/nav-audit/internal/llm"
	"github.com/navlens/nav-audit/internal/repository"
	"github.com/navlens/nav-audit/internal/validate"
)

// Config holds behavior flags for the analysis pipeline.
type Config struct {
	// ReasoningEnabled is the explicit availability switch for the
	// reasoning service; when false every analysis uses the labeled local
	// fallback. Modeled as configuration, not process-wide state.
	ReasoningEnabled bool
}

// Processor coordinates extract -> validate -> reconstruct/compare/explain
// for one document. Extraction and validation are pure and synchronous; the
// reasoning steps are the only slow, fallible part and each one degrades to
// a labeled local fallback on failure.
type Processor struct {
	Logger   *slog.Logger
	Cfg      Config
	Reasoner llm.Reasoner
	Reports  repository.ReportRepository
	cache    *gocache.Cache
}

func NewProcessor(logger *slog.Logger, cfg Config, reasoner llm.Reasoner, reports repository.ReportRepository, resultCache *gocache.Cache) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if resultCache == nil {
		resultCache = gocache.New(15*time.Minute, 30*time.Minute)
	}
	return &Processor{
		Logger:   logger,
		Cfg:      cfg,
		Reasoner: reasoner,
		Reports:  reports,
		cache:    resultCache,
	}
}

// AnalyzeText runs the full pipeline over one document's text. Identical
// text within the cache window returns the previously computed report.
func (p *Processor) AnalyzeText(ctx context.Context, rawText, sourceName string) (*entity.AnalysisReport, error) {
	hash := contentHash(rawText)

	if cached, ok := p.cache.Get(hash); ok {
		p.Logger.Info("pipeline.cache_hit", "content_hash", hash, "source", sourceName)
		return cached.(*entity.AnalysisReport), nil
	}

	// The cache window is short; the store is the durable dedup layer.
	if p.Reports != nil {
		stored, err := p.Reports.GetByContentHash(ctx, hash)
		switch {
		case err == nil:
			p.Logger.Info("pipeline.store_hit", "content_hash", hash, "source", sourceName)
			p.cache.Set(hash, stored, gocache.DefaultExpiration)
			return stored, nil
		case !errors.Is(err, common.ErrNotFound):
			p.Logger.Warn("pipeline.store_lookup_failed", "content_hash", hash, "error", err)
		}
	}

	start := time.Now()
	rec := extract.ExtractRecord(rawText)
	val := validate.Validate(rec)

	p.Logger.Info("pipeline.extracted",
		"source", sourceName,
		"fund", rec.FundName,
		"total_assets", rec.TotalAssets,
		"official_nav", rec.OfficialNAV,
		"is_valid", val.IsValid,
		"confidence", val.Confidence,
	)

	req := llm.AnalysisRequest{Record: *rec, Validation: val, SourceName: sourceName}
	analysis := p.analyze(ctx, req)

	report := &entity.AnalysisReport{
		ID:          uuid.New(),
		ContentHash: hash,
		SourceName:  sourceName,
		Record:      *rec,
		Validation:  val,
		Analysis:    analysis,
		CreatedAt:   time.Now().UTC(),
	}

	if p.Reports != nil {
		if err := p.Reports.Save(ctx, report); err != nil {
			return nil, err
		}
	}
	p.cache.Set(hash, report, gocache.DefaultExpiration)

	p.Logger.Info("pipeline.ok",
		"report_id", report.ID,
		"severity", analysis.Severity,
		"fallback", analysis.Fallback,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// analyze runs the three reasoning steps, degrading each one independently
// to the local fallback.
func (p *Processor) analyze(ctx context.Context, req llm.AnalysisRequest) entity.NAVAnalysis {
	if !p.Cfg.ReasoningEnabled || p.Reasoner == nil {
		return p.fallbackAnalysis(req)
	}

	var out entity.NAVAnalysis

	recon, err := p.Reasoner.Reconstruct(ctx, req)
	if err != nil {
		p.Logger.Warn("pipeline.reconstruct.fallback", "error", err)
		recon = llm.FallbackReconstruction(req)
		out.Fallback = true
	}
	out.Reconstruction = recon

	cmp, _, err := p.Reasoner.Compare(ctx, req)
	if err != nil {
		p.Logger.Warn("pipeline.compare.fallback", "error", err)
		cmp = llm.FallbackComparison(req)
		out.Fallback = true
	}
	applyComparison(&out, cmp, req)

	expl, err := p.Reasoner.Explain(ctx, req)
	if err != nil {
		p.Logger.Warn("pipeline.explain.fallback", "error", err)
		expl = llm.FallbackExplanation(req)
		out.Fallback = true
	}
	out.Explanation = expl

	return out
}

func (p *Processor) fallbackAnalysis(req llm.AnalysisRequest) entity.NAVAnalysis {
	var out entity.NAVAnalysis
	out.Fallback = true
	out.Reconstruction = llm.FallbackReconstruction(req)
	applyComparison(&out, llm.FallbackComparison(req), req)
	out.Explanation = llm.FallbackExplanation(req)
	return out
}

// applyComparison folds a comparison result into the analysis. A notes-only
// result (the service answered but not with structured data) gets its
// assessment and severity from the local comparison while keeping the
// original text as notes.
func applyComparison(out *entity.NAVAnalysis, cmp llm.ComparisonResult, req llm.AnalysisRequest) {
	if cmp.Assessment == "" {
		local := llm.FallbackComparison(req)
		local.Notes = cmp.Notes
		cmp = local
		out.Fallback = true
	}

	severity, _ := constants.CanonicalizeSeverity(cmp.Severity)
	out.Assessment = cmp.Assessment
	out.Severity = string(severity)
	out.DiscrepancyPct = cmp.DiscrepancyPct
	out.Confidence = cmp.Confidence
	out.Notes = cmp.Notes
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
