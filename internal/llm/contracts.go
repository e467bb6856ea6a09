package llm

import (
	"context"

	"github.com/navlens/nav-audit/internal/entity"
)

// AnalysisRequest carries everything a reasoning step needs: the extracted
// record, its validation outcome, and a bounded excerpt of the source text.
type AnalysisRequest struct {
	Record     entity.FinancialRecord
	Validation entity.ValidationResult
	SourceName string
}

// ComparisonResult is the normalized shape we want back from the comparison
// step. When the service returns text that is not valid structured data the
// whole response lands in Notes with a fixed low confidence instead.
type ComparisonResult struct {
	Assessment     string  `json:"assessment"`
	Severity       string  `json:"severity"`
	DiscrepancyPct float64 `json:"discrepancy_pct"`
	Confidence     float32 `json:"confidence,omitempty"` // 0..1
	Notes          string  `json:"notes,omitempty"`
}

// Reasoner is the reasoning-service interface the pipeline depends on. The
// three steps are independent prompt templates: reconstruction and
// explanation return free text, comparison returns semi-structured text
// that is defensively parsed.
type Reasoner interface {
	Reconstruct(ctx context.Context, req AnalysisRequest) (string, error)
	Compare(ctx context.Context, req AnalysisRequest) (ComparisonResult, []byte /*rawJSON*/, error)
	Explain(ctx context.Context, req AnalysisRequest) (string, error)
}
