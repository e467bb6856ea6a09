package entity

import (
	"time"

	"github.com/google/uuid"
)

// NAVAnalysis is the structured outcome of the reasoning steps run against
// one record: reconstruction, comparison, explanation. Comparison fields
// come back from the reasoning service as JSON and are defensively parsed;
// when the service is unavailable or returns unparseable text, the fields
// are filled from a clearly-labeled local fallback instead.
type NAVAnalysis struct {
	Reconstruction string  `json:"reconstruction"`
	Assessment     string  `json:"assessment"`
	Severity       string  `json:"severity"`
	DiscrepancyPct float64 `json:"discrepancy_pct"`
	Explanation    string  `json:"explanation"`
	// Notes carries the whole response verbatim when it was not valid
	// structured data.
	Notes string `json:"notes,omitempty"`
	// Confidence is the reasoning service's self-reported confidence
	// (0..1), or the fixed low fallback value.
	Confidence float32 `json:"confidence"`
	// Fallback marks analyses produced locally without the reasoning
	// service.
	Fallback bool `json:"fallback"`
}

// AnalysisReport is the per-document envelope the pipeline produces and the
// store persists: extracted record, validation outcome, and analysis.
type AnalysisReport struct {
	ID          uuid.UUID        `json:"id"`
	ContentHash string           `json:"content_hash"`
	SourceName  string           `json:"source_name,omitempty"`
	Record      FinancialRecord  `json:"record"`
	Validation  ValidationResult `json:"validation"`
	Analysis    NAVAnalysis      `json:"analysis"`
	CreatedAt   time.Time        `json:"created_at"`
}
