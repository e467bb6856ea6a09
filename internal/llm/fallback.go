package llm

import (
	"fmt"
	"math"
	"strings"

	"github.com/navlens/nav-audit/constants"
)

// FallbackLabel prefixes every locally produced response so a reader can
// never mistake it for reasoning-service output.
const FallbackLabel = "[local fallback — reasoning service unavailable]"

// FallbackReconstruction re-derives the NAV arithmetic directly from the
// record, used when the reasoning service is unavailable.
func FallbackReconstruction(req AnalysisRequest) string {
	rec := req.Record
	var b strings.Builder
	b.WriteString(FallbackLabel + "\n")
	fmt.Fprintf(&b, "Net assets = %.2f - %.2f = %.2f\n",
		rec.TotalAssets, rec.TotalLiabilities, rec.NetAssets)
	if rec.UnitsOutstanding > 0 {
		fmt.Fprintf(&b, "NAV per unit = %.2f / %.2f = %.4f\n",
			rec.NetAssets, rec.UnitsOutstanding, rec.NetAssets/rec.UnitsOutstanding)
	} else {
		b.WriteString("NAV per unit not derivable: units outstanding is unknown\n")
	}
	fmt.Fprintf(&b, "Official stated NAV: %.4f", rec.OfficialNAV)
	return b.String()
}

// FallbackComparison classifies the discrepancy locally from the record.
func FallbackComparison(req AnalysisRequest) ComparisonResult {
	rec := req.Record
	pct := 0.0
	if rec.UnitsOutstanding > 0 && rec.OfficialNAV > 0 {
		calculated := rec.NetAssets / rec.UnitsOutstanding
		pct = math.Abs(calculated-rec.OfficialNAV) / rec.OfficialNAV * 100
	}
	severity := constants.ClassifySeverity(pct)

	assessment := fmt.Sprintf("%s recomputed NAV differs from the stated NAV by %.4f%%", FallbackLabel, pct)
	if severity == constants.SeverityNone {
		assessment = FallbackLabel + " recomputed NAV matches the stated NAV within tolerance"
	}

	return ComparisonResult{
		Assessment:     assessment,
		Severity:       string(severity),
		DiscrepancyPct: pct,
		Confidence:     constants.FallbackConfidence,
	}
}

// FallbackExplanation summarizes the validation findings directly.
func FallbackExplanation(req AnalysisRequest) string {
	var b strings.Builder
	b.WriteString(FallbackLabel + "\n")
	if len(req.Validation.Errors) == 0 && len(req.Validation.Warnings) == 0 {
		b.WriteString("No validation findings; the extracted figures are internally consistent.")
		return b.String()
	}
	for _, e := range req.Validation.Errors {
		b.WriteString("error: " + e + "\n")
	}
	for _, w := range req.Validation.Warnings {
		b.WriteString("warning: " + w + "\n")
	}
	fmt.Fprintf(&b, "Extraction confidence: %d/100.", req.Validation.Confidence)
	return b.String()
}
