package validate

import (
	"fmt"
	"math"

	"github.com/navlens/nav-audit/internal/entity"
)

const (
	// DiscrepancyTolerancePct is the absolute percentage difference between
	// the recomputed NAV and the officially stated NAV below which no
	// warning is raised.
	DiscrepancyTolerancePct = 0.01

	errorPenalty   = 20
	warningPenalty = 5
)

// Validate checks a FinancialRecord for completeness and internal numeric
// consistency. It is a pure function: no side effects, no external calls,
// and it never fails — all findings come back as data.
//
// Required-field violations land in Errors; the NAV consistency check is a
// warning, since the officially stated NAV may legitimately differ from the
// recomputed one and that delta is the signal the rest of the system exists
// to surface.
func Validate(rec *entity.FinancialRecord) entity.ValidationResult {
	res := entity.ValidationResult{
		Errors:   []string{},
		Warnings: []string{},
	}

	if rec.FundName == "" {
		res.Errors = append(res.Errors, "fund name is missing")
	}
	if rec.Date == "" {
		res.Errors = append(res.Errors, "date is missing")
	}
	if rec.TotalAssets <= 0 {
		res.Errors = append(res.Errors, "total assets must be positive")
	}
	if rec.UnitsOutstanding <= 0 {
		res.Errors = append(res.Errors, "units outstanding must be positive")
	}

	if rec.UnitsOutstanding > 0 && rec.OfficialNAV > 0 {
		calculatedNAV := rec.NetAssets / rec.UnitsOutstanding
		pct := math.Abs(calculatedNAV-rec.OfficialNAV) / rec.OfficialNAV * 100
		if pct > DiscrepancyTolerancePct {
			res.Warnings = append(res.Warnings, fmt.Sprintf(
				"calculated NAV %.4f differs from official NAV %.4f by %.4f%%",
				calculatedNAV, rec.OfficialNAV, pct))
		}
	}

	// Linear penalty model: a heuristic confidence proxy, not a calibrated
	// probability.
	confidence := 100 - errorPenalty*len(res.Errors) - warningPenalty*len(res.Warnings)
	if confidence < 0 {
		confidence = 0
	}
	res.Confidence = confidence
	res.IsValid = len(res.Errors) == 0

	return res
}
