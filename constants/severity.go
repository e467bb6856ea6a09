package constants

import "strings"

// Severity is the canonical discrepancy classification attached to an
// analysis report.
type Severity string

const (
	SeverityNone     Severity = "NONE"
	SeverityMinor    Severity = "MINOR"
	SeverityModerate Severity = "MODERATE"
	SeverityCritical Severity = "CRITICAL"
)

var allSeverities = []Severity{
	SeverityNone,
	SeverityMinor,
	SeverityModerate,
	SeverityCritical,
}

func SeverityStrings() []string {
	result := make([]string, len(allSeverities))
	for i, s := range allSeverities {
		result[i] = string(s)
	}
	return result
}

var severitySynonyms = map[string]Severity{
	"OK":         SeverityNone,
	"CLEAN":      SeverityNone,
	"LOW":        SeverityMinor,
	"NEGLIGIBLE": SeverityMinor,
	"MEDIUM":     SeverityModerate,
	"WARNING":    SeverityModerate,
	"HIGH":       SeverityCritical,
	"SEVERE":     SeverityCritical,
	"MAJOR":      SeverityCritical,
}

// CanonicalizeSeverity maps free-form reasoning-service labels onto the
// enum. An exact match wins; otherwise multi-word labels like "minor issue"
// or "critical discrepancy" resolve to the first word carrying a recognized
// severity. Unrecognized labels default to MODERATE so an unlabeled
// discrepancy is never silently downgraded.
func CanonicalizeSeverity(input string) (Severity, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(input))
	if normalized == "" {
		return SeverityModerate, false
	}

	if s, ok := lookupSeverity(normalized); ok {
		return s, true
	}
	for _, word := range strings.FieldsFunc(normalized, isNotLetter) {
		if s, ok := lookupSeverity(word); ok {
			return s, true
		}
	}
	return SeverityModerate, false
}

func lookupSeverity(label string) (Severity, bool) {
	if s, ok := severitySynonyms[label]; ok {
		return s, true
	}
	for _, s := range allSeverities {
		if label == string(s) {
			return s, true
		}
	}
	return "", false
}

func isNotLetter(r rune) bool {
	return r < 'A' || r > 'Z'
}

// ClassifySeverity buckets an absolute NAV discrepancy percentage. Used by
// the local fallback when the reasoning service is unavailable.
func ClassifySeverity(discrepancyPct float64) Severity {
	switch {
	case discrepancyPct <= 0.01:
		return SeverityNone
	case discrepancyPct <= 0.5:
		return SeverityMinor
	case discrepancyPct <= 5:
		return SeverityModerate
	default:
		return SeverityCritical
	}
}
