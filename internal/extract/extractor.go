package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/navlens/nav-audit/internal/entity"
)

// Ordered pattern lists: explicit labels outrank heuristic capitalization
// scans, so order matters here. Patterns with a capture group report the
// group, the rest report the whole match.
var (
	fundNamePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)fund\s+name\s*:\s*([^\r\n]+)`),
		regexp.MustCompile(`((?:[A-Z][A-Za-z]+\s+)+Fund)\b`),
		regexp.MustCompile(`((?:[A-Z][A-Za-z]+\s+)+Trust)\b`),
	}

	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b\d{1,2}/\d{1,2}/\d{4}\b`),
		regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`),
		regexp.MustCompile(`(?i)\b(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},\s*\d{4}\b`),
	}

	// A monetary token is an optional currency symbol followed by a number
	// with thousands separators and/or a decimal fraction. A bare unmarked
	// integer (page number, year, digits inside a date) is not treated as
	// money; incidental marked numbers can still corrupt the magnitude
	// assignment below.
	moneyPattern = regexp.MustCompile(`[$€£]\s?\d+(?:,\d{3})*(?:\.\d+)?|\d+(?:,\d{3})+(?:\.\d+)?|\d+\.\d+`)
)

var (
	assetKeywords     = []string{"assets", "investments", "holdings"}
	liabilityKeywords = []string{"liabilities", "expenses", "fees"}
	stopKeywords      = []string{"total", "summary"}
)

// ExtractRecord converts raw document text into a best-effort
// FinancialRecord. It never fails: absence of a match leaves the
// corresponding field at its zero/empty sentinel, and identical input
// always yields an identical record.
func ExtractRecord(rawText string) *entity.FinancialRecord {
	rec := &entity.FinancialRecord{RawText: rawText}

	rec.FundName = firstMatch(fundNamePatterns, rawText)
	rec.Date = firstMatch(datePatterns, rawText)

	assignFigures(rec, harvestMoney(rawText))
	rec.AssetBreakdown, rec.LiabilityBreakdown = extractBreakdowns(rawText)

	return rec
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, p := range patterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if len(m) > 1 {
			return strings.TrimSpace(m[1])
		}
		return strings.TrimSpace(m[0])
	}
	return ""
}

// harvestMoney scans the whole text for monetary tokens, parses each and
// keeps only positive values.
func harvestMoney(text string) []float64 {
	var values []float64
	for _, tok := range moneyPattern.FindAllString(text, -1) {
		v, ok := parseAmount(tok)
		if !ok || v <= 0 {
			continue
		}
		values = append(values, v)
	}
	return values
}

// assignFigures applies the sort-and-assign-by-magnitude heuristic: it
// assumes the document lists total assets as the largest figure,
// liabilities second, units outstanding third and the stated official NAV
// fourth. It is only valid for that canonical ordering and count; with
// fewer than 4 positive values every figure stays at the zero sentinel.
func assignFigures(rec *entity.FinancialRecord, values []float64) {
	if len(values) < 4 {
		return
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	rec.TotalAssets = values[0]
	rec.TotalLiabilities = values[1]
	rec.NetAssets = rec.TotalAssets - rec.TotalLiabilities
	rec.UnitsOutstanding = values[2]
	rec.NAVPerUnit = rec.NetAssets / rec.UnitsOutstanding
	rec.OfficialNAV = values[3]
}

type section int

const (
	sectionNone section = iota
	sectionAssets
	sectionLiabilities
)

// extractBreakdowns walks the text line by line. A line containing a
// section keyword switches the scan into that section and is itself
// consumed; while in a section, each line carrying a monetary token emits a
// breakdown entry. The first line containing "total" or "summary" stops the
// whole scan, so a stray occurrence can truncate legitimate trailing
// entries (kept as-is, see DESIGN.md).
func extractBreakdowns(text string) (assets, liabilities []entity.BreakdownEntry) {
	current := sectionNone

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)

		if containsAny(lower, stopKeywords) {
			break
		}
		if containsAny(lower, assetKeywords) {
			current = sectionAssets
			continue
		}
		if containsAny(lower, liabilityKeywords) {
			current = sectionLiabilities
			continue
		}
		if current == sectionNone {
			continue
		}

		tok := moneyPattern.FindString(line)
		if tok == "" {
			continue
		}
		amount, ok := parseAmount(tok)
		if !ok {
			continue
		}
		desc := strings.TrimSpace(strings.Replace(line, tok, "", 1))
		if desc == "" {
			continue
		}

		entry := entity.BreakdownEntry{Description: desc, Amount: amount}
		switch current {
		case sectionAssets:
			assets = append(assets, entry)
		case sectionLiabilities:
			liabilities = append(liabilities, entry)
		}
	}
	return assets, liabilities
}

func parseAmount(token string) (float64, bool) {
	s := strings.TrimSpace(token)
	s = strings.TrimLeft(s, "$€£")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsAny(line string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(line, kw) {
			return true
		}
	}
	return false
}
