package extract

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const canonicalDoc = `Fund Name: Acme Growth Fund
Valuation Date: 12/31/2024

Total assets: $1,250,000
Total liabilities: $50,000
Units outstanding: 10,000
Official NAV per unit: $120.00
`

func TestExtractCanonicalDocument(t *testing.T) {
	rec := ExtractRecord(canonicalDoc)

	assert.Equal(t, "Acme Growth Fund", rec.FundName)
	assert.Equal(t, "12/31/2024", rec.Date)
	assert.Equal(t, 1250000.0, rec.TotalAssets)
	assert.Equal(t, 50000.0, rec.TotalLiabilities)
	assert.Equal(t, 1200000.0, rec.NetAssets)
	assert.Equal(t, 10000.0, rec.UnitsOutstanding)
	assert.Equal(t, 120.0, rec.NAVPerUnit)
	assert.Equal(t, 120.0, rec.OfficialNAV)
	assert.Equal(t, canonicalDoc, rec.RawText)
}

func TestExtractFewerThanFourValuesLeavesSentinels(t *testing.T) {
	rec := ExtractRecord("assets worth $500,000 minus $20,000 across 1,000.5 units")

	assert.Zero(t, rec.TotalAssets)
	assert.Zero(t, rec.TotalLiabilities)
	assert.Zero(t, rec.NetAssets)
	assert.Zero(t, rec.UnitsOutstanding)
	assert.Zero(t, rec.NAVPerUnit)
	assert.Zero(t, rec.OfficialNAV)
}

func TestExtractIsIdempotent(t *testing.T) {
	first := ExtractRecord(canonicalDoc)
	second := ExtractRecord(canonicalDoc)
	assert.Equal(t, first, second)
}

func TestFundNameLabelOutranksHeuristic(t *testing.T) {
	doc := `Fund Name: Acme Growth Fund
Managed alongside the Zenith Capital Fund since 2019.`
	rec := ExtractRecord(doc)
	assert.Equal(t, "Acme Growth Fund", rec.FundName)
}

func TestFundNameHeuristics(t *testing.T) {
	rec := ExtractRecord("This statement covers the Zenith Capital Fund for the quarter.")
	assert.Equal(t, "Zenith Capital Fund", rec.FundName)

	rec = ExtractRecord("Issued on behalf of the Harbor Income Trust.")
	assert.Equal(t, "Harbor Income Trust", rec.FundName)

	rec = ExtractRecord("no recognizable name here")
	assert.Empty(t, rec.FundName)
}

func TestDateFormats(t *testing.T) {
	cases := map[string]string{
		"valued as of 12/31/2024":  "12/31/2024",
		"valued as of 2024-12-31":  "2024-12-31",
		"as of December 31, 2024":  "December 31, 2024",
		"no date anywhere in here": "",
	}
	for text, want := range cases {
		assert.Equal(t, want, ExtractRecord(text).Date, "text: %s", text)
	}
}

func TestMonetaryHarvestSkipsBareIntegers(t *testing.T) {
	// Page numbers and years carry no currency marker and must not feed
	// the magnitude assignment.
	doc := `Page 3 of 12 — fiscal year 2024
$900,000 then $40,000 then 8,000 then $107.50`
	rec := ExtractRecord(doc)

	assert.Equal(t, 900000.0, rec.TotalAssets)
	assert.Equal(t, 40000.0, rec.TotalLiabilities)
	assert.Equal(t, 8000.0, rec.UnitsOutstanding)
	assert.Equal(t, 107.5, rec.OfficialNAV)
}

func TestBreakdownExtraction(t *testing.T) {
	doc := `Portfolio Holdings
Government Bonds $450,000
Corporate Equities $300,000

Liabilities
Accrued audit payable $2,500.00
Custodian charges $1,000.00
`
	rec := ExtractRecord(doc)

	require.Len(t, rec.AssetBreakdown, 2)
	assert.Equal(t, "Government Bonds", rec.AssetBreakdown[0].Description)
	assert.Equal(t, 450000.0, rec.AssetBreakdown[0].Amount)
	assert.Equal(t, "Corporate Equities", rec.AssetBreakdown[1].Description)

	require.Len(t, rec.LiabilityBreakdown, 2)
	assert.Equal(t, "Accrued audit payable", rec.LiabilityBreakdown[0].Description)
	assert.Equal(t, 2500.0, rec.LiabilityBreakdown[0].Amount)
	assert.Equal(t, "Custodian charges", rec.LiabilityBreakdown[1].Description)
	assert.Equal(t, 1000.0, rec.LiabilityBreakdown[1].Amount)
}

func TestBreakdownStopsAtTotalLine(t *testing.T) {
	doc := `Holdings
Government Bonds $450,000
Total portfolio value follows
Corporate Equities $300,000
`
	rec := ExtractRecord(doc)

	require.Len(t, rec.AssetBreakdown, 1)
	assert.Equal(t, "Government Bonds", rec.AssetBreakdown[0].Description)
}

func TestBreakdownWithoutTerminatorRunsToEnd(t *testing.T) {
	doc := `Holdings
Government Bonds $450,000
Corporate Equities $300,000`
	rec := ExtractRecord(doc)
	assert.Len(t, rec.AssetBreakdown, 2)
}

func TestBreakdownSkipsEmptyDescriptions(t *testing.T) {
	doc := `Holdings
$450,000
Corporate Equities $300,000
`
	rec := ExtractRecord(doc)
	require.Len(t, rec.AssetBreakdown, 1)
	assert.Equal(t, "Corporate Equities", rec.AssetBreakdown[0].Description)
}

func TestExtractNeverPanicsOnAdversarialText(t *testing.T) {
	inputs := []string{
		"",
		"\n\n\n",
		strings.Repeat("$", 5000),
		"$,$,$ 1,2,3 ... )))",
		"fund name:",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { ExtractRecord(in) })
	}
}
