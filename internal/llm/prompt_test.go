package llm

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/navlens/nav-audit/constants"
)

func TestComparisonSchemaAcceptsMinimalDocument(t *testing.T) {
	schema := BuildComparisonJSONSchema()

	assert.NoError(t, ValidateJSONAgainstSchema(schema,
		[]byte(`{"assessment":"figures agree","severity":"NONE"}`)))
	assert.NoError(t, ValidateJSONAgainstSchema(schema,
		[]byte(`{"assessment":"gap found","severity":"MODERATE","discrepancy_pct":2.1,"confidence":0.8,"notes":"accruals"}`)))
}

func TestComparisonSchemaRejectsBadDocuments(t *testing.T) {
	schema := BuildComparisonJSONSchema()

	cases := map[string]string{
		"missing severity":      `{"assessment":"x"}`,
		"unknown severity":      `{"assessment":"x","severity":"CATASTROPHIC"}`,
		"negative discrepancy":  `{"assessment":"x","severity":"NONE","discrepancy_pct":-1}`,
		"confidence over 1":     `{"assessment":"x","severity":"NONE","confidence":1.5}`,
		"unknown key":           `{"assessment":"x","severity":"NONE","reasoning":"..."}`,
		"empty assessment":      `{"assessment":"","severity":"NONE"}`,
		"non-string assessment": `{"assessment":3,"severity":"NONE"}`,
	}
	for name, doc := range cases {
		assert.Error(t, ValidateJSONAgainstSchema(schema, []byte(doc)), name)
	}
}

func TestComparisonPromptCarriesFiguresAndFindings(t *testing.T) {
	req := analysisRequest()
	req.Validation.Warnings = []string{"calculated NAV 119.0000 differs from official NAV 120.0000 by 0.8333%"}

	system, user := BuildComparisonPrompt(req)

	assert.Contains(t, system, "ONLY JSON")
	for _, label := range constants.SeverityStrings() {
		assert.Contains(t, system, label)
	}
	assert.Contains(t, user, "Acme Growth Fund")
	assert.Contains(t, user, "1250000.00")
	assert.Contains(t, user, "Validator warnings:")
	assert.Contains(t, user, "0.8333%")
}

func TestReconstructionPromptTruncatesLongDocuments(t *testing.T) {
	req := analysisRequest()
	req.Record.RawText = strings.Repeat("x", constants.MaxPromptChars+500)

	_, user := BuildReconstructionPrompt(req)

	assert.Contains(t, user, "(truncated)")
	assert.Less(t, len(user), constants.MaxPromptChars+500)
}

func TestExcerptTruncatesOnRuneBoundary(t *testing.T) {
	// a leading ASCII byte misaligns the cut point with the 3-byte runes
	req := analysisRequest()
	req.Record.RawText = "a" + strings.Repeat("€", constants.MaxPromptChars)

	_, user := BuildReconstructionPrompt(req)

	assert.True(t, utf8.ValidString(user))
	assert.Contains(t, user, "(truncated)")
}

func TestExplanationPromptMentionsAudience(t *testing.T) {
	system, user := BuildExplanationPrompt(analysisRequest())
	assert.Contains(t, system, "operations reviewer")
	assert.Contains(t, user, "Official stated NAV: 120.0000")
}
