package llm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/navlens/nav-audit/constants"
)

// BuildReconstructionPrompt asks the service to re-derive the NAV from the
// extracted component figures, showing its arithmetic.
func BuildReconstructionPrompt(req AnalysisRequest) (system, user string) {
	system = strings.Join([]string{
		"You are a fund accounting analyst.",
		"Reconstruct the net asset value calculation from the component figures you are given.",
		"Show the arithmetic step by step: net assets = total assets - total liabilities, NAV per unit = net assets / units outstanding.",
		"Be concise and numeric; do not invent figures that were not provided.",
	}, " ")
	user = figuresBlock(req) + "\n\nDocument excerpt:\n" + excerpt(req.Record.RawText)
	return system, user
}

// BuildComparisonPrompt asks for a structured comparison between the
// recomputed NAV and the officially stated one. The response must be JSON
// matching BuildComparisonJSONSchema.
func BuildComparisonPrompt(req AnalysisRequest) (system, user string) {
	system = strings.Join([]string{
		"You are a fund accounting analyst. Return ONLY JSON that matches the provided JSON Schema.",
		"Compare the NAV recomputed from components against the officially stated NAV.",
		"'severity' MUST be exactly one of: " + strings.Join(constants.SeverityStrings(), ", ") + ".",
		"'discrepancy_pct' is the absolute percentage difference, a non-negative number.",
		"A stated NAV may legitimately differ from the recomputed one; the delta is the signal, not automatically an error.",
		"Never output null. If a field is not applicable, omit it.",
	}, " ")

	var b strings.Builder
	b.WriteString(figuresBlock(req))
	if len(req.Validation.Warnings) > 0 {
		b.WriteString("\nValidator warnings:\n")
		for _, w := range req.Validation.Warnings {
			b.WriteString("- " + w + "\n")
		}
	}
	if len(req.Validation.Errors) > 0 {
		b.WriteString("\nValidator errors:\n")
		for _, e := range req.Validation.Errors {
			b.WriteString("- " + e + "\n")
		}
	}
	return system, b.String()
}

// BuildExplanationPrompt asks for a plain-language explanation of any
// discrepancy, suitable for a fund operations reviewer.
func BuildExplanationPrompt(req AnalysisRequest) (system, user string) {
	system = strings.Join([]string{
		"You are a fund accounting analyst writing for an operations reviewer.",
		"Explain in plain language the most plausible causes for any gap between the recomputed NAV and the stated NAV",
		"(timing of valuations, accrued fees, rounding, misextracted figures).",
		"Keep it under 150 words. If the figures agree, say so in one sentence.",
	}, " ")
	user = figuresBlock(req) + "\n\nDocument excerpt:\n" + excerpt(req.Record.RawText)
	return system, user
}

// BuildComparisonJSONSchema returns a JSON-Schema (draft 2020-12 subset) as
// a generic map. We send it with the prompt and also use it locally to
// validate the response.
func BuildComparisonJSONSchema() map[string]any {
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"assessment":      map[string]any{"type": "string", "minLength": 1},
			"severity":        map[string]any{"type": "string", "enum": constants.SeverityStrings()},
			"discrepancy_pct": map[string]any{"type": "number", "minimum": 0.0},
			"confidence":      map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
			"notes":           map[string]any{"type": "string"},
		},
		"required": []string{"assessment", "severity"},
	}
}

func figuresBlock(req AnalysisRequest) string {
	rec := req.Record
	var b strings.Builder
	if req.SourceName != "" {
		fmt.Fprintf(&b, "Source: %s\n", req.SourceName)
	}
	fmt.Fprintf(&b, "Fund: %s\n", orUnknown(rec.FundName))
	fmt.Fprintf(&b, "Date: %s\n", orUnknown(rec.Date))
	fmt.Fprintf(&b, "Total assets: %.2f\n", rec.TotalAssets)
	fmt.Fprintf(&b, "Total liabilities: %.2f\n", rec.TotalLiabilities)
	fmt.Fprintf(&b, "Net assets (derived): %.2f\n", rec.NetAssets)
	fmt.Fprintf(&b, "Units outstanding: %.2f\n", rec.UnitsOutstanding)
	fmt.Fprintf(&b, "NAV per unit (derived): %.4f\n", rec.NAVPerUnit)
	fmt.Fprintf(&b, "Official stated NAV: %.4f\n", rec.OfficialNAV)

	if len(rec.AssetBreakdown) > 0 {
		b.WriteString("Asset breakdown:\n")
		for _, e := range rec.AssetBreakdown {
			fmt.Fprintf(&b, "- %s: %.2f\n", e.Description, e.Amount)
		}
	}
	if len(rec.LiabilityBreakdown) > 0 {
		b.WriteString("Liability breakdown:\n")
		for _, e := range rec.LiabilityBreakdown {
			fmt.Fprintf(&b, "- %s: %.2f\n", e.Description, e.Amount)
		}
	}
	return b.String()
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(unknown)"
	}
	return s
}

func excerpt(text string) string {
	t := strings.TrimSpace(text)
	if len(t) <= constants.MaxPromptChars {
		return t
	}
	cut := constants.MaxPromptChars
	// back up to a rune boundary so the excerpt stays valid UTF-8
	for cut > 0 && !utf8.RuneStart(t[cut]) {
		cut--
	}
	return t[:cut] + "\n…(truncated)"
}
