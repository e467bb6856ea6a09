package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/navlens/nav-audit/constants"
	"github.com/navlens/nav-audit/internal/llm"
)

// Reconstruct implements llm.Reasoner using text-only chat/completions.
func (c *Client) Reconstruct(ctx context.Context, req llm.AnalysisRequest) (string, error) {
	sys, user := llm.BuildReconstructionPrompt(req)
	return c.completeText(ctx, "reconstruct", sys, user)
}

// Explain implements llm.Reasoner.
func (c *Client) Explain(ctx context.Context, req llm.AnalysisRequest) (string, error) {
	sys, user := llm.BuildExplanationPrompt(req)
	return c.completeText(ctx, "explain", sys, user)
}

// Compare implements llm.Reasoner. The response is validated against the
// comparison schema; a lenient sanitize pass runs before giving up. When
// the content is not valid structured data at all, the whole response is
// returned as unstructured notes with a fixed low confidence — that is a
// degraded success, not an error.
func (c *Client) Compare(ctx context.Context, req llm.AnalysisRequest) (llm.ComparisonResult, []byte, error) {
	rid := uuid.New().String()
	start := time.Now()

	schema := llm.BuildComparisonJSONSchema()
	sys, user := llm.BuildComparisonPrompt(req)

	c.logger.Info("reasoning.compare.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"fund", req.Record.FundName,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": user + "\n\nReturn ONLY JSON that matches the provided schema."},
			{"role": "system", "content": "JSON Schema:\n" + mustJSON(schema)},
		},
	}

	content, err := c.chat(ctx, body)
	if err != nil {
		c.logger.Error("reasoning.compare.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.ComparisonResult{}, nil, err
	}

	rawContent := llm.ExtractJSONObject(content)
	if rawContent == nil {
		// Not structured data at all: keep the text as notes.
		c.logger.Warn("reasoning.compare.unstructured_response",
			"req_id", rid, "bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return notesOnly(content), []byte(content), nil
	}

	if err := llm.ValidateJSONAgainstSchema(schema, rawContent); err != nil {
		if !c.cfg.LenientStructured {
			c.logger.Warn("reasoning.compare.schema_validation_failed",
				"req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return notesOnly(content), rawContent, nil
		}
		cleaned, dropped, sErr := llm.SanitizeComparison(rawContent)
		if sErr != nil || llm.ValidateJSONAgainstSchema(schema, cleaned) != nil {
			c.logger.Warn("reasoning.compare.sanitize_failed",
				"req_id", rid, "error", sErr,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return notesOnly(content), rawContent, nil
		}
		c.logger.Warn("reasoning.compare.lenient_sanitize_applied",
			"req_id", rid, "dropped", dropped,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		rawContent = cleaned
	}

	var out llm.ComparisonResult
	if err := json.Unmarshal(rawContent, &out); err != nil {
		c.logger.Warn("reasoning.compare.unmarshal_failed",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return notesOnly(content), rawContent, nil
	}
	if out.Confidence <= 0 {
		out.Confidence = constants.FallbackConfidence
	}

	c.logger.Info("reasoning.compare.ok",
		"req_id", rid,
		"severity", out.Severity,
		"discrepancy_pct", out.DiscrepancyPct,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, rawContent, nil
}

func (c *Client) completeText(ctx context.Context, step, sys, user string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("reasoning."+step+".start",
		"req_id", rid,
		"model", c.cfg.Model,
		"user_len", len(user),
	)

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"messages": []map[string]any{
			{"role": "system", "content": sys},
			{"role": "user", "content": user},
		},
	}
	content, err := c.chat(ctx, body)
	if err != nil {
		c.logger.Error("reasoning."+step+".http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	c.logger.Info("reasoning."+step+".ok",
		"req_id", rid, "bytes", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

// chat posts a chat/completions body and returns the first choice content.
func (c *Client) chat(ctx context.Context, body map[string]any) (string, error) {
	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, endpoint, body, headers, c.logger)
	if err != nil {
		return "", err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(cc.Choices) == 0 {
		return "", fmt.Errorf("no choices in chat response")
	}
	return strings.TrimSpace(cc.Choices[0].Message.Content), nil
}

func notesOnly(content string) llm.ComparisonResult {
	return llm.ComparisonResult{
		Notes:      content,
		Confidence: constants.FallbackConfidence,
	}
}

func mustJSON(v any) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}
