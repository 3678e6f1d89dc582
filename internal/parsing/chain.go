package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"jobflow-backend/internal/llm"
	"jobflow-backend/internal/shared/metrics"
	"jobflow-backend/internal/shared/telemetry"
)

// ErrExtractionFailed indicates every remote tier failed. The result returned
// alongside it still carries the local extractor's fields, so callers can
// degrade instead of propagating.
var ErrExtractionFailed = errors.New("remote extraction failed")

// ParseResult is the outcome of one resume parse.
type ParseResult struct {
	Fields  Fields `json:"parsed_fields"`
	RawText string `json:"raw_text"`
	Source  string `json:"source"`
}

const (
	sourceLocal        = "local"
	sourceFunctionCall = "function_call"
	sourceJSONMode     = "json_mode"
	sourceFreeText     = "free_text"
)

const resumeSystemPrompt = `You are a resume parsing assistant. Extract structured fields from the raw resume text: name, email, phone, skills, education levels, work experiences and keywords. Keep values in the language of the source text. Leave a field empty when it is not present; never invent values.`

var resumeFunctionSchema = llm.FunctionSchema{
	Name:        "extract_resume_fields",
	Description: "Extract structured fields from a resume",
	Parameters: json.RawMessage(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "email": {"type": "string"},
    "phone": {"type": "string"},
    "skills": {"type": "array", "items": {"type": "string"}},
    "education": {"type": "array", "items": {"type": "string"}},
    "experiences": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "company": {"type": "string"},
          "title": {"type": "string"},
          "period": {"type": "string"},
          "description": {"type": "string"}
        }
      }
    },
    "keywords": {"type": "array", "items": {"type": "string"}}
  }
}`),
}

const resumeJSONModeSuffix = `
Respond with exactly one JSON object and nothing else: no markdown, no code fences, no prose around it. The object may contain the keys name, email, phone, skills, education, experiences, keywords. Omit or null keys you cannot fill.`

// ParseResume runs the local extractor, then tries the remote tiers in order,
// merging the first successful remote payload over the local baseline.
//
// A nil client is not an error: the result is the local-only baseline. When
// every remote tier fails the local-only result is returned together with a
// non-nil error wrapping ErrExtractionFailed, so each call site can pick its
// own degrade-or-surface policy.
func ParseResume(ctx context.Context, text string, client llm.Client) (ParseResult, error) {
	localFields := ExtractLocal(text)
	result := ParseResult{Fields: localFields, RawText: text, Source: sourceLocal}

	if client == nil {
		return result, nil
	}

	userPrompt := "Resume text:\n" + text

	tiers := []struct {
		name string
		run  func(context.Context) (json.RawMessage, error)
	}{
		{sourceFunctionCall, func(ctx context.Context) (json.RawMessage, error) {
			return client.CallFunction(ctx, resumeSystemPrompt, userPrompt, resumeFunctionSchema)
		}},
		{sourceJSONMode, func(ctx context.Context) (json.RawMessage, error) {
			content, err := client.CompleteJSON(ctx, resumeSystemPrompt+resumeJSONModeSuffix, userPrompt)
			if err != nil {
				return nil, err
			}
			return json.RawMessage(content), nil
		}},
		{sourceFreeText, func(ctx context.Context) (json.RawMessage, error) {
			content, err := client.CompleteText(ctx, resumeSystemPrompt+resumeJSONModeSuffix, userPrompt)
			if err != nil {
				return nil, err
			}
			return json.RawMessage(StripCodeFences(content)), nil
		}},
	}

	var lastErr error
	for _, tier := range tiers {
		raw, err := tier.run(ctx)
		if err == nil {
			var remote Fields
			decodeErr := json.Unmarshal(raw, &remote)
			if decodeErr == nil {
				result.Fields = Merge(localFields, remote)
				result.Source = tier.name
				return result, nil
			}
			err = fmt.Errorf("decode %s payload: %w", tier.name, decodeErr)
		}
		lastErr = err
		metrics.IncRemoteTierFallback()
		telemetry.Warn("parsing.tier_failed", map[string]any{
			"tier":  tier.name,
			"error": err.Error(),
		})
	}

	return result, fmt.Errorf("%w: %v", ErrExtractionFailed, lastErr)
}

// StripCodeFences removes leading/trailing markdown fence lines around a
// JSON payload.
func StripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```") {
		if idx := strings.IndexByte(out, '\n'); idx >= 0 {
			out = out[idx+1:]
		} else {
			out = strings.TrimPrefix(out, "```")
		}
	}
	out = strings.TrimSpace(out)
	if strings.HasSuffix(out, "```") {
		out = strings.TrimSuffix(out, "```")
	}
	return strings.TrimSpace(out)
}
