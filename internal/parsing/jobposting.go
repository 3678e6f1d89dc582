package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"jobflow-backend/internal/llm"
	"jobflow-backend/internal/shared/metrics"
	"jobflow-backend/internal/shared/telemetry"
)

// ErrLLMNotConfigured is returned when job-posting parsing is requested
// without a remote client. Unlike resumes, job postings have no deterministic
// local fallback.
var ErrLLMNotConfigured = errors.New("llm client not configured")

// ErrJobParseFailed indicates every tier failed or the mandatory title and
// company pair was missing from the decoded payload.
var ErrJobParseFailed = errors.New("job posting parse failed")

// JobTag is a suggested tag for an ingested job posting.
type JobTag struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Color    string `json:"color,omitempty"`
}

// JobRequirements holds the structured requirement block of a posting.
type JobRequirements struct {
	Education  string   `json:"education,omitempty"`
	Experience string   `json:"experience,omitempty"`
	Location   string   `json:"location,omitempty"`
	Skills     []string `json:"skills,omitempty"`
	Salary     string   `json:"salary,omitempty"`
}

// JobFields is the structured extraction of one job posting.
type JobFields struct {
	Title                 string          `json:"title"`
	CompanyName           string          `json:"company_name"`
	SuggestedIndustry     string          `json:"suggested_industry,omitempty"`
	SuggestedIndustryCode string          `json:"suggested_industry_code,omitempty"`
	SuggestedTags         []JobTag        `json:"suggested_tags,omitempty"`
	ApplyEmail            string          `json:"apply_email,omitempty"`
	EmailSubjectTemplate  string          `json:"email_subject_template,omitempty"`
	EmailBodyTemplate     string          `json:"email_body_template,omitempty"`
	Requirements          JobRequirements `json:"requirements,omitempty"`
	PublishedAt           string          `json:"published_at,omitempty"`
}

const jobSystemPrompt = `You are a job-posting parsing assistant. Extract structured fields from raw recruiting text. The job title and company name are mandatory; extract them precisely. Also look for an application email address (prefer HR or recruiting addresses when several appear), infer an industry with a lowercase English industry code, suggest tags for skills and job type, draft an email subject and body template with {{name}} and {{position}} placeholders when an application email exists, and capture structured requirements (education, experience, location, skills, salary).`

var jobFunctionSchema = llm.FunctionSchema{
	Name:        "parse_job_posting",
	Description: "Extract structured information from a job posting",
	Parameters: json.RawMessage(`{
  "type": "object",
  "properties": {
    "title": {"type": "string"},
    "company_name": {"type": "string"},
    "suggested_industry": {"type": "string"},
    "suggested_industry_code": {"type": "string"},
    "suggested_tags": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "category": {"type": "string", "enum": ["skill", "job_type", "company", "position"]},
          "color": {"type": "string"}
        },
        "required": ["name", "category"]
      }
    },
    "apply_email": {"type": "string"},
    "email_subject_template": {"type": "string"},
    "email_body_template": {"type": "string"},
    "requirements": {
      "type": "object",
      "properties": {
        "education": {"type": "string"},
        "experience": {"type": "string"},
        "location": {"type": "string"},
        "skills": {"type": "array", "items": {"type": "string"}},
        "salary": {"type": "string"}
      }
    },
    "published_at": {"type": "string"}
  },
  "required": ["title", "company_name"]
}`),
}

const jobJSONModeSuffix = `
Respond with exactly one JSON object and nothing else: no markdown, no code fences, no prose. The keys title and company_name are mandatory; leave other keys empty or null when absent.`

// ParseJobPosting runs the same three-tier chain as resume extraction, but
// with a hard failure when all tiers fail: there is no reliable local
// heuristic for a title/company pair.
func ParseJobPosting(ctx context.Context, rawContent, sourceType string, client llm.Client) (JobFields, error) {
	if client == nil {
		return JobFields{}, ErrLLMNotConfigured
	}

	userPrompt := fmt.Sprintf("Source type: %s\n\nRaw posting:\n%s", sourceType, rawContent)

	tiers := []struct {
		name string
		run  func(context.Context) (json.RawMessage, error)
	}{
		{sourceFunctionCall, func(ctx context.Context) (json.RawMessage, error) {
			return client.CallFunction(ctx, jobSystemPrompt, userPrompt, jobFunctionSchema)
		}},
		{sourceJSONMode, func(ctx context.Context) (json.RawMessage, error) {
			content, err := client.CompleteJSON(ctx, jobSystemPrompt+jobJSONModeSuffix, userPrompt)
			if err != nil {
				return nil, err
			}
			return json.RawMessage(content), nil
		}},
		{sourceFreeText, func(ctx context.Context) (json.RawMessage, error) {
			content, err := client.CompleteText(ctx, jobSystemPrompt+jobJSONModeSuffix, userPrompt)
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
			var fields JobFields
			decodeErr := json.Unmarshal(raw, &fields)
			switch {
			case decodeErr != nil:
				err = fmt.Errorf("decode %s payload: %w", tier.name, decodeErr)
			case fields.Title == "" || fields.CompanyName == "":
				err = fmt.Errorf("%s payload missing title or company_name", tier.name)
			default:
				return fields, nil
			}
		}
		lastErr = err
		metrics.IncRemoteTierFallback()
		telemetry.Warn("parsing.job_tier_failed", map[string]any{
			"tier":  tier.name,
			"error": err.Error(),
		})
	}

	return JobFields{}, fmt.Errorf("%w: %v", ErrJobParseFailed, lastErr)
}
