package parsing

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestParseJobPostingRequiresClient(t *testing.T) {
	_, err := ParseJobPosting(context.Background(), "raw", "manual", nil)
	if !errors.Is(err, ErrLLMNotConfigured) {
		t.Fatalf("err = %v, want ErrLLMNotConfigured", err)
	}
}

func TestParseJobPostingTierA(t *testing.T) {
	client := &stubClient{
		functionResult: json.RawMessage(`{"title":"Python Engineer","company_name":"Acme","requirements":{"skills":["python"],"location":"beijing"}}`),
	}

	fields, err := ParseJobPosting(context.Background(), "raw posting", "manual", client)
	if err != nil {
		t.Fatalf("ParseJobPosting: %v", err)
	}
	if fields.Title != "Python Engineer" || fields.CompanyName != "Acme" {
		t.Fatalf("unexpected fields: %+v", fields)
	}
	if len(fields.Requirements.Skills) != 1 || fields.Requirements.Skills[0] != "python" {
		t.Fatalf("requirements = %+v", fields.Requirements)
	}
}

func TestParseJobPostingMissingMandatoryFieldFallsThrough(t *testing.T) {
	client := &stubClient{
		functionResult: json.RawMessage(`{"title":"Engineer"}`),
		jsonResult:     `{"title":"Engineer","company_name":"Acme"}`,
	}

	fields, err := ParseJobPosting(context.Background(), "raw", "url", client)
	if err != nil {
		t.Fatalf("ParseJobPosting: %v", err)
	}
	if fields.CompanyName != "Acme" {
		t.Fatalf("expected tier B payload, got %+v", fields)
	}
	if client.jsonCalls != 1 {
		t.Fatalf("jsonCalls = %d, want 1", client.jsonCalls)
	}
}

func TestParseJobPostingAllTiersFailIsHardError(t *testing.T) {
	client := &stubClient{
		functionErr: errors.New("unsupported"),
		jsonErr:     errors.New("unsupported"),
		textResult:  "no structured data",
	}

	_, err := ParseJobPosting(context.Background(), "raw", "manual", client)
	if !errors.Is(err, ErrJobParseFailed) {
		t.Fatalf("err = %v, want ErrJobParseFailed", err)
	}
}
