package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"jobflow-backend/internal/llm"
	"jobflow-backend/internal/parsing"
)

type stubLLM struct {
	functionResult json.RawMessage
	functionErr    error
}

func (s *stubLLM) CallFunction(_ context.Context, _, _ string, _ llm.FunctionSchema) (json.RawMessage, error) {
	return s.functionResult, s.functionErr
}

func (s *stubLLM) CompleteJSON(context.Context, string, string) (string, error) {
	return "", errors.New("json mode unavailable")
}

func (s *stubLLM) CompleteText(context.Context, string, string) (string, error) {
	return "", errors.New("free text unavailable")
}

func TestIngestStoresParsedJob(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{
		Repo: repo,
		LLM: &stubLLM{
			functionResult: json.RawMessage(`{
				"title": "Python Engineer",
				"company_name": "Acme",
				"apply_email": "hr@acme.example",
				"requirements": {"skills": ["python", "sql"], "location": "beijing"}
			}`),
		},
	}

	job, err := svc.Ingest(context.Background(), "We are hiring a Python Engineer...", "url")
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if job.Title != "Python Engineer" || job.CompanyName != "Acme" {
		t.Fatalf("unexpected job: %+v", job)
	}
	if job.Status != StatusActive {
		t.Fatalf("status = %q, want active", job.Status)
	}

	stored, err := repo.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.ApplyEmail != "hr@acme.example" {
		t.Errorf("applyEmail = %q", stored.ApplyEmail)
	}
	if stored.Requirements.Location != "beijing" {
		t.Errorf("location = %q", stored.Requirements.Location)
	}
}

func TestIngestWithoutLLM(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	_, err := svc.Ingest(context.Background(), "posting text", "manual")
	if !errors.Is(err, parsing.ErrLLMNotConfigured) {
		t.Fatalf("err = %v, want ErrLLMNotConfigured", err)
	}
}

func TestIngestEmptyContent(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo(), LLM: &stubLLM{}}

	_, err := svc.Ingest(context.Background(), "   ", "manual")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestCreateManualRequiresTitleAndCompany(t *testing.T) {
	svc := &Service{Repo: NewMemoryRepo()}

	_, err := svc.CreateManual(context.Background(), Job{Title: "Engineer"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}

func TestGetByIDsSkipsMissing(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	job, err := svc.CreateManual(context.Background(), Job{Title: "Engineer", CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("CreateManual: %v", err)
	}

	found, err := svc.GetByIDs(context.Background(), []string{job.ID, "missing"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(found) != 1 || found[0].ID != job.ID {
		t.Fatalf("found = %+v", found)
	}
}

func TestArchiveHidesJobFromActiveList(t *testing.T) {
	repo := NewMemoryRepo()
	svc := &Service{Repo: repo}

	job, err := svc.CreateManual(context.Background(), Job{Title: "Engineer", CompanyName: "Acme"})
	if err != nil {
		t.Fatalf("CreateManual: %v", err)
	}
	if err := svc.Archive(context.Background(), job.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	active, err := svc.ListActive(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListActive: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("active = %+v, want empty", active)
	}
}
