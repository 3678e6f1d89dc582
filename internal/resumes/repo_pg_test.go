package resumes

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"jobflow-backend/internal/parsing"
)

func TestPGRepoAppendParseLocksAndAssignsVersion(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	record := ParseRecord{
		ID:              "parse-1",
		ResumeID:        "resume-1",
		ParsedJSON:      json.RawMessage(`{"source":"local"}`),
		ExtractedFields: parsing.Fields{Name: "张三", Skills: []string{"python"}},
		ParsedAt:        time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM resumes WHERE id = \\$1 FOR UPDATE").
		WithArgs(record.ResumeID).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(record.ResumeID))
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(version\\), 0\\) \\+ 1 FROM resume_parses").
		WithArgs(record.ResumeID).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))
	mock.ExpectExec("INSERT INTO resume_parses").
		WithArgs(
			record.ID,
			record.ResumeID,
			3,
			sqlmock.AnyArg(), // parsed_json
			sqlmock.AnyArg(), // extracted_fields
			record.ParsedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	got, err := repo.AppendParse(context.Background(), record)
	if err != nil {
		t.Fatalf("AppendParse: %v", err)
	}
	if got.Version != 3 {
		t.Fatalf("version = %d, want 3", got.Version)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoAppendParseUnknownResume(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM resumes WHERE id = \\$1 FOR UPDATE").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err = repo.AppendParse(context.Background(), ParseRecord{ID: "p", ResumeID: "missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestParseRoundTripsFields(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	fields := parsing.Fields{Name: "张三", Email: "z@example.com", Skills: []string{"python", "sql"}}
	fieldsJSON, _ := json.Marshal(fields)
	parsedAt := time.Now().UTC()

	mock.ExpectQuery("SELECT id, resume_id, version, parsed_json, extracted_fields, parsed_at").
		WithArgs("resume-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "resume_id", "version", "parsed_json", "extracted_fields", "parsed_at"}).
			AddRow("parse-2", "resume-1", 2, []byte(`{"source":"function_call"}`), fieldsJSON, parsedAt))

	record, err := repo.LatestParse(context.Background(), "resume-1")
	if err != nil {
		t.Fatalf("LatestParse: %v", err)
	}
	if record.Version != 2 {
		t.Fatalf("version = %d, want 2", record.Version)
	}
	if record.ExtractedFields.Name != fields.Name || len(record.ExtractedFields.Skills) != 2 {
		t.Fatalf("fields = %+v", record.ExtractedFields)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoLatestParseNoRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT id, resume_id, version, parsed_json, extracted_fields, parsed_at").
		WithArgs("resume-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "resume_id", "version", "parsed_json", "extracted_fields", "parsed_at"}))

	_, err = repo.LatestParse(context.Background(), "resume-1")
	if !errors.Is(err, ErrNoParse) {
		t.Fatalf("err = %v, want ErrNoParse", err)
	}
}
