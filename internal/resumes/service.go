package resumes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"jobflow-backend/internal/extract"
	"jobflow-backend/internal/llm"
	"jobflow-backend/internal/parsing"
	"jobflow-backend/internal/shared/metrics"
	"jobflow-backend/internal/shared/storage/object"
	"jobflow-backend/internal/shared/telemetry"
	"jobflow-backend/internal/shared/util"
)

// Service contains business logic for resume upload, parsing and corrections.
type Service struct {
	Repo         Repo
	Store        object.ObjectStore
	LLM          llm.Client // nil means local-only extraction
	MaxSizeBytes int64
	AllowedExts  []string
}

// Upload stores the file, records the resume and runs the extraction chain.
// Extraction trouble never fails the upload: the resume degrades to
// local-only fields, and only an unexpected text-extraction error marks it
// failed with an error message.
func (s *Service) Upload(ctx context.Context, userID, fileName string, r io.Reader) (Resume, error) {
	if userID == "" || fileName == "" {
		return Resume{}, ErrInvalidInput
	}
	if !s.extAllowed(fileName) {
		return Resume{}, fmt.Errorf("%w: .%s", ErrUnsupportedFileType, util.FileExt(fileName))
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return Resume{}, fmt.Errorf("read upload: %w", err)
	}
	if s.MaxSizeBytes > 0 && int64(len(data)) > s.MaxSizeBytes {
		return Resume{}, ErrFileTooLarge
	}

	storageKey, _, mimeType, err := s.Store.Save(ctx, userID, fileName, bytes.NewReader(data))
	if err != nil {
		return Resume{}, fmt.Errorf("store resume file: %w", err)
	}

	now := time.Now().UTC()
	resume := Resume{
		ID:         uuid.NewString(),
		UserID:     userID,
		Filename:   fileName,
		StorageKey: storageKey,
		Status:     StatusUploaded,
		UploadedAt: now,
		UpdatedAt:  now,
	}
	if err := s.Repo.CreateResume(ctx, resume); err != nil {
		return Resume{}, err
	}

	text, err := extract.TextFromBytes(ctx, data, mimeType, fileName)
	if err != nil {
		resume.Status = StatusFailed
		resume.ErrorMessage = err.Error()
		if updateErr := s.Repo.UpdateResumeStatus(ctx, resume.ID, StatusFailed, resume.ErrorMessage); updateErr != nil {
			return Resume{}, updateErr
		}
		metrics.IncResumeParseFailed()
		telemetry.Warn("resume.extract_failed", map[string]any{
			"resume_id": resume.ID,
			"error":     err.Error(),
		})
		return resume, nil
	}

	result, parseErr := parsing.ParseResume(ctx, text, s.LLM)
	if parseErr != nil {
		// Upload never fails on extraction trouble; local fields are the floor.
		telemetry.Warn("resume.remote_extraction_degraded", map[string]any{
			"resume_id": resume.ID,
			"error":     parseErr.Error(),
		})
	}

	if _, err := s.appendResult(ctx, resume.ID, result); err != nil {
		return Resume{}, err
	}

	resume.Status = StatusParsed
	if err := s.Repo.UpdateResumeStatus(ctx, resume.ID, StatusParsed, ""); err != nil {
		return Resume{}, err
	}
	metrics.IncResumeParsed()
	return resume, nil
}

// Reparse re-runs extraction against the stored file and appends the next
// parse version. Unlike upload, a fully failed remote chain surfaces here.
func (s *Service) Reparse(ctx context.Context, resumeID string) (ParseRecord, error) {
	resume, err := s.Repo.GetResume(ctx, resumeID)
	if err != nil {
		return ParseRecord{}, err
	}

	text, err := extract.Text(ctx, s.Store, resume.StorageKey, "", resume.Filename)
	if err != nil {
		if updateErr := s.Repo.UpdateResumeStatus(ctx, resumeID, StatusFailed, err.Error()); updateErr != nil {
			return ParseRecord{}, updateErr
		}
		metrics.IncResumeParseFailed()
		return ParseRecord{}, fmt.Errorf("extract resume %s: %w", resumeID, err)
	}

	result, parseErr := parsing.ParseResume(ctx, text, s.LLM)
	if parseErr != nil {
		return ParseRecord{}, parseErr
	}

	record, err := s.appendResult(ctx, resumeID, result)
	if err != nil {
		return ParseRecord{}, err
	}
	if err := s.Repo.UpdateResumeStatus(ctx, resumeID, StatusParsed, ""); err != nil {
		return ParseRecord{}, err
	}
	metrics.IncResumeParsed()
	return record, nil
}

// AppendCorrectedParse merges corrected fields into the latest payload and
// writes them as a new version, marking the resume parsed.
func (s *Service) AppendCorrectedParse(ctx context.Context, resumeID string, fields parsing.Fields, note string) (int, error) {
	if _, err := s.Repo.GetResume(ctx, resumeID); err != nil {
		return 0, err
	}

	payload := map[string]any{}
	latest, err := s.Repo.LatestParse(ctx, resumeID)
	switch {
	case err == nil:
		if unmarshalErr := json.Unmarshal(latest.ParsedJSON, &payload); unmarshalErr != nil {
			payload = map[string]any{}
		}
	case errors.Is(err, ErrNoParse):
		// First version is the correction itself.
	default:
		return 0, err
	}

	payload["parsed_fields"] = fields
	if note != "" {
		payload["admin_note"] = note
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal corrected payload: %w", err)
	}

	record, err := s.Repo.AppendParse(ctx, ParseRecord{
		ID:              uuid.NewString(),
		ResumeID:        resumeID,
		ParsedJSON:      raw,
		ExtractedFields: fields,
		ParsedAt:        time.Now().UTC(),
	})
	if err != nil {
		return 0, err
	}
	if err := s.Repo.UpdateResumeStatus(ctx, resumeID, StatusParsed, ""); err != nil {
		return 0, err
	}
	return record.Version, nil
}

// Get returns a resume by ID.
func (s *Service) Get(ctx context.Context, resumeID string) (Resume, error) {
	if resumeID == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetResume(ctx, resumeID)
}

// LatestParse returns the highest-version parse record for a resume.
func (s *Service) LatestParse(ctx context.Context, resumeID string) (ParseRecord, error) {
	return s.Repo.LatestParse(ctx, resumeID)
}

// List returns resumes for a user ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListResumesByUser(ctx, userID, limit, offset)
}

func (s *Service) appendResult(ctx context.Context, resumeID string, result parsing.ParseResult) (ParseRecord, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return ParseRecord{}, fmt.Errorf("marshal parse result: %w", err)
	}
	return s.Repo.AppendParse(ctx, ParseRecord{
		ID:              uuid.NewString(),
		ResumeID:        resumeID,
		ParsedJSON:      raw,
		ExtractedFields: result.Fields,
		ParsedAt:        time.Now().UTC(),
	})
}

func (s *Service) extAllowed(fileName string) bool {
	ext := util.FileExt(fileName)
	if ext == "" {
		return false
	}
	for _, allowed := range s.AllowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}
