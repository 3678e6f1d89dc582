package resumes

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"jobflow-backend/internal/parsing"
)

type memoryStore struct {
	objects map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{objects: map[string][]byte{}}
}

func (s *memoryStore) Save(_ context.Context, userID, fileName string, r io.Reader) (string, int64, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, "", err
	}
	key := fmt.Sprintf("%s/%s", userID, fileName)
	s.objects[key] = data
	return key, int64(len(data)), "text/plain", nil
}

func (s *memoryStore) Open(_ context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, errors.New("object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func newTestService() (*Service, *MemoryRepo, *memoryStore) {
	repo := NewMemoryRepo()
	store := newMemoryStore()
	svc := &Service{
		Repo:         repo,
		Store:        store,
		MaxSizeBytes: 1 << 20,
		AllowedExts:  []string{"pdf", "docx", "txt"},
	}
	return svc, repo, store
}

const sampleResumeText = "姓名：张三\n邮箱: zhangsan@example.com\n电话: 13812345678\n本科，精通 Python 和 SQL"

func TestUploadExtractsLocallyWithoutLLM(t *testing.T) {
	svc, repo, _ := newTestService()

	resume, err := svc.Upload(context.Background(), "u1", "resume.txt", strings.NewReader(sampleResumeText))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if resume.Status != StatusParsed {
		t.Fatalf("status = %q, want %q", resume.Status, StatusParsed)
	}

	record, err := repo.LatestParse(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("LatestParse: %v", err)
	}
	if record.Version != 1 {
		t.Fatalf("version = %d, want 1", record.Version)
	}
	fields := record.ExtractedFields
	if fields.Name != "张三" {
		t.Errorf("name = %q, want 张三", fields.Name)
	}
	if fields.Email != "zhangsan@example.com" {
		t.Errorf("email = %q", fields.Email)
	}
	if fields.Phone != "13812345678" {
		t.Errorf("phone = %q", fields.Phone)
	}
}

func TestUploadRejectsUnsupportedExtension(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Upload(context.Background(), "u1", "resume.exe", strings.NewReader("x"))
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("err = %v, want ErrUnsupportedFileType", err)
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	svc, _, _ := newTestService()
	svc.MaxSizeBytes = 8

	_, err := svc.Upload(context.Background(), "u1", "resume.txt", strings.NewReader("this is more than eight bytes"))
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("err = %v, want ErrFileTooLarge", err)
	}
}

func TestReparseAppendsNextVersion(t *testing.T) {
	svc, repo, _ := newTestService()

	resume, err := svc.Upload(context.Background(), "u1", "resume.txt", strings.NewReader(sampleResumeText))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	record, err := svc.Reparse(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("Reparse: %v", err)
	}
	if record.Version != 2 {
		t.Fatalf("version = %d, want 2", record.Version)
	}

	records, err := repo.ListParses(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("ListParses: %v", err)
	}
	for i, rec := range records {
		if rec.Version != i+1 {
			t.Fatalf("records[%d].Version = %d, want %d", i, rec.Version, i+1)
		}
	}
}

func TestReparseUnknownResume(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Reparse(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestAppendCorrectedParsePreservesHistory(t *testing.T) {
	svc, repo, _ := newTestService()

	resume, err := svc.Upload(context.Background(), "u1", "resume.txt", strings.NewReader(sampleResumeText))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}

	corrected := parsing.Fields{Name: "李四", Email: "lisi@example.com", Skills: []string{"go"}}
	version, err := svc.AppendCorrectedParse(context.Background(), resume.ID, corrected, "fixed name")
	if err != nil {
		t.Fatalf("AppendCorrectedParse: %v", err)
	}
	if version != 2 {
		t.Fatalf("version = %d, want 2", version)
	}

	records, err := repo.ListParses(context.Background(), resume.ID)
	if err != nil {
		t.Fatalf("ListParses: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2", len(records))
	}
	if records[0].ExtractedFields.Name != "张三" {
		t.Errorf("original record mutated: name = %q", records[0].ExtractedFields.Name)
	}
	if records[1].ExtractedFields.Name != "李四" {
		t.Errorf("corrected record name = %q, want 李四", records[1].ExtractedFields.Name)
	}
	if !strings.Contains(string(records[1].ParsedJSON), "fixed name") {
		t.Errorf("admin note missing from payload: %s", records[1].ParsedJSON)
	}
}

func TestListResumesScopedToUser(t *testing.T) {
	svc, _, _ := newTestService()

	if _, err := svc.Upload(context.Background(), "u1", "a.txt", strings.NewReader(sampleResumeText)); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, err := svc.Upload(context.Background(), "u2", "b.txt", strings.NewReader(sampleResumeText)); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	items, err := svc.List(context.Background(), "u1", 10, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 || items[0].Filename != "a.txt" {
		t.Fatalf("unexpected list: %+v", items)
	}
}
