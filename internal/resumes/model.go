package resumes

import (
	"encoding/json"
	"time"

	"jobflow-backend/internal/parsing"
)

const (
	StatusUploaded = "uploaded"
	StatusParsed   = "parsed"
	StatusFailed   = "failed"
)

// Resume represents an uploaded resume document owned by a user.
type Resume struct {
	ID           string
	UserID       string
	Filename     string
	StorageKey   string
	Status       string
	ErrorMessage string
	UploadedAt   time.Time
	UpdatedAt    time.Time
}

// ParseRecord is one immutable extraction snapshot of a resume. Versions for
// a resume form a gapless ascending sequence starting at 1; corrections create
// a new version, never mutate an old one.
type ParseRecord struct {
	ID              string
	ResumeID        string
	Version         int
	ParsedJSON      json.RawMessage
	ExtractedFields parsing.Fields
	ParsedAt        time.Time
}
