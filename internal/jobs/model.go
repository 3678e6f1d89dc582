package jobs

import (
	"time"

	"jobflow-backend/internal/parsing"
)

const (
	StatusActive   = "active"
	StatusArchived = "archived"
)

// Job is one posting in the catalog. Matching and delivery only ever see
// active jobs.
type Job struct {
	ID           string
	Title        string
	CompanyName  string
	ApplyEmail   string
	Requirements parsing.JobRequirements
	SourceType   string
	RawContent   string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
