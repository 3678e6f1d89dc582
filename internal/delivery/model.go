package delivery

import "time"

// DeliveryJob statuses, monotonic forward-only within one orchestration run.
const (
	StatusCreated            = "created"
	StatusQueued             = "queued"
	StatusSentSimulated      = "sent_simulated"
	StatusCompletedSimulated = "completed_simulated"
)

// Per-target log entry statuses.
const (
	LogQueued             = "queued"
	LogSentSimulated      = "sent_simulated"
	LogDeliveredSimulated = "delivered_simulated"
	LogFailedSimulated    = "failed_simulated"
)

// Config carries the free-form delivery options resolved at prepare time.
type Config struct {
	TemplateName string   `json:"template_name,omitempty"`
	Attachments  []string `json:"attachments,omitempty"`
}

// DeliveryJob is one matching-to-delivery request. ResumeID may be empty if
// the source resume was deleted after the run.
type DeliveryJob struct {
	ID        string
	UserID    string
	ResumeID  string
	JobIDs    []string
	Config    Config
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LogEntry is one immutable stage transition for one (delivery job, target
// job) pair. Entries accumulate as history and are never updated.
type LogEntry struct {
	ID              int64
	DeliveryJobID   string
	JobID           string
	ResumeID        string
	Seq             int
	SimulatedStatus string
	Note            string
	FailureReason   string
	TemplateName    string
	Attachments     []string
	Timestamp       time.Time
}
