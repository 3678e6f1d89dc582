package delivery

import (
	"context"
	"time"
)

// Repo persists delivery jobs and their append-only logs.
type Repo interface {
	// CreateJobWithLogs inserts the job and all of its log entries as one
	// unit of work: either everything from the orchestration run is
	// visible or nothing is.
	CreateJobWithLogs(ctx context.Context, job DeliveryJob, logs []LogEntry) error
	GetJob(ctx context.Context, deliveryJobID string) (DeliveryJob, error)
	ListJobsByUser(ctx context.Context, userID string, limit, offset int) ([]DeliveryJob, error)
	ListLogsByJob(ctx context.Context, deliveryJobID string) ([]LogEntry, error)

	// ListLogsInRange returns log entries with timestamp in [start, end),
	// ordered by timestamp ascending. Zero start/end means unbounded.
	ListLogsInRange(ctx context.Context, start, end time.Time, limit, offset int) ([]LogEntry, error)
}
