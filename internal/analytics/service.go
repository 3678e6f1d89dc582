package analytics

import (
	"context"
	"time"

	"jobflow-backend/internal/delivery"
)

// logSource is the slice of the delivery repository analytics reads from.
type logSource interface {
	ListLogsInRange(ctx context.Context, start, end time.Time, limit, offset int) ([]delivery.LogEntry, error)
}

// Service loads delivery logs and aggregates them.
type Service struct {
	Logs     logSource
	PageSize int
}

// maxAggregateWindow bounds how many log entries one aggregate call reads.
const maxAggregateWindow = 10000

// Deliveries aggregates all log entries in [start, end) by the given
// dimension. Zero start/end means unbounded.
func (s *Service) Deliveries(ctx context.Context, groupBy string, start, end time.Time) (Summary, error) {
	logs, err := s.Logs.ListLogsInRange(ctx, start, end, maxAggregateWindow, 0)
	if err != nil {
		return Summary{}, err
	}
	return Aggregate(logs, groupBy)
}

// LogPage lists raw delivery log entries in [start, end), paged.
func (s *Service) LogPage(ctx context.Context, start, end time.Time, page int) ([]delivery.LogEntry, error) {
	if page < 1 {
		page = 1
	}
	size := s.PageSize
	if size <= 0 {
		size = 50
	}
	return s.Logs.ListLogsInRange(ctx, start, end, size, (page-1)*size)
}
