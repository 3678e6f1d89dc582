package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"jobflow-backend/internal/delivery"
)

// Supported grouping dimensions.
const (
	GroupByDay      = "day"
	GroupByTemplate = "template"
	GroupByStatus   = "status"
)

// unknownTemplate is the bucket key for entries without a template name.
const unknownTemplate = "unknown"

// ErrBadGroupBy is returned for an unsupported grouping dimension.
type ErrBadGroupBy struct {
	GroupBy string
}

func (e ErrBadGroupBy) Error() string {
	return fmt.Sprintf("unsupported groupBy %q", e.GroupBy)
}

// Bucket is one (key, count) pair in a summary.
type Bucket struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Summary is the bucketed view over a set of delivery log entries.
type Summary struct {
	GroupBy     string   `json:"groupBy"`
	Total       int      `json:"total"`
	SuccessRate float64  `json:"successRate"`
	Items       []Bucket `json:"items"`
}

// Aggregate buckets delivery log entries by the requested dimension. Pure
// function: an empty input yields total 0, successRate 0 and an empty item
// list, never an error. Success counts entries whose status contains
// "delivered" or "sent".
func Aggregate(logs []delivery.LogEntry, groupBy string) (Summary, error) {
	keyFn, err := bucketKey(groupBy)
	if err != nil {
		return Summary{}, err
	}

	counts := map[string]int{}
	success := 0
	for _, entry := range logs {
		counts[keyFn(entry)]++
		status := strings.ToLower(entry.SimulatedStatus)
		if strings.Contains(status, "delivered") || strings.Contains(status, "sent") {
			success++
		}
	}

	items := make([]Bucket, 0, len(counts))
	for key, count := range counts {
		items = append(items, Bucket{Key: key, Count: count})
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Key < items[j].Key
	})

	total := len(logs)
	rate := 0.0
	if total > 0 {
		rate = math.Round(100*float64(success)/float64(total)*100) / 100
	}

	return Summary{
		GroupBy:     groupBy,
		Total:       total,
		SuccessRate: rate,
		Items:       items,
	}, nil
}

func bucketKey(groupBy string) (func(delivery.LogEntry) string, error) {
	switch groupBy {
	case GroupByDay:
		return func(entry delivery.LogEntry) string {
			return entry.Timestamp.UTC().Format("2006-01-02")
		}, nil
	case GroupByTemplate:
		return func(entry delivery.LogEntry) string {
			if entry.TemplateName == "" {
				return unknownTemplate
			}
			return entry.TemplateName
		}, nil
	case GroupByStatus:
		return func(entry delivery.LogEntry) string {
			return entry.SimulatedStatus
		}, nil
	default:
		return nil, ErrBadGroupBy{GroupBy: groupBy}
	}
}
