package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	resumeParsedTotal       atomic.Uint64
	resumeParseFailedTotal  atomic.Uint64
	remoteTierFallbackTotal atomic.Uint64
	matchRunsTotal          atomic.Uint64
	deliveryPreparedTotal   atomic.Uint64
	deliveryRejectedTotal   atomic.Uint64

	matchDuration = newHistogram([]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})
)

// IncResumeParsed increments the successful parse counter.
func IncResumeParsed() {
	resumeParsedTotal.Add(1)
}

// IncResumeParseFailed increments the failed parse counter.
func IncResumeParseFailed() {
	resumeParseFailedTotal.Add(1)
}

// IncRemoteTierFallback counts a remote extraction tier falling through.
func IncRemoteTierFallback() {
	remoteTierFallbackTotal.Add(1)
}

// IncMatchRun increments the matching invocation counter.
func IncMatchRun() {
	matchRunsTotal.Add(1)
}

// IncDeliveryPrepared increments the completed delivery preparation counter.
func IncDeliveryPrepared() {
	deliveryPreparedTotal.Add(1)
}

// IncDeliveryRejected counts delivery preparations rejected on preconditions.
func IncDeliveryRejected() {
	deliveryRejectedTotal.Add(1)
}

// ObserveMatchDurationMs records a matching run duration in milliseconds.
func ObserveMatchDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	matchDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "resume_parsed_total", "Total resume parses stored", resumeParsedTotal.Load())
	writeCounter(&buf, "resume_parse_failed_total", "Total resume parses that failed", resumeParseFailedTotal.Load())
	writeCounter(&buf, "remote_tier_fallback_total", "Total remote extraction tiers that fell through", remoteTierFallbackTotal.Load())
	writeCounter(&buf, "match_runs_total", "Total matching invocations", matchRunsTotal.Load())
	writeCounter(&buf, "delivery_prepared_total", "Total delivery preparations completed", deliveryPreparedTotal.Load())
	writeCounter(&buf, "delivery_rejected_total", "Total delivery preparations rejected", deliveryRejectedTotal.Load())
	writeHistogram(&buf, "match_duration_ms", "Matching run duration in milliseconds", matchDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
