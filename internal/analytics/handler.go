package analytics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"jobflow-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analytics routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/analytics/deliveries", h.deliveries)
	rg.GET("/analytics/delivery-logs", h.logs)
}

func (h *Handler) deliveries(c *gin.Context) {
	groupBy := c.DefaultQuery("groupBy", GroupByDay)

	start, end, err := timeRange(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	summary, err := h.Svc.Deliveries(c.Request.Context(), groupBy, start, end)
	if err != nil {
		var badGroupBy ErrBadGroupBy
		if errors.As(err, &badGroupBy) {
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to aggregate deliveries", nil)
		return
	}

	respond.JSON(c, http.StatusOK, summary)
}

func (h *Handler) logs(c *gin.Context) {
	start, end, err := timeRange(c)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	page := 1
	if v := c.Query("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			page = parsed
		}
	}

	entries, err := h.Svc.LogPage(c.Request.Context(), start, end, page)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list delivery logs", nil)
		return
	}

	resp := make([]gin.H, 0, len(entries))
	for _, entry := range entries {
		item := gin.H{
			"deliveryJobId":   entry.DeliveryJobID,
			"jobId":           entry.JobID,
			"simulatedStatus": entry.SimulatedStatus,
			"note":            entry.Note,
			"templateName":    entry.TemplateName,
			"timestamp":       entry.Timestamp,
		}
		if entry.FailureReason != "" {
			item["failureReason"] = entry.FailureReason
		}
		resp = append(resp, item)
	}

	respond.JSON(c, http.StatusOK, gin.H{"page": page, "items": resp})
}

// timeRange parses optional start/end query params as RFC 3339 timestamps or
// calendar dates.
func timeRange(c *gin.Context) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error
	if v := c.Query("start"); v != "" {
		start, err = parseTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := c.Query("end"); v != "" {
		end, err = parseTime(v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func parseTime(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, errors.New("time values must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}
