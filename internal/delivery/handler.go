package delivery

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobflow-backend/internal/shared/server/middleware"
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

// RegisterRoutes attaches delivery routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/delivery/prepare", h.prepare)
	rg.GET("/delivery/jobs/:id", h.get)
	rg.GET("/delivery/jobs", h.list)
}

type prepareRequest struct {
	ResumeID string   `json:"resumeId"`
	JobIDs   []string `json:"jobIds"`
	Config   Config   `json:"config"`
}

func (h *Handler) prepare(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req prepareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	result, err := h.Svc.Prepare(c.Request.Context(), userID, req.ResumeID, req.JobIDs, req.Config)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to prepare delivery", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"deliveryJobId": result.DeliveryJobID,
		"status":        result.FinalStatus,
	})
}

func (h *Handler) get(c *gin.Context) {
	job, logs, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "delivery job not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch delivery job", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"job":  toJobResponse(job),
		"logs": toLogResponses(logs),
	})
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list delivery jobs", nil)
		return
	}

	resp := make([]gin.H, 0, len(items))
	for _, job := range items {
		resp = append(resp, toJobResponse(job))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func toJobResponse(job DeliveryJob) gin.H {
	resp := gin.H{
		"deliveryJobId": job.ID,
		"jobIds":        job.JobIDs,
		"config":        job.Config,
		"status":        job.Status,
		"createdAt":     job.CreatedAt,
		"updatedAt":     job.UpdatedAt,
	}
	if job.ResumeID != "" {
		resp["resumeId"] = job.ResumeID
	}
	return resp
}

func toLogResponses(logs []LogEntry) []gin.H {
	out := make([]gin.H, 0, len(logs))
	for _, entry := range logs {
		item := gin.H{
			"jobId":           entry.JobID,
			"seq":             entry.Seq,
			"simulatedStatus": entry.SimulatedStatus,
			"note":            entry.Note,
			"templateName":    entry.TemplateName,
			"attachments":     entry.Attachments,
			"timestamp":       entry.Timestamp,
		}
		if entry.FailureReason != "" {
			item["failureReason"] = entry.FailureReason
		}
		out = append(out, item)
	}
	return out
}
