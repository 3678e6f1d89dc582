package jobs

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobflow-backend/internal/parsing"
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

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/parse", h.ingest)
	rg.POST("/jobs", h.createManual)
	rg.GET("/jobs/:id", h.detail)
	rg.GET("/jobs", h.list)
}

// RegisterAdminRoutes attaches catalog maintenance routes; callers guard the
// group with middleware.RequireAdmin.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/:id/archive", h.archive)
}

type ingestRequest struct {
	RawContent string `json:"rawContent"`
	SourceType string `json:"sourceType"`
}

func (h *Handler) ingest(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.Ingest(c.Request.Context(), req.RawContent, req.SourceType)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "rawContent is required", nil)
		case errors.Is(err, parsing.ErrLLMNotConfigured):
			respond.Error(c, http.StatusServiceUnavailable, "llm_not_configured", "job parsing requires a configured LLM provider", nil)
		case errors.Is(err, parsing.ErrJobParseFailed):
			respond.Error(c, http.StatusUnprocessableEntity, "job_parse_failed", "unable to extract a title and company from the posting", gin.H{"detail": err.Error()})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to ingest job", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toJobResponse(job))
}

type createManualRequest struct {
	Title        string                  `json:"title"`
	CompanyName  string                  `json:"companyName"`
	ApplyEmail   string                  `json:"applyEmail"`
	Requirements parsing.JobRequirements `json:"requirements"`
}

func (h *Handler) createManual(c *gin.Context) {
	var req createManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	job, err := h.Svc.CreateManual(c.Request.Context(), Job{
		Title:        req.Title,
		CompanyName:  req.CompanyName,
		ApplyEmail:   req.ApplyEmail,
		Requirements: req.Requirements,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "title and companyName are required", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create job", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toJobResponse(job))
}

func (h *Handler) detail(c *gin.Context) {
	job, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, toJobResponse(job))
}

func (h *Handler) list(c *gin.Context) {
	limit := 50
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

	items, err := h.Svc.ListActive(c.Request.Context(), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}

	resp := make([]gin.H, 0, len(items))
	for _, job := range items {
		resp = append(resp, toJobResponse(job))
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) archive(c *gin.Context) {
	if err := h.Svc.Archive(c.Request.Context(), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to archive job", nil)
		}
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"jobId": c.Param("id"), "status": StatusArchived})
}

func toJobResponse(job Job) gin.H {
	resp := gin.H{
		"jobId":        job.ID,
		"title":        job.Title,
		"companyName":  job.CompanyName,
		"requirements": job.Requirements,
		"sourceType":   job.SourceType,
		"status":       job.Status,
		"createdAt":    job.CreatedAt,
	}
	if job.ApplyEmail != "" {
		resp["applyEmail"] = job.ApplyEmail
	}
	return resp
}
