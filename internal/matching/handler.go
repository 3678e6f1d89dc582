package matching

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobflow-backend/internal/resumes"
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

// RegisterRoutes attaches matching routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/ai/match", h.run)
	rg.GET("/ai/match/:resumeId", h.history)
}

type matchRequest struct {
	ResumeID string `json:"resumeId"`
	TopN     int    `json:"topN"`
}

func (h *Handler) run(c *gin.Context) {
	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.ResumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeId is required", nil)
		return
	}

	results, err := h.Svc.Run(c.Request.Context(), req.ResumeID, req.TopN)
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrNotFound), errors.Is(err, resumes.ErrNoParse):
			respond.Error(c, http.StatusNotFound, "not_found", "resume has no parsed fields to match", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run matching", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"resumeId": req.ResumeID,
		"results":  toResponses(results),
	})
}

func (h *Handler) history(c *gin.Context) {
	resumeID := c.Param("resumeId")

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	results, err := h.Svc.History(c.Request.Context(), resumeID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list match results", nil)
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{
		"resumeId": resumeID,
		"results":  toResponses(results),
	})
}

func toResponses(results []MatchResult) []gin.H {
	out := make([]gin.H, 0, len(results))
	for _, result := range results {
		out = append(out, gin.H{
			"matchId":    result.ID,
			"jobId":      result.JobID,
			"score":      result.Score,
			"highlights": result.Highlights,
			"template":   result.TemplateRecommendation,
			"createdAt":  result.CreatedAt,
		})
	}
	return out
}
