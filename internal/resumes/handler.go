package resumes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobflow-backend/internal/parsing"
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

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.POST("/resumes/:id/parse", h.reparse)
	rg.GET("/resumes/:id", h.detail)
	rg.GET("/resumes", h.list)
}

// RegisterAdminRoutes attaches correction routes; callers guard the group
// with middleware.RequireAdmin.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.PUT("/resumes/:id/fields", h.correctFields)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if h.Svc.MaxSizeBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.Svc.MaxSizeBytes+4096)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	resume, err := h.Svc.Upload(c.Request.Context(), userID, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnsupportedFileType):
			respond.Error(c, http.StatusBadRequest, "unsupported_file_type", err.Error(), nil)
		case errors.Is(err, ErrFileTooLarge):
			respond.Error(c, http.StatusBadRequest, "file_too_large", "resume file exceeds the size limit", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, toResumeResponse(resume))
}

func (h *Handler) reparse(c *gin.Context) {
	resumeID := c.Param("id")

	record, err := h.Svc.Reparse(c.Request.Context(), resumeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, parsing.ErrExtractionFailed):
			respond.Error(c, http.StatusBadGateway, "extraction_failed", "all extraction tiers failed", gin.H{"detail": err.Error()})
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to re-parse resume", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, toParseResponse(record))
}

func (h *Handler) detail(c *gin.Context) {
	resumeID := c.Param("id")

	resume, err := h.Svc.Get(c.Request.Context(), resumeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		}
		return
	}

	resp := toResumeResponse(resume)
	record, err := h.Svc.LatestParse(c.Request.Context(), resumeID)
	switch {
	case err == nil:
		resp["latestParse"] = toParseResponse(record)
	case errors.Is(err, ErrNoParse):
		// Uploaded but never parsed; the resume alone is still a valid answer.
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch parse record", nil)
		return
	}

	respond.JSON(c, http.StatusOK, resp)
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
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}

	resp := make([]gin.H, 0, len(items))
	for _, resume := range items {
		resp = append(resp, toResumeResponse(resume))
	}
	respond.JSON(c, http.StatusOK, resp)
}

type correctFieldsRequest struct {
	Fields parsing.Fields `json:"fields"`
	Note   string         `json:"note"`
}

func (h *Handler) correctFields(c *gin.Context) {
	resumeID := c.Param("id")

	var req correctFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	version, err := h.Svc.AppendCorrectedParse(c.Request.Context(), resumeID, req.Fields, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save correction", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, gin.H{"resumeId": resumeID, "version": version})
}

func toResumeResponse(resume Resume) gin.H {
	resp := gin.H{
		"resumeId":   resume.ID,
		"fileName":   resume.Filename,
		"status":     resume.Status,
		"uploadedAt": resume.UploadedAt,
		"updatedAt":  resume.UpdatedAt,
	}
	if resume.ErrorMessage != "" {
		resp["errorMessage"] = resume.ErrorMessage
	}
	return resp
}

func toParseResponse(record ParseRecord) gin.H {
	return gin.H{
		"parseId":  record.ID,
		"version":  record.Version,
		"fields":   record.ExtractedFields,
		"parsedAt": record.ParsedAt,
	}
}
