package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/middleware"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/service"
)

type EvidenceHandler interface {
	Upload(c *gin.Context)
	ArchiveURL(c *gin.Context)
	Describe(c *gin.Context)
	Verify(c *gin.Context)
}

type evidenceHandler struct {
	store  service.EvidenceStore
	logger *zap.Logger
}

func NewEvidenceHandler(store service.EvidenceStore, logger *zap.Logger) EvidenceHandler {
	return &evidenceHandler{store: store, logger: logger}
}

// Upload handles POST /api/evidence/upload (multipart form: case_id,
// evidence_type, description, file).
func (h *evidenceHandler) Upload(c *gin.Context) {
	caseID, err := strconv.ParseInt(c.PostForm("case_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "case_id must be an integer"})
		return
	}
	evidenceType := c.PostForm("evidence_type")
	if evidenceType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "evidence_type is required"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.logger.Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}

	var description *string
	if d := c.PostForm("description"); d != "" {
		description = &d
	}

	ev, err := h.store.Store(service.StoreEvidenceInput{
		CaseID:       caseID,
		EvidenceType: evidenceType,
		Content:      content,
		Filename:     fileHeader.Filename,
		Description:  description,
		UploadedBy:   middleware.ActorID(c),
	})
	if err != nil {
		var dup *service.DuplicateContentError
		switch {
		case errors.As(err, &dup):
			c.JSON(http.StatusConflict, gin.H{
				"error":     "Evidence with identical content already exists",
				"file_hash": dup.Digest,
			})
		case errors.Is(err, service.ErrCaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		default:
			h.logger.Error("Failed to store evidence", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store evidence"})
		}
		return
	}

	c.JSON(http.StatusCreated, ev)
}

// ArchiveURL handles POST /api/evidence/archive-url.
func (h *evidenceHandler) ArchiveURL(c *gin.Context) {
	var req struct {
		CaseID int64  `json:"case_id" binding:"required"`
		URL    string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ev, err := h.store.ArchiveURL(req.URL, req.CaseID, middleware.ActorID(c))
	if err != nil {
		var dup *service.DuplicateContentError
		switch {
		case errors.As(err, &dup):
			c.JSON(http.StatusConflict, gin.H{
				"error":     "This URL snapshot is already archived",
				"file_hash": dup.Digest,
			})
		case errors.Is(err, service.ErrInvalidURL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
		case errors.Is(err, service.ErrCaseNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
		default:
			h.logger.Error("Failed to archive URL", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to archive URL"})
		}
		return
	}

	c.JSON(http.StatusCreated, ev)
}

// Describe handles GET /api/evidence/:id.
func (h *evidenceHandler) Describe(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	info, err := h.store.Describe(id)
	if err != nil {
		if errors.Is(err, service.ErrEvidenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Evidence not found"})
			return
		}
		h.logger.Error("Failed to describe evidence", zap.Int64("evidence_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to describe evidence"})
		return
	}

	c.JSON(http.StatusOK, info)
}

// Verify handles GET /api/evidence/:id/verify.
func (h *evidenceHandler) Verify(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}

	verified, err := h.store.VerifyIntegrity(id)
	if err != nil {
		if errors.Is(err, service.ErrEvidenceNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Evidence not found"})
			return
		}
		h.logger.Error("Failed to verify evidence", zap.Int64("evidence_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify evidence"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"evidence_id": id, "integrity_verified": verified})
}
