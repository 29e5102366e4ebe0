package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/middleware"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/service"
)

type CaseHandler interface {
	CreateCase(c *gin.Context)
	GetCase(c *gin.Context)
	ListCases(c *gin.Context)
}

type caseHandler struct {
	cases  service.CaseService
	logger *zap.Logger
}

func NewCaseHandler(cases service.CaseService, logger *zap.Logger) CaseHandler {
	return &caseHandler{cases: cases, logger: logger}
}

func (h *caseHandler) CreateCase(c *gin.Context) {
	var input models.CreateCaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.cases.CreateCase(input, middleware.ActorID(c))
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to create case", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create case"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *caseHandler) GetCase(c *gin.Context) {
	uid := c.Param("uid")

	found, err := h.cases.GetCaseByUID(uid)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
			return
		}
		if errors.Is(err, service.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to get case", zap.String("case_uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get case"})
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *caseHandler) ListCases(c *gin.Context) {
	cases, err := h.cases.ListCases()
	if err != nil {
		h.logger.Error("Failed to list cases", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cases"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cases": cases, "total": len(cases)})
}
