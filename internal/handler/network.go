package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/middleware"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/service"
)

type NetworkHandler interface {
	FindRelated(c *gin.Context)
	Correlate(c *gin.Context)
	Details(c *gin.Context)
	Patterns(c *gin.Context)
}

type networkHandler struct {
	cases  service.CaseService
	engine service.CorrelationEngine
	logger *zap.Logger
}

func NewNetworkHandler(cases service.CaseService, engine service.CorrelationEngine, logger *zap.Logger) NetworkHandler {
	return &networkHandler{cases: cases, engine: engine, logger: logger}
}

// FindRelated handles GET /api/cases/:uid/related. Read-only lookup: no
// index update, no network linking.
func (h *networkHandler) FindRelated(c *gin.Context) {
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
		h.logger.Error("Failed to resolve case", zap.String("case_uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve case"})
		return
	}

	rs, err := h.engine.FindRelated(found.ID)
	if err != nil {
		h.logger.Error("Related-case lookup failed", zap.String("case_uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Related-case lookup failed"})
		return
	}

	c.JSON(http.StatusOK, rs)
}

// Correlate handles POST /api/cases/:uid/correlate. It extracts tokens,
// finds related cases and links the network in one run.
func (h *networkHandler) Correlate(c *gin.Context) {
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
		h.logger.Error("Failed to resolve case", zap.String("case_uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve case"})
		return
	}

	rs, err := h.engine.Correlate(found.ID, middleware.ActorID(c))
	if err != nil {
		h.logger.Error("Correlation run failed", zap.String("case_uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Correlation failed"})
		return
	}

	c.JSON(http.StatusOK, rs)
}

// Details handles GET /api/networks/:uid.
func (h *networkHandler) Details(c *gin.Context) {
	uid := c.Param("uid")

	details, err := h.engine.NetworkDetails(uid)
	if err != nil {
		if errors.Is(err, service.ErrNetworkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Network not found"})
			return
		}
		h.logger.Error("Failed to get network details", zap.String("network_uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get network details"})
		return
	}

	c.JSON(http.StatusOK, details)
}

// Patterns handles GET /api/networks/:uid/patterns.
func (h *networkHandler) Patterns(c *gin.Context) {
	uid := c.Param("uid")

	patterns, err := h.engine.CommonPatterns(uid)
	if err != nil {
		if errors.Is(err, service.ErrNetworkNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Network not found"})
			return
		}
		h.logger.Error("Failed to get network patterns", zap.String("network_uid", uid), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get network patterns"})
		return
	}

	c.JSON(http.StatusOK, patterns)
}
