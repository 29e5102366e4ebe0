package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/config"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/handler"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/middleware"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/repository"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/service"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/storage"
)

type Server struct {
	router *gin.Engine
	cfg    *config.Config
	logger *zap.Logger
}

// NewServer wires repositories, services and handlers and sets up routes.
func NewServer(cfg *config.Config, db *sqlx.DB, auditTrail *logrus.Logger, logger *zap.Logger) (*Server, error) {
	artifacts, err := storage.NewArtifactStore(cfg.Storage.Root, logger)
	if err != nil {
		return nil, err
	}

	caseRepo := repository.NewCaseRepository(db, logger)
	evidenceRepo := repository.NewEvidenceRepository(db, logger)
	networkRepo := repository.NewNetworkRepository(db, logger)
	tokenRepo := repository.NewTokenRepository(db, logger)
	auditRepo := repository.NewAuditRepository(db, logger)
	authRepo := repository.NewAuthRepository(db, logger)
	txManager := repository.NewTxManager(db)

	auditSink := service.NewAuditSink(auditRepo, auditTrail, logger)
	authService := service.NewAuthService(authRepo, auditSink, cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour, logger)
	caseService := service.NewCaseService(caseRepo, auditSink, logger)
	evidenceStore := service.NewEvidenceStore(caseRepo, evidenceRepo, txManager, artifacts, auditSink, logger)
	engine := service.NewCorrelationEngine(caseRepo, evidenceRepo, networkRepo, tokenRepo,
		txManager, auditSink, cfg.Correlation.MaxRelatedDisplay, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	caseHandler := handler.NewCaseHandler(caseService, logger)
	evidenceHandler := handler.NewEvidenceHandler(evidenceStore, logger)
	networkHandler := handler.NewNetworkHandler(caseService, engine, logger)

	router := gin.Default()

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	authGroup := router.Group("/api/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(authService, logger))
	{
		api.POST("/cases", caseHandler.CreateCase)
		api.GET("/cases", caseHandler.ListCases)
		api.GET("/cases/:uid", caseHandler.GetCase)
		api.GET("/cases/:uid/related", networkHandler.FindRelated)
		api.POST("/cases/:uid/correlate", networkHandler.Correlate)

		api.POST("/evidence/upload", evidenceHandler.Upload)
		api.POST("/evidence/archive-url", evidenceHandler.ArchiveURL)
		api.GET("/evidence/:id", evidenceHandler.Describe)
		api.GET("/evidence/:id/verify", evidenceHandler.Verify)

		api.GET("/networks/:uid", networkHandler.Details)
		api.GET("/networks/:uid/patterns", networkHandler.Patterns)
	}

	return &Server{router: router, cfg: cfg, logger: logger}, nil
}

func (s *Server) Run() error {
	s.logger.Info("Server starting", zap.String("port", s.cfg.Server.Port))
	return s.router.Run(s.cfg.Server.Port)
}
