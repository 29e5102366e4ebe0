package main

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/config"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/repository"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/server"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	cfgPath := "configs/config.yml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := repository.NewPostgresDB(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := repository.MigrateDB(db, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	auditTrail := newAuditTrailLogger(cfg.Audit.LogFile, logger)

	srv, err := server.NewServer(cfg, db, auditTrail, logger)
	if err != nil {
		logger.Fatal("Failed to initialize server", zap.Error(err))
	}

	if err := srv.Run(); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

// newAuditTrailLogger builds the JSON audit trail logger. If the audit file
// cannot be opened the trail falls back to stderr; audit logging must never
// block evidentiary operations.
func newAuditTrailLogger(path string, logger *zap.Logger) *logrus.Logger {
	trail := logrus.New()
	trail.SetFormatter(&logrus.JSONFormatter{})

	if path == "" {
		return trail
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		logger.Warn("Failed to create audit log directory", zap.Error(err))
		return trail
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logger.Warn("Failed to open audit log file", zap.String("path", path), zap.Error(err))
		return trail
	}
	trail.SetOutput(file)
	return trail
}
