package service

import (
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/repository"
)

// AuditSink records who did what to which record. It is fire-and-forget:
// evidentiary operations are never blocked by a logging fault, so failures
// are logged and swallowed here.
type AuditSink interface {
	Record(userID *int64, action, entityType string, entityID *int64, details string)
}

type auditSink struct {
	repo   repository.AuditRepository
	trail  *logrus.Logger
	logger *zap.Logger
}

// NewAuditSink writes audit entries to the database and mirrors them to the
// JSON audit trail log.
func NewAuditSink(repo repository.AuditRepository, trail *logrus.Logger, logger *zap.Logger) AuditSink {
	return &auditSink{repo: repo, trail: trail, logger: logger}
}

func (s *auditSink) Record(userID *int64, action, entityType string, entityID *int64, details string) {
	entry := &models.AuditEntry{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}

	if err := s.repo.InsertEntry(entry); err != nil {
		s.logger.Error("Failed to record audit entry",
			zap.String("action", action),
			zap.String("entity_type", entityType),
			zap.Error(err))
	}

	fields := logrus.Fields{
		"action":      action,
		"entity_type": entityType,
		"details":     details,
	}
	if userID != nil {
		fields["user_id"] = *userID
	}
	if entityID != nil {
		fields["entity_id"] = *entityID
	}
	s.trail.WithFields(fields).Info("audit")
}
