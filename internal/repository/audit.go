package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
)

type AuditRepository interface {
	InsertEntry(entry *models.AuditEntry) error
}

type auditRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAuditRepository(db *sqlx.DB, logger *zap.Logger) AuditRepository {
	return &auditRepository{db: db, logger: logger}
}

func (r *auditRepository) InsertEntry(entry *models.AuditEntry) error {
	query := `INSERT INTO audit_log (user_id, action, entity_type, entity_id, details)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query, entry.UserID, entry.Action, entry.EntityType,
		entry.EntityID, entry.Details).Scan(&entry.ID, &entry.CreatedAt)
}
