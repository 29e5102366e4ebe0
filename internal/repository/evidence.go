package repository

import (
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
)

// ErrDuplicateDigest is returned when an insert collides with the UNIQUE
// constraint on evidence.file_hash. The constraint, not an application-level
// check, is what enforces one-digest-one-record under concurrent uploads.
var ErrDuplicateDigest = errors.New("evidence with this digest already exists")

const pqUniqueViolation = "23505"

type EvidenceRepository interface {
	// CreateEvidence inserts the record inside tx. Returns ErrDuplicateDigest
	// if the digest is already registered.
	CreateEvidence(tx *sqlx.Tx, ev *models.Evidence) error
	GetEvidenceByID(id int64) (*models.Evidence, error)
	GetEvidenceByDigest(digest string) (*models.Evidence, error)
	ListEvidenceByCase(caseID int64) ([]*models.Evidence, error)
}

type evidenceRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewEvidenceRepository(db *sqlx.DB, logger *zap.Logger) EvidenceRepository {
	return &evidenceRepository{db: db, logger: logger}
}

const evidenceColumns = `id, case_id, evidence_type, filename, file_hash, file_path, url, description, uploaded_by, uploaded_at`

func (r *evidenceRepository) CreateEvidence(tx *sqlx.Tx, ev *models.Evidence) error {
	query := `INSERT INTO evidence (case_id, evidence_type, filename, file_hash, file_path, url, description, uploaded_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, uploaded_at`
	err := tx.QueryRowx(query, ev.CaseID, ev.EvidenceType, ev.Filename, ev.FileHash,
		ev.FilePath, ev.URL, ev.Description, ev.UploadedBy).Scan(&ev.ID, &ev.UploadedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return ErrDuplicateDigest
		}
		return err
	}
	return nil
}

func (r *evidenceRepository) GetEvidenceByID(id int64) (*models.Evidence, error) {
	var ev models.Evidence
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE id = $1`
	if err := r.db.Get(&ev, query, id); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evidenceRepository) GetEvidenceByDigest(digest string) (*models.Evidence, error) {
	var ev models.Evidence
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE file_hash = $1`
	if err := r.db.Get(&ev, query, digest); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (r *evidenceRepository) ListEvidenceByCase(caseID int64) ([]*models.Evidence, error) {
	var items []*models.Evidence
	query := `SELECT ` + evidenceColumns + ` FROM evidence WHERE case_id = $1 ORDER BY uploaded_at DESC`
	if err := r.db.Select(&items, query, caseID); err != nil {
		return nil, err
	}
	return items, nil
}
