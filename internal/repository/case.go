package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
)

type CaseRepository interface {
	CreateCase(c *models.Case) error
	GetCaseByID(id int64) (*models.Case, error)
	GetCaseByUID(uid string) (*models.Case, error)
	ListCases() ([]*models.Case, error)
	// LockCase takes a row lock on the case inside tx so that two correlation
	// runs for the same case cannot interleave.
	LockCase(tx *sqlx.Tx, id int64) error
	// SearchCasesByText returns cases (other than excludeID) whose title or
	// description contains the token as a substring, newest first. The
	// result is exhaustive; display capping happens at the service layer.
	SearchCasesByText(token string, excludeID int64) ([]*models.Case, error)
	// SearchCasesByEvidenceText returns cases (other than excludeID) with an
	// evidence description or URL containing the token, newest first.
	SearchCasesByEvidenceText(token string, excludeID int64) ([]*models.Case, error)
}

type caseRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCaseRepository(db *sqlx.DB, logger *zap.Logger) CaseRepository {
	return &caseRepository{db: db, logger: logger}
}

const caseColumns = `id, case_uid, title, description, violation_type, status,
	reporter_name, reporter_contact, created_by, created_at, updated_at`

func (r *caseRepository) CreateCase(c *models.Case) error {
	query := `INSERT INTO cases (case_uid, title, description, violation_type, status, reporter_name, reporter_contact, created_by)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`
	return r.db.QueryRowx(query, c.CaseUID, c.Title, c.Description, c.ViolationType, c.Status,
		c.ReporterName, c.ReporterContact, c.CreatedBy).Scan(&c.ID, &c.CreatedAt)
}

func (r *caseRepository) GetCaseByID(id int64) (*models.Case, error) {
	var c models.Case
	query := `SELECT ` + caseColumns + ` FROM cases WHERE id = $1`
	if err := r.db.Get(&c, query, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) GetCaseByUID(uid string) (*models.Case, error) {
	var c models.Case
	query := `SELECT ` + caseColumns + ` FROM cases WHERE case_uid = $1`
	if err := r.db.Get(&c, query, uid); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *caseRepository) ListCases() ([]*models.Case, error) {
	var cases []*models.Case
	query := `SELECT ` + caseColumns + ` FROM cases ORDER BY created_at DESC`
	if err := r.db.Select(&cases, query); err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *caseRepository) LockCase(tx *sqlx.Tx, id int64) error {
	var locked int64
	return tx.Get(&locked, `SELECT id FROM cases WHERE id = $1 FOR UPDATE`, id)
}

func (r *caseRepository) SearchCasesByText(token string, excludeID int64) ([]*models.Case, error) {
	var cases []*models.Case
	query := `SELECT ` + caseColumns + `
	          FROM cases
	          WHERE (title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
	            AND id != $2
	          ORDER BY created_at DESC`
	if err := r.db.Select(&cases, query, token, excludeID); err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *caseRepository) SearchCasesByEvidenceText(token string, excludeID int64) ([]*models.Case, error) {
	var cases []*models.Case
	query := `SELECT DISTINCT c.id, c.case_uid, c.title, c.description, c.violation_type, c.status,
	                 c.reporter_name, c.reporter_contact, c.created_by, c.created_at, c.updated_at
	          FROM cases c
	          JOIN evidence e ON c.id = e.case_id
	          WHERE (e.description ILIKE '%' || $1 || '%' OR e.url ILIKE '%' || $1 || '%')
	            AND c.id != $2
	          ORDER BY c.created_at DESC`
	if err := r.db.Select(&cases, query, token, excludeID); err != nil {
		return nil, err
	}
	return cases, nil
}
