package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/repository"
)

var ErrValidation = errors.New("validation failed")

// CaseService is the intake collaborator: it creates and reads the case
// records the evidence store and correlation engine operate on.
type CaseService interface {
	CreateCase(in models.CreateCaseInput, createdBy *int64) (*models.Case, error)
	GetCaseByUID(uid string) (*models.Case, error)
	ListCases() ([]*models.Case, error)
}

type caseService struct {
	repo   repository.CaseRepository
	audit  AuditSink
	logger *zap.Logger
}

func NewCaseService(repo repository.CaseRepository, audit AuditSink, logger *zap.Logger) CaseService {
	return &caseService{repo: repo, audit: audit, logger: logger}
}

func (s *caseService) CreateCase(in models.CreateCaseInput, createdBy *int64) (*models.Case, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if strings.TrimSpace(in.ViolationType) == "" {
		return nil, fmt.Errorf("%w: violation_type must not be empty", ErrValidation)
	}

	c := &models.Case{
		CaseUID: fmt.Sprintf("CASE-%s-%s", time.Now().Format("20060102"),
			strings.ToUpper(uuid.NewString()[:8])),
		Title:           in.Title,
		Description:     in.Description,
		ViolationType:   in.ViolationType,
		Status:          "new",
		ReporterName:    in.ReporterName,
		ReporterContact: in.ReporterContact,
		CreatedBy:       createdBy,
	}

	if err := s.repo.CreateCase(c); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}

	s.audit.Record(createdBy, "CREATE", "CASE", &c.ID,
		fmt.Sprintf("Created case %s: %s", c.CaseUID, c.Title))
	return c, nil
}

func (s *caseService) GetCaseByUID(uid string) (*models.Case, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, fmt.Errorf("%w: case reference must not be empty", ErrValidation)
	}
	c, err := s.repo.GetCaseByUID(uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case %s: %w", uid, err)
	}
	return c, nil
}

func (s *caseService) ListCases() ([]*models.Case, error) {
	return s.repo.ListCases()
}
