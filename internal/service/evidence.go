package service

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/repository"
	"github.com/abujamal711/AbuJamal-CyberShield/internal/storage"
)

var (
	ErrCaseNotFound     = errors.New("case not found")
	ErrEvidenceNotFound = errors.New("evidence not found")
	ErrInvalidURL       = errors.New("invalid url")
)

// DuplicateContentError is returned when the uploaded bytes are already in
// the store. It carries the digest so the caller can locate the existing
// record and treat the upload as confirmation rather than failure.
type DuplicateContentError struct {
	Digest string
}

func (e *DuplicateContentError) Error() string {
	return fmt.Sprintf("evidence with digest %s already exists", e.Digest)
}

// StoreEvidenceInput is the input for storing an artifact.
type StoreEvidenceInput struct {
	CaseID       int64
	EvidenceType string
	Content      []byte
	Filename     string
	Description  *string
	UploadedBy   *int64
	URL          *string
}

type EvidenceStore interface {
	// Store persists the artifact bytes and their digest. Re-uploading
	// byte-identical content fails with *DuplicateContentError regardless of
	// filename or case; the store is global, one digest one record.
	Store(in StoreEvidenceInput) (*models.Evidence, error)
	// VerifyIntegrity recomputes the digest from the stored bytes and
	// compares it to the recorded one. Missing or unreadable bytes report
	// false, not an error; both mean loss of evidentiary integrity.
	VerifyIntegrity(evidenceID int64) (bool, error)
	// Describe returns the stored metadata plus live integrity and existence
	// checks, evaluated on every call.
	Describe(evidenceID int64) (*models.EvidenceInfo, error)
	// ArchiveURL snapshots a URL as a text artifact and stores it through
	// the normal digest/dedup path.
	ArchiveURL(rawURL string, caseID int64, uploadedBy *int64) (*models.Evidence, error)
}

type evidenceStore struct {
	cases     repository.CaseRepository
	evidence  repository.EvidenceRepository
	tx        repository.TxManager
	artifacts *storage.ArtifactStore
	audit     AuditSink
	logger    *zap.Logger
}

func NewEvidenceStore(
	cases repository.CaseRepository,
	evidence repository.EvidenceRepository,
	tx repository.TxManager,
	artifacts *storage.ArtifactStore,
	audit AuditSink,
	logger *zap.Logger,
) EvidenceStore {
	return &evidenceStore{
		cases:     cases,
		evidence:  evidence,
		tx:        tx,
		artifacts: artifacts,
		audit:     audit,
		logger:    logger,
	}
}

// Digest returns the SHA-256 digest of content as a hex string. Whole-buffer
// digest: the result is bit-identical however the bytes were read, and the
// empty input has its own well-defined digest.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func (s *evidenceStore) Store(in StoreEvidenceInput) (*models.Evidence, error) {
	if _, err := s.cases.GetCaseByID(in.CaseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("failed to load case %d: %w", in.CaseID, err)
	}

	digest := Digest(in.Content)

	// Courtesy pre-check so a duplicate upload never touches the disk. The
	// UNIQUE constraint below remains the authority under concurrency.
	if _, err := s.evidence.GetEvidenceByDigest(digest); err == nil {
		return nil, &DuplicateContentError{Digest: digest}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to check digest %s: %w", digest, err)
	}

	// Timestamp prefix keeps storage locators distinct even for repeated
	// original filenames; the digest remains the identity of the content.
	baseName := in.Filename
	if baseName == "" {
		baseName = "artifact"
	}
	storedName := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), filepath.Base(baseName))

	// Write first, register second. The write is reversed below if the
	// database insert does not commit, so no orphan survives a failure.
	path, err := s.artifacts.Save(storedName, in.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to store artifact: %w", err)
	}

	ev := &models.Evidence{
		CaseID:       in.CaseID,
		EvidenceType: in.EvidenceType,
		FileHash:     digest,
		FilePath:     path,
		URL:          in.URL,
		Description:  in.Description,
		UploadedBy:   in.UploadedBy,
	}
	if in.Filename != "" {
		name := in.Filename
		ev.Filename = &name
	}

	err = s.tx.Do(func(tx *sqlx.Tx) error {
		return s.evidence.CreateEvidence(tx, ev)
	})
	if err != nil {
		s.artifacts.Remove(path)
		if errors.Is(err, repository.ErrDuplicateDigest) {
			return nil, &DuplicateContentError{Digest: digest}
		}
		return nil, fmt.Errorf("failed to register evidence: %w", err)
	}

	s.audit.Record(in.UploadedBy, "UPLOAD", "EVIDENCE", &ev.ID,
		fmt.Sprintf("Stored evidence %s for case #%d (digest %s)", baseName, in.CaseID, digest))

	return ev, nil
}

func (s *evidenceStore) VerifyIntegrity(evidenceID int64) (bool, error) {
	ev, err := s.evidence.GetEvidenceByID(evidenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrEvidenceNotFound
		}
		return false, fmt.Errorf("failed to load evidence %d: %w", evidenceID, err)
	}

	exists, verified := s.check(ev)
	if !verified {
		s.audit.Record(nil, "INTEGRITY_FAILURE", "EVIDENCE", &ev.ID,
			fmt.Sprintf("Integrity check failed for evidence %d (file_exists=%t)", ev.ID, exists))
	}
	return verified, nil
}

func (s *evidenceStore) Describe(evidenceID int64) (*models.EvidenceInfo, error) {
	ev, err := s.evidence.GetEvidenceByID(evidenceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEvidenceNotFound
		}
		return nil, fmt.Errorf("failed to load evidence %d: %w", evidenceID, err)
	}

	exists, verified := s.check(ev)
	return &models.EvidenceInfo{
		Evidence:          *ev,
		IntegrityVerified: verified,
		FileExists:        exists,
	}, nil
}

// check reports file existence and digest match separately. A missing file
// and a tampered file are different forensic findings even though both fail
// the plain integrity check.
func (s *evidenceStore) check(ev *models.Evidence) (exists, verified bool) {
	exists = s.artifacts.Exists(ev.FilePath)
	if !exists {
		return false, false
	}
	content, err := s.artifacts.Read(ev.FilePath)
	if err != nil {
		s.logger.Warn("Failed to read evidence artifact",
			zap.Int64("evidence_id", ev.ID), zap.Error(err))
		return true, false
	}
	return true, Digest(content) == ev.FileHash
}

func (s *evidenceStore) ArchiveURL(rawURL string, caseID int64, uploadedBy *int64) (*models.Evidence, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, ErrInvalidURL
	}

	captured := time.Now()
	snapshot := fmt.Sprintf(
		"=== URL Archive ===\nURL: %s\nDomain: %s\nCaptured: %s\nCase: #%d\n",
		rawURL, parsed.Host, captured.Format(time.RFC3339), caseID)

	filename := fmt.Sprintf("url_archive_%s.txt", captured.Format("20060102_150405"))
	description := fmt.Sprintf("Archived URL: %s", rawURL)

	return s.Store(StoreEvidenceInput{
		CaseID:       caseID,
		EvidenceType: "url_archive",
		Content:      []byte(snapshot),
		Filename:     filename,
		Description:  &description,
		UploadedBy:   uploadedBy,
		URL:          &rawURL,
	})
}
