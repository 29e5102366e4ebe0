package models

import "time"

// Evidence represents a forensic artifact stored in the 'evidence' table.
// Content is immutable after upload; FileHash is a SHA-256 digest of the
// exact bytes and is globally unique across the whole store.
type Evidence struct {
	ID           int64     `db:"id" json:"id"`
	CaseID       int64     `db:"case_id" json:"case_id"`
	EvidenceType string    `db:"evidence_type" json:"evidence_type"`
	Filename     *string   `db:"filename" json:"filename,omitempty"` // Nullable for URL archives
	FileHash     string    `db:"file_hash" json:"file_hash"`
	FilePath     string    `db:"file_path" json:"file_path"`
	URL          *string   `db:"url" json:"url,omitempty"`
	Description  *string   `db:"description" json:"description,omitempty"`
	UploadedBy   *int64    `db:"uploaded_by" json:"uploaded_by,omitempty"`
	UploadedAt   time.Time `db:"uploaded_at" json:"uploaded_at"`
}

// EvidenceInfo is Evidence plus the live integrity and existence checks.
// Both checks are evaluated at read time, never cached.
type EvidenceInfo struct {
	Evidence
	IntegrityVerified bool `json:"integrity_verified"`
	FileExists        bool `json:"file_exists"`
}
