package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "postgres"), mock
}

func TestCreateEvidence(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEvidenceRepository(db, zap.NewNop())
	manager := NewTxManager(db)

	uploadedAt := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO evidence").
		WithArgs(int64(1), "screenshot", "proof.png", "abc123", "storage/uploads/proof.png",
			nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "uploaded_at"}).AddRow(int64(42), uploadedAt))
	mock.ExpectCommit()

	filename := "proof.png"
	ev := &models.Evidence{
		CaseID:       1,
		EvidenceType: "screenshot",
		Filename:     &filename,
		FileHash:     "abc123",
		FilePath:     "storage/uploads/proof.png",
	}
	err := manager.Do(func(tx *sqlx.Tx) error {
		return repo.CreateEvidence(tx, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(42), ev.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvidenceDuplicateDigest(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEvidenceRepository(db, zap.NewNop())
	manager := NewTxManager(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO evidence").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "evidence_file_hash_key"})
	mock.ExpectRollback()

	filename := "proof.png"
	ev := &models.Evidence{CaseID: 1, EvidenceType: "screenshot", Filename: &filename, FileHash: "abc123"}
	err := manager.Do(func(tx *sqlx.Tx) error {
		return repo.CreateEvidence(tx, ev)
	})
	assert.ErrorIs(t, err, ErrDuplicateDigest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEvidenceByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEvidenceRepository(db, zap.NewNop())

	uploadedAt := time.Now()
	rows := sqlmock.NewRows([]string{"id", "case_id", "evidence_type", "filename",
		"file_hash", "file_path", "url", "description", "uploaded_by", "uploaded_at"}).
		AddRow(int64(42), int64(1), "screenshot", "proof.png", "abc123",
			"storage/uploads/proof.png", nil, nil, nil, uploadedAt)
	mock.ExpectQuery("SELECT (.+) FROM evidence WHERE id =").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	ev, err := repo.GetEvidenceByID(42)
	require.NoError(t, err)
	assert.Equal(t, "abc123", ev.FileHash)
	assert.Equal(t, int64(1), ev.CaseID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetEvidenceByDigestNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEvidenceRepository(db, zap.NewNop())

	mock.ExpectQuery("SELECT (.+) FROM evidence WHERE file_hash =").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetEvidenceByDigest("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
