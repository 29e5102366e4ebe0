package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// TokenRepository maintains the inverted index from extracted identity token
// to case, so token lookups are index hits instead of full-table scans.
type TokenRepository interface {
	// ReplaceCaseTokens rewrites the index rows for one case inside tx.
	ReplaceCaseTokens(tx *sqlx.Tx, caseID int64, tokens []string) error
	// CaseIDsByToken returns ids of cases (other than excludeID) whose
	// indexed token set contains the exact token.
	CaseIDsByToken(token string, excludeID int64) ([]int64, error)
}

type tokenRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewTokenRepository(db *sqlx.DB, logger *zap.Logger) TokenRepository {
	return &tokenRepository{db: db, logger: logger}
}

func (r *tokenRepository) ReplaceCaseTokens(tx *sqlx.Tx, caseID int64, tokens []string) error {
	if _, err := tx.Exec(`DELETE FROM case_tokens WHERE case_id = $1`, caseID); err != nil {
		return err
	}
	for _, token := range tokens {
		_, err := tx.Exec(`INSERT INTO case_tokens (case_id, token) VALUES ($1, $2)
		                   ON CONFLICT (case_id, token) DO NOTHING`, caseID, token)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *tokenRepository) CaseIDsByToken(token string, excludeID int64) ([]int64, error) {
	var ids []int64
	query := `SELECT case_id FROM case_tokens WHERE token = $1 AND case_id != $2`
	if err := r.db.Select(&ids, query, token, excludeID); err != nil {
		return nil, err
	}
	return ids, nil
}
