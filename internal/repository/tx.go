package repository

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// TxManager runs a function inside a database transaction with guaranteed
// rollback on error or panic. Evidence writes and correlation runs use it so
// that no partial record is ever left visible.
type TxManager interface {
	Do(fn func(tx *sqlx.Tx) error) error
}

type txManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) TxManager {
	return &txManager{db: db}
}

func (m *txManager) Do(fn func(tx *sqlx.Tx) error) error {
	tx, err := m.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
