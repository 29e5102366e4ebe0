package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
)

type NetworkRepository interface {
	CreateNetwork(tx *sqlx.Tx, n *models.Network) error
	GetNetworkByUID(uid string) (*models.Network, error)
	GetNetworkByID(id int64) (*models.Network, error)
	// MembershipForCase returns the network the case currently belongs to,
	// or nil if the case is unlinked.
	MembershipForCase(tx *sqlx.Tx, caseID int64) (*models.CaseNetworkMembership, error)
	// AddMembership links a case to a network. Re-linking an already linked
	// pair is a no-op, enforced by the composite primary key.
	AddMembership(tx *sqlx.Tx, caseID, networkID int64) error
	// ReassignMemberships folds every member of fromNetworkID into
	// toNetworkID and removes the old membership rows.
	ReassignMemberships(tx *sqlx.Tx, fromNetworkID, toNetworkID int64) error
	DeleteNetwork(tx *sqlx.Tx, networkID int64) error
	MemberCases(networkID int64) ([]*models.Case, error)
	// NetworkTexts returns case descriptions plus evidence descriptions and
	// URLs for every member case, for pattern reporting.
	NetworkTexts(networkID int64) ([]string, error)
}

type networkRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewNetworkRepository(db *sqlx.DB, logger *zap.Logger) NetworkRepository {
	return &networkRepository{db: db, logger: logger}
}

func (r *networkRepository) CreateNetwork(tx *sqlx.Tx, n *models.Network) error {
	query := `INSERT INTO networks (network_uid, name, description)
	          VALUES ($1, $2, $3) RETURNING id, created_at`
	return tx.QueryRowx(query, n.NetworkUID, n.Name, n.Description).Scan(&n.ID, &n.CreatedAt)
}

func (r *networkRepository) GetNetworkByUID(uid string) (*models.Network, error) {
	var n models.Network
	query := `SELECT id, network_uid, name, description, created_at FROM networks WHERE network_uid = $1`
	if err := r.db.Get(&n, query, uid); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *networkRepository) GetNetworkByID(id int64) (*models.Network, error) {
	var n models.Network
	query := `SELECT id, network_uid, name, description, created_at FROM networks WHERE id = $1`
	if err := r.db.Get(&n, query, id); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *networkRepository) MembershipForCase(tx *sqlx.Tx, caseID int64) (*models.CaseNetworkMembership, error) {
	var m models.CaseNetworkMembership
	query := `SELECT case_id, network_id, linked_at FROM case_network WHERE case_id = $1`
	err := tx.Get(&m, query, caseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *networkRepository) AddMembership(tx *sqlx.Tx, caseID, networkID int64) error {
	query := `INSERT INTO case_network (case_id, network_id) VALUES ($1, $2)
	          ON CONFLICT (case_id, network_id) DO NOTHING`
	_, err := tx.Exec(query, caseID, networkID)
	return err
}

func (r *networkRepository) ReassignMemberships(tx *sqlx.Tx, fromNetworkID, toNetworkID int64) error {
	insert := `INSERT INTO case_network (case_id, network_id)
	           SELECT case_id, $2 FROM case_network WHERE network_id = $1
	           ON CONFLICT (case_id, network_id) DO NOTHING`
	if _, err := tx.Exec(insert, fromNetworkID, toNetworkID); err != nil {
		return err
	}
	_, err := tx.Exec(`DELETE FROM case_network WHERE network_id = $1`, fromNetworkID)
	return err
}

func (r *networkRepository) DeleteNetwork(tx *sqlx.Tx, networkID int64) error {
	_, err := tx.Exec(`DELETE FROM networks WHERE id = $1`, networkID)
	return err
}

func (r *networkRepository) MemberCases(networkID int64) ([]*models.Case, error) {
	var cases []*models.Case
	query := `SELECT c.id, c.case_uid, c.title, c.description, c.violation_type, c.status,
	                 c.reporter_name, c.reporter_contact, c.created_by, c.created_at, c.updated_at
	          FROM cases c
	          JOIN case_network cn ON c.id = cn.case_id
	          WHERE cn.network_id = $1
	          ORDER BY c.created_at DESC`
	if err := r.db.Select(&cases, query, networkID); err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *networkRepository) NetworkTexts(networkID int64) ([]string, error) {
	rows, err := r.db.Queryx(`
		SELECT c.description, e.description AS evidence_desc, e.url
		FROM cases c
		JOIN case_network cn ON c.id = cn.case_id
		LEFT JOIN evidence e ON c.id = e.case_id
		WHERE cn.network_id = $1`, networkID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var caseDesc sql.NullString
		var evidenceDesc sql.NullString
		var url sql.NullString
		if err := rows.Scan(&caseDesc, &evidenceDesc, &url); err != nil {
			r.logger.Error("Failed to scan network text row", zap.Error(err))
			continue
		}
		if caseDesc.Valid && caseDesc.String != "" {
			texts = append(texts, caseDesc.String)
		}
		if evidenceDesc.Valid && evidenceDesc.String != "" {
			texts = append(texts, evidenceDesc.String)
		}
		if url.Valid && url.String != "" {
			texts = append(texts, url.String)
		}
	}
	return texts, rows.Err()
}
