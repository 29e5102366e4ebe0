package repository

import (
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/abujamal711/AbuJamal-CyberShield/internal/models"
)

type AuthRepository interface {
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id int64) (*models.User, error)
	CountUsers() (int, error)
}

type authRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewAuthRepository(db *sqlx.DB, logger *zap.Logger) AuthRepository {
	return &authRepository{db: db, logger: logger}
}

func (r *authRepository) CreateUser(user *models.User) error {
	query := `INSERT INTO users (username, full_name, password_hash, role, is_active)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`
	return r.db.QueryRowx(query, user.Username, user.FullName, user.PasswordHash,
		user.Role, user.IsActive).Scan(&user.ID, &user.CreatedAt)
}

func (r *authRepository) GetUserByUsername(username string) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, full_name, password_hash, role, is_active, created_at
	          FROM users WHERE username = $1 AND is_active = TRUE`
	if err := r.db.Get(&user, query, username); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) GetUserByID(id int64) (*models.User, error) {
	var user models.User
	query := `SELECT id, username, full_name, password_hash, role, is_active, created_at
	          FROM users WHERE id = $1`
	if err := r.db.Get(&user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *authRepository) CountUsers() (int, error) {
	var count int
	if err := r.db.Get(&count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, err
	}
	return count, nil
}
