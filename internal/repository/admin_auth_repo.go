package repository

import (
	"context"
	"database/sql"
	"elsofra/internal/db"
	"errors"
	"fmt"
)

type AdminAuthRepository interface {
	GetByUsername(ctx context.Context, username string) (*db.Admin, error)
	CreateAdmin(ctx context.Context, username, passwordHash string) error
}

type adminAuthRepository struct {
	db *sql.DB
}

func NewAdminAuthRepository(db *sql.DB) AdminAuthRepository {
	return &adminAuthRepository{db: db}
}

func (r *adminAuthRepository) GetByUsername(ctx context.Context, username string) (*db.Admin, error) {
	var admin db.Admin
	err := r.db.QueryRowContext(ctx, "SELECT id, username, password_hash, is_active FROM admins WHERE username = $1", username).
		Scan(&admin.ID, &admin.Username, &admin.PasswordHash, &admin.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying admin: %w", err)
	}
	return &admin, nil
}

func (r *adminAuthRepository) CreateAdmin(ctx context.Context, username, passwordHash string) error {
	query := "INSERT INTO admins (username, password_hash) VALUES ($1, $2)"
	if _, err := r.db.ExecContext(ctx, query, username, passwordHash); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("admin %q already exists", username)
		}
		return fmt.Errorf("error creating admin: %w", err)
	}
	return nil
}
