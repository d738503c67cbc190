package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"memorial-platform/internal/apperr"
	"memorial-platform/internal/models"
)

// AdminRepo reads admin accounts. Accounts are provisioned out of band;
// there is no registration path.
type AdminRepo struct {
	DB *sqlx.DB
}

func NewAdminRepo(db *sqlx.DB) *AdminRepo {
	return &AdminRepo{DB: db}
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	var admin models.Admin
	query := `SELECT id, email, password_hash, created_at, updated_at FROM admins WHERE email = $1`
	if err := r.DB.GetContext(ctx, &admin, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: admin %s", apperr.ErrNotFound, email)
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}
	return &admin, nil
}
