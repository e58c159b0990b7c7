package repository

import (
	"context"
	"database/sql"
	"fmt"

	"slotbook/internal/database"
	"slotbook/internal/models"
)

type UserRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByVID(ctx context.Context, vid int64) (*models.User, error) {
	user := &models.User{}
	query := `SELECT vid, name, email, is_staff, created_at FROM users WHERE vid = $1`

	err := r.db.QueryRowContext(ctx, query, vid).Scan(
		&user.VID,
		&user.Name,
		&user.Email,
		&user.IsStaff,
		&user.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	user.Roles, err = r.Roles(ctx, vid)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Upsert records the member as seen by the login flow. A missing email
// never erases a stored one.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (vid, name, email)
		VALUES ($1, $2, $3)
		ON CONFLICT (vid) DO UPDATE SET
			name = EXCLUDED.name,
			email = COALESCE(EXCLUDED.email, users.email)
		RETURNING email, is_staff, created_at`

	err := r.db.QueryRowContext(ctx, query, user.VID, user.Name, user.Email).
		Scan(&user.Email, &user.IsStaff, &user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *UserRepository) Roles(ctx context.Context, vid int64) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT role FROM user_roles WHERE vid = $1 ORDER BY role`, vid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []string
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}
