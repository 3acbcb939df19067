package repo

import (
	"context"

	"github.com/BuzzLyutic/taskauth-api/internal/model"
)

func (r *PostgresStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, hashed_password, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, email, hashed_password, is_active, created_at
	`, u.Email, u.HashedPassword, u.IsActive).Scan(
		&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt,
	)
	return u, r.mapError(err)
}

func (r *PostgresStore) GetUser(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, hashed_password, is_active, created_at
		FROM users
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt)
	return u, r.mapError(err)
}

func (r *PostgresStore) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, hashed_password, is_active, created_at
		FROM users
		WHERE email = $1
	`, email).Scan(&u.ID, &u.Email, &u.HashedPassword, &u.IsActive, &u.CreatedAt)
	return u, r.mapError(err)
}
