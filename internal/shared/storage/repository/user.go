package repository

import (
	"context"
	"database/sql"
	"errors"

	"civic-portal/internal/shared/model"
)

const userColumns = "id, name, email, password_hash, role, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapError(err)
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	query := s.rebind(`INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`)
	_, err := s.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role, user.CreatedAt, user.UpdatedAt)
	return wrapError(err)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = $1`)
	return scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = $1`)
	return scanUser(s.db.QueryRowContext(ctx, query, id))
}
