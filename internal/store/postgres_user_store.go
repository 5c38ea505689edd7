package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"cinevault/internal/domain"
	"cinevault/internal/query"
)

const userColumns = `u.id, u.username, u.email, u.password_hash, u.created_at, u.is_deleted`

// CreateUser создает пользователя, заполняет ID и CreatedAt.
func (s *PostgresStore) CreateUser(ctx context.Context, user *domain.User) error {
	q := `INSERT INTO users (username, email, password_hash)
          VALUES ($1, $2, $3) RETURNING id, created_at`

	s.logger.DebugContext(ctx, "Executing CreateUser query", slog.String("username", user.Username), slog.String("email", user.Email))
	err := s.db.QueryRowxContext(ctx, q, user.Username, user.Email, user.PasswordHash).
		Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return s.writeError(ctx, "create user", err, false)
	}
	s.logger.InfoContext(ctx, "User created successfully in DB", slog.Int64("userID", user.ID))
	return nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	q := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1 AND u.is_deleted = FALSE`
	var user domain.User

	s.logger.DebugContext(ctx, "Executing GetUserByID query", slog.Int64("userID", id))
	if err := s.db.GetContext(ctx, &user, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "User not found by ID in DB", slog.Int64("userID", id))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get user by ID from DB", slog.Int64("userID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

func (s *PostgresStore) FindUsers(ctx context.Context, filter *query.UserFilter) ([]*domain.User, error) {
	tail, args := filter.SQL()
	q := s.db.Rebind(`SELECT ` + userColumns + ` FROM users u ` + tail)

	users := []*domain.User{}
	s.logger.DebugContext(ctx, "Executing FindUsers query", slog.String("query", q), slog.Any("args", args))
	if err := s.db.SelectContext(ctx, &users, q, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list users from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *domain.User) error {
	q := `UPDATE users SET username = $1, email = $2, password_hash = $3
          WHERE id = $4 AND is_deleted = FALSE`

	s.logger.DebugContext(ctx, "Executing UpdateUser query", slog.Int64("userID", user.ID))
	res, err := s.db.ExecContext(ctx, q, user.Username, user.Email, user.PasswordHash, user.ID)
	if err != nil {
		return s.writeError(ctx, "update user", err, false)
	}
	if err := affectOne(res); err != nil {
		s.logger.WarnContext(ctx, "No user found to update in DB", slog.Int64("userID", user.ID))
		return err
	}
	s.logger.InfoContext(ctx, "User updated successfully in DB", slog.Int64("userID", user.ID))
	return nil
}

func (s *PostgresStore) DeleteUser(ctx context.Context, id int64) error {
	return s.hardDelete(ctx, "users", id, "userID")
}

func (s *PostgresStore) SoftDeleteUser(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "users", id, "userID")
}
