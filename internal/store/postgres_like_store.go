package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"cinevault/internal/domain"
)

// CreateLike создает отметку. Повтор пары (review, user) дает ErrAlreadyExists через частичный уникальный индекс.
func (s *PostgresStore) CreateLike(ctx context.Context, like *domain.Like) error {
	q := `INSERT INTO likes (review_id, user_id) VALUES ($1, $2) RETURNING id`

	s.logger.DebugContext(ctx, "Executing CreateLike query",
		slog.Int64("reviewID", like.ReviewID), slog.Int64("userID", like.UserID))
	if err := s.db.QueryRowxContext(ctx, q, like.ReviewID, like.UserID).Scan(&like.ID); err != nil {
		return s.writeError(ctx, "create like", err, false)
	}
	s.logger.InfoContext(ctx, "Like created successfully in DB", slog.Int64("likeID", like.ID))
	return nil
}

func (s *PostgresStore) GetLike(ctx context.Context, id int64) (*domain.Like, error) {
	q := `SELECT id, review_id, user_id, is_deleted FROM likes WHERE id = $1 AND is_deleted = FALSE`
	var like domain.Like
	if err := s.db.GetContext(ctx, &like, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Like not found by ID in DB", slog.Int64("likeID", id))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get like by ID: %w", err)
	}
	return &like, nil
}

func (s *PostgresStore) SoftDeleteLike(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "likes", id, "likeID")
}
