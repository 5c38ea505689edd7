package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"cinevault/internal/domain"
)

// reviewRow отзыв с развернутыми связями. Пустые связи значат удаленную запись.
type reviewRow struct {
	domain.Review
	MovieTitle   sql.NullString `db:"movie_title"`
	MovieGenre   sql.NullString `db:"movie_genre"`
	UserUsername sql.NullString `db:"user_username"`
}

const reviewSelect = `SELECT r.id, r.movie_id, r.user_id, r.rating, r.comment, r.created_at, r.is_deleted,
       m.title AS movie_title, m.genre AS movie_genre, u.username AS user_username
FROM reviews r
LEFT JOIN movies m ON m.id = r.movie_id AND m.is_deleted = FALSE
LEFT JOIN users u ON u.id = r.user_id AND u.is_deleted = FALSE
WHERE r.is_deleted = FALSE`

func (row reviewRow) toDomain() *domain.Review {
	r := row.Review
	if row.MovieTitle.Valid {
		r.Movie = &domain.Movie{ID: r.MovieID, Title: row.MovieTitle.String, Genre: row.MovieGenre.String}
	}
	if row.UserUsername.Valid {
		r.User = &domain.User{ID: r.UserID, Username: row.UserUsername.String}
	}
	return &r
}

// selectReviews выбирает неудаленные отзывы по дополнительному условию с плейсхолдерами "?".
// Срезы в аргументах раскрываются через sqlx.In.
func (s *PostgresStore) selectReviews(ctx context.Context, cond string, args ...any) ([]*domain.Review, error) {
	q := reviewSelect
	if cond != "" {
		q += " AND " + cond
	}
	q += " ORDER BY r.created_at, r.id"

	q, args, err := sqlx.In(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to build reviews query: %w", err)
	}
	q = s.db.Rebind(q)

	var rows []reviewRow
	s.logger.DebugContext(ctx, "Executing select reviews query", slog.String("query", q), slog.Any("args", args))
	if err := s.db.SelectContext(ctx, &rows, q, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to select reviews from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to select reviews: %w", err)
	}
	out := make([]*domain.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// CreateReview создает отзыв, заполняет ID и CreatedAt.
func (s *PostgresStore) CreateReview(ctx context.Context, review *domain.Review) error {
	q := `INSERT INTO reviews (movie_id, user_id, rating, comment)
          VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	s.logger.DebugContext(ctx, "Executing Create review query",
		slog.Int64("movieID", review.MovieID),
		slog.Int64("userID", review.UserID))

	err := s.db.QueryRowxContext(ctx, q, review.MovieID, review.UserID, review.Rating, review.Comment).
		Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		return s.writeError(ctx, "create review", err, false)
	}
	s.logger.InfoContext(ctx, "Review created successfully in DB", slog.Int64("reviewID", review.ID))
	return nil
}

func (s *PostgresStore) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	reviews, err := s.selectReviews(ctx, "r.id = ?", id)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		s.logger.WarnContext(ctx, "Review not found by ID in DB", slog.Int64("reviewID", id))
		return nil, ErrNotFound
	}
	return reviews[0], nil
}

func (s *PostgresStore) ListReviews(ctx context.Context) ([]*domain.Review, error) {
	return s.selectReviews(ctx, "")
}

func (s *PostgresStore) ReviewsByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	reviews, err := s.selectReviews(ctx, "r.user_id = ?", userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Review, 0, len(reviews))
	for _, r := range reviews {
		out = append(out, *r)
	}
	return out, nil
}

func (s *PostgresStore) FindUserReview(ctx context.Context, movieID, userID int64) (*domain.Review, error) {
	reviews, err := s.selectReviews(ctx, "r.movie_id = ? AND r.user_id = ?", movieID, userID)
	if err != nil {
		return nil, err
	}
	if len(reviews) == 0 {
		return nil, ErrNotFound
	}
	return reviews[0], nil
}

func (s *PostgresStore) UpdateReview(ctx context.Context, review *domain.Review) error {
	q := `UPDATE reviews SET movie_id = $1, user_id = $2, rating = $3, comment = $4
          WHERE id = $5 AND is_deleted = FALSE`

	s.logger.DebugContext(ctx, "Executing UpdateReview query", slog.Int64("reviewID", review.ID))
	res, err := s.db.ExecContext(ctx, q, review.MovieID, review.UserID, review.Rating, review.Comment, review.ID)
	if err != nil {
		return s.writeError(ctx, "update review", err, false)
	}
	if err := affectOne(res); err != nil {
		s.logger.WarnContext(ctx, "No review found to update in DB", slog.Int64("reviewID", review.ID))
		return err
	}
	s.logger.InfoContext(ctx, "Review updated successfully in DB", slog.Int64("reviewID", review.ID))
	return nil
}

func (s *PostgresStore) DeleteReview(ctx context.Context, id int64) error {
	return s.hardDelete(ctx, "reviews", id, "reviewID")
}

func (s *PostgresStore) SoftDeleteReview(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "reviews", id, "reviewID")
}
