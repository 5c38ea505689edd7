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

const movieColumns = `m.id, m.title, m.description, m.release_date, m.genre, m.director, m.is_deleted`

// CreateMovie создает фильм и заполняет movie.ID.
func (s *PostgresStore) CreateMovie(ctx context.Context, movie *domain.Movie) error {
	q := `INSERT INTO movies (title, description, release_date, genre, director)
          VALUES ($1, $2, $3, $4, $5) RETURNING id`

	s.logger.DebugContext(ctx, "Executing Create movie query", slog.String("title", movie.Title))
	err := s.db.QueryRowxContext(ctx, q,
		movie.Title, movie.Description, movie.ReleaseDate, movie.Genre, movie.Director,
	).Scan(&movie.ID)
	if err != nil {
		return s.writeError(ctx, "create movie", err, false)
	}
	s.logger.InfoContext(ctx, "Movie created successfully in DB", slog.Int64("movieID", movie.ID))
	return nil
}

// GetMovie находит неудаленный фильм с отзывами и актерами.
func (s *PostgresStore) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	q := `SELECT ` + movieColumns + ` FROM movies m WHERE m.id = $1 AND m.is_deleted = FALSE`
	var movie domain.Movie

	s.logger.DebugContext(ctx, "Executing GetMovie query", slog.Int64("movieID", id))
	if err := s.db.GetContext(ctx, &movie, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Movie not found by ID in DB", slog.Int64("movieID", id))
			return nil, ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get movie by ID from DB", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get movie by ID: %w", err)
	}

	movies := []*domain.Movie{&movie}
	if err := s.attachReviews(ctx, movies); err != nil {
		return nil, err
	}

	actorsQuery := `SELECT a.id, a.full_name, a.birth_date, a.biography, a.is_deleted
                    FROM actors a JOIN movie_actors ma ON ma.actor_id = a.id
                    WHERE ma.movie_id = $1 AND a.is_deleted = FALSE
                    ORDER BY a.id`
	if err := s.db.SelectContext(ctx, &movie.Actors, actorsQuery, id); err != nil {
		s.logger.ErrorContext(ctx, "Failed to load movie actors", slog.Int64("movieID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load movie actors: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie found by ID in DB", slog.Int64("movieID", movie.ID))
	return &movie, nil
}

// FindMovies выполняет фильтр целиком в SQL и подгружает отзывы найденных фильмов.
func (s *PostgresStore) FindMovies(ctx context.Context, filter *query.MovieFilter) ([]*domain.Movie, error) {
	tail, args := filter.SQL()
	q := s.db.Rebind(`SELECT ` + movieColumns + ` FROM movies m ` + tail)

	movies := []*domain.Movie{}
	s.logger.DebugContext(ctx, "Executing FindMovies query", slog.String("query", q), slog.Any("args", args))
	if err := s.db.SelectContext(ctx, &movies, q, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list movies from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list movies: %w", err)
	}
	if err := s.attachReviews(ctx, movies); err != nil {
		return nil, err
	}
	return movies, nil
}

func (s *PostgresStore) attachReviews(ctx context.Context, movies []*domain.Movie) error {
	if len(movies) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(movies))
	byID := make(map[int64]*domain.Movie, len(movies))
	for _, m := range movies {
		ids = append(ids, m.ID)
		byID[m.ID] = m
	}
	reviews, err := s.selectReviews(ctx, "r.movie_id IN (?)", ids)
	if err != nil {
		return err
	}
	for _, r := range reviews {
		if m, ok := byID[r.MovieID]; ok {
			r.Movie = nil
			m.Reviews = append(m.Reviews, *r)
		}
	}
	return nil
}

// UpdateMovie заменяет все изменяемые поля.
func (s *PostgresStore) UpdateMovie(ctx context.Context, movie *domain.Movie) error {
	q := `UPDATE movies SET title = $1, description = $2, release_date = $3, genre = $4, director = $5
          WHERE id = $6 AND is_deleted = FALSE`

	s.logger.DebugContext(ctx, "Executing UpdateMovie query", slog.Int64("movieID", movie.ID))
	res, err := s.db.ExecContext(ctx, q,
		movie.Title, movie.Description, movie.ReleaseDate, movie.Genre, movie.Director, movie.ID)
	if err != nil {
		return s.writeError(ctx, "update movie", err, false)
	}
	if err := affectOne(res); err != nil {
		s.logger.WarnContext(ctx, "No movie found to update in DB", slog.Int64("movieID", movie.ID))
		return err
	}
	s.logger.InfoContext(ctx, "Movie updated successfully in DB", slog.Int64("movieID", movie.ID))
	return nil
}

func (s *PostgresStore) DeleteMovie(ctx context.Context, id int64) error {
	return s.hardDelete(ctx, "movies", id, "movieID")
}

func (s *PostgresStore) SoftDeleteMovie(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "movies", id, "movieID")
}

// SetMovieActors заменяет набор актеров фильма в одной транзакции.
func (s *PostgresStore) SetMovieActors(ctx context.Context, movieID int64, actorIDs []int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM movies WHERE id = $1 AND is_deleted = FALSE)`, movieID); err != nil {
		return fmt.Errorf("failed to check movie: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM movie_actors WHERE movie_id = $1`, movieID); err != nil {
		return s.writeError(ctx, "clear movie actors", err, true)
	}
	for _, actorID := range actorIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO movie_actors (movie_id, actor_id) VALUES ($1, $2)`, movieID, actorID); err != nil {
			return s.writeError(ctx, "assign actor", err, false)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movie actors: %w", err)
	}
	s.logger.InfoContext(ctx, "Movie actors assigned", slog.Int64("movieID", movieID), slog.Int("count", len(actorIDs)))
	return nil
}
