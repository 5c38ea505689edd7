package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
	"cinevault/internal/query"
	"cinevault/internal/store"
)

// MovieService операции над фильмами.
type MovieService struct {
	*base
	bulkDeleteMode DeleteMode
}

var _ Entity[domain.MovieRequest, *domain.Movie] = (*MovieService)(nil)

func movieMessages(title string) storeMessages {
	return storeMessages{
		notFound:   "Movie not found",
		conflict:   fmt.Sprintf("Movie with title '%s' already exists", title),
		dependents: "Movie has reviews and cannot be deleted",
	}
}

func (s *MovieService) List(ctx context.Context) ([]*domain.Movie, error) {
	movies, err := s.store.FindMovies(ctx, query.AllMovies())
	return movies, s.translate(ctx, "list movies", err, movieMessages(""))
}

// Get возвращает фильм с отзывами и актерами.
func (s *MovieService) Get(ctx context.Context, id int64) (*domain.Movie, error) {
	movie, err := s.store.GetMovie(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, "get movie", err, movieMessages(""))
	}
	return movie, nil
}

func (s *MovieService) Create(ctx context.Context, req domain.MovieRequest) (int64, error) {
	if err := s.validate(ctx, req); err != nil {
		return 0, err
	}
	var movie domain.Movie
	mapper.ApplyMovie(req, &movie)
	if err := s.store.CreateMovie(ctx, &movie); err != nil {
		return 0, s.translate(ctx, "create movie", err, movieMessages(req.Title))
	}
	s.logger.InfoContext(ctx, "Movie created", slog.Int64("movieID", movie.ID), slog.String("title", movie.Title))
	return movie.ID, nil
}

// Update заменяет все поля фильма.
func (s *MovieService) Update(ctx context.Context, id int64, req domain.MovieRequest) error {
	if err := s.validate(ctx, req); err != nil {
		return err
	}
	movie, err := s.store.GetMovie(ctx, id)
	if err != nil {
		return s.translate(ctx, "get movie", err, movieMessages(""))
	}
	mapper.ApplyMovie(req, movie)
	if err := s.store.UpdateMovie(ctx, movie); err != nil {
		return s.translate(ctx, "update movie", err, movieMessages(req.Title))
	}
	s.logger.InfoContext(ctx, "Movie updated", slog.Int64("movieID", id))
	return nil
}

func (s *MovieService) Delete(ctx context.Context, id int64, mode DeleteMode) error {
	var err error
	if mode == HardDelete {
		err = s.store.DeleteMovie(ctx, id)
	} else {
		err = s.store.SoftDeleteMovie(ctx, id)
	}
	if err != nil {
		return s.translate(ctx, "delete movie", err, movieMessages(""))
	}
	s.logger.InfoContext(ctx, "Movie deleted", slog.Int64("movieID", id), slog.String("mode", mode.String()))
	return nil
}

// Search ищет фильмы. Неверная пагинация дает KindValidation.
func (s *MovieService) Search(ctx context.Context, req domain.MovieSearchRequest) ([]*domain.Movie, error) {
	filter, err := query.MovieSearch(req)
	if err != nil {
		return nil, Validation("%s", err.Error())
	}
	movies, err := s.store.FindMovies(ctx, filter)
	return movies, s.translate(ctx, "search movies", err, movieMessages(""))
}

// DeleteMany удаляет фильмы пакетом в настроенном режиме. Фильмы с отзывами пропускаются,
// каждый id попадает ровно в один список отчета.
func (s *MovieService) DeleteMany(ctx context.Context, ids []int64) (domain.DeleteMoviesResult, error) {
	res := domain.DeleteMoviesResult{DeletedIDs: []int64{}, NotFoundIDs: []int64{}, HasReviewsIDs: []int64{}}
	if len(ids) == 0 {
		s.logger.WarnContext(ctx, "Empty or null IDs list provided")
		return res, Validation("List of movie IDs is required")
	}

	for _, id := range distinct(ids) {
		movie, err := s.store.GetMovie(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			res.NotFoundIDs = append(res.NotFoundIDs, id)
			continue
		}
		if err != nil {
			return res, s.translate(ctx, "get movie", err, movieMessages(""))
		}
		if len(movie.Reviews) > 0 {
			res.HasReviewsIDs = append(res.HasReviewsIDs, id)
			continue
		}

		if s.bulkDeleteMode == HardDelete {
			err = s.store.DeleteMovie(ctx, id)
		} else {
			err = s.store.SoftDeleteMovie(ctx, id)
		}
		switch {
		case err == nil:
			res.DeletedIDs = append(res.DeletedIDs, id)
		case errors.Is(err, store.ErrNotFound):
			res.NotFoundIDs = append(res.NotFoundIDs, id)
		case errors.Is(err, store.ErrHasDependents):
			res.HasReviewsIDs = append(res.HasReviewsIDs, id)
		default:
			return res, s.translate(ctx, "delete movie", err, movieMessages(""))
		}
	}

	s.logger.InfoContext(ctx, "Movies bulk delete finished",
		slog.String("mode", s.bulkDeleteMode.String()),
		slog.Int("deleted", len(res.DeletedIDs)),
		slog.Int("notFound", len(res.NotFoundIDs)),
		slog.Int("hasReviews", len(res.HasReviewsIDs)))
	return res, nil
}

// AssignActors задает набор актеров фильма. Неизвестные или удаленные актеры дают KindNotFound.
func (s *MovieService) AssignActors(ctx context.Context, movieID int64, actorIDs []int64) error {
	if _, err := s.store.GetMovie(ctx, movieID); err != nil {
		return s.translate(ctx, "get movie", err, movieMessages(""))
	}
	ids := distinct(actorIDs)
	var missing []int64
	for _, id := range ids {
		if _, err := s.store.GetActor(ctx, id); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return s.translate(ctx, "get actor", err, actorMessages)
			}
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return NotFound("Actors not found: %v", missing)
	}
	if err := s.store.SetMovieActors(ctx, movieID, ids); err != nil {
		return s.translate(ctx, "assign actors", err, movieMessages(""))
	}
	s.logger.InfoContext(ctx, "Actors assigned to movie", slog.Int64("movieID", movieID), slog.Int("count", len(ids)))
	return nil
}
