package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
	"cinevault/internal/store"
)

// ReviewService операции над отзывами. Оценка проверяется на каждом пути записи.
type ReviewService struct {
	*base
}

var _ Entity[domain.ReviewRequest, *domain.Review] = (*ReviewService)(nil)

func reviewMessages(id int64) storeMessages {
	return storeMessages{
		notFound:   fmt.Sprintf("Review with ID %d not found in system", id),
		dependents: "Review has likes and cannot be deleted",
	}
}

func (s *ReviewService) List(ctx context.Context) ([]*domain.Review, error) {
	reviews, err := s.store.ListReviews(ctx)
	return reviews, s.translate(ctx, "list reviews", err, reviewMessages(0))
}

func (s *ReviewService) Get(ctx context.Context, id int64) (*domain.Review, error) {
	review, err := s.store.GetReview(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, "get review", err, reviewMessages(id))
	}
	return review, nil
}

// check проверяет запрос и существование фильма и автора.
func (s *ReviewService) check(ctx context.Context, req domain.ReviewRequest) error {
	if req.Rating < domain.MinRating || req.Rating > domain.MaxRating {
		s.logger.WarnContext(ctx, "Invalid rating", slog.Int("rating", req.Rating))
		return Validation("Invalid rating value %d. Accepted range: %d-%d", req.Rating, domain.MinRating, domain.MaxRating)
	}
	if err := s.validate(ctx, req); err != nil {
		return err
	}
	if _, err := s.store.GetMovie(ctx, req.MovieID); err != nil {
		return s.translate(ctx, "get movie", err, movieMessages(""))
	}
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return s.translate(ctx, "get user", err, userMessages)
	}
	return nil
}

func (s *ReviewService) Create(ctx context.Context, req domain.ReviewRequest) (int64, error) {
	if err := s.check(ctx, req); err != nil {
		return 0, err
	}
	var review domain.Review
	mapper.ApplyReview(req, &review)
	if err := s.store.CreateReview(ctx, &review); err != nil {
		return 0, s.translate(ctx, "create review", err, storeMessages{notFound: "Movie or user not found"})
	}
	s.logger.InfoContext(ctx, "Review created",
		slog.Int64("reviewID", review.ID), slog.Int64("movieID", review.MovieID), slog.Int64("userID", review.UserID))
	return review.ID, nil
}

// Upsert обновляет неудаленный отзыв того же пользователя о том же фильме или создает новый.
// Второе значение true, если отзыв обновлен.
func (s *ReviewService) Upsert(ctx context.Context, req domain.ReviewRequest) (int64, bool, error) {
	if err := s.check(ctx, req); err != nil {
		return 0, false, err
	}
	existing, err := s.store.FindUserReview(ctx, req.MovieID, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		id, err := s.Create(ctx, req)
		return id, false, err
	}
	if err != nil {
		return 0, false, s.translate(ctx, "find review", err, reviewMessages(0))
	}
	mapper.ApplyReview(req, existing)
	if err := s.store.UpdateReview(ctx, existing); err != nil {
		return 0, false, s.translate(ctx, "update review", err, reviewMessages(existing.ID))
	}
	s.logger.InfoContext(ctx, "Review updated", slog.Int64("reviewID", existing.ID))
	return existing.ID, true, nil
}

func (s *ReviewService) Update(ctx context.Context, id int64, req domain.ReviewRequest) error {
	review, err := s.store.GetReview(ctx, id)
	if err != nil {
		return s.translate(ctx, "get review", err, reviewMessages(id))
	}
	if err := s.check(ctx, req); err != nil {
		return err
	}
	mapper.ApplyReview(req, review)
	if err := s.store.UpdateReview(ctx, review); err != nil {
		return s.translate(ctx, "update review", err, reviewMessages(id))
	}
	s.logger.InfoContext(ctx, "Review updated", slog.Int64("reviewID", id))
	return nil
}

func (s *ReviewService) Delete(ctx context.Context, id int64, mode DeleteMode) error {
	var err error
	if mode == HardDelete {
		err = s.store.DeleteReview(ctx, id)
	} else {
		err = s.store.SoftDeleteReview(ctx, id)
	}
	if err != nil {
		return s.translate(ctx, "delete review", err, reviewMessages(id))
	}
	s.logger.InfoContext(ctx, "Review deleted", slog.Int64("reviewID", id), slog.String("mode", mode.String()))
	return nil
}
