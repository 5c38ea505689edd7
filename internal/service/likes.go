package service

import (
	"context"
	"log/slog"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
)

type LikeService struct {
	*base
}

var likeMessages = storeMessages{notFound: "Like not found", conflict: "Like exists"}

// Create ставит отметку. Повтор пары (review, user) дает KindConflict.
func (s *LikeService) Create(ctx context.Context, req domain.LikeRequest) (int64, error) {
	if err := s.validate(ctx, req); err != nil {
		return 0, err
	}
	if _, err := s.store.GetReview(ctx, req.ReviewID); err != nil {
		return 0, s.translate(ctx, "get review", err, reviewMessages(req.ReviewID))
	}
	if _, err := s.store.GetUser(ctx, req.UserID); err != nil {
		return 0, s.translate(ctx, "get user", err, userMessages)
	}
	var like domain.Like
	mapper.ApplyLike(req, &like)
	if err := s.store.CreateLike(ctx, &like); err != nil {
		return 0, s.translate(ctx, "create like", err, likeMessages)
	}
	s.logger.InfoContext(ctx, "Like created", slog.Int64("likeID", like.ID), slog.Int64("reviewID", like.ReviewID))
	return like.ID, nil
}

func (s *LikeService) Get(ctx context.Context, id int64) (*domain.Like, error) {
	like, err := s.store.GetLike(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, "get like", err, likeMessages)
	}
	return like, nil
}

// Delete мягко удаляет отметку.
func (s *LikeService) Delete(ctx context.Context, id int64) error {
	if err := s.store.SoftDeleteLike(ctx, id); err != nil {
		return s.translate(ctx, "delete like", err, likeMessages)
	}
	s.logger.InfoContext(ctx, "Like deleted", slog.Int64("likeID", id))
	return nil
}
