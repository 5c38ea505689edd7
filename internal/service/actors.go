package service

import (
	"context"
	"log/slog"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
)

type ActorService struct {
	*base
}

var _ Entity[domain.ActorRequest, *domain.Actor] = (*ActorService)(nil)

var actorMessages = storeMessages{notFound: "Actor not found"}

func (s *ActorService) List(ctx context.Context) ([]*domain.Actor, error) {
	actors, err := s.store.ListActors(ctx)
	return actors, s.translate(ctx, "list actors", err, actorMessages)
}

func (s *ActorService) Get(ctx context.Context, id int64) (*domain.Actor, error) {
	actor, err := s.store.GetActor(ctx, id)
	if err != nil {
		return nil, s.translate(ctx, "get actor", err, actorMessages)
	}
	return actor, nil
}

func (s *ActorService) Create(ctx context.Context, req domain.ActorRequest) (int64, error) {
	if err := s.validate(ctx, req); err != nil {
		return 0, err
	}
	var actor domain.Actor
	mapper.ApplyActor(req, &actor)
	if err := s.store.CreateActor(ctx, &actor); err != nil {
		return 0, s.translate(ctx, "create actor", err, actorMessages)
	}
	s.logger.InfoContext(ctx, "Actor created", slog.Int64("actorID", actor.ID))
	return actor.ID, nil
}

func (s *ActorService) Update(ctx context.Context, id int64, req domain.ActorRequest) error {
	if err := s.validate(ctx, req); err != nil {
		return err
	}
	actor, err := s.store.GetActor(ctx, id)
	if err != nil {
		return s.translate(ctx, "get actor", err, actorMessages)
	}
	mapper.ApplyActor(req, actor)
	if err := s.store.UpdateActor(ctx, actor); err != nil {
		return s.translate(ctx, "update actor", err, actorMessages)
	}
	return nil
}

func (s *ActorService) Delete(ctx context.Context, id int64, mode DeleteMode) error {
	var err error
	if mode == HardDelete {
		err = s.store.DeleteActor(ctx, id)
	} else {
		err = s.store.SoftDeleteActor(ctx, id)
	}
	if err != nil {
		return s.translate(ctx, "delete actor", err, actorMessages)
	}
	s.logger.InfoContext(ctx, "Actor deleted", slog.Int64("actorID", id), slog.String("mode", mode.String()))
	return nil
}
