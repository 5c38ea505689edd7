package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"cinevault/internal/domain"
)

func (s *PostgresStore) CreateActor(ctx context.Context, actor *domain.Actor) error {
	q := `INSERT INTO actors (full_name, birth_date, biography) VALUES ($1, $2, $3) RETURNING id`

	s.logger.DebugContext(ctx, "Executing CreateActor query", slog.String("fullName", actor.FullName))
	if err := s.db.QueryRowxContext(ctx, q, actor.FullName, actor.BirthDate, actor.Biography).Scan(&actor.ID); err != nil {
		return s.writeError(ctx, "create actor", err, false)
	}
	s.logger.InfoContext(ctx, "Actor created successfully in DB", slog.Int64("actorID", actor.ID))
	return nil
}

func (s *PostgresStore) GetActor(ctx context.Context, id int64) (*domain.Actor, error) {
	q := `SELECT id, full_name, birth_date, biography, is_deleted FROM actors WHERE id = $1 AND is_deleted = FALSE`
	var actor domain.Actor
	if err := s.db.GetContext(ctx, &actor, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Actor not found by ID in DB", slog.Int64("actorID", id))
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get actor by ID: %w", err)
	}
	return &actor, nil
}

func (s *PostgresStore) ListActors(ctx context.Context) ([]*domain.Actor, error) {
	q := `SELECT id, full_name, birth_date, biography, is_deleted FROM actors WHERE is_deleted = FALSE ORDER BY id`
	actors := []*domain.Actor{}
	if err := s.db.SelectContext(ctx, &actors, q); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list actors from DB", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	return actors, nil
}

func (s *PostgresStore) UpdateActor(ctx context.Context, actor *domain.Actor) error {
	q := `UPDATE actors SET full_name = $1, birth_date = $2, biography = $3 WHERE id = $4 AND is_deleted = FALSE`
	res, err := s.db.ExecContext(ctx, q, actor.FullName, actor.BirthDate, actor.Biography, actor.ID)
	if err != nil {
		return s.writeError(ctx, "update actor", err, false)
	}
	return affectOne(res)
}

func (s *PostgresStore) DeleteActor(ctx context.Context, id int64) error {
	return s.hardDelete(ctx, "actors", id, "actorID")
}

func (s *PostgresStore) SoftDeleteActor(ctx context.Context, id int64) error {
	return s.softDelete(ctx, "actors", id, "actorID")
}
