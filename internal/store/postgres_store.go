package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // Для обработки ошибок PostgreSQL

	"cinevault/internal/domain"
)

// Коды ошибок PostgreSQL.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// PostgresStore реализует Store для PostgreSQL.
type PostgresStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresStore создает новый экземпляр PostgresStore.
// Важно: db *sqlx.DB должен быть уже подключен.
func NewPostgresStore(db *sqlx.DB, logger *slog.Logger) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

// writeError переводит ошибки записи в сентинелы пакета.
// На вставке нарушение внешнего ключа значит отсутствующую ссылку, на удалении наличие зависимых строк.
func (s *PostgresStore) writeError(ctx context.Context, op string, err error, deleting bool) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			s.logger.WarnContext(ctx, "Unique constraint violation",
				slog.String("op", op), slog.String("constraint", pqErr.Constraint))
			return ErrAlreadyExists
		case pqForeignKeyViolation:
			s.logger.WarnContext(ctx, "Foreign key violation",
				slog.String("op", op), slog.String("constraint", pqErr.Constraint))
			if deleting {
				return ErrHasDependents
			}
			return ErrNotFound
		}
	}
	s.logger.ErrorContext(ctx, "Database write failed", slog.String("op", op), slog.String("error", err.Error()))
	return fmt.Errorf("failed to %s: %w", op, err)
}

// affectOne проверяет, что запрос затронул строку.
func affectOne(res interface{ RowsAffected() (int64, error) }) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

var countTables = map[domain.Entity]string{
	domain.EntityMovies:  "movies",
	domain.EntityActors:  "actors",
	domain.EntityUsers:   "users",
	domain.EntityReviews: "reviews",
	domain.EntityLikes:   "likes",
}

func countQuery(entity domain.Entity, includeDeleted bool) (string, error) {
	table, ok := countTables[entity]
	if !ok {
		return "", fmt.Errorf("unknown entity %q", entity)
	}
	q := "SELECT COUNT(*) FROM " + table
	if !includeDeleted {
		q += " WHERE is_deleted = FALSE"
	}
	return q, nil
}

func (s *PostgresStore) Count(ctx context.Context, entity domain.Entity, includeDeleted bool) (int, error) {
	q, err := countQuery(entity, includeDeleted)
	if err != nil {
		return 0, err
	}
	var n int
	s.logger.DebugContext(ctx, "Executing count query", slog.String("query", q))
	if err := s.db.GetContext(ctx, &n, q); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count rows", slog.String("entity", string(entity)), slog.String("error", err.Error()))
		return 0, fmt.Errorf("failed to count %s: %w", entity, err)
	}
	return n, nil
}

// softDelete ставит is_deleted. Повторный вызов дает ErrNotFound.
func (s *PostgresStore) softDelete(ctx context.Context, table string, id int64, idKey string) error {
	q := "UPDATE " + table + " SET is_deleted = TRUE WHERE id = $1 AND is_deleted = FALSE"
	s.logger.DebugContext(ctx, "Executing soft delete", slog.String("table", table), slog.Int64(idKey, id))
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return s.writeError(ctx, "soft delete "+table, err, false)
	}
	if err := affectOne(res); err != nil {
		s.logger.WarnContext(ctx, "No row found to soft delete", slog.String("table", table), slog.Int64(idKey, id))
		return err
	}
	s.logger.InfoContext(ctx, "Row soft-deleted", slog.String("table", table), slog.Int64(idKey, id))
	return nil
}

// hardDelete удаляет строку. Нарушение внешнего ключа дает ErrHasDependents.
func (s *PostgresStore) hardDelete(ctx context.Context, table string, id int64, idKey string) error {
	q := "DELETE FROM " + table + " WHERE id = $1 AND is_deleted = FALSE"
	s.logger.DebugContext(ctx, "Executing delete", slog.String("table", table), slog.Int64(idKey, id))
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return s.writeError(ctx, "delete "+table, err, true)
	}
	if err := affectOne(res); err != nil {
		s.logger.WarnContext(ctx, "No row found to delete", slog.String("table", table), slog.Int64(idKey, id))
		return err
	}
	s.logger.InfoContext(ctx, "Row deleted", slog.String("table", table), slog.Int64(idKey, id))
	return nil
}
