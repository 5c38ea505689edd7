// Package store хранит сущности каталога: PostgreSQL для работы и память для тестов и локального запуска.
package store

import (
	"context"
	"errors"

	"cinevault/internal/domain"
	"cinevault/internal/query"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record with these unique fields already exists")
	ErrHasDependents = errors.New("record is referenced by other records")
)

// Чтения по умолчанию не видят удаленных записей. Get* возвращает ErrNotFound и для
// отсутствующей, и для удаленной записи.

type MovieStore interface {
	CreateMovie(ctx context.Context, movie *domain.Movie) error
	// GetMovie подгружает неудаленные отзывы (со связью User) и актеров.
	GetMovie(ctx context.Context, id int64) (*domain.Movie, error)
	// FindMovies подгружает неудаленные отзывы каждого фильма.
	FindMovies(ctx context.Context, filter *query.MovieFilter) ([]*domain.Movie, error)
	UpdateMovie(ctx context.Context, movie *domain.Movie) error
	// DeleteMovie удаляет строку. ErrHasDependents, если на фильм ссылаются отзывы.
	DeleteMovie(ctx context.Context, id int64) error
	SoftDeleteMovie(ctx context.Context, id int64) error
	SetMovieActors(ctx context.Context, movieID int64, actorIDs []int64) error
}

type ActorStore interface {
	CreateActor(ctx context.Context, actor *domain.Actor) error
	GetActor(ctx context.Context, id int64) (*domain.Actor, error)
	ListActors(ctx context.Context) ([]*domain.Actor, error)
	UpdateActor(ctx context.Context, actor *domain.Actor) error
	DeleteActor(ctx context.Context, id int64) error
	SoftDeleteActor(ctx context.Context, id int64) error
}

type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	FindUsers(ctx context.Context, filter *query.UserFilter) ([]*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	DeleteUser(ctx context.Context, id int64) error
	SoftDeleteUser(ctx context.Context, id int64) error
}

// ReviewStore возвращает отзывы со связями Movie и User. Связь nil, если запись удалена.
type ReviewStore interface {
	CreateReview(ctx context.Context, review *domain.Review) error
	GetReview(ctx context.Context, id int64) (*domain.Review, error)
	ListReviews(ctx context.Context) ([]*domain.Review, error)
	ReviewsByUser(ctx context.Context, userID int64) ([]domain.Review, error)
	// FindUserReview ищет неудаленный отзыв пользователя о фильме.
	FindUserReview(ctx context.Context, movieID, userID int64) (*domain.Review, error)
	UpdateReview(ctx context.Context, review *domain.Review) error
	DeleteReview(ctx context.Context, id int64) error
	SoftDeleteReview(ctx context.Context, id int64) error
}

type LikeStore interface {
	CreateLike(ctx context.Context, like *domain.Like) error
	GetLike(ctx context.Context, id int64) (*domain.Like, error)
	SoftDeleteLike(ctx context.Context, id int64) error
}

// Counter считает строки. includeDeleted единственный путь чтения, видящий удаленные записи.
type Counter interface {
	Count(ctx context.Context, entity domain.Entity, includeDeleted bool) (int, error)
}

// Store объединяет хранилища всех сущностей.
type Store interface {
	MovieStore
	ActorStore
	UserStore
	ReviewStore
	LikeStore
	Counter
}
