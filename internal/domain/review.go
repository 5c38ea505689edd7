package domain

import (
	"time"
)

// Review представляет отзыв пользователя о фильме.
type Review struct {
	ID        int64     `json:"id" db:"id"`
	MovieID   int64     `json:"movie_id" db:"movie_id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	Rating    int       `json:"rating" db:"rating"` // 1-10
	Comment   *string   `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	IsDeleted bool      `json:"-" db:"is_deleted"`

	// Связи подтягиваются хранилищем. nil, если связанная запись удалена.
	Movie *Movie `json:"-" db:"-"`
	User  *User  `json:"-" db:"-"`
}

// Рамки допустимой оценки.
const (
	MinRating = 1
	MaxRating = 10
)

// ReviewRequest тело запроса создания и обновления отзыва.
type ReviewRequest struct {
	MovieID int64   `json:"movie_id" validate:"required,gt=0"`
	UserID  int64   `json:"user_id" validate:"required,gt=0"`
	Rating  int     `json:"rating"`
	Comment *string `json:"comment" validate:"omitempty,max=1000"`
}
