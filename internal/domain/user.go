package domain

import (
	"time"
)

// User представляет пользователя каталога.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"` // Не отдаем хеш пароля в JSON
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	IsDeleted    bool      `json:"-" db:"is_deleted"`
}

// UserRequest тело запроса создания и обновления пользователя.
type UserRequest struct {
	Username string `json:"username" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// UserSearchRequest условия поиска пользователей.
type UserSearchRequest struct {
	Username      string     `json:"username,omitempty"`
	Email         string     `json:"email,omitempty"`
	FromDate      *Date  `json:"from_date,omitempty"` // created_at с начала этого дня
	ToDate        *Date  `json:"to_date,omitempty"`   // created_at до конца этого дня
	SortBy        string `json:"sort_by,omitempty"`
	SortDirection string `json:"sort_direction,omitempty"`
	PageNumber    *int   `json:"page_number,omitempty"`
	PageSize      *int   `json:"page_size,omitempty"`
}

// GenreStat статистика оценок пользователя по одному жанру.
type GenreStat struct {
	Genre         string  `json:"genre"`
	Count         int     `json:"count"`
	AverageRating float64 `json:"average_rating"`
}

// UserStats агрегаты по отзывам пользователя.
type UserStats struct {
	TotalReviews    int         `json:"total_reviews"`
	AverageRating   float64     `json:"average_rating"`
	LastActivity    *time.Time  `json:"last_activity"`
	GenreStatistics []GenreStat `json:"genre_statistics"`
}
