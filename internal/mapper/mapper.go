// Package mapper переводит сущности в ответы API и запросы в сущности.
// Функции чистые: не обращаются к хранилищу и не меняют аргументы.
package mapper

import (
	"time"

	"cinevault/internal/domain"
	"cinevault/internal/stats"
)

// Подстановки для удаленных связанных записей.
const (
	DeletedUser  = "Deleted User"
	DeletedMovie = "Deleted Movie"
)

// RecentReviewsLimit число отзывов в деталях фильма.
const RecentReviewsLimit = 5

type MovieResponse struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	ReleaseDate   *domain.Date `json:"release_date"`
	Genre         string       `json:"genre"`
	Director      string       `json:"director"`
	AverageRating float64      `json:"average_rating"`
	ReviewCount   int          `json:"review_count"`
}

type RecentReview struct {
	Username  string    `json:"username"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type MovieDetailsResponse struct {
	MovieResponse
	RecentReviews []RecentReview  `json:"recent_reviews"`
	Actors        []ActorResponse `json:"actors"`
}

type UserResponse struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type ReviewResponse struct {
	ID         int64     `json:"id"`
	MovieID    int64     `json:"movie_id"`
	MovieTitle string    `json:"movie_title"`
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	Rating     int       `json:"rating"`
	Comment    *string   `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

type ActorResponse struct {
	ID        int64       `json:"id"`
	FullName  string      `json:"full_name"`
	BirthDate domain.Date `json:"birth_date"`
	Biography *string     `json:"biography"`
}

type LikeResponse struct {
	ID       int64 `json:"id"`
	ReviewID int64 `json:"review_id"`
	UserID   int64 `json:"user_id"`
}

// Movie ожидает, что m.Reviews содержит только неудаленные отзывы.
func Movie(m *domain.Movie) MovieResponse {
	return MovieResponse{
		ID:            m.ID,
		Title:         m.Title,
		Description:   m.Description,
		ReleaseDate:   m.ReleaseDate,
		Genre:         m.Genre,
		Director:      m.Director,
		AverageRating: stats.AverageRating(m.Reviews),
		ReviewCount:   stats.ReviewCount(m.Reviews),
	}
}

func MovieDetails(m *domain.Movie) MovieDetailsResponse {
	recent := stats.Recent(m.Reviews, RecentReviewsLimit)
	out := MovieDetailsResponse{
		MovieResponse: Movie(m),
		RecentReviews: make([]RecentReview, 0, len(recent)),
		Actors:        Actors(m.Actors),
	}
	for _, r := range recent {
		out.RecentReviews = append(out.RecentReviews, RecentReview{
			Username:  username(r.User),
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

func User(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, CreatedAt: u.CreatedAt}
}

// Review разворачивает связи в movie_title и username.
func Review(r *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:         r.ID,
		MovieID:    r.MovieID,
		MovieTitle: movieTitle(r.Movie),
		UserID:     r.UserID,
		Username:   username(r.User),
		Rating:     r.Rating,
		Comment:    r.Comment,
		CreatedAt:  r.CreatedAt,
	}
}

func Actor(a *domain.Actor) ActorResponse {
	return ActorResponse{ID: a.ID, FullName: a.FullName, BirthDate: a.BirthDate, Biography: a.Biography}
}

func Actors(actors []domain.Actor) []ActorResponse {
	out := make([]ActorResponse, 0, len(actors))
	for i := range actors {
		out = append(out, Actor(&actors[i]))
	}
	return out
}

func Like(l *domain.Like) LikeResponse {
	return LikeResponse{ID: l.ID, ReviewID: l.ReviewID, UserID: l.UserID}
}

// List применяет fn к каждому элементу. Пустой вход дает пустой, но не nil срез.
func List[In any, Out any](items []In, fn func(In) Out) []Out {
	out := make([]Out, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}

func username(u *domain.User) string {
	if u == nil || u.IsDeleted {
		return DeletedUser
	}
	return u.Username
}

func movieTitle(m *domain.Movie) string {
	if m == nil || m.IsDeleted {
		return DeletedMovie
	}
	return m.Title
}
