package mapper

import (
	"cinevault/internal/domain"
)

// Функции Apply* переносят поля запроса в сущность. Идентификатор, метки времени
// и признак удаления не трогаются.

func ApplyMovie(req domain.MovieRequest, m *domain.Movie) {
	m.Title = req.Title
	m.Description = req.Description
	m.ReleaseDate = req.ReleaseDate
	m.Genre = req.Genre
	m.Director = req.Director
}

// ApplyUser не переносит пароль: хеш задает сервис.
func ApplyUser(req domain.UserRequest, u *domain.User) {
	u.Username = req.Username
	u.Email = req.Email
}

func ApplyReview(req domain.ReviewRequest, r *domain.Review) {
	r.MovieID = req.MovieID
	r.UserID = req.UserID
	r.Rating = req.Rating
	r.Comment = req.Comment
}

func ApplyActor(req domain.ActorRequest, a *domain.Actor) {
	a.FullName = req.FullName
	if req.BirthDate != nil {
		a.BirthDate = *req.BirthDate
	}
	a.Biography = req.Biography
}

func ApplyLike(req domain.LikeRequest, l *domain.Like) {
	l.ReviewID = req.ReviewID
	l.UserID = req.UserID
}
