package domain

// Actor представляет актера. Связь с фильмами многие-ко-многим через movie_actors.
type Actor struct {
	ID        int64   `json:"id" db:"id"`
	FullName  string  `json:"full_name" db:"full_name"`
	BirthDate Date    `json:"birth_date" db:"birth_date"`
	Biography *string `json:"biography" db:"biography"`
	IsDeleted bool    `json:"-" db:"is_deleted"`
}

// ActorRequest тело запроса создания и обновления актера.
type ActorRequest struct {
	FullName  string  `json:"full_name" validate:"required,max=100"`
	BirthDate *Date   `json:"birth_date" validate:"required"`
	Biography *string `json:"biography" validate:"omitempty,max=1000"`
}

// AssignActorsRequest задает полный набор актеров фильма.
type AssignActorsRequest struct {
	ActorIDs []int64 `json:"actor_ids"`
}
