package domain

// Like отметка пользователя на отзыве. Пара (review_id, user_id) уникальна среди неудаленных.
type Like struct {
	ID        int64 `json:"id" db:"id"`
	ReviewID  int64 `json:"review_id" db:"review_id"`
	UserID    int64 `json:"user_id" db:"user_id"`
	IsDeleted bool  `json:"-" db:"is_deleted"`
}

type LikeRequest struct {
	ReviewID int64 `json:"review_id" validate:"required,gt=0"`
	UserID   int64 `json:"user_id" validate:"required,gt=0"`
}

// Entity имя сущности для административных подсчетов.
type Entity string

const (
	EntityMovies  Entity = "movies"
	EntityActors  Entity = "actors"
	EntityUsers   Entity = "users"
	EntityReviews Entity = "reviews"
	EntityLikes   Entity = "likes"
)

// Entities перечисляет все сущности в стабильном порядке.
var Entities = []Entity{EntityMovies, EntityActors, EntityUsers, EntityReviews, EntityLikes}
