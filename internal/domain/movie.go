package domain

// Movie представляет фильм каталога.
type Movie struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description" db:"description"`
	ReleaseDate *Date  `json:"release_date" db:"release_date"`
	Genre       string `json:"genre" db:"genre"`
	Director    string `json:"director" db:"director"`
	IsDeleted   bool   `json:"-" db:"is_deleted"`

	// Не хранятся в таблице movies, подгружаются хранилищем.
	Reviews []Review `json:"-" db:"-"`
	Actors  []Actor  `json:"-" db:"-"`
}

// MovieRequest тело запроса создания и обновления фильма. Обновление заменяет все поля.
type MovieRequest struct {
	Title       string `json:"title" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
	ReleaseDate *Date  `json:"release_date"`
	Genre       string `json:"genre" validate:"max=100"`
	Director    string `json:"director" validate:"max=100"`
}

// MovieSearchRequest условия поиска фильмов. Пустые поля не ограничивают выборку.
type MovieSearchRequest struct {
	Title           string   `json:"title,omitempty"`
	Genre           string   `json:"genre,omitempty"`
	Director        string   `json:"director,omitempty"`
	SearchText      string   `json:"search_text,omitempty"`
	Year            *int     `json:"year,omitempty"`
	MinRating       *float64 `json:"min_rating,omitempty"`
	ReleaseDateFrom *Date    `json:"release_date_from,omitempty"`
	ReleaseDateTo   *Date    `json:"release_date_to,omitempty"`
	SortBy          string   `json:"sort_by,omitempty"`
	SortDirection   string   `json:"sort_direction,omitempty"`
	PageNumber      *int     `json:"page_number,omitempty"`
	PageSize        *int     `json:"page_size,omitempty"`
}

// DeleteMoviesResult итог пакетного удаления фильмов.
type DeleteMoviesResult struct {
	DeletedIDs    []int64 `json:"deleted_ids"`
	NotFoundIDs   []int64 `json:"not_found_ids"`
	HasReviewsIDs []int64 `json:"has_reviews_ids"`
}
