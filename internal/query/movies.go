package query

import (
	"strings"

	"cinevault/internal/domain"
	"cinevault/internal/stats"
)

// MovieFilter фильтр по таблице movies с псевдонимом m. Отзывы фильмов нужны для min_rating.
type MovieFilter = Filter[*domain.Movie]

var movieSortKeys = map[string]SortKey[*domain.Movie]{
	"id": {Column: "m.id", Less: func(a, b *domain.Movie) bool { return a.ID < b.ID }},
	"title": {Column: "m.title", Less: func(a, b *domain.Movie) bool {
		return a.Title < b.Title
	}},
	"genre": {Column: "m.genre", Less: func(a, b *domain.Movie) bool {
		return a.Genre < b.Genre
	}},
	"director": {Column: "m.director", Less: func(a, b *domain.Movie) bool {
		return a.Director < b.Director
	}},
	// NULL больше любой даты, как и в PostgreSQL.
	"release_date": {Column: "m.release_date", Less: func(a, b *domain.Movie) bool {
		switch {
		case a.ReleaseDate == nil:
			return false
		case b.ReleaseDate == nil:
			return true
		}
		return a.ReleaseDate.Before(b.ReleaseDate.Time)
	}},
}

var movieDeleted = Condition[*domain.Movie]{
	Match: func(m *domain.Movie) bool { return !m.IsDeleted },
	SQL:   "m.is_deleted = FALSE",
}

// AllMovies фильтр без условий: все неудаленные фильмы по id.
func AllMovies() *MovieFilter {
	return New(movieDeleted, movieSortKeys["id"], movieSortKeys["id"])
}

// MovieSortKey нормализует ключ сортировки, неизвестные ключи дают "id".
func MovieSortKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, "_", "")
	switch k {
	case "title", "genre", "director":
		return k
	case "releasedate":
		return "release_date"
	}
	return "id"
}

// MovieSearch строит фильтр из запроса. Запрос не изменяется.
func MovieSearch(req domain.MovieSearchRequest) (*MovieFilter, error) {
	page, err := NewPage(req.PageNumber, req.PageSize)
	if err != nil {
		return nil, err
	}
	f := AllMovies()

	if title := strings.TrimSpace(req.Title); title != "" {
		f.Where(Condition[*domain.Movie]{
			Match: func(m *domain.Movie) bool { return containsFold(m.Title, title) },
			SQL:   "m.title ILIKE ?",
			Args:  []any{containsPattern(title)},
		})
	}
	if genre := strings.TrimSpace(req.Genre); genre != "" {
		f.Where(Condition[*domain.Movie]{
			Match: func(m *domain.Movie) bool { return m.Genre == genre },
			SQL:   "m.genre = ?",
			Args:  []any{genre},
		})
	}
	if director := strings.TrimSpace(req.Director); director != "" {
		f.Where(Condition[*domain.Movie]{
			Match: func(m *domain.Movie) bool { return containsFold(m.Director, director) },
			SQL:   "m.director ILIKE ?",
			Args:  []any{containsPattern(director)},
		})
	}
	if text := strings.TrimSpace(req.SearchText); text != "" {
		pattern := containsPattern(text)
		f.Where(Condition[*domain.Movie]{
			Match: func(m *domain.Movie) bool {
				return containsFold(m.Title, text) || containsFold(m.Description, text) || containsFold(m.Director, text)
			},
			SQL:  "(m.title ILIKE ? OR m.description ILIKE ? OR m.director ILIKE ?)",
			Args: []any{pattern, pattern, pattern},
		})
	}
	if req.Year != nil {
		year := *req.Year
		f.Where(Condition[*domain.Movie]{
			Match: func(m *domain.Movie) bool { return m.ReleaseDate != nil && m.ReleaseDate.Year() == year },
			SQL:   "EXTRACT(YEAR FROM m.release_date) = ?",
			Args:  []any{year},
		})
	}
	if req.ReleaseDateFrom != nil {
		from := *req.ReleaseDateFrom
		f.Where(Condition[*domain.Movie]{
			Match: func(m *domain.Movie) bool { return m.ReleaseDate != nil && !m.ReleaseDate.Before(from.Time) },
			SQL:   "m.release_date >= ?",
			Args:  []any{from},
		})
	}
	if req.ReleaseDateTo != nil {
		to := *req.ReleaseDateTo
		f.Where(Condition[*domain.Movie]{
			Match: func(m *domain.Movie) bool { return m.ReleaseDate != nil && !m.ReleaseDate.After(to.Time) },
			SQL:   "m.release_date <= ?",
			Args:  []any{to},
		})
	}
	if req.MinRating != nil {
		f.Where(minRating(*req.MinRating))
	}

	f.OrderBy(movieSortKeys[MovieSortKey(req.SortBy)], req.SortDirection)
	f.Paginate(page)
	return f, nil
}

// minRating: фильм без отзывов проходит только при пороге <= 0.
// Любой фильм с отзывами имеет среднее >= 1, поэтому порог <= 0 в SQL ничего не ограничивает.
func minRating(threshold float64) Condition[*domain.Movie] {
	c := Condition[*domain.Movie]{
		Match: func(m *domain.Movie) bool {
			if len(m.Reviews) == 0 {
				return threshold <= 0
			}
			return stats.AverageRating(m.Reviews) >= threshold
		},
		SQL: "TRUE",
	}
	if threshold > 0 {
		c.SQL = "(SELECT AVG(r.rating) FROM reviews r WHERE r.movie_id = m.id AND r.is_deleted = FALSE) >= ?"
		c.Args = []any{threshold}
	}
	return c
}
