package query

import (
	"strings"

	"cinevault/internal/domain"
)

// UserFilter фильтр по таблице users с псевдонимом u.
type UserFilter = Filter[*domain.User]

var userSortKeys = map[string]SortKey[*domain.User]{
	"id":       {Column: "u.id", Less: func(a, b *domain.User) bool { return a.ID < b.ID }},
	"username": {Column: "u.username", Less: func(a, b *domain.User) bool { return a.Username < b.Username }},
	"email":    {Column: "u.email", Less: func(a, b *domain.User) bool { return a.Email < b.Email }},
	"created_at": {Column: "u.created_at", Less: func(a, b *domain.User) bool {
		return a.CreatedAt.Before(b.CreatedAt)
	}},
}

var userDeleted = Condition[*domain.User]{
	Match: func(u *domain.User) bool { return !u.IsDeleted },
	SQL:   "u.is_deleted = FALSE",
}

// AllUsers все неудаленные пользователи по id.
func AllUsers() *UserFilter {
	return New(userDeleted, userSortKeys["id"], userSortKeys["id"])
}

// UserSortKey нормализует ключ сортировки, по умолчанию "username".
func UserSortKey(key string) string {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, "_", "")
	switch k {
	case "email":
		return "email"
	case "createdat":
		return "created_at"
	}
	return "username"
}

// UserSearch строит фильтр пользователей. Диапазон дат включительный по дням:
// to_date охватывает весь указанный день.
func UserSearch(req domain.UserSearchRequest) (*UserFilter, error) {
	page, err := NewPage(req.PageNumber, req.PageSize)
	if err != nil {
		return nil, err
	}
	f := AllUsers()

	if username := strings.TrimSpace(req.Username); username != "" {
		f.Where(Condition[*domain.User]{
			Match: func(u *domain.User) bool { return containsFold(u.Username, username) },
			SQL:   "u.username ILIKE ?",
			Args:  []any{containsPattern(username)},
		})
	}
	if email := strings.TrimSpace(req.Email); email != "" {
		f.Where(Condition[*domain.User]{
			Match: func(u *domain.User) bool { return containsFold(u.Email, email) },
			SQL:   "u.email ILIKE ?",
			Args:  []any{containsPattern(email)},
		})
	}
	if req.FromDate != nil {
		from := req.FromDate.Time
		f.Where(Condition[*domain.User]{
			Match: func(u *domain.User) bool { return !u.CreatedAt.Before(from) },
			SQL:   "u.created_at >= ?",
			Args:  []any{from},
		})
	}
	if req.ToDate != nil {
		before := req.ToDate.AddDate(0, 0, 1)
		f.Where(Condition[*domain.User]{
			Match: func(u *domain.User) bool { return u.CreatedAt.Before(before) },
			SQL:   "u.created_at < ?",
			Args:  []any{before},
		})
	}

	f.OrderBy(userSortKeys[UserSortKey(req.SortBy)], req.SortDirection)
	f.Paginate(page)
	return f, nil
}
