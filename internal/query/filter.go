// Package query строит фильтры поиска. Одно описание фильтра дает и предикат для
// хранения в памяти, и условие WHERE для PostgreSQL, поэтому оба хранилища отбирают одинаково.
package query

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Значения пагинации по умолчанию.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 100
)

// ErrInvalidPage возвращается при номере или размере страницы <= 0.
var ErrInvalidPage = errors.New("page number and page size must be positive")

// Condition одно условие фильтра.
type Condition[T any] struct {
	Match func(T) bool
	// SQL фрагмент с плейсхолдерами "?", хранилище делает Rebind.
	SQL  string
	Args []any
}

// SortKey разрешенный ключ сортировки.
type SortKey[T any] struct {
	Column string
	Less   func(a, b T) bool
}

// Page страница выборки, нумерация с 1.
type Page struct {
	Number int
	Size   int
}

// Offset число пропускаемых записей. При переполнении возвращает math.MaxInt.
func (p Page) Offset() int {
	if p.Number <= 1 || p.Size <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.Size {
		return math.MaxInt
	}
	return (p.Number - 1) * p.Size
}

// NewPage применяет значения по умолчанию и проверяет границы. Размер больше MaxPageSize урезается,
// номер страницы ограничивается так, чтобы смещение помещалось в int.
func NewPage(number, size *int) (Page, error) {
	p := Page{Number: DefaultPageNumber, Size: DefaultPageSize}
	if number != nil {
		p.Number = *number
	}
	if size != nil {
		p.Size = *size
	}
	if p.Number <= 0 || p.Size <= 0 {
		return Page{}, fmt.Errorf("%w: page_number=%d page_size=%d", ErrInvalidPage, p.Number, p.Size)
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if maxNumber := math.MaxInt/p.Size + 1; p.Number > maxNumber {
		p.Number = maxNumber
	}
	return p, nil
}

// Filter конъюнкция условий с сортировкой и необязательной страницей.
// Удаленные записи исключаются, пока не вызван IncludeDeleted.
type Filter[T any] struct {
	conditions     []Condition[T]
	sortKey        SortKey[T]
	descending     bool
	tieBreak       SortKey[T]
	page           *Page
	includeDeleted bool
	deleted        Condition[T]
}

// New создает пустой фильтр. deleted описывает признак мягкого удаления, tieBreak задает
// порядок при равенстве ключей (обычно id по возрастанию).
func New[T any](deleted Condition[T], defaultSort, tieBreak SortKey[T]) *Filter[T] {
	return &Filter[T]{deleted: deleted, sortKey: defaultSort, tieBreak: tieBreak}
}

// Where добавляет условие.
func (f *Filter[T]) Where(c Condition[T]) *Filter[T] {
	f.conditions = append(f.conditions, c)
	return f
}

// OrderBy выбирает ключ и направление. Неизвестное направление считается "asc".
func (f *Filter[T]) OrderBy(key SortKey[T], direction string) *Filter[T] {
	f.sortKey = key
	f.descending = strings.EqualFold(strings.TrimSpace(direction), "desc")
	return f
}

func (f *Filter[T]) Paginate(p Page) *Filter[T] {
	f.page = &p
	return f
}

// IncludeDeleted снимает исключение удаленных записей. Используется только в админских подсчетах.
func (f *Filter[T]) IncludeDeleted() *Filter[T] {
	f.includeDeleted = true
	return f
}

func (f *Filter[T]) Page() (Page, bool) {
	if f.page == nil {
		return Page{}, false
	}
	return *f.page, true
}

func (f *Filter[T]) Descending() bool { return f.descending }

func (f *Filter[T]) SortColumn() string { return f.sortKey.Column }

// Matches проверяет одну запись по всем условиям.
func (f *Filter[T]) Matches(item T) bool {
	if !f.includeDeleted && f.deleted.Match != nil && !f.deleted.Match(item) {
		return false
	}
	for _, c := range f.conditions {
		if !c.Match(item) {
			return false
		}
	}
	return true
}

// Apply фильтрует, сортирует и режет на страницу. Входной срез не меняется.
func (f *Filter[T]) Apply(items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if f.descending {
			a, b = b, a
		}
		if f.sortKey.Less(a, b) {
			return true
		}
		if f.sortKey.Less(b, a) {
			return false
		}
		return f.tieBreak.Less(out[i], out[j])
	})
	if f.page == nil {
		return out
	}
	start := f.page.Offset()
	if start < 0 || start >= len(out) {
		return []T{}
	}
	end := start + f.page.Size
	if end > len(out) {
		end = len(out)
	}
	return out[start:end]
}

// WhereSQL возвращает "WHERE ..." (или пустую строку) и аргументы.
func (f *Filter[T]) WhereSQL() (string, []any) {
	var parts []string
	var args []any
	if !f.includeDeleted && f.deleted.SQL != "" {
		parts = append(parts, f.deleted.SQL)
		args = append(args, f.deleted.Args...)
	}
	for _, c := range f.conditions {
		parts = append(parts, c.SQL)
		args = append(args, c.Args...)
	}
	if len(parts) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(parts, " AND "), args
}

// OrderSQL возвращает "ORDER BY ...". Ключ равенства всегда по возрастанию.
func (f *Filter[T]) OrderSQL() string {
	dir := "ASC"
	if f.descending {
		dir = "DESC"
	}
	clause := fmt.Sprintf("ORDER BY %s %s", f.sortKey.Column, dir)
	if f.tieBreak.Column != "" && f.tieBreak.Column != f.sortKey.Column {
		clause += fmt.Sprintf(", %s ASC", f.tieBreak.Column)
	}
	return clause
}

// LimitSQL возвращает "LIMIT ? OFFSET ?" с аргументами или пустую строку без страницы.
func (f *Filter[T]) LimitSQL() (string, []any) {
	if f.page == nil {
		return "", nil
	}
	return "LIMIT ? OFFSET ?", []any{f.page.Size, f.page.Offset()}
}

// SQL собирает хвост запроса после FROM.
func (f *Filter[T]) SQL() (string, []any) {
	where, args := f.WhereSQL()
	clauses := []string{}
	if where != "" {
		clauses = append(clauses, where)
	}
	clauses = append(clauses, f.OrderSQL())
	if limit, limitArgs := f.LimitSQL(); limit != "" {
		clauses = append(clauses, limit)
		args = append(args, limitArgs...)
	}
	return strings.Join(clauses, " "), args
}

// containsPattern готовит аргумент ILIKE для поиска подстроки.
func containsPattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}
