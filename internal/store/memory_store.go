package store

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"cinevault/internal/domain"
	"cinevault/internal/query"
)

// MemoryStore хранит данные в памяти процесса. Семантика совпадает с PostgresStore:
// уникальность среди неудаленных, запрет удаления при ссылках, каскад только для movie_actors.
type MemoryStore struct {
	mu     sync.RWMutex // Для защиты доступа к картам
	logger *slog.Logger
	now    func() time.Time

	seq         map[domain.Entity]int64
	movies      map[int64]domain.Movie
	actors      map[int64]domain.Actor
	users       map[int64]domain.User
	reviews     map[int64]domain.Review
	likes       map[int64]domain.Like
	movieActors map[int64][]int64
}

func NewMemoryStore(logger *slog.Logger) *MemoryStore {
	return &MemoryStore{
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
		seq:         make(map[domain.Entity]int64),
		movies:      make(map[int64]domain.Movie),
		actors:      make(map[int64]domain.Actor),
		users:       make(map[int64]domain.User),
		reviews:     make(map[int64]domain.Review),
		likes:       make(map[int64]domain.Like),
		movieActors: make(map[int64][]int64),
	}
}

func (s *MemoryStore) nextID(e domain.Entity) int64 {
	s.seq[e]++
	return s.seq[e]
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// --- Movies ---

func (s *MemoryStore) movieTitleTaken(title string, exceptID int64) bool {
	for id, m := range s.movies {
		if id != exceptID && !m.IsDeleted && m.Title == title {
			return true
		}
	}
	return false
}

// movieReviews неудаленные отзывы фильма со связью User, по id.
func (s *MemoryStore) movieReviews(movieID int64) []domain.Review {
	var out []domain.Review
	for _, id := range sortedKeys(s.reviews) {
		r := s.reviews[id]
		if r.MovieID == movieID && !r.IsDeleted {
			r.User = s.liveUser(r.UserID)
			out = append(out, r)
		}
	}
	return out
}

func (s *MemoryStore) liveUser(id int64) *domain.User {
	u, ok := s.users[id]
	if !ok || u.IsDeleted {
		return nil
	}
	return &u
}

func (s *MemoryStore) liveMovie(id int64) *domain.Movie {
	m, ok := s.movies[id]
	if !ok || m.IsDeleted {
		return nil
	}
	m.Reviews, m.Actors = nil, nil
	return &m
}

func (s *MemoryStore) CreateMovie(ctx context.Context, movie *domain.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.DebugContext(ctx, "Memory store: creating movie", slog.String("title", movie.Title))

	if s.movieTitleTaken(movie.Title, 0) {
		s.logger.WarnContext(ctx, "Movie title already taken", slog.String("title", movie.Title))
		return ErrAlreadyExists
	}
	movie.ID = s.nextID(domain.EntityMovies)
	movie.IsDeleted = false
	stored := *movie
	stored.Reviews, stored.Actors = nil, nil
	s.movies[movie.ID] = stored
	s.logger.InfoContext(ctx, "Movie created", slog.Int64("movieID", movie.ID))
	return nil
}

func (s *MemoryStore) GetMovie(ctx context.Context, id int64) (*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.logger.DebugContext(ctx, "Memory store: getting movie", slog.Int64("movieID", id))

	m := s.liveMovie(id)
	if m == nil {
		s.logger.WarnContext(ctx, "Movie not found", slog.Int64("movieID", id))
		return nil, ErrNotFound
	}
	m.Reviews = s.movieReviews(id)
	for _, actorID := range s.movieActors[id] {
		if a, ok := s.actors[actorID]; ok && !a.IsDeleted {
			m.Actors = append(m.Actors, a)
		}
	}
	return m, nil
}

func (s *MemoryStore) FindMovies(ctx context.Context, filter *query.MovieFilter) ([]*domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.logger.DebugContext(ctx, "Memory store: finding movies")

	all := make([]*domain.Movie, 0, len(s.movies))
	for _, id := range sortedKeys(s.movies) {
		m := s.movies[id]
		m.Reviews = s.movieReviews(id)
		all = append(all, &m)
	}
	return filter.Apply(all), nil
}

func (s *MemoryStore) UpdateMovie(ctx context.Context, movie *domain.Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.DebugContext(ctx, "Memory store: updating movie", slog.Int64("movieID", movie.ID))

	current, ok := s.movies[movie.ID]
	if !ok || current.IsDeleted {
		s.logger.WarnContext(ctx, "No movie found to update", slog.Int64("movieID", movie.ID))
		return ErrNotFound
	}
	if s.movieTitleTaken(movie.Title, movie.ID) {
		return ErrAlreadyExists
	}
	current.Title = movie.Title
	current.Description = movie.Description
	current.ReleaseDate = movie.ReleaseDate
	current.Genre = movie.Genre
	current.Director = movie.Director
	s.movies[movie.ID] = current
	return nil
}

func (s *MemoryStore) DeleteMovie(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.DebugContext(ctx, "Memory store: deleting movie", slog.Int64("movieID", id))

	m, ok := s.movies[id]
	if !ok || m.IsDeleted {
		return ErrNotFound
	}
	for _, r := range s.reviews {
		if r.MovieID == id {
			s.logger.WarnContext(ctx, "Movie has reviews, not deleted", slog.Int64("movieID", id))
			return ErrHasDependents
		}
	}
	delete(s.movies, id)
	delete(s.movieActors, id)
	return nil
}

func (s *MemoryStore) SoftDeleteMovie(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.movies[id]
	if !ok || m.IsDeleted {
		return ErrNotFound
	}
	m.IsDeleted = true
	s.movies[id] = m
	s.logger.InfoContext(ctx, "Movie soft-deleted", slog.Int64("movieID", id))
	return nil
}

func (s *MemoryStore) SetMovieActors(ctx context.Context, movieID int64, actorIDs []int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.liveMovie(movieID) == nil {
		return ErrNotFound
	}
	for _, id := range actorIDs {
		if _, ok := s.actors[id]; !ok {
			return fmt.Errorf("actor %d: %w", id, ErrNotFound)
		}
	}
	s.movieActors[movieID] = append([]int64(nil), actorIDs...)
	return nil
}

// --- Actors ---

func (s *MemoryStore) CreateActor(ctx context.Context, actor *domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	actor.ID = s.nextID(domain.EntityActors)
	actor.IsDeleted = false
	s.actors[actor.ID] = *actor
	s.logger.InfoContext(ctx, "Actor created", slog.Int64("actorID", actor.ID))
	return nil
}

func (s *MemoryStore) GetActor(ctx context.Context, id int64) (*domain.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actors[id]
	if !ok || a.IsDeleted {
		s.logger.WarnContext(ctx, "Actor not found", slog.Int64("actorID", id))
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) ListActors(ctx context.Context) ([]*domain.Actor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.Actor{}
	for _, id := range sortedKeys(s.actors) {
		a := s.actors[id]
		if !a.IsDeleted {
			out = append(out, &a)
		}
	}
	return out, nil
}

func (s *MemoryStore) UpdateActor(ctx context.Context, actor *domain.Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.actors[actor.ID]
	if !ok || current.IsDeleted {
		return ErrNotFound
	}
	current.FullName = actor.FullName
	current.BirthDate = actor.BirthDate
	current.Biography = actor.Biography
	s.actors[actor.ID] = current
	return nil
}

func (s *MemoryStore) DeleteActor(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actors[id]
	if !ok || a.IsDeleted {
		return ErrNotFound
	}
	delete(s.actors, id)
	for movieID, ids := range s.movieActors {
		kept := ids[:0:0]
		for _, actorID := range ids {
			if actorID != id {
				kept = append(kept, actorID)
			}
		}
		s.movieActors[movieID] = kept
	}
	return nil
}

func (s *MemoryStore) SoftDeleteActor(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.actors[id]
	if !ok || a.IsDeleted {
		return ErrNotFound
	}
	a.IsDeleted = true
	s.actors[id] = a
	s.logger.InfoContext(ctx, "Actor soft-deleted", slog.Int64("actorID", id))
	return nil
}

// --- Users ---

func (s *MemoryStore) userTaken(u *domain.User) bool {
	for id, other := range s.users {
		if id == u.ID || other.IsDeleted {
			continue
		}
		if other.Username == u.Username || other.Email == u.Email {
			return true
		}
	}
	return false
}

func (s *MemoryStore) CreateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.DebugContext(ctx, "Memory store: creating user", slog.String("username", user.Username))

	user.ID = 0
	if s.userTaken(user) {
		s.logger.WarnContext(ctx, "Username or email already taken", slog.String("username", user.Username))
		return ErrAlreadyExists
	}
	user.ID = s.nextID(domain.EntityUsers)
	user.CreatedAt = s.now()
	user.IsDeleted = false
	s.users[user.ID] = *user
	s.logger.InfoContext(ctx, "User created", slog.Int64("userID", user.ID))
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.liveUser(id)
	if u == nil {
		s.logger.WarnContext(ctx, "User not found", slog.Int64("userID", id))
		return nil, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) FindUsers(ctx context.Context, filter *query.UserFilter) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]*domain.User, 0, len(s.users))
	for _, id := range sortedKeys(s.users) {
		u := s.users[id]
		all = append(all, &u)
	}
	return filter.Apply(all), nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.users[user.ID]
	if !ok || current.IsDeleted {
		return ErrNotFound
	}
	if s.userTaken(user) {
		return ErrAlreadyExists
	}
	current.Username = user.Username
	current.Email = user.Email
	current.PasswordHash = user.PasswordHash
	s.users[user.ID] = current
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.IsDeleted {
		return ErrNotFound
	}
	for _, r := range s.reviews {
		if r.UserID == id {
			return ErrHasDependents
		}
	}
	for _, l := range s.likes {
		if l.UserID == id {
			return ErrHasDependents
		}
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryStore) SoftDeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok || u.IsDeleted {
		return ErrNotFound
	}
	u.IsDeleted = true
	s.users[id] = u
	s.logger.InfoContext(ctx, "User soft-deleted", slog.Int64("userID", id))
	return nil
}

// --- Reviews ---

func (s *MemoryStore) withRelations(r domain.Review) *domain.Review {
	r.Movie = s.liveMovie(r.MovieID)
	r.User = s.liveUser(r.UserID)
	return &r
}

func (s *MemoryStore) CreateReview(ctx context.Context, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger.DebugContext(ctx, "Memory store: creating review",
		slog.Int64("movieID", review.MovieID), slog.Int64("userID", review.UserID))

	if _, ok := s.movies[review.MovieID]; !ok {
		return fmt.Errorf("movie %d: %w", review.MovieID, ErrNotFound)
	}
	if _, ok := s.users[review.UserID]; !ok {
		return fmt.Errorf("user %d: %w", review.UserID, ErrNotFound)
	}
	review.ID = s.nextID(domain.EntityReviews)
	review.CreatedAt = s.now()
	review.IsDeleted = false
	stored := *review
	stored.Movie, stored.User = nil, nil
	s.reviews[review.ID] = stored
	s.logger.InfoContext(ctx, "Review created", slog.Int64("reviewID", review.ID))
	return nil
}

func (s *MemoryStore) GetReview(ctx context.Context, id int64) (*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok || r.IsDeleted {
		s.logger.WarnContext(ctx, "Review not found", slog.Int64("reviewID", id))
		return nil, ErrNotFound
	}
	return s.withRelations(r), nil
}

func (s *MemoryStore) ListReviews(ctx context.Context) ([]*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []*domain.Review{}
	for _, id := range sortedKeys(s.reviews) {
		if r := s.reviews[id]; !r.IsDeleted {
			out = append(out, s.withRelations(r))
		}
	}
	return out, nil
}

func (s *MemoryStore) ReviewsByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Review
	for _, id := range sortedKeys(s.reviews) {
		if r := s.reviews[id]; !r.IsDeleted && r.UserID == userID {
			out = append(out, *s.withRelations(r))
		}
	}
	return out, nil
}

func (s *MemoryStore) FindUserReview(ctx context.Context, movieID, userID int64) (*domain.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range sortedKeys(s.reviews) {
		if r := s.reviews[id]; !r.IsDeleted && r.MovieID == movieID && r.UserID == userID {
			return s.withRelations(r), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateReview(ctx context.Context, review *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.reviews[review.ID]
	if !ok || current.IsDeleted {
		return ErrNotFound
	}
	current.MovieID = review.MovieID
	current.UserID = review.UserID
	current.Rating = review.Rating
	current.Comment = review.Comment
	s.reviews[review.ID] = current
	return nil
}

func (s *MemoryStore) DeleteReview(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok || r.IsDeleted {
		return ErrNotFound
	}
	for _, l := range s.likes {
		if l.ReviewID == id {
			return ErrHasDependents
		}
	}
	delete(s.reviews, id)
	return nil
}

func (s *MemoryStore) SoftDeleteReview(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reviews[id]
	if !ok || r.IsDeleted {
		return ErrNotFound
	}
	r.IsDeleted = true
	s.reviews[id] = r
	s.logger.InfoContext(ctx, "Review soft-deleted", slog.Int64("reviewID", id))
	return nil
}

// --- Likes ---

func (s *MemoryStore) CreateLike(ctx context.Context, like *domain.Like) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.likes {
		if !l.IsDeleted && l.ReviewID == like.ReviewID && l.UserID == like.UserID {
			s.logger.WarnContext(ctx, "Like already exists",
				slog.Int64("reviewID", like.ReviewID), slog.Int64("userID", like.UserID))
			return ErrAlreadyExists
		}
	}
	like.ID = s.nextID(domain.EntityLikes)
	like.IsDeleted = false
	s.likes[like.ID] = *like
	s.logger.InfoContext(ctx, "Like created", slog.Int64("likeID", like.ID))
	return nil
}

func (s *MemoryStore) GetLike(ctx context.Context, id int64) (*domain.Like, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.likes[id]
	if !ok || l.IsDeleted {
		return nil, ErrNotFound
	}
	return &l, nil
}

func (s *MemoryStore) SoftDeleteLike(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.likes[id]
	if !ok || l.IsDeleted {
		return ErrNotFound
	}
	l.IsDeleted = true
	s.likes[id] = l
	return nil
}

// --- Counts ---

func countRows[V any](rows map[int64]V, deleted func(V) bool, includeDeleted bool) int {
	n := 0
	for _, v := range rows {
		if includeDeleted || !deleted(v) {
			n++
		}
	}
	return n
}

func (s *MemoryStore) Count(ctx context.Context, entity domain.Entity, includeDeleted bool) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch entity {
	case domain.EntityMovies:
		return countRows(s.movies, func(m domain.Movie) bool { return m.IsDeleted }, includeDeleted), nil
	case domain.EntityActors:
		return countRows(s.actors, func(a domain.Actor) bool { return a.IsDeleted }, includeDeleted), nil
	case domain.EntityUsers:
		return countRows(s.users, func(u domain.User) bool { return u.IsDeleted }, includeDeleted), nil
	case domain.EntityReviews:
		return countRows(s.reviews, func(r domain.Review) bool { return r.IsDeleted }, includeDeleted), nil
	case domain.EntityLikes:
		return countRows(s.likes, func(l domain.Like) bool { return l.IsDeleted }, includeDeleted), nil
	}
	return 0, fmt.Errorf("unknown entity %q", entity)
}
