package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cinevault/internal/domain"
	"cinevault/internal/store"
	"cinevault/pkg/auth"
)

func newServices(t *testing.T, cfg Config) *Services {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store.NewMemoryStore(logger), auth.NewBcryptHasher(bcrypt.MinCost), logger, cfg)
}

func ptr[T any](v T) *T { return &v }

func mustMovie(t *testing.T, svc *Services, title, genre string) int64 {
	t.Helper()
	id, err := svc.Movies.Create(context.Background(), domain.MovieRequest{Title: title, Genre: genre})
	require.NoError(t, err)
	return id
}

func mustUser(t *testing.T, svc *Services, name string) int64 {
	t.Helper()
	id, err := svc.Users.Create(context.Background(), domain.UserRequest{
		Username: name, Email: name + "@example.com", Password: "secret1",
	})
	require.NoError(t, err)
	return id
}

func mustReview(t *testing.T, svc *Services, movieID, userID int64, rating int) int64 {
	t.Helper()
	id, err := svc.Reviews.Create(context.Background(), domain.ReviewRequest{MovieID: movieID, UserID: userID, Rating: rating})
	require.NoError(t, err)
	return id
}

func TestParseDeleteMode(t *testing.T) {
	m, err := ParseDeleteMode("")
	require.NoError(t, err)
	assert.Equal(t, SoftDelete, m)

	m, err = ParseDeleteMode(" HARD ")
	require.NoError(t, err)
	assert.Equal(t, HardDelete, m)

	_, err = ParseDeleteMode("purge")
	assert.Error(t, err)
}

func TestMovieRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	req := domain.MovieRequest{
		Title:       "Arrival",
		Description: "Linguist meets heptapods",
		ReleaseDate: ptr(domain.NewDate(2016, 11, 11)),
		Genre:       "SciFi",
		Director:    "Villeneuve",
	}
	id, err := svc.Movies.Create(ctx, req)
	require.NoError(t, err)

	got, err := svc.Movies.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, req.Title, got.Title)
	assert.Equal(t, req.Description, got.Description)
	assert.Equal(t, req.Genre, got.Genre)
	assert.Equal(t, req.Director, got.Director)
	require.NotNil(t, got.ReleaseDate)
	assert.True(t, req.ReleaseDate.Equal(*got.ReleaseDate))
}

func TestMovieValidationAndConflict(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})

	_, err := svc.Movies.Create(ctx, domain.MovieRequest{})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, MessageOf(err), "title is required")

	mustMovie(t, svc, "Dune", "SciFi")
	_, err = svc.Movies.Create(ctx, domain.MovieRequest{Title: "Dune"})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "Movie with title 'Dune' already exists", MessageOf(err))

	err = svc.Movies.Update(ctx, 999, domain.MovieRequest{Title: "X"})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestMovieHardDeleteWithReviewsIsConflict(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	movieID := mustMovie(t, svc, "Dune", "SciFi")
	mustReview(t, svc, movieID, mustUser(t, svc, "alice"), 8)

	err := svc.Movies.Delete(ctx, movieID, HardDelete)
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = svc.Movies.Get(ctx, movieID)
	assert.NoError(t, err)
}

func TestSecondSoftDeleteIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	id := mustMovie(t, svc, "Dune", "SciFi")

	require.NoError(t, svc.Movies.Delete(ctx, id, SoftDelete))
	err := svc.Movies.Delete(ctx, id, SoftDelete)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.Movies.Get(ctx, id)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestSoftDeletedHiddenFromListsAndSearch(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	dune := mustMovie(t, svc, "Dune", "SciFi")
	alien := mustMovie(t, svc, "Alien", "SciFi")
	alice := mustUser(t, svc, "alice")
	bob := mustUser(t, svc, "bob")

	require.NoError(t, svc.Movies.Delete(ctx, alien, SoftDelete))
	require.NoError(t, svc.Users.Delete(ctx, bob, SoftDelete))

	movieIDs := func(list []*domain.Movie) []int64 {
		var ids []int64
		for _, m := range list {
			ids = append(ids, m.ID)
		}
		return ids
	}
	movies, err := svc.Movies.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{dune}, movieIDs(movies))
	movies, err = svc.Movies.Search(ctx, domain.MovieSearchRequest{Genre: "SciFi"})
	require.NoError(t, err)
	assert.Equal(t, []int64{dune}, movieIDs(movies))
	movies, err = svc.Movies.Search(ctx, domain.MovieSearchRequest{Title: "alien"})
	require.NoError(t, err)
	assert.Empty(t, movies)

	users, err := svc.Users.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice, users[0].ID)
	users, err = svc.Users.Search(ctx, domain.UserSearchRequest{Email: "example.com"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice, users[0].ID)
}

func TestSearchMoviesMinRating(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	dune := mustMovie(t, svc, "Dune", "SciFi")
	mustMovie(t, svc, "Alien", "SciFi")
	alice := mustUser(t, svc, "alice")
	bob := mustUser(t, svc, "bob")
	mustReview(t, svc, dune, alice, 8)
	mustReview(t, svc, dune, bob, 10)

	movies, err := svc.Movies.Search(ctx, domain.MovieSearchRequest{Genre: "SciFi", MinRating: ptr(9.5)})
	require.NoError(t, err)
	assert.Empty(t, movies)

	movies, err = svc.Movies.Search(ctx, domain.MovieSearchRequest{Genre: "SciFi", MinRating: ptr(9.0)})
	require.NoError(t, err)
	require.Len(t, movies, 1)
	assert.Equal(t, dune, movies[0].ID)

	movies, err = svc.Movies.Search(ctx, domain.MovieSearchRequest{Genre: "SciFi", MinRating: ptr(0.0)})
	require.NoError(t, err)
	assert.Len(t, movies, 2)

	_, err = svc.Movies.Search(ctx, domain.MovieSearchRequest{PageSize: ptr(0)})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestDeleteManyReport(t *testing.T) {
	ctx := context.Background()
	for _, mode := range []DeleteMode{SoftDelete, HardDelete} {
		t.Run(mode.String(), func(t *testing.T) {
			svc := newServices(t, Config{BulkDeleteMode: mode})
			a := mustMovie(t, svc, "A", "Drama")
			b := mustMovie(t, svc, "B", "Drama")
			mustReview(t, svc, b, mustUser(t, svc, "alice"), 5)

			res, err := svc.Movies.DeleteMany(ctx, []int64{a, b, 9999, a})
			require.NoError(t, err)
			want := domain.DeleteMoviesResult{
				DeletedIDs:    []int64{a},
				NotFoundIDs:   []int64{9999},
				HasReviewsIDs: []int64{b},
			}
			if diff := cmp.Diff(want, res); diff != "" {
				t.Errorf("DeleteMany() mismatch (-want +got):\n%s", diff)
			}

			_, err = svc.Movies.Get(ctx, b)
			assert.NoError(t, err)
			_, err = svc.Movies.Get(ctx, a)
			assert.Equal(t, KindNotFound, KindOf(err))
		})
	}
}

func TestDeleteManyEmpty(t *testing.T) {
	svc := newServices(t, Config{})
	_, err := svc.Movies.DeleteMany(context.Background(), nil)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "List of movie IDs is required", MessageOf(err))
}

func TestAssignActors(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	movieID := mustMovie(t, svc, "Dune", "SciFi")
	actorID, err := svc.Actors.Create(ctx, domain.ActorRequest{
		FullName:  "Timothee Chalamet",
		BirthDate: ptr(domain.NewDate(1995, 12, 27)),
	})
	require.NoError(t, err)

	err = svc.Movies.AssignActors(ctx, movieID, []int64{actorID, 77})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Actors not found: [77]", MessageOf(err))

	require.NoError(t, svc.Movies.AssignActors(ctx, movieID, []int64{actorID, actorID}))
	movie, err := svc.Movies.Get(ctx, movieID)
	require.NoError(t, err)
	require.Len(t, movie.Actors, 1)
	assert.Equal(t, "Timothee Chalamet", movie.Actors[0].FullName)
}

func TestActorRequiresBirthDate(t *testing.T) {
	svc := newServices(t, Config{})
	_, err := svc.Actors.Create(context.Background(), domain.ActorRequest{FullName: "Nobody"})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, MessageOf(err), "birth_date is required")
}

func TestUserPasswordIsHashed(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	id := mustUser(t, svc, "alice")

	user, err := svc.Users.Get(ctx, id)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.True(t, svc.Users.hasher.Matches(user.PasswordHash, "secret1"))

	_, err = svc.Users.Create(ctx, domain.UserRequest{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assert.Equal(t, KindConflict, KindOf(err))

	_, err = svc.Users.Create(ctx, domain.UserRequest{Username: "bob", Email: "not-an-email", Password: "secret1"})
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Contains(t, MessageOf(err), "email must be a valid email address")
}

func TestSearchUsersEmailDesc(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	for _, name := range []string{"carol", "alice", "dave", "bob"} {
		mustUser(t, svc, name)
	}

	users, err := svc.Users.Search(ctx, domain.UserSearchRequest{
		SortBy:        "email",
		SortDirection: "desc",
		PageSize:      ptr(2),
	})
	require.NoError(t, err)
	var names []string
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.Equal(t, []string{"dave", "carol"}, names)
}

func TestUserStats(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	alice := mustUser(t, svc, "alice")
	dune := mustMovie(t, svc, "Dune", "SciFi")
	alien := mustMovie(t, svc, "Alien", "SciFi")
	heat := mustMovie(t, svc, "Heat", "Crime")
	mustReview(t, svc, dune, alice, 10)
	mustReview(t, svc, alien, alice, 6)
	mustReview(t, svc, heat, alice, 5)

	st, err := svc.Users.Stats(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, st.TotalReviews)
	assert.InDelta(t, 7.0, st.AverageRating, 1e-9)
	require.NotNil(t, st.LastActivity)
	want := []domain.GenreStat{
		{Genre: "SciFi", Count: 2, AverageRating: 8},
		{Genre: "Crime", Count: 1, AverageRating: 5},
	}
	if diff := cmp.Diff(want, st.GenreStatistics); diff != "" {
		t.Errorf("GenreStatistics mismatch (-want +got):\n%s", diff)
	}

	_, err = svc.Users.Stats(ctx, 404)
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReviewRatingValidation(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	movieID := mustMovie(t, svc, "Dune", "SciFi")
	userID := mustUser(t, svc, "alice")

	for _, rating := range []int{0, 11, -3} {
		_, err := svc.Reviews.Create(ctx, domain.ReviewRequest{MovieID: movieID, UserID: userID, Rating: rating})
		assert.Equal(t, KindValidation, KindOf(err), "rating %d", rating)
	}
	_, err := svc.Reviews.Create(ctx, domain.ReviewRequest{MovieID: movieID, UserID: userID, Rating: 11})
	assert.Equal(t, "Invalid rating value 11. Accepted range: 1-10", MessageOf(err))

	id := mustReview(t, svc, movieID, userID, 7)
	err = svc.Reviews.Update(ctx, id, domain.ReviewRequest{MovieID: movieID, UserID: userID, Rating: 42})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.Reviews.Create(ctx, domain.ReviewRequest{MovieID: 999, UserID: userID, Rating: 5})
	assert.Equal(t, KindNotFound, KindOf(err))
}

func TestReviewUpsert(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	movieID := mustMovie(t, svc, "Dune", "SciFi")
	userID := mustUser(t, svc, "alice")

	id, updated, err := svc.Reviews.Upsert(ctx, domain.ReviewRequest{MovieID: movieID, UserID: userID, Rating: 6})
	require.NoError(t, err)
	assert.False(t, updated)

	again, updated, err := svc.Reviews.Upsert(ctx, domain.ReviewRequest{
		MovieID: movieID, UserID: userID, Rating: 9, Comment: ptr("better on rewatch"),
	})
	require.NoError(t, err)
	assert.True(t, updated)
	assert.Equal(t, id, again)

	review, err := svc.Reviews.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 9, review.Rating)
	require.NotNil(t, review.Comment)
	assert.Equal(t, "better on rewatch", *review.Comment)

	reviews, err := svc.Reviews.List(ctx)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestCreateManyReportsFailures(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})

	res, err := CreateMany[domain.MovieRequest, *domain.Movie](ctx, svc.Movies, []domain.MovieRequest{
		{Title: "One"},
		{Title: ""},
		{Title: "Two"},
		{Title: "One"},
	})
	require.NoError(t, err)
	assert.Len(t, res.IDs, 2)
	require.Len(t, res.Failed, 2)
	assert.Equal(t, 1, res.Failed[0].Index)
	assert.Equal(t, "3:Movie with title 'One' already exists", res.Failed[1].String())

	_, err = CreateMany[domain.MovieRequest, *domain.Movie](ctx, svc.Movies, nil)
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestLikes(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	movieID := mustMovie(t, svc, "Dune", "SciFi")
	userID := mustUser(t, svc, "alice")
	reviewID := mustReview(t, svc, movieID, userID, 8)

	likeID, err := svc.Likes.Create(ctx, domain.LikeRequest{ReviewID: reviewID, UserID: userID})
	require.NoError(t, err)

	_, err = svc.Likes.Create(ctx, domain.LikeRequest{ReviewID: reviewID, UserID: userID})
	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, "Like exists", MessageOf(err))

	_, err = svc.Likes.Create(ctx, domain.LikeRequest{ReviewID: 321, UserID: userID})
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "Review with ID 321 not found in system", MessageOf(err))

	require.NoError(t, svc.Likes.Delete(ctx, likeID))
	err = svc.Likes.Delete(ctx, likeID)
	assert.Equal(t, KindNotFound, KindOf(err))

	_, err = svc.Likes.Create(ctx, domain.LikeRequest{ReviewID: reviewID, UserID: userID})
	assert.NoError(t, err)
}

func TestAdminCounts(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, Config{})
	mustMovie(t, svc, "Keep", "Drama")
	gone := mustMovie(t, svc, "Gone", "Drama")
	mustUser(t, svc, "alice")
	require.NoError(t, svc.Movies.Delete(ctx, gone, SoftDelete))

	live, err := svc.Admin.Counts(ctx, false)
	require.NoError(t, err)
	all, err := svc.Admin.Counts(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 1, live[domain.EntityMovies])
	assert.Equal(t, 2, all[domain.EntityMovies])
	assert.Equal(t, 1, all[domain.EntityUsers])
	assert.Equal(t, 0, all[domain.EntityLikes])
	assert.Len(t, all, len(domain.Entities))
}
