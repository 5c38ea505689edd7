package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
	"cinevault/internal/service"
	"cinevault/internal/store"
	"cinevault/pkg/auth"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	IsSuccess  bool            `json:"is_success"`
	Data       json.RawMessage `json:"data"`
	Meta       map[string]any  `json:"meta"`
	ResponseID string          `json:"response_id"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.New(store.NewMemoryStore(logger), auth.NewBcryptHasher(bcrypt.MinCost), logger, service.Config{})
	return NewRouter(NewHandler(svc, logger, "Testing"))
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	assert.Equal(t, rec.Code, env.StatusCode)
	return env
}

func v2(data any) map[string]any {
	return map[string]any{"data": data}
}

func createV2(t *testing.T, h http.Handler, path string, data any) int64 {
	t.Helper()
	rec := do(t, h, http.MethodPost, path, v2(data))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var id int64
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &id))
	return id
}

func TestV1MovieLifecycle(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/Movies/CreateMovie", map[string]any{
		"title": "Dune", "genre": "SciFi", "release_date": "2021-10-22",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":1}`, rec.Body.String())

	// Путь без версии обслуживается как v1.
	rec = do(t, h, http.MethodGet, "/api/Movies/GetMovieById/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movie mapper.MovieResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movie))
	assert.Equal(t, "Dune", movie.Title)
	require.NotNil(t, movie.ReleaseDate)
	assert.Equal(t, "2021-10-22", movie.ReleaseDate.String())

	rec = do(t, h, http.MethodPut, "/api/v1/Movies/UpdateMovie/1", map[string]any{"title": "Dune: Part One", "genre": "SciFi"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/Movies/GetMovies", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movies []mapper.MovieResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &movies))
	require.Len(t, movies, 1)
	assert.Equal(t, "Dune: Part One", movies[0].Title)

	rec = do(t, h, http.MethodDelete, "/api/v1/Movies/DeleteMovie/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodGet, "/api/v1/Movies/GetMovieById/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Movie not found"}`, rec.Body.String())
}

func TestV1Errors(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/Movies/CreateMovie", map[string]any{"genre": "Drama"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/Movies/CreateMovie", strings.NewReader("{broken"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	do(t, h, http.MethodPost, "/api/v1/Movies/CreateMovie", map[string]any{"title": "Dune"})
	do(t, h, http.MethodPost, "/api/v1/Users/CreateUser", map[string]any{
		"username": "alice", "email": "alice@example.com", "password": "secret1",
	})
	rec = do(t, h, http.MethodPost, "/api/v1/Reviews/CreateReview", map[string]any{"movie_id": 1, "user_id": 1, "rating": 11})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid rating value 11. Accepted range: 1-10"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v1/Reviews/CreateReview", map[string]any{"movie_id": 1, "user_id": 1, "rating": 7})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodDelete, "/api/v1/Movies/DeleteMovie/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Movie has reviews and cannot be deleted"}`, rec.Body.String())
}

func TestV2EnvelopeOnNotFound(t *testing.T) {
	h := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v2/Movies/GetMovieById/99", http.NoBody)
	req.Header.Set(RequestIDHeader, "corr-42")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.IsSuccess)
	assert.Equal(t, "Movie not found", env.Message)
	assert.Nil(t, env.Data)
	assert.NotEmpty(t, env.ResponseID)
	assert.Equal(t, "corr-42", env.Meta["request_id"])
	assert.Equal(t, "Undefined", env.Meta["client_version"])
	assert.Equal(t, "Unknown", env.Meta["client_source"])
}

func TestNonNumericIDIsValidationError(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v2/Movies/GetMovieById/abc", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.IsSuccess)
	assert.Equal(t, `Invalid id "abc"`, env.Message)
	assert.NotEmpty(t, env.Meta["request_id"])

	rec = do(t, h, http.MethodGet, "/api/v1/Movies/GetMovieById/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid id \"abc\""}`, rec.Body.String())
}

func TestV2EchoesClientMetadata(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodPost, "/api/v2/Movies/GetMovies", map[string]any{
		"client_version": "2.1.0",
		"client_source":  "web",
		"request_id":     "req-1",
		"meta":           map[string]string{"trace": "on"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.IsSuccess)
	assert.Equal(t, "Movies retrieved", env.Message)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.Equal(t, "2.1.0", env.Meta["client_version"])
	assert.Equal(t, "web", env.Meta["client_source"])
	assert.Equal(t, "req-1", env.Meta["request_id"])
	assert.Equal(t, "on", env.Meta["trace"])
}

func TestV2InvalidPayload(t *testing.T) {
	h := newTestRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v2/Movies/CreateMovie", strings.NewReader(`{"data":`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Invalid request payload", env.Message)
	assert.NotEmpty(t, env.Meta["request_id"])
}

func TestV2SoftDeleteHidesFromListings(t *testing.T) {
	h := newTestRouter(t)
	createV2(t, h, "/api/v2/Movies/CreateMovie", map[string]any{"title": "Dune", "genre": "SciFi"})
	alien := createV2(t, h, "/api/v2/Movies/CreateMovie", map[string]any{"title": "Alien", "genre": "SciFi"})
	createV2(t, h, "/api/v2/Users/CreateUser", map[string]any{"username": "alice", "email": "a@example.com", "password": "secret1"})
	bob := createV2(t, h, "/api/v2/Users/CreateUser", map[string]any{"username": "bob", "email": "b@example.com", "password": "secret1"})

	rec := do(t, h, http.MethodDelete, fmt.Sprintf("/api/v2/Movies/DeleteMovie/%d", alien), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, fmt.Sprintf("/api/v2/Users/DeleteUser/%d", bob), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	titles := func(path string, body any) []string {
		rec := do(t, h, http.MethodPost, path, body)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var movies []mapper.MovieResponse
		require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &movies))
		var out []string
		for _, m := range movies {
			out = append(out, m.Title)
		}
		return out
	}
	assert.Equal(t, []string{"Dune"}, titles("/api/v2/Movies/GetMovies", nil))
	assert.Equal(t, []string{"Dune"}, titles("/api/v2/Movies/SearchMovies", v2(map[string]any{"genre": "SciFi"})))

	rec = do(t, h, http.MethodPost, "/api/v2/Users/SearchUsers", v2(map[string]any{"email": "example.com"}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var users []mapper.UserResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &users))
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
}

func TestV2AggregatesAndSearch(t *testing.T) {
	h := newTestRouter(t)
	dune := createV2(t, h, "/api/v2/Movies/CreateMovie", map[string]any{"title": "Dune", "genre": "SciFi"})
	createV2(t, h, "/api/v2/Movies/CreateMovie", map[string]any{"title": "Alien", "genre": "SciFi"})
	alice := createV2(t, h, "/api/v2/Users/CreateUser", map[string]any{"username": "alice", "email": "a@example.com", "password": "secret1"})
	bob := createV2(t, h, "/api/v2/Users/CreateUser", map[string]any{"username": "bob", "email": "b@example.com", "password": "secret1"})
	createV2(t, h, "/api/v2/Reviews/CreateReview", map[string]any{"movie_id": dune, "user_id": alice, "rating": 8})
	createV2(t, h, "/api/v2/Reviews/CreateReview", map[string]any{"movie_id": dune, "user_id": bob, "rating": 10})

	rec := do(t, h, http.MethodPost, "/api/v2/Movies/GetMovieById/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var movie mapper.MovieResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &movie))
	assert.InDelta(t, 9.0, movie.AverageRating, 1e-9)
	assert.Equal(t, 2, movie.ReviewCount)

	rec = do(t, h, http.MethodPost, "/api/v2/Movies/SearchMovies", v2(map[string]any{"genre": "SciFi", "min_rating": 9.5}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, string(decodeEnvelope(t, rec).Data))

	rec = do(t, h, http.MethodPost, "/api/v2/Movies/SearchMovies", v2(map[string]any{"sort_by": "title", "page_size": 1}))
	require.Equal(t, http.StatusOK, rec.Code)
	var page []mapper.MovieResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &page))
	require.Len(t, page, 1)
	assert.Equal(t, "Alien", page[0].Title)

	rec = do(t, h, http.MethodPost, "/api/v2/Movies/SearchMovies", v2(map[string]any{"page_number": 0}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestV2ReviewUpsertAndDetails(t *testing.T) {
	h := newTestRouter(t)
	dune := createV2(t, h, "/api/v2/Movies/CreateMovie", map[string]any{"title": "Dune", "genre": "SciFi"})
	alice := createV2(t, h, "/api/v2/Users/CreateUser", map[string]any{"username": "alice", "email": "a@example.com", "password": "secret1"})

	first := createV2(t, h, "/api/v2/Reviews/CreateReview", map[string]any{"movie_id": dune, "user_id": alice, "rating": 5})
	rec := do(t, h, http.MethodPost, "/api/v2/Reviews/CreateReview", v2(map[string]any{
		"movie_id": dune, "user_id": alice, "rating": 9, "comment": "grew on me",
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Review updated", env.Message)
	assert.JSONEq(t, "1", string(env.Data))
	assert.Equal(t, int64(1), first)

	rec = do(t, h, http.MethodPost, "/api/v2/Movies/GetMovieDetails/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var details mapper.MovieDetailsResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &details))
	assert.Equal(t, 1, details.ReviewCount)
	require.Len(t, details.RecentReviews, 1)
	assert.Equal(t, "alice", details.RecentReviews[0].Username)
	assert.Equal(t, 9, details.RecentReviews[0].Rating)

	rec = do(t, h, http.MethodPut, "/api/v2/Reviews/UpdateReview/1", v2(map[string]any{"movie_id": dune, "user_id": alice, "rating": 0}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v2/Reviews/UpdateReview/1", v2(map[string]any{"movie_id": dune, "user_id": alice, "rating": 3}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Review (ID: 1) was successfully updated", decodeEnvelope(t, rec).Message)

	// Автор удален: в отзыве остается заглушка.
	rec = do(t, h, http.MethodDelete, "/api/v2/Users/DeleteUser/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/api/v2/Reviews/GetReviewById/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var review mapper.ReviewResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &review))
	assert.Equal(t, mapper.DeletedUser, review.Username)
	assert.Equal(t, "Dune", review.MovieTitle)
}

func TestV2BulkOperations(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v2/Movies/CreateMovies", v2([]map[string]any{
		{"title": "A"}, {"title": ""}, {"title": "B"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Movies created", env.Message)
	assert.JSONEq(t, `[1,2]`, string(env.Data))
	assert.Equal(t, []any{"1:title is required"}, env.Meta["failed_items"])

	user := createV2(t, h, "/api/v2/Users/CreateUser", map[string]any{"username": "alice", "email": "a@example.com", "password": "secret1"})
	createV2(t, h, "/api/v2/Reviews/CreateReview", map[string]any{"movie_id": 2, "user_id": user, "rating": 4})

	rec = do(t, h, http.MethodDelete, "/api/v2/Movies/DeleteMovies", v2([]int64{1, 2, 9999}))
	require.Equal(t, http.StatusOK, rec.Code)
	var res domain.DeleteMoviesResult
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &res))
	want := domain.DeleteMoviesResult{DeletedIDs: []int64{1}, NotFoundIDs: []int64{9999}, HasReviewsIDs: []int64{2}}
	if diff := cmp.Diff(want, res); diff != "" {
		t.Errorf("DeleteMovies mismatch (-want +got):\n%s", diff)
	}

	rec = do(t, h, http.MethodPost, "/api/v2/Movies/DeleteMovies", v2([]int64{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "List of movie IDs is required", decodeEnvelope(t, rec).Message)
}

func TestV2ActorsLikesAndCounts(t *testing.T) {
	h := newTestRouter(t)
	movie := createV2(t, h, "/api/v2/Movies/CreateMovie", map[string]any{"title": "Dune"})
	actor := createV2(t, h, "/api/v2/Actors/CreateActor", map[string]any{"full_name": "Zendaya", "birth_date": "1996-09-01"})

	rec := do(t, h, http.MethodPut, "/api/v2/Movies/AssignActors/1", v2(map[string]any{"actor_ids": []int64{actor}}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/v2/Movies/GetMovieDetails/1", nil)
	var details mapper.MovieDetailsResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &details))
	require.Len(t, details.Actors, 1)
	assert.Equal(t, "Zendaya", details.Actors[0].FullName)

	user := createV2(t, h, "/api/v2/Users/CreateUser", map[string]any{"username": "alice", "email": "a@example.com", "password": "secret1"})
	review := createV2(t, h, "/api/v2/Reviews/CreateReview", map[string]any{"movie_id": movie, "user_id": user, "rating": 7})
	createV2(t, h, "/api/v2/Likes/CreateLike", map[string]any{"review_id": review, "user_id": user})

	rec = do(t, h, http.MethodPost, "/api/v2/Likes/CreateLike", v2(map[string]any{"review_id": review, "user_id": user}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Like exists", decodeEnvelope(t, rec).Message)

	rec = do(t, h, http.MethodDelete, "/api/v2/Actors/DeleteActor/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v2/Admin/GetCounts", v2(map[string]any{"include_deleted": true}))
	require.Equal(t, http.StatusOK, rec.Code)
	var counts map[string]int
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &counts))
	assert.Equal(t, map[string]int{"movies": 1, "actors": 1, "users": 1, "reviews": 1, "likes": 1}, counts)

	rec = do(t, h, http.MethodPost, "/api/v2/Admin/GetCounts", nil)
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &counts))
	assert.Equal(t, 0, counts["actors"])
}

func TestAppInfo(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodGet, "/api/v2/environment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"environment_name":"Testing"}`, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v1/old", nil)
	assert.Equal(t, "This is old api method for version 1", rec.Body.String())
	rec = do(t, h, http.MethodGet, "/api/v2/new", nil)
	assert.Equal(t, "This is new api method for version 2", rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/v2/old", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/environment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"environment_name":"Testing"}`, rec.Body.String())
	rec = do(t, h, http.MethodGet, "/api/old", nil)
	assert.Equal(t, "This is old api method for version 1", rec.Body.String())
}

func TestResponseIsSuccessDerivedFromStatus(t *testing.T) {
	for status, want := range map[int]bool{200: true, 201: true, 299: true, 199: false, 300: false, 404: false, 500: false} {
		b, err := json.Marshal(newResponse(status, "m", nil))
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(b, &env))
		assert.Equal(t, want, env.IsSuccess, "status %d", status)
		assert.Nil(t, env.Data)
	}
}

func TestRequestMonitorRecoversPanic(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(nil, logger, "Testing")
	wrapped := h.RequestMonitor(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/explode", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
