package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
)

// idPath принимает любой сегмент, разбор и проверку делает pathID.
const idPath = "/{id}"

// NewRouter строит маршруты /api/v1, /api/v2 и /api (без версии считается v1).
func NewRouter(h *Handler) *mux.Router {
	router := mux.NewRouter()
	router.Use(h.RequestMonitor)

	apiRouter := router.PathPrefix("/api").Subrouter()

	v1 := apiRouter.PathPrefix("/v1").Subrouter()
	h.registerV1(v1)
	h.registerAppInfoV1(v1)

	v2 := apiRouter.PathPrefix("/v2").Subrouter()
	h.registerV2(v2)
	v2.HandleFunc("/environment", h.Environment).Methods(http.MethodGet)
	v2.HandleFunc("/new", versionEndpoint(2, "new")).Methods(http.MethodGet)

	// Путь без версии обслуживается как v1.
	h.registerV1(apiRouter)
	h.registerAppInfoV1(apiRouter)

	return router
}

func (h *Handler) registerAppInfoV1(r *mux.Router) {
	r.HandleFunc("/environment", h.Environment).Methods(http.MethodGet)
	r.HandleFunc("/old", versionEndpoint(1, "old")).Methods(http.MethodGet)
}

func (h *Handler) registerV1(r *mux.Router) {
	movies := newV1Routes[domain.MovieRequest](h, "movie", h.services.Movies, mapper.Movie)
	users := newV1Routes[domain.UserRequest](h, "user", h.services.Users, mapper.User)
	reviews := newV1Routes[domain.ReviewRequest](h, "review", h.services.Reviews, mapper.Review)

	m := r.PathPrefix("/Movies").Subrouter()
	m.HandleFunc("/GetMovies", movies.list).Methods(http.MethodGet)
	m.HandleFunc("/GetMovieById"+idPath, movies.get).Methods(http.MethodGet)
	m.HandleFunc("/CreateMovie", movies.create).Methods(http.MethodPost)
	m.HandleFunc("/UpdateMovie"+idPath, movies.update).Methods(http.MethodPut)
	m.HandleFunc("/DeleteMovie"+idPath, movies.remove).Methods(http.MethodDelete)

	u := r.PathPrefix("/Users").Subrouter()
	u.HandleFunc("/GetUsers", users.list).Methods(http.MethodGet)
	u.HandleFunc("/GetUserById"+idPath, users.get).Methods(http.MethodGet)
	u.HandleFunc("/CreateUser", users.create).Methods(http.MethodPost)
	u.HandleFunc("/UpdateUser"+idPath, users.update).Methods(http.MethodPut)
	u.HandleFunc("/DeleteUser"+idPath, users.remove).Methods(http.MethodDelete)

	rv := r.PathPrefix("/Reviews").Subrouter()
	rv.HandleFunc("/GetReviews", reviews.list).Methods(http.MethodGet)
	rv.HandleFunc("/GetReviewById"+idPath, reviews.get).Methods(http.MethodGet)
	rv.HandleFunc("/CreateReview", reviews.create).Methods(http.MethodPost)
	rv.HandleFunc("/UpdateReview"+idPath, reviews.update).Methods(http.MethodPut)
	rv.HandleFunc("/DeleteReview"+idPath, reviews.remove).Methods(http.MethodDelete)
}

// registerV2 чтение идет через POST, изменение и удаление принимают также PUT и DELETE.
func (h *Handler) registerV2(r *mux.Router) {
	var (
		read   = []string{http.MethodPost}
		write  = []string{http.MethodPost, http.MethodPut}
		remove = []string{http.MethodPost, http.MethodDelete}
	)

	movies := newV2Routes[domain.MovieRequest](h, "Movie", "Movies", h.services.Movies, mapper.Movie)
	m := r.PathPrefix("/Movies").Subrouter()
	m.Handle("/GetMovies", movies.list()).Methods(read...)
	m.Handle("/GetMovieById"+idPath, movies.get()).Methods(read...)
	m.Handle("/GetMovieDetails"+idPath, h.movieDetailsV2()).Methods(read...)
	m.Handle("/CreateMovie", movies.create()).Methods(read...)
	m.Handle("/CreateMovies", movies.createMany()).Methods(read...)
	m.Handle("/UpdateMovie"+idPath, movies.update()).Methods(write...)
	m.Handle("/DeleteMovie"+idPath, movies.remove()).Methods(remove...)
	m.Handle("/SearchMovies", h.searchMoviesV2()).Methods(read...)
	m.Handle("/DeleteMovies", h.deleteMoviesV2()).Methods(remove...)
	m.Handle("/AssignActors"+idPath, h.assignActorsV2()).Methods(write...)

	users := newV2Routes[domain.UserRequest](h, "User", "Users", h.services.Users, mapper.User)
	u := r.PathPrefix("/Users").Subrouter()
	u.Handle("/GetUsers", users.list()).Methods(read...)
	u.Handle("/GetUserById"+idPath, users.get()).Methods(read...)
	u.Handle("/GetUserStats"+idPath, h.userStatsV2()).Methods(read...)
	u.Handle("/CreateUser", users.create()).Methods(read...)
	u.Handle("/CreateUsers", users.createMany()).Methods(read...)
	u.Handle("/UpdateUser"+idPath, users.update()).Methods(write...)
	u.Handle("/DeleteUser"+idPath, users.remove()).Methods(remove...)
	u.Handle("/SearchUsers", h.searchUsersV2()).Methods(read...)

	reviews := newV2Routes[domain.ReviewRequest](h, "Review", "Reviews", h.services.Reviews, mapper.Review)
	rv := r.PathPrefix("/Reviews").Subrouter()
	rv.Handle("/GetReviews", reviews.list()).Methods(read...)
	rv.Handle("/GetReviewById"+idPath, reviews.get()).Methods(read...)
	rv.Handle("/CreateReview", h.createReviewV2()).Methods(read...)
	rv.Handle("/CreateReviews", reviews.createMany()).Methods(read...)
	rv.Handle("/UpdateReview"+idPath, h.updateReviewV2()).Methods(write...)
	rv.Handle("/DeleteReview"+idPath, reviews.remove()).Methods(remove...)

	actors := newV2Routes[domain.ActorRequest](h, "Actor", "Actors", h.services.Actors, mapper.Actor)
	a := r.PathPrefix("/Actors").Subrouter()
	a.Handle("/GetActors", actors.list()).Methods(read...)
	a.Handle("/GetActorById"+idPath, actors.get()).Methods(read...)
	a.Handle("/CreateActor", actors.create()).Methods(read...)
	a.Handle("/CreateActors", actors.createMany()).Methods(read...)
	a.Handle("/UpdateActor"+idPath, actors.update()).Methods(write...)
	a.Handle("/DeleteActor"+idPath, actors.remove()).Methods(remove...)

	l := r.PathPrefix("/Likes").Subrouter()
	l.Handle("/CreateLike", h.createLikeV2()).Methods(read...)
	l.Handle("/DeleteLike"+idPath, h.deleteLikeV2()).Methods(remove...)

	r.Handle("/Admin/GetCounts", h.countsV2()).Methods(read...)
}
