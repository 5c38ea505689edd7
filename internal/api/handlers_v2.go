package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"cinevault/internal/domain"
	"cinevault/internal/mapper"
	"cinevault/internal/service"
)

// noData тело запроса без полезной нагрузки. Любое содержимое data допускается и игнорируется.
type noData = json.RawMessage

// v2Func обработчик действия v2. Ошибка сервиса превращается в конверт с соответствующим статусом.
type v2Func[T any] func(r *http.Request, req Request[T]) (*Response, error)

// v2Action оборачивает действие: разбор конверта, логирование метаданных клиента, ответ в конверте.
func v2Action[T any](h *Handler, action string, fn v2Func[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		req, err := decodeRequest[T](r)
		h.logger.InfoContext(ctx, "API v2 request",
			slog.String("action", action),
			slog.String("requestID", req.RequestID),
			slog.String("clientVersion", req.ClientVersion),
			slog.String("clientSource", req.ClientSource))

		var resp *Response
		if err != nil {
			h.logger.WarnContext(ctx, "Failed to decode request envelope", slog.String("action", action), slog.String("error", err.Error()))
			resp = newResponse(http.StatusBadRequest, "Invalid request payload", nil)
		} else if resp, err = fn(r, req); err != nil {
			status := statusOf(err)
			if status == http.StatusInternalServerError {
				h.logger.ErrorContext(ctx, "Request failed", slog.String("action", action), slog.String("error", err.Error()))
			}
			resp = newResponse(status, service.MessageOf(err), nil)
		}

		for k, v := range req.Meta {
			resp.Meta[k] = v
		}
		resp.Meta["request_id"] = req.RequestID
		resp.Meta["client_version"] = req.ClientVersion
		resp.Meta["client_source"] = req.ClientSource
		h.respondJSON(w, r, resp.StatusCode, resp)
	}
}

func ok(message string, data any) *Response {
	return newResponse(http.StatusOK, message, data)
}

// v2Routes общие CRUD-действия v2 для одной сущности.
type v2Routes[Req any, Out any, Resp any] struct {
	h        *Handler
	singular string
	plural   string
	svc      service.Entity[Req, Out]
	toResp   func(Out) Resp
}

func newV2Routes[Req any, Out any, Resp any](h *Handler, singular, plural string, svc service.Entity[Req, Out], toResp func(Out) Resp) v2Routes[Req, Out, Resp] {
	return v2Routes[Req, Out, Resp]{h: h, singular: singular, plural: plural, svc: svc, toResp: toResp}
}

func (v v2Routes[Req, Out, Resp]) list() http.HandlerFunc {
	return v2Action(v.h, "Get"+v.plural, func(r *http.Request, _ Request[noData]) (*Response, error) {
		items, err := v.svc.List(r.Context())
		if err != nil {
			return nil, err
		}
		return ok(v.plural+" retrieved", mapper.List(items, v.toResp)), nil
	})
}

func (v v2Routes[Req, Out, Resp]) get() http.HandlerFunc {
	return v2Action(v.h, "Get"+v.singular+"ById", func(r *http.Request, _ Request[noData]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		item, err := v.svc.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return ok(v.singular+" retrieved", v.toResp(item)), nil
	})
}

func (v v2Routes[Req, Out, Resp]) create() http.HandlerFunc {
	return v2Action(v.h, "Create"+v.singular, func(r *http.Request, req Request[Req]) (*Response, error) {
		id, err := v.svc.Create(r.Context(), req.Data)
		if err != nil {
			return nil, err
		}
		return ok(v.singular+" created", id), nil
	})
}

// createMany создает пакет. Отклоненные элементы перечисляются в meta.failed_items.
func (v v2Routes[Req, Out, Resp]) createMany() http.HandlerFunc {
	return v2Action(v.h, "Create"+v.plural, func(r *http.Request, req Request[[]Req]) (*Response, error) {
		res, err := service.CreateMany(r.Context(), v.svc, req.Data)
		if err != nil {
			return nil, err
		}
		resp := ok(v.plural+" created", res.IDs)
		if len(res.Failed) > 0 {
			failed := make([]string, 0, len(res.Failed))
			for _, f := range res.Failed {
				failed = append(failed, f.String())
			}
			resp.Meta["failed_items"] = failed
		}
		return resp, nil
	})
}

func (v v2Routes[Req, Out, Resp]) update() http.HandlerFunc {
	return v2Action(v.h, "Update"+v.singular, func(r *http.Request, req Request[Req]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		if err := v.svc.Update(r.Context(), id, req.Data); err != nil {
			return nil, err
		}
		return ok(v.singular+" updated", nil), nil
	})
}

// remove в v2 удаляет мягко.
func (v v2Routes[Req, Out, Resp]) remove() http.HandlerFunc {
	return v2Action(v.h, "Delete"+v.singular, func(r *http.Request, _ Request[noData]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		if err := v.svc.Delete(r.Context(), id, service.SoftDelete); err != nil {
			return nil, err
		}
		return ok(v.singular+" deleted", nil), nil
	})
}

// --- Фильмы ---

func (h *Handler) movieDetailsV2() http.HandlerFunc {
	return v2Action(h, "GetMovieDetails", func(r *http.Request, _ Request[noData]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		movie, err := h.services.Movies.Get(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return ok("Movie details retrieved", mapper.MovieDetails(movie)), nil
	})
}

func (h *Handler) searchMoviesV2() http.HandlerFunc {
	return v2Action(h, "SearchMovies", func(r *http.Request, req Request[domain.MovieSearchRequest]) (*Response, error) {
		movies, err := h.services.Movies.Search(r.Context(), req.Data)
		if err != nil {
			return nil, err
		}
		return ok("Movies retrieved", mapper.List(movies, mapper.Movie)), nil
	})
}

func (h *Handler) deleteMoviesV2() http.HandlerFunc {
	return v2Action(h, "DeleteMovies", func(r *http.Request, req Request[[]int64]) (*Response, error) {
		res, err := h.services.Movies.DeleteMany(r.Context(), req.Data)
		if err != nil {
			return nil, err
		}
		return ok("Movies deleted", res), nil
	})
}

func (h *Handler) assignActorsV2() http.HandlerFunc {
	return v2Action(h, "AssignActors", func(r *http.Request, req Request[domain.AssignActorsRequest]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		if err := h.services.Movies.AssignActors(r.Context(), id, req.Data.ActorIDs); err != nil {
			return nil, err
		}
		return ok("Actors assigned", nil), nil
	})
}

// --- Пользователи ---

func (h *Handler) userStatsV2() http.HandlerFunc {
	return v2Action(h, "GetUserStats", func(r *http.Request, _ Request[noData]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		st, err := h.services.Users.Stats(r.Context(), id)
		if err != nil {
			return nil, err
		}
		return ok("User stats retrieved", st), nil
	})
}

func (h *Handler) searchUsersV2() http.HandlerFunc {
	return v2Action(h, "SearchUsers", func(r *http.Request, req Request[domain.UserSearchRequest]) (*Response, error) {
		users, err := h.services.Users.Search(r.Context(), req.Data)
		if err != nil {
			return nil, err
		}
		return ok("Users retrieved", mapper.List(users, mapper.User)), nil
	})
}

// --- Отзывы ---

// createReviewV2 обновляет существующий отзыв пользователя о фильме или создает новый.
func (h *Handler) createReviewV2() http.HandlerFunc {
	return v2Action(h, "CreateReview", func(r *http.Request, req Request[domain.ReviewRequest]) (*Response, error) {
		id, updated, err := h.services.Reviews.Upsert(r.Context(), req.Data)
		if err != nil {
			return nil, err
		}
		if updated {
			return ok("Review updated", id), nil
		}
		return ok("Review created", id), nil
	})
}

func (h *Handler) updateReviewV2() http.HandlerFunc {
	return v2Action(h, "UpdateReview", func(r *http.Request, req Request[domain.ReviewRequest]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		if err := h.services.Reviews.Update(r.Context(), id, req.Data); err != nil {
			return nil, err
		}
		return ok(fmt.Sprintf("Review (ID: %d) was successfully updated", id), nil), nil
	})
}

// --- Отметки ---

func (h *Handler) createLikeV2() http.HandlerFunc {
	return v2Action(h, "CreateLike", func(r *http.Request, req Request[domain.LikeRequest]) (*Response, error) {
		id, err := h.services.Likes.Create(r.Context(), req.Data)
		if err != nil {
			return nil, err
		}
		return ok("Like created", id), nil
	})
}

func (h *Handler) deleteLikeV2() http.HandlerFunc {
	return v2Action(h, "DeleteLike", func(r *http.Request, _ Request[noData]) (*Response, error) {
		id, err := pathID(r)
		if err != nil {
			return nil, err
		}
		if err := h.services.Likes.Delete(r.Context(), id); err != nil {
			return nil, err
		}
		return ok("Like deleted", nil), nil
	})
}

// --- Администрирование ---

type countsRequest struct {
	IncludeDeleted bool `json:"include_deleted"`
}

func (h *Handler) countsV2() http.HandlerFunc {
	return v2Action(h, "GetCounts", func(r *http.Request, req Request[countsRequest]) (*Response, error) {
		counts, err := h.services.Admin.Counts(r.Context(), req.Data.IncludeDeleted)
		if err != nil {
			return nil, err
		}
		return ok("Counts retrieved", counts), nil
	})
}
