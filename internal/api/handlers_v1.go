package api

import (
	"log/slog"
	"net/http"

	"cinevault/internal/mapper"
	"cinevault/internal/service"
)

// v1Routes CRUD-обработчики v1 для одной сущности. Ответ без конверта.
type v1Routes[Req any, Out any, Resp any] struct {
	h      *Handler
	name   string
	svc    service.Entity[Req, Out]
	toResp func(Out) Resp
}

func newV1Routes[Req any, Out any, Resp any](h *Handler, name string, svc service.Entity[Req, Out], toResp func(Out) Resp) v1Routes[Req, Out, Resp] {
	return v1Routes[Req, Out, Resp]{h: h, name: name, svc: svc, toResp: toResp}
}

func (v v1Routes[Req, Out, Resp]) list(w http.ResponseWriter, r *http.Request) {
	items, err := v.svc.List(r.Context())
	if err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	v.h.respondJSON(w, r, http.StatusOK, mapper.List(items, v.toResp))
}

func (v v1Routes[Req, Out, Resp]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	item, err := v.svc.Get(r.Context(), id)
	if err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	v.h.respondJSON(w, r, http.StatusOK, v.toResp(item))
}

func (v v1Routes[Req, Out, Resp]) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req Req
	if err := decodeJSON(r, &req); err != nil {
		v.h.logger.WarnContext(ctx, "Failed to decode request body", slog.String("entity", v.name))
		v.h.respondServiceError(w, r, err)
		return
	}
	id, err := v.svc.Create(ctx, req)
	if err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	v.h.respondJSON(w, r, http.StatusCreated, map[string]int64{"id": id})
}

func (v v1Routes[Req, Out, Resp]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	var req Req
	if err := decodeJSON(r, &req); err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	if err := v.svc.Update(r.Context(), id, req); err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	v.h.respondJSON(w, r, http.StatusOK, nil)
}

// remove в v1 удаляет физически. Запись с зависимыми строками дает 400.
func (v v1Routes[Req, Out, Resp]) remove(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	if err := v.svc.Delete(r.Context(), id, service.HardDelete); err != nil {
		v.h.respondServiceError(w, r, err)
		return
	}
	v.h.respondJSON(w, r, http.StatusOK, nil)
}
