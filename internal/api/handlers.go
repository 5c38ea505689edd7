// Package api HTTP-слой каталога: маршруты v1 и v2, конверт ответа и middleware.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"cinevault/internal/service"
)

// Handler содержит зависимости HTTP обработчиков.
type Handler struct {
	services *service.Services
	logger   *slog.Logger
	env      string
}

// NewHandler создает новый экземпляр Handler. env отдается эндпоинтом environment.
func NewHandler(s *service.Services, l *slog.Logger, env string) *Handler {
	return &Handler{
		services: s,
		logger:   l,
		env:      env,
	}
}

// --- Вспомогательные функции ---

func (h *Handler) respondJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			h.logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.String("error", err.Error()), slog.String("path", r.URL.Path))
		}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.respondJSON(w, r, status, map[string]string{"error": message})
}

// respondServiceError отвечает в формате v1 по классу ошибки сервиса.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	}
	h.respondError(w, r, status, service.MessageOf(err))
}

// statusOf сопоставляет класс ошибки и HTTP статус. Конфликт отдается как 400.
func statusOf(err error) int {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// pathID разбирает {id} из пути.
func pathID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, service.Validation("Invalid id %q", raw)
	}
	return id, nil
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return service.Validation("Invalid request payload")
	}
	return nil
}

// --- AppInfo ---

func (h *Handler) Environment(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, r, http.StatusOK, map[string]string{"environment_name": h.env})
}

func versionEndpoint(version int, label string) http.HandlerFunc {
	msg := fmt.Sprintf("This is %s api method for version %d", label, version)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(msg))
	}
}
