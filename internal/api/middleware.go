package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder запоминает код ответа.
type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.wroteHeader {
		return
	}
	s.status = code
	s.wroteHeader = true
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteHeader(http.StatusOK)
	}
	return s.ResponseWriter.Write(b)
}

// RequestMonitor логирует начало и конец запроса с длительностью. Паника превращается в 500.
func (h *Handler) RequestMonitor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		h.logger.InfoContext(ctx, "Req start", slog.String("method", r.Method), slog.String("path", r.URL.Path))

		defer func() {
			if p := recover(); p != nil {
				h.logger.ErrorContext(ctx, "Req error",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("panic", fmt.Sprint(p)))
				if !rec.wroteHeader {
					h.respondError(rec, r, http.StatusInternalServerError, "Internal server error")
				}
			}
			h.logger.InfoContext(ctx, "Req done",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int64("ms", time.Since(start).Milliseconds()))
		}()

		next.ServeHTTP(rec, r)
	})
}
