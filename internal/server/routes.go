package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/api", func(r chi.Router) {
		r.Get("/widgets", s.handleWidgets)
		r.Post("/config/reload", s.handleConfigReload)

		r.Route("/boards/{scope}", func(r chi.Router) {
			r.Get("/", s.handleBoard)
			r.Post("/drag/start", s.handleDragStart)
			r.Post("/drag/end", s.handleDragEnd)
			r.Post("/drag/cancel", s.handleDragCancel)
			r.Post("/resize/preview", s.handleResizePreview)
			r.Post("/resize/commit", s.handleResizeCommit)
			r.Post("/resize/cancel", s.handleResizeCancel)
			r.Post("/widgets/{id}/visibility", s.handleVisibility)
			r.Post("/reset", s.handleReset)
		})
	})
	return r
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
