package devserver

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	limiter := newRateLimiter(rate.Limit(50), 100)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Use(limiter.limit)
		r.Post("/api/v1/token", h.issueToken)
		r.Post("/api/v1/token/refresh", h.refreshToken)
	})

	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Post("/api/v1/sync", h.acceptSync)
		r.Get("/api/v1/stats", h.stats)
	})

	return router
}
