package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID)
	router.Use(h.withLogging)

	// routes without authorization
	router.Group(func(r chi.Router) {
		r.Get("/api/version", h.getServerVersion)
	})

	// JSON API
	router.Group(func(r chi.Router) {
		r.Use(h.auth)
		r.Use(withGZip)
		r.Use(h.withClientID)

		r.Get("/api/sync", h.getChanges)
		r.Get("/api/items", h.getItem)
		r.Post("/api/items", h.createItem)
		r.Put("/api/items", h.updateItem)
		r.Delete("/api/items", h.deleteItem)
		r.Post("/api/items/move", h.moveItem)
		r.Post("/api/token", h.issueToken)
	})

	// streaming endpoints: no gzip, the connection stays open for the
	// lifetime of the subscription
	router.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Get("/api/events", h.subscribeToEvents)
		r.Get("/ws", h.subscribeToWebSocket)
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
