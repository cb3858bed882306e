package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dynwidget/internal/widgetservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *widgetservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Widget.
	r.Get("/widget", h.GetWidget)
	r.Get("/widget/html", h.GetWidgetHTML)
	r.Get("/buckets", h.ListBuckets)

	// Focus and navigation.
	r.Put("/active", h.SetActive)
	r.Delete("/active", h.ClearActive)
	r.Post("/open", h.Open)

	// Lookups.
	r.Get("/areas/{area}", h.FindByArea)
	r.Get("/days/{date}", h.FindByDay)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
