package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/dynwidget/internal/widget"
	"github.com/starford/dynwidget/internal/widgetservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *widgetservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *widgetservice.Service) *Handler {
	return &Handler{svc: svc}
}

// urlParam returns a decoded route parameter. Folder names routinely carry
// spaces and emoji, so clients percent-encode them. chi routes on the
// decoded path unless the request kept a RawPath, so only then is the
// parameter still escaped.
func urlParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if r.URL.RawPath == "" {
		return raw
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func decodePath(w http.ResponseWriter, r *http.Request) (string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req PathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return "", false
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return "", false
	}
	return req.Path, true
}

// GetWidget handles GET /api/widget.
//
//	@Summary		Get the rendered widget tree
//	@Tags			widget
//	@Produce		json
//	@Success		200	{object}	Snapshot
//	@Security		BearerAuth
//	@Router			/widget [get]
func (h *Handler) GetWidget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Snapshot(r.Context()))
}

// GetWidgetHTML handles GET /api/widget/html.
//
//	@Summary		Get the rendered widget as an HTML fragment
//	@Tags			widget
//	@Produce		html
//	@Success		200	{string}	string
//	@Security		BearerAuth
//	@Router			/widget/html [get]
func (h *Handler) GetWidgetHTML(w http.ResponseWriter, r *http.Request) {
	html, err := h.svc.HTML(r.Context())
	if err != nil {
		writeError(w, "render html", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

// ListBuckets handles GET /api/buckets.
//
//	@Summary		List configured buckets with the notes each claims
//	@Tags			widget
//	@Produce		json
//	@Success		200	{object}	BucketListResponse
//	@Security		BearerAuth
//	@Router			/buckets [get]
func (h *Handler) ListBuckets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BucketListResponse{Buckets: h.svc.Buckets(r.Context())})
}

// SetActive handles PUT /api/active.
//
//	@Summary		Focus a document
//	@Tags			navigation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Document to focus"
//	@Success		200		{object}	Snapshot
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/active [put]
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePath(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.SetActive(r.Context(), path)
	if err != nil {
		writeError(w, "set active", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ClearActive handles DELETE /api/active.
//
//	@Summary		Clear the focused document
//	@Tags			navigation
//	@Produce		json
//	@Success		200	{object}	Snapshot
//	@Security		BearerAuth
//	@Router			/active [delete]
func (h *Handler) ClearActive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ClearActive(r.Context()))
}

// Open handles POST /api/open.
//
//	@Summary		Open a widget entry in the configured pane
//	@Tags			navigation
//	@Accept			json
//	@Produce		json
//	@Param			body	body		PathRequest	true	"Entry to open"
//	@Success		200		{object}	Snapshot
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/open [post]
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	path, ok := decodePath(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Open(r.Context(), path)
	if err != nil {
		writeError(w, "open", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// FindByArea handles GET /api/areas/{area}.
//
//	@Summary		List notes belonging to an area
//	@Tags			lookup
//	@Produce		json
//	@Param			area	path		string	true	"Area name, with or without [[ ]]"
//	@Success		200		{object}	DocumentListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/areas/{area} [get]
func (h *Handler) FindByArea(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.FindByArea(r.Context(), urlParam(r, "area"))
	if err != nil {
		writeError(w, "find by area", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: len(items)})
}

// FindByDay handles GET /api/days/{date}.
//
//	@Summary		List notes created or modified on a day
//	@Tags			lookup
//	@Produce		json
//	@Param			date	path		string	true	"Day as YYYY-MM-DD"
//	@Param			by		query		string	false	"Timestamp to match"	Enums(created, modified)
//	@Success		200		{object}	DocumentListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/days/{date} [get]
func (h *Handler) FindByDay(w http.ResponseWriter, r *http.Request) {
	by := widget.Which(r.URL.Query().Get("by"))
	items, err := h.svc.FindByDay(r.Context(), urlParam(r, "date"), by)
	if err != nil {
		writeError(w, "find by day", err)
		return
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: items, Total: len(items)})
}
