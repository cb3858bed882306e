// Package widgetservice is the use-case layer shared by the HTTP API, the
// MCP server and the CLI. It drives the vault and reads the widget.
package widgetservice

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/starford/dynwidget/internal/apperr"
	"github.com/starford/dynwidget/internal/models"
	"github.com/starford/dynwidget/internal/present"
	"github.com/starford/dynwidget/internal/vault"
	"github.com/starford/dynwidget/internal/widget"
)

// DateLayout is the accepted format of day parameters.
const DateLayout = "2006-01-02"

// Snapshot is the widget state returned to clients.
type Snapshot struct {
	Mode   string        `json:"mode"`
	Header string        `json:"header,omitempty"`
	Areas  []string      `json:"areas,omitempty"`
	Active *DocumentItem `json:"active,omitempty"`
	Tree   *widget.Node  `json:"tree"`
}

// DocumentItem is a document as listed by find operations.
type DocumentItem struct {
	Path       string    `json:"path"`
	Title      string    `json:"title"`
	Basename   string    `json:"basename"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// BucketSummary is one configured bucket with the notes it currently claims.
type BucketSummary struct {
	Bucket    string   `json:"bucket"`
	Documents []string `json:"documents"`
}

// Service coordinates the vault and the widget.
type Service struct {
	vault  *vault.Vault
	widget *widget.Widget
}

// NewService creates a new widget service.
func NewService(v *vault.Vault, w *widget.Widget) *Service {
	return &Service{vault: v, widget: w}
}

// Snapshot returns the widget's current tree and classification.
func (s *Service) Snapshot(_ context.Context) Snapshot {
	tree, cls, active := s.widget.Rendered()
	snap := Snapshot{
		Mode:   cls.Mode.String(),
		Header: cls.Header,
		Areas:  cls.Areas,
		Tree:   tree,
	}
	if active != nil {
		item := s.item(*active)
		snap.Active = &item
	}
	return snap
}

// HTML returns the current tree as an HTML fragment.
func (s *Service) HTML(_ context.Context) (string, error) {
	return present.HTML(s.widget.Tree())
}

// SetActive focuses path. The returned snapshot reflects the new document
// unless a watcher dispatch was in flight, in which case the re-render is
// queued behind it and the snapshot may still show the previous state.
func (s *Service) SetActive(ctx context.Context, path string) (Snapshot, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return Snapshot{}, fmt.Errorf("path is required: %w", apperr.ErrInvalid)
	}
	if err := s.vault.SetActive(path); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(ctx), nil
}

// ClearActive removes focus.
func (s *Service) ClearActive(ctx context.Context) Snapshot {
	s.vault.ClearActive()
	return s.Snapshot(ctx)
}

// Open activates an entry through the widget, as a click would.
func (s *Service) Open(ctx context.Context, path string) (Snapshot, error) {
	if path == "" {
		return Snapshot{}, fmt.Errorf("path is required: %w", apperr.ErrInvalid)
	}
	if err := s.widget.Activate(path); err != nil {
		return Snapshot{}, err
	}
	return s.Snapshot(ctx), nil
}

// FindByArea lists the notes belonging to area.
func (s *Service) FindByArea(_ context.Context, area string) ([]DocumentItem, error) {
	area = widget.StripWikilink(strings.TrimSpace(area))
	if area == "" {
		return nil, fmt.Errorf("area is required: %w", apperr.ErrInvalid)
	}
	notes := widget.FilterExtension(s.vault.Documents(), s.extension())
	return s.items(widget.FindByArea(notes, s.vault, area)), nil
}

// FindByDay lists the notes created or modified on date, newest first.
func (s *Service) FindByDay(_ context.Context, date string, by widget.Which) ([]DocumentItem, error) {
	day, err := time.ParseInLocation(DateLayout, date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", date, apperr.ErrInvalid)
	}
	if by == "" {
		by = widget.ByCreated
	}
	if !by.Valid() {
		return nil, fmt.Errorf("by %q: %w", by, apperr.ErrInvalid)
	}
	notes := widget.FilterExtension(s.vault.Documents(), s.extension())
	return s.items(widget.FindByDay(notes, day, by)), nil
}

// Buckets groups every note of the vault into the configured buckets.
func (s *Service) Buckets(_ context.Context) []BucketSummary {
	opts := s.widget.Renderer().Options()
	groups := widget.GroupByBuckets(s.vault.Documents(), opts.Buckets, opts.NoteExtension)
	out := make([]BucketSummary, len(groups))
	for i, g := range groups {
		paths := make([]string, len(g.Documents))
		for j, d := range g.Documents {
			paths[j] = d.Path
		}
		out[i] = BucketSummary{Bucket: g.Bucket, Documents: paths}
	}
	return out
}

func (s *Service) extension() string {
	return s.widget.Renderer().Options().NoteExtension
}

func (s *Service) item(d models.Document) DocumentItem {
	return DocumentItem{
		Path:       d.Path,
		Title:      widget.Title(d, s.vault),
		Basename:   d.Basename,
		CreatedAt:  d.CreatedAt,
		ModifiedAt: d.ModifiedAt,
	}
}

func (s *Service) items(docs []models.Document) []DocumentItem {
	out := make([]DocumentItem, len(docs))
	for i, d := range docs {
		out[i] = s.item(d)
	}
	return out
}
