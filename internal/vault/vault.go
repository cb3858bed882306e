// Package vault is the host side of the widget: an in-memory document index,
// metadata cache, active-document tracker, and synchronous event bus, kept
// current from the SQLite cache and the file-system watcher.
package vault

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/starford/dynwidget/internal/apperr"
	"github.com/starford/dynwidget/internal/index"
	"github.com/starford/dynwidget/internal/models"
	"github.com/starford/dynwidget/internal/storage"
)

// Vault holds the current view of every document in the vault.
type Vault struct {
	mu     sync.RWMutex
	docs   map[string]models.Document
	meta   map[string]*models.Metadata
	active string

	bus    *Bus
	logger *slog.Logger
}

// New returns an empty vault.
func New(logger *slog.Logger) *Vault {
	return &Vault{
		docs:   make(map[string]models.Document),
		meta:   make(map[string]*models.Metadata),
		bus:    NewBus(logger),
		logger: logger,
	}
}

// Load syncs the cache with the vault directory and returns a populated Vault.
func Load(db index.Cache, store storage.Provider, logger *slog.Logger) (*Vault, error) {
	if err := index.Sync(db, store, logger); err != nil {
		return nil, fmt.Errorf("vault: sync: %w", err)
	}
	entries, err := db.All()
	if err != nil {
		return nil, fmt.Errorf("vault: load cache: %w", err)
	}
	v := New(logger)
	v.Replace(entries)
	logger.Info("vault: loaded", slog.Int("documents", len(entries)))
	return v, nil
}

// Replace swaps the whole document set without emitting events.
func (v *Vault) Replace(entries []index.Entry) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.docs = make(map[string]models.Document, len(entries))
	v.meta = make(map[string]*models.Metadata, len(entries))
	for _, e := range entries {
		v.docs[e.Document.Path] = e.Document
		if e.Meta != nil {
			v.meta[e.Document.Path] = e.Meta
		}
	}
	if _, ok := v.docs[v.active]; !ok {
		v.active = ""
	}
}

// Documents returns every document ordered by path.
func (v *Vault) Documents() []models.Document {
	v.mu.RLock()
	out := make([]models.Document, 0, len(v.docs))
	for _, d := range v.docs {
		out = append(out, d)
	}
	v.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Document returns the document at path.
func (v *Vault) Document(path string) (models.Document, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	d, ok := v.docs[path]
	return d, ok
}

// Metadata returns the cached metadata for path. It reports false for
// unknown paths and for files that carry no metadata.
func (v *Vault) Metadata(path string) (*models.Metadata, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	m, ok := v.meta[path]
	return m, ok
}

// Active returns the focused document, if any.
func (v *Vault) Active() (*models.Document, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.active == "" {
		return nil, false
	}
	d, ok := v.docs[v.active]
	if !ok {
		return nil, false
	}
	return &d, true
}

// SetActive focuses the document at path and emits active-changed.
func (v *Vault) SetActive(path string) error {
	v.mu.Lock()
	d, ok := v.docs[path]
	if !ok {
		v.mu.Unlock()
		return fmt.Errorf("vault: %s: %w", path, apperr.ErrNotFound)
	}
	v.active = path
	v.mu.Unlock()

	v.bus.Emit(models.Event{Kind: models.EventActiveChanged, Document: d})
	return nil
}

// ClearActive removes focus and emits active-changed with no document.
func (v *Vault) ClearActive() {
	v.mu.Lock()
	v.active = ""
	v.mu.Unlock()
	v.bus.Emit(models.Event{Kind: models.EventActiveChanged})
}

// Open navigates to path. Both panes focus the target; the pane is
// recorded for clients that manage their own tabs.
func (v *Vault) Open(path string, pane models.Pane) error {
	if err := v.SetActive(path); err != nil {
		return err
	}
	v.logger.Debug("vault: opened", slog.String("path", path), slog.String("pane", string(pane)))
	return nil
}

// Put adds or replaces a document and emits metadata-changed.
func (v *Vault) Put(doc models.Document, meta *models.Metadata) {
	v.mu.Lock()
	v.docs[doc.Path] = doc
	if meta != nil {
		v.meta[doc.Path] = meta
	} else {
		delete(v.meta, doc.Path)
	}
	v.mu.Unlock()

	v.bus.Emit(models.Event{Kind: models.EventMetadataChanged, Document: doc})
}

// Rename moves oldPath to doc.Path and emits renamed. The active document
// follows the move.
func (v *Vault) Rename(oldPath string, doc models.Document, meta *models.Metadata) error {
	v.mu.Lock()
	if _, ok := v.docs[oldPath]; !ok {
		v.mu.Unlock()
		return fmt.Errorf("vault: rename %s: %w", oldPath, apperr.ErrNotFound)
	}
	delete(v.docs, oldPath)
	delete(v.meta, oldPath)
	v.docs[doc.Path] = doc
	if meta != nil {
		v.meta[doc.Path] = meta
	}
	if v.active == oldPath {
		v.active = doc.Path
	}
	v.mu.Unlock()

	v.bus.Emit(models.Event{Kind: models.EventRenamed, Document: doc, OldPath: oldPath})
	return nil
}

// Remove deletes the document at path and emits deleted. Removing the
// active document clears focus and also emits active-changed.
func (v *Vault) Remove(path string) {
	v.mu.Lock()
	d, ok := v.docs[path]
	if !ok {
		v.mu.Unlock()
		return
	}
	delete(v.docs, path)
	delete(v.meta, path)
	wasActive := v.active == path
	if wasActive {
		v.active = ""
	}
	v.mu.Unlock()

	v.bus.Emit(models.Event{Kind: models.EventDeleted, Document: d})
	if wasActive {
		v.bus.Emit(models.Event{Kind: models.EventActiveChanged})
	}
}

// Under returns the paths of every document whose path starts with dir + "/".
func (v *Vault) Under(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	v.mu.RLock()
	defer v.mu.RUnlock()
	var out []string
	for p := range v.docs {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// Subscribe registers h for every vault event.
func (v *Vault) Subscribe(h Handler) func() {
	return v.bus.Subscribe(h)
}
