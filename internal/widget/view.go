// Package widget classifies the active document, gathers related documents,
// and renders them as a display tree that is rebuilt on every host event.
package widget

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/starford/dynwidget/internal/models"
)

// ViewType identifies the widget to hosts that manage several views.
const ViewType = "dynamic-widget-view"

// Host is the slice of the vault the widget depends on.
type Host interface {
	MetadataSource
	Documents() []models.Document
	Active() (*models.Document, bool)
	Subscribe(h func(models.Event)) func()
	Open(path string, pane models.Pane) error
}

// View is the capability set a host expects from a sidebar view.
type View interface {
	ViewType() string
	DisplayText() string
	Icon() string
	Open() error
	Close() error
	Tree() *Node
}

// State is the widget lifecycle state.
type State int

const (
	StateIdle State = iota
	StateRendering
)

// Widget is the sidebar view. It subscribes to host events while open and
// replaces its tree wholesale on each relevant event.
type Widget struct {
	host     Host
	renderer *Renderer
	logger   *slog.Logger

	mu          sync.Mutex
	state       State
	tree        *Node
	cls         Classification
	active      *models.Document
	renders     int
	unsubscribe func()
	listeners   []func(*Node)
}

var _ View = (*Widget)(nil)

// New returns a closed widget bound to host.
func New(host Host, opts Options, logger *slog.Logger) *Widget {
	return &Widget{
		host:     host,
		renderer: NewRenderer(opts),
		logger:   logger,
		tree:     &Node{Kind: KindRoot, Class: ClassContent},
	}
}

func (w *Widget) ViewType() string    { return ViewType }
func (w *Widget) DisplayText() string { return "Dynamic Widget" }
func (w *Widget) Icon() string        { return "activity" }

// Renderer returns the widget's renderer.
func (w *Widget) Renderer() *Renderer { return w.renderer }

// Open subscribes to the host and performs the initial render. Opening an
// open widget only re-renders.
func (w *Widget) Open() error {
	w.mu.Lock()
	if w.unsubscribe == nil {
		w.unsubscribe = w.host.Subscribe(w.handle)
	}
	w.mu.Unlock()

	w.Update()
	return nil
}

// Close unsubscribes and resets the tree to an empty root.
func (w *Widget) Close() error {
	w.mu.Lock()
	unsub := w.unsubscribe
	w.unsubscribe = nil
	w.tree = &Node{Kind: KindRoot, Class: ClassContent}
	w.cls = Classification{}
	w.active = nil
	w.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	return nil
}

// OnRender registers fn to receive every newly built tree.
func (w *Widget) OnRender(fn func(*Node)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.listeners = append(w.listeners, fn)
}

// Tree returns the most recently rendered tree.
func (w *Widget) Tree() *Node {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree
}

// Classification returns the classification behind the current tree.
func (w *Widget) Classification() Classification {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cls
}

// Rendered returns the current tree together with the classification and
// active document it was built from.
func (w *Widget) Rendered() (*Node, Classification, *models.Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tree, w.cls, w.active
}

// State returns the current lifecycle state.
func (w *Widget) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Renders returns how many trees have been built since creation.
func (w *Widget) Renders() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.renders
}

// Update rebuilds the tree from the host's current state.
func (w *Widget) Update() {
	w.mu.Lock()
	w.state = StateRendering

	active, _ := w.host.Active()
	var meta *models.Metadata
	if active != nil {
		meta, _ = w.host.Metadata(active.Path)
	}
	cls := Classify(active, meta)
	tree := w.renderer.Render(cls, active, w.host.Documents(), w.host)

	w.tree = tree
	w.cls = cls
	w.active = active
	w.renders++
	w.state = StateIdle
	listeners := slices.Clone(w.listeners)
	w.mu.Unlock()

	w.logger.Debug("widget: rendered", slog.String("mode", cls.Mode.String()), slog.String("header", cls.Header))
	for _, fn := range listeners {
		fn(tree)
	}
}

// Activate opens the document at path in the configured pane.
func (w *Widget) Activate(path string) error {
	return w.host.Open(path, w.renderer.opts.Pane)
}

func (w *Widget) handle(ev models.Event) {
	if w.relevant(ev) {
		w.Update()
	}
}

// relevant decides whether ev can change what the widget shows.
func (w *Widget) relevant(ev models.Event) bool {
	if ev.Kind == models.EventActiveChanged {
		return true
	}

	active, ok := w.host.Active()
	if !ok {
		return false
	}

	switch ev.Kind {
	case models.EventMetadataChanged:
		return ev.Document.Path == active.Path

	case models.EventRenamed:
		if ev.Document.Path == active.Path || ev.OldPath == active.Path {
			return true
		}
		activeMeta, _ := w.host.Metadata(active.Path)
		current := DocumentAreas(activeMeta)
		if len(current) == 0 {
			return false
		}
		movedMeta, _ := w.host.Metadata(ev.Document.Path)
		for _, a := range DocumentAreas(movedMeta) {
			if slices.Contains(current, a) {
				return true
			}
		}
		return false

	case models.EventDeleted:
		meta, _ := w.host.Metadata(active.Path)
		switch Classify(active, meta).Mode {
		case ModeArea, ModeAreas, ModeDay:
			return true
		}
		return false
	}
	return false
}
