package models

// EventKind identifies a host notification.
type EventKind string

const (
	EventActiveChanged   EventKind = "active-changed"
	EventMetadataChanged EventKind = "metadata-changed"
	EventRenamed         EventKind = "renamed"
	EventDeleted         EventKind = "deleted"
)

// Event is delivered synchronously to vault subscribers. Document is the
// zero value for active-changed when no document is active.
type Event struct {
	Kind     EventKind `json:"kind"`
	Document Document  `json:"document"`
	OldPath  string    `json:"old_path,omitempty"`
}

// Pane selects where navigation opens a document.
type Pane string

const (
	PaneTab     Pane = "tab"
	PaneCurrent Pane = "current"
)
