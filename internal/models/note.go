// Package models defines the domain types shared by the vault host and the widget.
package models

import (
	"path"
	"strings"
	"time"
)

// Document is a file in the vault, identified by its slash-separated path
// relative to the vault root.
type Document struct {
	Path       string    `json:"path"`
	Basename   string    `json:"basename"`
	Extension  string    `json:"extension"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// NewDocument derives Basename and Extension from p.
func NewDocument(p string, created, modified time.Time) Document {
	name := path.Base(p)
	ext := path.Ext(name)
	return Document{
		Path:       p,
		Basename:   strings.TrimSuffix(name, ext),
		Extension:  strings.TrimPrefix(ext, "."),
		CreatedAt:  created,
		ModifiedAt: modified,
	}
}

// Dir returns the folder portion of the document path, or "" for root files.
func (d Document) Dir() string {
	dir := path.Dir(d.Path)
	if dir == "." {
		return ""
	}
	return dir
}

// Metadata is the cached, parsed view of a Markdown document.
type Metadata struct {
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Headings    []Heading      `json:"headings,omitempty"`
	Links       []string       `json:"links,omitempty"`
	Title       string         `json:"title,omitempty"`
}

// Heading is a Markdown heading with its level (1-6).
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}

// Property returns the frontmatter value for key, or nil when the metadata
// or key is missing.
func (m *Metadata) Property(key string) any {
	if m == nil || m.Frontmatter == nil {
		return nil
	}
	return m.Frontmatter[key]
}

// FileMeta is a lightweight listing entry produced by storage.
type FileMeta struct {
	Path       string
	Checksum   string
	CreatedAt  time.Time
	ModifiedAt time.Time
}
