package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starford/dynwidget/internal/apperr"
	"github.com/starford/dynwidget/internal/models"
)

// Entry is one cached document: its file facts plus parsed metadata.
// Meta is nil for non-Markdown files.
type Entry struct {
	Document models.Document
	Checksum string
	Meta     *models.Metadata
}

// Upsert inserts or replaces a cached document.
func (db *DB) Upsert(e Entry) error {
	var (
		title string
		fm    any
		tags  = []string{}
		heads = []models.Heading{}
		links = []string{}
	)
	if e.Meta != nil {
		title = e.Meta.Title
		if e.Meta.Frontmatter != nil {
			fm = e.Meta.Frontmatter
		}
		tags = nonNil(e.Meta.Tags)
		heads = nonNil(e.Meta.Headings)
		links = nonNil(e.Meta.Links)
	}

	fmJSON, err := json.Marshal(fm)
	if err != nil {
		return fmt.Errorf("index: encode frontmatter %s: %w", e.Document.Path, err)
	}
	tagsJSON, _ := json.Marshal(tags)
	headsJSON, _ := json.Marshal(heads)
	linksJSON, _ := json.Marshal(links)

	_, err = db.conn.Exec(`
		INSERT INTO documents (path, checksum, created_at, modified_at, title, frontmatter, tags, headings, links)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			checksum    = excluded.checksum,
			created_at  = excluded.created_at,
			modified_at = excluded.modified_at,
			title       = excluded.title,
			frontmatter = excluded.frontmatter,
			tags        = excluded.tags,
			headings    = excluded.headings,
			links       = excluded.links
	`, e.Document.Path, e.Checksum, unixNano(e.Document.CreatedAt), unixNano(e.Document.ModifiedAt),
		title, string(fmJSON), string(tagsJSON), string(headsJSON), string(linksJSON))
	if err != nil {
		return fmt.Errorf("index: upsert %s: %w", e.Document.Path, err)
	}
	return nil
}

// Delete removes a cached document. Deleting a missing path is not an error.
func (db *DB) Delete(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM documents WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete %s: %w", path, err)
	}
	return nil
}

const selectColumns = `SELECT path, checksum, created_at, modified_at, title, frontmatter, tags, headings, links FROM documents`

// Get returns the cached entry for path, or apperr.ErrNotFound.
func (db *DB) Get(path string) (*Entry, error) {
	row := db.conn.QueryRow(selectColumns+` WHERE path = ?`, path)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get %s: %w", path, err)
	}
	return e, nil
}

// All returns every cached entry ordered by path.
func (db *DB) All() ([]Entry, error) {
	rows, err := db.conn.Query(selectColumns + ` ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("index: all: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("index: all: %w", err)
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every cached document.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (*Entry, error) {
	var (
		path, cs, title                string
		created, modified              int64
		fmJSON, tagsJSON, hJSON, lJSON string
	)
	if err := s.Scan(&path, &cs, &created, &modified, &title, &fmJSON, &tagsJSON, &hJSON, &lJSON); err != nil {
		return nil, err
	}

	e := &Entry{
		Document: models.NewDocument(path, time.Unix(0, created), time.Unix(0, modified)),
		Checksum: cs,
	}
	if e.Document.Extension != markdownExt {
		return e, nil
	}

	meta := &models.Metadata{Title: title}
	if err := json.Unmarshal([]byte(fmJSON), &meta.Frontmatter); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	_ = json.Unmarshal([]byte(tagsJSON), &meta.Tags)
	_ = json.Unmarshal([]byte(hJSON), &meta.Headings)
	_ = json.Unmarshal([]byte(lJSON), &meta.Links)
	e.Meta = meta
	return e, nil
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
