package index

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/dynwidget/internal/models"
	"github.com/starford/dynwidget/internal/parser"
	"github.com/starford/dynwidget/internal/storage"
)

const markdownExt = "md"

// Sync walks the vault and brings the cache up to date:
//   - new/changed files are parsed and upserted
//   - files removed from disk are deleted from the cache
func Sync(db Cache, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if cs, ok := checksums[m.Path]; ok && cs == m.Checksum {
			continue
		}

		data, err := readNote(store, m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		entry, err := BuildEntry(m, data)
		if err != nil {
			logger.Warn("sync: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := db.Upsert(entry); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.Delete(p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: removed stale", slog.String("path", p))
		}
	}

	return nil
}

// IndexFile stats, reads, parses, and upserts a single vault path.
func IndexFile(db Cache, store storage.Provider, p string) (Entry, error) {
	meta, err := store.Stat(p)
	if err != nil {
		return Entry{}, err
	}
	data, err := readNote(store, p)
	if err != nil {
		return Entry{}, err
	}
	entry, err := BuildEntry(meta, data)
	if err != nil {
		return Entry{}, err
	}
	if err := db.Upsert(entry); err != nil {
		return Entry{}, err
	}
	return entry, nil
}

// BuildEntry turns a file listing and its contents into a cache entry.
// Only Markdown files carry metadata.
func BuildEntry(meta models.FileMeta, data []byte) (Entry, error) {
	doc := models.NewDocument(meta.Path, meta.CreatedAt, meta.ModifiedAt)
	entry := Entry{Document: doc, Checksum: meta.Checksum}
	if doc.Extension != markdownExt {
		return entry, nil
	}
	res, err := parser.Parse(data)
	if err != nil {
		return Entry{}, fmt.Errorf("index: parse %s: %w", meta.Path, err)
	}
	entry.Meta = res.Metadata()
	return entry, nil
}

// readNote returns the content of Markdown files and nil for anything else;
// only notes are parsed.
func readNote(store storage.Provider, p string) ([]byte, error) {
	if strings.TrimPrefix(path.Ext(p), ".") != markdownExt {
		return nil, nil
	}
	return store.Read(p)
}
