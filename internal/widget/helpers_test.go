package widget

import (
	"io"
	"log/slog"
	"time"

	"github.com/starford/dynwidget/internal/models"
)

// metaMap is an in-memory MetadataSource.
type metaMap map[string]*models.Metadata

func (m metaMap) Metadata(path string) (*models.Metadata, bool) {
	meta, ok := m[path]
	return meta, ok
}

func fm(kv ...any) *models.Metadata {
	out := map[string]any{}
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i].(string)] = kv[i+1]
	}
	return &models.Metadata{Frontmatter: out}
}

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func mkdoc(path string) models.Document {
	return models.NewDocument(path, at("2025-01-01 00:00"), at("2025-01-01 00:00"))
}

func paths(docs []models.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Path
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}
