package widget

import (
	"sort"
	"strings"
	"time"

	"github.com/starford/dynwidget/internal/models"
)

// MetadataSource looks up cached metadata by document path.
type MetadataSource interface {
	Metadata(path string) (*models.Metadata, bool)
}

// Group is one bucket of a grouping pass.
type Group struct {
	Bucket    string            `json:"bucket"`
	Documents []models.Document `json:"documents"`
}

// Which selects the timestamp used by FindByDay.
type Which string

const (
	ByCreated  Which = "created"
	ByModified Which = "modified"
)

// Valid reports whether w is a known timestamp selector.
func (w Which) Valid() bool {
	return w == ByCreated || w == ByModified
}

func (w Which) of(d models.Document) time.Time {
	if w == ByCreated {
		return d.CreatedAt
	}
	return d.ModifiedAt
}

// GroupByBuckets partitions docs with extension ext into the buckets, in
// bucket order. A bucket matches by literal path prefix, so "Projects/Active"
// also claims "Projects/Active Old/x.md". Each document lands in the first
// bucket that matches; documents matching none are dropped. Empty buckets
// are kept.
func GroupByBuckets(docs []models.Document, buckets []string, ext string) []Group {
	claimed := make(map[string]struct{}, len(docs))
	out := make([]Group, 0, len(buckets))
	for _, bucket := range buckets {
		g := Group{Bucket: bucket, Documents: []models.Document{}}
		for _, d := range docs {
			if d.Extension != ext || !strings.HasPrefix(d.Path, bucket) {
				continue
			}
			if _, taken := claimed[d.Path]; taken {
				continue
			}
			claimed[d.Path] = struct{}{}
			g.Documents = append(g.Documents, d)
		}
		out = append(out, g)
	}
	return out
}

// FindByArea returns the documents whose area list contains area, in input order.
func FindByArea(docs []models.Document, src MetadataSource, area string) []models.Document {
	area = StripWikilink(area)
	var out []models.Document
	for _, d := range docs {
		meta, ok := src.Metadata(d.Path)
		if !ok {
			continue
		}
		for _, a := range DocumentAreas(meta) {
			if a == area {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

// FindByAreas returns the union of FindByArea over areas, deduplicated by
// path with the first occurrence kept.
func FindByAreas(docs []models.Document, src MetadataSource, areas []string) []models.Document {
	seen := make(map[string]struct{})
	var out []models.Document
	for _, area := range areas {
		for _, d := range FindByArea(docs, src, area) {
			if _, dup := seen[d.Path]; dup {
				continue
			}
			seen[d.Path] = struct{}{}
			out = append(out, d)
		}
	}
	return out
}

// FindByDay returns documents whose created or modified timestamp falls on
// the calendar day of day (in day's location), newest first.
func FindByDay(docs []models.Document, day time.Time, which Which) []models.Document {
	loc := day.Location()
	y, m, dd := day.Date()

	var out []models.Document
	for _, d := range docs {
		ts := which.of(d)
		if ts.IsZero() {
			continue
		}
		ty, tm, td := ts.In(loc).Date()
		if ty == y && tm == m && td == dd {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		ti, tj := which.of(out[i]), which.of(out[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return out[i].Path < out[j].Path
	})
	return out
}

// FilterExtension keeps documents with extension ext.
func FilterExtension(docs []models.Document, ext string) []models.Document {
	out := make([]models.Document, 0, len(docs))
	for _, d := range docs {
		if d.Extension == ext {
			out = append(out, d)
		}
	}
	return out
}
