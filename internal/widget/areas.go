package widget

import (
	"strings"

	"github.com/starford/dynwidget/internal/models"
)

// Frontmatter keys that place a document in an area.
const (
	AreaKey  = "area"
	AreasKey = "areas"
)

var wikilinkBrackets = strings.NewReplacer("[[", "", "]]", "")

// StripWikilink removes every "[[" and "]]" from s. Removal repeats until
// none remain, so the result is stable under a second call.
func StripWikilink(s string) string {
	for strings.Contains(s, "[[") || strings.Contains(s, "]]") {
		s = wikilinkBrackets.Replace(s)
	}
	return s
}

// NormalizeAreas coerces an area property to a list of bare area names.
// A single string becomes a one-element list; lists keep their string
// entries in order. Empty names and values of any other type are dropped.
//
// Unquoted wiki-links reach us as nested lists: `areas: [[Health]]` decodes
// to [[Health]] and a block item `- [[Health]]` to [[[Health]]]. Nested
// lists are flattened, keeping their strings in order.
func NormalizeAreas(v any) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = []string{t}
	case []string:
		raw = t
	case []any:
		raw = flattenStrings(t, raw)
	default:
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(StripWikilink(s))
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func flattenStrings(items []any, out []string) []string {
	for _, item := range items {
		switch it := item.(type) {
		case string:
			out = append(out, it)
		case []string:
			out = append(out, it...)
		case []any:
			out = flattenStrings(it, out)
		}
	}
	return out
}

// DocumentAreas returns the areas a document belongs to, reading "areas"
// first and then "area", without duplicates.
func DocumentAreas(meta *models.Metadata) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, key := range []string{AreasKey, AreaKey} {
		for _, a := range NormalizeAreas(meta.Property(key)) {
			if _, dup := seen[a]; dup {
				continue
			}
			seen[a] = struct{}{}
			out = append(out, a)
		}
	}
	return out
}
