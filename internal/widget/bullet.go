package widget

import (
	"path"
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/starford/dynwidget/internal/models"
)

// DefaultBullet is used when no emoji can be found.
const DefaultBullet = "•"

// Bullet picks a list bullet for doc: the first emoji in the last segment
// of its bucket name, else in its parent folder name, else in its root
// folder name, else DefaultBullet.
func Bullet(bucket string, doc models.Document) string {
	candidates := []string{}
	if bucket != "" {
		candidates = append(candidates, path.Base(bucket))
	}
	if dir := doc.Dir(); dir != "" {
		candidates = append(candidates, path.Base(dir))
		root, _, _ := strings.Cut(dir, "/")
		candidates = append(candidates, root)
	}
	for _, c := range candidates {
		if e := FirstEmoji(c); e != "" {
			return e
		}
	}
	return DefaultBullet
}

// FirstEmoji returns the first grapheme cluster of s that starts with a
// pictographic symbol, including any variation selector or joiner
// sequence that follows it.
func FirstEmoji(s string) string {
	g := uniseg.NewGraphemes(s)
	for g.Next() {
		runes := g.Runes()
		if len(runes) > 0 && isPictograph(runes[0]) {
			return g.Str()
		}
	}
	return ""
}

func isPictograph(r rune) bool {
	return r >= 0x2190 && unicode.Is(unicode.So, r)
}
