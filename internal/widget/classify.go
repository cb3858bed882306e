package widget

import (
	"regexp"
	"strings"
	"time"

	"github.com/starford/dynwidget/internal/models"
)

// Mode is the content mode chosen for the active document.
type Mode int

const (
	// ModeNone means no document is active.
	ModeNone Mode = iota
	ModeArea
	ModeAreas
	ModeDay
	ModeOther
)

func (m Mode) String() string {
	switch m {
	case ModeArea:
		return "area"
	case ModeAreas:
		return "areas"
	case ModeDay:
		return "day"
	case ModeOther:
		return "other"
	default:
		return "none"
	}
}

// MarshalText encodes the mode by name.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

const (
	dayLayout    = "2006-01-02"
	headerLayout = "Mon, Jan 2, 2006"
)

var dayNameRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Classification is the result of inspecting the active document.
type Classification struct {
	Mode   Mode      `json:"mode"`
	Areas  []string  `json:"areas,omitempty"`
	Day    time.Time `json:"day,omitzero"`
	Header string    `json:"header,omitempty"`
}

// Classify picks exactly one mode for doc. Precedence is areas, area, day,
// other.
func Classify(doc *models.Document, meta *models.Metadata) Classification {
	if doc == nil {
		return Classification{Mode: ModeNone}
	}

	if areas := NormalizeAreas(meta.Property(AreasKey)); len(areas) > 0 {
		return Classification{Mode: ModeAreas, Areas: areas, Header: strings.Join(areas, ", ")}
	}
	if areas := NormalizeAreas(meta.Property(AreaKey)); len(areas) > 0 {
		return Classification{Mode: ModeArea, Areas: areas, Header: strings.Join(areas, ", ")}
	}

	if day, ok := ParseDay(doc.Basename); ok {
		return Classification{Mode: ModeDay, Day: day, Header: day.Format(headerLayout)}
	}

	return Classification{Mode: ModeOther, Header: doc.Basename}
}

// ParseDay reports whether name is a strict YYYY-MM-DD calendar date and
// returns midnight of that day in local time.
func ParseDay(name string) (time.Time, bool) {
	if !dayNameRe.MatchString(name) {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(dayLayout, name, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}
