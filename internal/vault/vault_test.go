package vault

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dynwidget/internal/apperr"
	"github.com/starford/dynwidget/internal/index"
	"github.com/starford/dynwidget/internal/models"
	"github.com/starford/dynwidget/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func doc(path string) models.Document {
	now := time.Date(2025, 7, 15, 12, 0, 0, 0, time.Local)
	return models.NewDocument(path, now, now)
}

func recordEvents(v *Vault) *[]models.Event {
	var events []models.Event
	v.Subscribe(func(ev models.Event) { events = append(events, ev) })
	return &events
}

func TestVault_PutAndLookup(t *testing.T) {
	v := New(discardLogger())
	events := recordEvents(v)

	meta := &models.Metadata{Frontmatter: map[string]any{"area": "Work"}}
	v.Put(doc("b.md"), meta)
	v.Put(doc("a.md"), nil)

	docs := v.Documents()
	if len(docs) != 2 || docs[0].Path != "a.md" || docs[1].Path != "b.md" {
		t.Errorf("documents = %+v", docs)
	}
	if m, ok := v.Metadata("b.md"); !ok || m.Property("area") != "Work" {
		t.Errorf("metadata = %+v, %v", m, ok)
	}
	if _, ok := v.Metadata("a.md"); ok {
		t.Error("a.md should have no metadata")
	}
	if len(*events) != 2 || (*events)[0].Kind != models.EventMetadataChanged {
		t.Errorf("events = %+v", *events)
	}
}

func TestVault_SetActive(t *testing.T) {
	v := New(discardLogger())
	v.Put(doc("a.md"), nil)
	events := recordEvents(v)

	if _, ok := v.Active(); ok {
		t.Fatal("no document should be active initially")
	}
	if err := v.SetActive("missing.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if err := v.SetActive("a.md"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	active, ok := v.Active()
	if !ok || active.Path != "a.md" {
		t.Errorf("active = %+v", active)
	}
	v.ClearActive()
	if _, ok := v.Active(); ok {
		t.Error("active should be cleared")
	}
	if len(*events) != 2 || (*events)[1].Document.Path != "" {
		t.Errorf("events = %+v", *events)
	}
}

func TestVault_RenameMovesActive(t *testing.T) {
	v := New(discardLogger())
	v.Put(doc("Inbox/a.md"), nil)
	_ = v.SetActive("Inbox/a.md")
	events := recordEvents(v)

	if err := v.Rename("Inbox/a.md", doc("Projects/a.md"), nil); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	active, ok := v.Active()
	if !ok || active.Path != "Projects/a.md" {
		t.Errorf("active = %+v", active)
	}
	if _, ok := v.Document("Inbox/a.md"); ok {
		t.Error("old path still present")
	}
	ev := (*events)[0]
	if ev.Kind != models.EventRenamed || ev.OldPath != "Inbox/a.md" || ev.Document.Path != "Projects/a.md" {
		t.Errorf("event = %+v", ev)
	}
	if err := v.Rename("nope.md", doc("x.md"), nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("rename missing err = %v", err)
	}
}

func TestVault_RemoveActive(t *testing.T) {
	v := New(discardLogger())
	v.Put(doc("a.md"), nil)
	_ = v.SetActive("a.md")
	events := recordEvents(v)

	v.Remove("a.md")
	v.Remove("a.md")

	if _, ok := v.Active(); ok {
		t.Error("active should be cleared after delete")
	}
	if len(*events) != 2 || (*events)[0].Kind != models.EventDeleted || (*events)[1].Kind != models.EventActiveChanged {
		t.Errorf("events = %+v", *events)
	}
}

func TestVault_Under(t *testing.T) {
	v := New(discardLogger())
	v.Put(doc("Projects/Active/a.md"), nil)
	v.Put(doc("Projects/Active Old/b.md"), nil)
	v.Put(doc("Projects/c.md"), nil)

	got := v.Under("Projects/Active")
	if len(got) != 1 || got[0] != "Projects/Active/a.md" {
		t.Errorf("Under = %v", got)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	_ = os.WriteFile(filepath.Join(dir, "2025-07-15.md"), []byte("# Day"), 0o644)
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	db, err := index.Open(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	v, err := Load(db, store, discardLogger())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d, ok := v.Document("2025-07-15.md")
	if !ok || d.Basename != "2025-07-15" {
		t.Errorf("document = %+v, %v", d, ok)
	}
	if m, ok := v.Metadata("2025-07-15.md"); !ok || m.Title != "Day" {
		t.Errorf("metadata = %+v", m)
	}
}
