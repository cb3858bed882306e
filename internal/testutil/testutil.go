// Package testutil provides shared test helpers for setting up vaults and databases.
package testutil

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/dynwidget/internal/index"
	"github.com/starford/dynwidget/internal/storage"
	"github.com/starford/dynwidget/internal/vault"
	"github.com/starford/dynwidget/internal/widget"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "dynwidget-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestVault creates a temporary vault directory with a storage.Provider.
func TestVault(t *testing.T) (string, storage.Provider) {
	t.Helper()
	vaultDir := t.TempDir()
	store, err := storage.NewFS(vaultDir)
	if err != nil {
		t.Fatal(err)
	}
	return vaultDir, store
}

// WriteFile writes content to rel inside dir and sets its modification time.
func WriteFile(t *testing.T, dir, rel, content string, mtime time.Time) {
	t.Helper()
	abs := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if !mtime.IsZero() {
		if err := os.Chtimes(abs, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
}

// TestHost writes files into a fresh vault, indexes them and returns the
// loaded vault together with an open widget using buckets.
func TestHost(t *testing.T, files map[string]string, buckets []string) (*vault.Vault, *widget.Widget) {
	t.Helper()
	dir, store := TestVault(t)
	for rel, content := range files {
		WriteFile(t, dir, rel, content, time.Time{})
	}
	v, err := vault.Load(TestDB(t), store, Logger())
	if err != nil {
		t.Fatalf("vault.Load: %v", err)
	}
	w := widget.New(v, widget.Options{Buckets: buckets}, Logger())
	if err := w.Open(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return v, w
}
