package vault

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/dynwidget/internal/apperr"
	"github.com/starford/dynwidget/internal/index"
	"github.com/starford/dynwidget/internal/storage"
)

const renameWindow = 200 * time.Millisecond

// watcher turns fsnotify events into cache updates and vault events.
type watcher struct {
	v      *Vault
	db     index.Cache
	store  storage.Provider
	logger *slog.Logger

	// pending maps checksum → old path for files whose Rename event has
	// arrived but whose new name has not been seen yet.
	pending map[string]string
}

// Watch starts an fsnotify watcher on the vault root and processes file
// change events until ctx is cancelled.
//
// fsnotify reports a rename as Rename(old) followed by Create(new). The old
// path is parked by checksum; a Create with the same checksum inside the
// rename window becomes a renamed event, anything left when the window
// closes becomes deleted.
func Watch(ctx context.Context, v *Vault, db index.Cache, store storage.Provider, logger *slog.Logger) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	root := store.Root()
	if err := addDirsRecursive(fw, root); err != nil {
		return err
	}

	w := &watcher{v: v, db: db, store: store, logger: logger, pending: make(map[string]string)}
	logger.Info("watcher: started", slog.String("root", root))

	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(renameWindow)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(renameWindow)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			w.reconcile()

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)
			if storage.Hidden(rel) {
				continue
			}

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(fw, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					}
					w.indexNewDir(ev.Name)
					continue
				}
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				w.update(rel)

			case ev.Op&fsnotify.Remove != 0:
				w.remove(rel)

			case ev.Op&fsnotify.Rename != 0:
				w.park(rel)
				scheduleReconcile()
			}

		case watchErr, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// update indexes rel, pairing it with a parked rename when checksums match.
func (w *watcher) update(rel string) {
	prev, prevErr := w.db.Get(rel)

	entry, err := index.IndexFile(w.db, w.store, rel)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			w.logger.Warn("watcher: index failed", slog.String("path", rel), slog.String("error", err.Error()))
		}
		return
	}

	if old, ok := w.pending[entry.Checksum]; ok && old != rel {
		delete(w.pending, entry.Checksum)
		if delErr := w.db.Delete(old); delErr != nil {
			w.logger.Warn("watcher: rename delete failed", slog.String("path", old), slog.String("error", delErr.Error()))
		}
		if renErr := w.v.Rename(old, entry.Document, entry.Meta); renErr == nil {
			w.logger.Debug("watcher: renamed", slog.String("from", old), slog.String("to", rel))
			return
		}
	}

	if prevErr == nil && prev.Checksum == entry.Checksum {
		if _, known := w.v.Document(rel); known {
			return
		}
	}
	w.v.Put(entry.Document, entry.Meta)
	w.logger.Debug("watcher: indexed", slog.String("path", rel))
}

func (w *watcher) remove(rel string) {
	if err := w.db.Delete(rel); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	for _, p := range w.v.Under(rel) {
		w.drop(p)
	}
	w.v.Remove(rel)
	w.logger.Debug("watcher: deleted", slog.String("path", rel))
}

// drop removes p from the cache and the vault. The file is already gone, so
// a failed cache delete is logged and the next sync removes the stale row.
func (w *watcher) drop(p string) {
	if err := w.db.Delete(p); err != nil {
		w.logger.Warn("watcher: delete failed", slog.String("path", p), slog.String("error", err.Error()))
	}
	w.v.Remove(p)
}

// park records the cached checksum of rel (or of every document under rel
// when a folder moved) so the following Create can be matched.
func (w *watcher) park(rel string) {
	paths := w.v.Under(rel)
	if _, ok := w.v.Document(rel); ok {
		paths = append(paths, rel)
	}
	for _, p := range paths {
		e, err := w.db.Get(p)
		if err != nil {
			if !errors.Is(err, apperr.ErrNotFound) {
				w.logger.Warn("watcher: rename lookup failed", slog.String("path", p), slog.String("error", err.Error()))
			}
			continue
		}
		w.pending[e.Checksum] = p
	}
}

// reconcile flushes unmatched renames as deletions and then brings the
// cache and vault in line with the disk.
func (w *watcher) reconcile() {
	for cs, old := range w.pending {
		delete(w.pending, cs)
		if _, err := os.Stat(filepath.Join(w.store.Root(), filepath.FromSlash(old))); err == nil {
			continue
		}
		w.drop(old)
		w.logger.Debug("reconcile: removed", slog.String("path", old))
	}

	metas, err := w.store.List("")
	if err != nil {
		w.logger.Warn("reconcile: list failed", slog.String("error", err.Error()))
		return
	}
	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if _, known := w.v.Document(m.Path); !known {
			w.update(m.Path)
		}
	}
	for _, d := range w.v.Documents() {
		if _, ok := disk[d.Path]; !ok {
			w.drop(d.Path)
			w.logger.Debug("reconcile: removed stale", slog.String("path", d.Path))
		}
	}
}

// indexNewDir indexes every file found in a newly created directory.
func (w *watcher) indexNewDir(dirPath string) {
	root := w.store.Root()
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if storage.Hidden(rel) {
			return nil
		}
		w.update(rel)
		return nil
	})
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && len(d.Name()) > 0 && d.Name()[0] == '.' {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
