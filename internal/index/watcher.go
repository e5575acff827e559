package index

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/jera/internal/checksum"
	"github.com/starford/jera/internal/storage"
)

// EventCallback is called after a watcher-driven index change.
// kind is "updated" for content edits and removals alike: the todo itself
// stays in the list, only its content changed.
type EventCallback func(kind string, id string)

// Watch starts an fsnotify watcher on the content directory and keeps the
// searchable bodies in sync with edits made outside the application until
// ctx is cancelled. Writes whose checksum already matches the index (the
// store's own writes) are ignored. cb, if non-nil, runs after each change.
func Watch(ctx context.Context, db TodoIndex, store *storage.FS, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(store.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", store.Root()))

	// reconcileTimer debounces the full sync that follows renames.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
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
			if err := Sync(ctx, db, store, logger); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			id, isContent := store.IDFromPath(ev.Name)
			if !isContent {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				content, readErr := store.Get(ctx, id)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("id", id), slog.String("error", readErr.Error()))
					continue
				}
				if cs, _ := db.GetChecksum(ctx, id); cs == checksum.String(content) {
					continue
				}
				found, idxErr := db.SetBody(ctx, id, content)
				if idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("id", id), slog.String("error", idxErr.Error()))
					continue
				}
				if !found {
					logger.Debug("watcher: content without todo", slog.String("id", id))
					continue
				}
				logger.Debug("watcher: indexed", slog.String("id", id))
				if cb != nil {
					cb("updated", id)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				found, idxErr := db.SetBody(ctx, id, "")
				if idxErr != nil {
					logger.Warn("watcher: clear failed", slog.String("id", id), slog.String("error", idxErr.Error()))
					continue
				}
				if found && cb != nil {
					cb("updated", id)
				}
				if ev.Op&fsnotify.Rename != 0 {
					scheduleReconcile()
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
