package responses

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads t from path whenever the file changes, until ctx is done.
// The parent directory is watched rather than the file so editors that save
// by rename are picked up. A reload that fails keeps the previous wording.
func Watch(ctx context.Context, t *Table, path string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if err := t.Reload(abs); err != nil {
					logger.Warn("responses reload failed, keeping previous", "path", abs, "err", err)
					continue
				}
				logger.Info("responses reloaded", "path", abs)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("responses watcher error", "err", err)
			}
		}
	}()
	return nil
}
