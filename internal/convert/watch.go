package convert

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce window between the last export-tree event and a re-run. Export
// tools tend to drop many files in a burst.
const rerunDelay = 500 * time.Millisecond

// Watch starts an fsnotify watcher on the export root and calls run (a full
// re-conversion) after each settled burst of changes, until ctx is
// cancelled. New channel directories created at runtime are added to the
// watch list. A failed re-run is logged and watching continues; the next
// change triggers another attempt.
func Watch(ctx context.Context, root string, logger *slog.Logger, run func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	var timer *time.Timer
	var rerunCh <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(rerunDelay)
			rerunCh = timer.C
		} else {
			timer.Reset(rerunDelay)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rerunCh:
			logger.Info("watcher: export changed, re-converting")
			if err := run(); err != nil {
				logger.Error("watcher: re-conversion failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				// A new channel directory: watch it too.
				if addErr := addDirsRecursive(w, ev.Name); addErr == nil {
					logger.Debug("watcher: watching new path", slog.String("path", ev.Name))
				}
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
// Non-directory paths are ignored.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
