package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/karrick/godirwalk"

	"photo-grid/internal/database"
	"photo-grid/internal/logging"
	"photo-grid/internal/mediatypes"
)

// DefaultDebounce is how long Watch waits after the last change before
// re-importing.
const DefaultDebounce = 2 * time.Second

// Watch re-imports root whenever images below it are created, written,
// renamed or removed, until ctx is done. Changes are batched: an import
// runs once no relevant event has arrived for debounce. onImport, if not
// nil, is called after every successful import.
//
// Removed files are not deleted from the library.
func Watch(ctx context.Context, db *database.Database, root string, config ParallelWalkerConfig, debounce time.Duration, onImport func(Result)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	defer w.Close()

	if err := addTree(w, root, config.SkipHidden); err != nil {
		return err
	}
	logging.Info("Watching %s for new photos", root)

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(event, config.SkipHidden) {
				continue
			}
			logging.Debug("watch event: %s", event)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(w, event.Name, config.SkipHidden); err != nil {
						logging.Warn("Failed to watch %s: %v", event.Name, err)
					}
				}
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logging.Warn("watch error: %v", err)

		case <-timer.C:
			result, err := Import(ctx, db, root, config)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logging.Error("Re-import of %s failed: %v", root, err)
				continue
			}
			if onImport != nil {
				onImport(result)
			}
		}
	}
}

// relevant reports whether event may change the set of importable images.
func relevant(event fsnotify.Event, skipHidden bool) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Base(event.Name)
	if skipHidden && strings.HasPrefix(name, ".") {
		return false
	}
	ext := filepath.Ext(name)
	return ext == "" || mediatypes.IsImage(ext)
}

// addTree watches dir and every directory below it.
func addTree(w *fsnotify.Watcher, dir string, skipHidden bool) error {
	dir = filepath.Clean(dir)
	return godirwalk.Walk(dir, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if !de.IsDir() {
				return nil
			}
			if path != dir && skipHidden && strings.HasPrefix(de.Name(), ".") {
				return godirwalk.SkipThis
			}
			if err := w.Add(path); err != nil {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			return nil
		},
	})
}
