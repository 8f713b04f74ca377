package server

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// newWatcher creates a recursive fsnotify watcher over the given roots.
// Roots that do not exist are skipped; fsnotify does not watch recursively,
// so every subdirectory is added explicitly and newly created directories are
// added as their create events arrive.
func newWatcher(roots ...string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, root := range roots {
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if d.Name() != "." && d.Name()[0] == '.' && path != root {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
		if err != nil {
			_ = watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

// trackNewDirs adds directories created under a watched root to the watcher.
func trackNewDirs(watcher *fsnotify.Watcher, event fsnotify.Event) {
	if !event.Op.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := watcher.Add(event.Name); err != nil {
		slog.Warn("Failed to watch new directory", "path", event.Name, "error", err)
	}
}
