package ml

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchArtifact waits for the artifact at path to appear and loads it
// into holder. It returns nil once the holder is Loaded (by this watcher
// or anyone else) and ctx.Err() if ctx ends first. A file that fails to
// load is assumed to be mid-write; the next event retries it.
func WatchArtifact(ctx context.Context, path string, holder *Holder, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	logger.Info("watching for model artifact", zap.String("path", path))

	// the file may have landed between the startup load and watcher.Add
	if tryLoad(path, holder, logger) {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed")
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
				continue
			}
			if tryLoad(path, holder, logger) {
				return nil
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed")
			}
			logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}

func tryLoad(path string, holder *Holder, logger *zap.Logger) bool {
	if holder.Loaded() {
		return true
	}
	est, err := LoadModel(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("model artifact not loadable yet", zap.String("path", path), zap.Error(err))
		}
		return false
	}
	m := NewLoadedModel(est, path)
	if holder.Set(m) {
		logger.Info("model loaded",
			zap.String("path", path),
			zap.String("type", m.Type),
			zap.String("importance_source", string(m.ImportanceSource)),
		)
	}
	return true
}
