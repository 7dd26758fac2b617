package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"vidscribe/internal/logging"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Extensions []string
	// Debounce is the quiet period after the last media event before a rerun.
	Debounce time.Duration
}

// Watch calls run once, then again every time media files appear under root
// and the folder stays quiet for the debounce period. It returns when ctx is
// done.
func Watch(ctx context.Context, root string, opts WatchOptions, run func(context.Context), logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logger, "watch")
	if opts.Debounce <= 0 {
		opts.Debounce = 5 * time.Second
	}
	allowed := extensionSet(opts.Extensions)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			logger.Debug("watcher close failed", logging.Error(err))
		}
	}()

	if err := addTree(watcher, root); err != nil {
		return fmt.Errorf("watch %s: %w", root, err)
	}
	logger.Info("watching folder",
		logging.String(logging.FieldEventType, "watch_started"),
		logging.String("root", root),
		logging.Duration("debounce", opts.Debounce),
	)

	run(ctx)

	timer := time.NewTimer(opts.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addTree(watcher, event.Name); err != nil {
						logger.Debug("watch new directory failed", logging.Error(err), logging.String("path", event.Name))
					}
					continue
				}
			}
			if _, ok := allowed[strings.ToLower(filepath.Ext(event.Name))]; !ok {
				continue
			}
			logger.Debug("media change detected", logging.String("path", event.Name), logging.String("op", event.Op.String()))
			timer.Reset(opts.Debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "new files may be missed until the next change"),
			)
		case <-timer.C:
			logger.Info("new media detected, starting batch",
				logging.String(logging.FieldEventType, "watch_triggered"),
			)
			run(ctx)
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		return watcher.Add(path)
	})
}
