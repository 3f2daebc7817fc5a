package supervisor

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/timvw/zellij-autolock/internal/autolock"
)

// reloadSettle is how long the config file must stay quiet before it is
// re-read; editors write it in several steps.
const reloadSettle = 200 * time.Millisecond

// watchConfig re-loads the configuration whenever the config file changes
// and posts it to the controller. The directory is watched rather than the
// file so that editors replacing the file by rename are noticed.
func (l *Loop) watchConfig(ctx context.Context) error {
	path, err := filepath.Abs(l.opts.ConfigFile)
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watch: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("config watch %s: %w", filepath.Dir(path), err)
	}
	l.log.Debug("watching config file", zap.String("path", path))

	settle := time.NewTimer(reloadSettle)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			settle.Reset(reloadSettle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warn("config watch error", zap.Error(err))

		case <-settle.C:
			cfg, err := l.opts.Reload()
			if err != nil {
				// Keep running with the previous configuration.
				l.log.Warn("config reload failed", zap.String("path", path), zap.Error(err))
				continue
			}
			l.Post(autolock.ConfigChanged{Config: cfg})
		}
	}
}
