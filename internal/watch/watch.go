// Package watch re-runs a callback when files in a repository change.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event before the
// callback fires.
const DefaultDebounce = 200 * time.Millisecond

// Config controls a watch loop.
type Config struct {
	// Root is the repository directory. Root and the listed Subdirs that
	// exist are watched non-recursively.
	Root     string
	Subdirs  []string
	Debounce time.Duration
	Log      *zap.Logger
}

// ignored reports whether an event path should not trigger a run.
func ignored(name string) bool {
	base := filepath.Base(name)
	return strings.HasPrefix(base, ".repoforge-tmp-") ||
		strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		base == ".git" || base == ".repoforge"
}

// Run watches cfg.Root and calls fn once per burst of changes until ctx is
// done. Calls to fn never overlap.
func Run(ctx context.Context, cfg Config, fn func(context.Context)) error {
	log := cfg.Log
	if log == nil {
		log = zap.NewNop()
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dirs := []string{cfg.Root}
	for _, sub := range cfg.Subdirs {
		dirs = append(dirs, filepath.Join(cfg.Root, sub))
	}
	// Subdirs missing at startup are picked up when they are created.
	watched := map[string]bool{}
	addDirs := func() error {
		for _, d := range dirs {
			if watched[d] {
				continue
			}
			if fi, err := os.Stat(d); err != nil || !fi.IsDir() {
				continue
			}
			if err := watcher.Add(d); err != nil {
				return fmt.Errorf("watch %s: %w", d, err)
			}
			watched[d] = true
			log.Debug("watching", zap.String("dir", d))
		}
		return nil
	}
	if err := addDirs(); err != nil {
		return err
	}

	var (
		mu      sync.Mutex
		running sync.Mutex
		timer   *time.Timer
	)
	defer func() {
		mu.Lock()
		if timer != nil {
			timer.Stop()
		}
		mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignored(event.Name) || event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			log.Debug("change", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			if event.Has(fsnotify.Create) {
				if fi, err := os.Stat(event.Name); err == nil && fi.IsDir() {
					if err := addDirs(); err != nil {
						log.Warn("watch new directory", zap.Error(err))
					}
				}
			}

			mu.Lock()
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounce, func() {
				if ctx.Err() != nil {
					return
				}
				running.Lock()
				defer running.Unlock()
				fn(ctx)
			})
			mu.Unlock()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", zap.Error(err))
		}
	}
}
