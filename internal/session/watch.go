package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long the watcher waits after the last filesystem
// event before re-reading the token.
var WatchDebounce = 100 * time.Millisecond

var ErrNotWatchable = errors.New("token storage is not on the local filesystem")

// Watch calls onChange whenever the stored token is replaced or removed by
// someone else, for example a login in another terminal. It blocks until ctx
// is done. current is the token the caller already holds.
func (ts *TokenStore) Watch(ctx context.Context, current string, onChange func(token string)) error {
	path, ok := ts.Path()
	if !ok {
		return ErrNotWatchable
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: writes land via rename, which replaces the inode.
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	slog.DebugContext(ctx, "watching session token", "path", path)

	reload := make(chan struct{}, 1)
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	last := current
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(WatchDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			token, err := ts.Load(ctx)
			if err != nil {
				slog.WarnContext(ctx, "failed to reload session token", "error", err)
				continue
			}
			if token == last {
				continue
			}
			last = token
			onChange(token)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "session watcher error", "error", err)
		}
	}
}
