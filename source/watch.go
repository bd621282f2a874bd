package source

import (
	"context"
	"errors"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	framebuffer "github.com/carbonvibes/Framebuffer"
)

// Watch replays descriptors as they appear in the directory, blocking
// until ctx is done. Existing descriptors are replayed first, then the
// directory is watched for new ones. Each descriptor is replayed at
// most once: a Create for a half-written file fails to parse and the
// follow-up Write retries it. Handler errors abort the watch.
func (r *Replay) Watch(ctx context.Context) error {
	seen := make(map[string]bool)

	paths, err := filepath.Glob(filepath.Join(r.dir, "*.json"))
	if err != nil {
		return err
	}
	sort.Strings(paths)
	for _, path := range paths {
		if err := r.processOnce(path, seen); err != nil {
			return err
		}
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = w.Close()
	}()
	if err := w.Add(r.dir); err != nil {
		return err
	}

	framebuffer.Logger().Info("watching for buffer descriptors", "dir", r.dir)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !isDescriptor(event.Name) {
				continue
			}
			if err := r.processOnce(event.Name, seen); err != nil {
				return err
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if err != nil && !errors.Is(err, fsnotify.ErrEventOverflow) {
				return err
			}
			framebuffer.Logger().Warn("watcher overflow, events dropped", "dir", r.dir)
		}
	}
}

// processOnce replays path unless it already produced an event.
func (r *Replay) processOnce(path string, seen map[string]bool) error {
	if seen[path] {
		return nil
	}
	ev, err := r.parse(path)
	if err != nil {
		framebuffer.Logger().Warn("skipping bad descriptor", "path", path, "error", err)
		return nil
	}
	seen[path] = true
	defer func() {
		if fb, ok := ev.Object.(*fileBuffer); ok {
			_ = fb.Close()
		}
	}()
	return r.handler(ev)
}
