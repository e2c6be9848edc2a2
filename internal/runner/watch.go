package runner

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// WatchRunResults watches target/run_results.json for writes and sends the
// freshly re-parsed document on the returned channel each time it changes,
// until ctx is cancelled. Errors from fsnotify setup are returned
// immediately; errors parsing an individual change are dropped (the file
// may be mid-write) rather than closing the channel.
func WatchRunResults(ctx context.Context, projectDir string) (<-chan *RunResultsDocument, error) {
	targetDir := filepath.Join(projectDir, "target")
	path := filepath.Join(targetDir, "run_results.json")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(targetDir); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	out := make(chan *RunResultsDocument)
	go func() {
		defer watcher.Close()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if doc, err := LoadRunResults(path); err == nil {
					select {
					case out <- doc:
					case <-ctx.Done():
						return
					}
				}
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return out, nil
}
