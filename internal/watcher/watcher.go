// Package watcher invalidates cached project snapshots when script
// files change on disk, so long-running servers do not serve stale
// call graphs.
package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"matgraph/internal/logging"
)

// ChangeHandler is called once per debounced change burst.
type ChangeHandler func(projectRoot string)

// Watcher watches project trees for .m file changes.
type Watcher struct {
	debounce time.Duration
	logger   *logging.Logger
	handler  ChangeHandler

	fs       *fsnotify.Watcher
	mu       sync.Mutex
	projects map[string]*projectWatch
	done     chan struct{}
	wg       sync.WaitGroup
}

type projectWatch struct {
	root      string
	debouncer *Debouncer
}

// New creates a watcher. The handler typically resets the query
// engine's cached snapshot for the changed project.
func New(debounceMs int, logger *logging.Logger, handler ChangeHandler) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounceMs < 1 {
		debounceMs = 500
	}

	w := &Watcher{
		debounce: time.Duration(debounceMs) * time.Millisecond,
		logger:   logger.With("watcher"),
		handler:  handler,
		fs:       fs,
		projects: make(map[string]*projectWatch),
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// WatchProject registers every directory under a project root.
func (w *Watcher) WatchProject(root string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, exists := w.projects[root]; exists {
		return nil
	}

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree: watch what we can
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if path != root && (strings.HasPrefix(name, ".") || name == "node_modules") {
			return filepath.SkipDir
		}
		return w.fs.Add(path)
	})
	if err != nil {
		return err
	}

	w.projects[root] = &projectWatch{
		root:      root,
		debouncer: NewDebouncer(w.debounce),
	}
	w.logger.Info("watching project", map[string]interface{}{
		"root": root,
	})
	return nil
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.fs.Close()
	w.wg.Wait()

	w.mu.Lock()
	for _, pw := range w.projects {
		pw.debouncer.Stop()
	}
	w.mu.Unlock()
	return err
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", map[string]interface{}{
				"error": err.Error(),
			})
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !isRelevant(event) {
		return
	}

	// New directories must be added to the watch set so nested
	// changes keep arriving.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.fs.Add(event.Name)
		}
	}

	pw := w.projectFor(event.Name)
	if pw == nil {
		return
	}

	w.logger.Debug("script change detected", map[string]interface{}{
		"path": event.Name,
		"op":   event.Op.String(),
	})

	root := pw.root
	pw.debouncer.Trigger(func() {
		w.logger.Info("project changed, invalidating snapshot", map[string]interface{}{
			"root": root,
		})
		if w.handler != nil {
			w.handler(root)
		}
	})
}

// isRelevant keeps only events that can change scan results: writes,
// creates, removes and renames of .m files, plus directory creation.
func isRelevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if strings.EqualFold(filepath.Ext(event.Name), ".m") {
		return true
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

func (w *Watcher) projectFor(path string) *projectWatch {
	w.mu.Lock()
	defer w.mu.Unlock()

	for root, pw := range w.projects {
		if path == root || strings.HasPrefix(path, root+string(os.PathSeparator)) {
			return pw
		}
	}
	return nil
}

// WatchedProjects returns the watched project roots.
func (w *Watcher) WatchedProjects() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	roots := make([]string, 0, len(w.projects))
	for root := range w.projects {
		roots = append(roots, root)
	}
	return roots
}
