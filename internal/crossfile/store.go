package crossfile

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"logview/internal/tabular"
)

// ReferenceStore caches the package reference and drops the cache whenever
// the workbook changes on disk, so the next Get reloads it. The watcher is
// optional: without Start the store simply caches after the first load.
type ReferenceStore struct {
	path   string
	reader *tabular.Reader
	logger *slog.Logger

	mu       sync.RWMutex
	ref      *Reference
	reloads  int
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
	onChange func(path string)
}

// NewReferenceStore creates a store for the workbook at path.
func NewReferenceStore(path string, reader *tabular.Reader, logger *slog.Logger) *ReferenceStore {
	if logger == nil {
		logger = slog.Default()
	}
	if reader == nil {
		reader = tabular.NewReader(logger)
	}
	return &ReferenceStore{
		path:   path,
		reader: reader,
		logger: logger.With(slog.String("component", "reference_store")),
	}
}

// Path returns the watched workbook path.
func (s *ReferenceStore) Path() string {
	return s.path
}

// OnChange registers a callback invoked after the cache is invalidated.
func (s *ReferenceStore) OnChange(fn func(path string)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Get returns the cached reference, loading it on first use or after an
// invalidation.
func (s *ReferenceStore) Get(ctx context.Context) (*Reference, error) {
	s.mu.RLock()
	ref := s.ref
	s.mu.RUnlock()
	if ref != nil {
		return ref, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ref != nil {
		return s.ref, nil
	}
	ref, err := LoadReference(ctx, s.reader, s.path)
	if err != nil {
		return nil, err
	}
	s.ref = ref
	s.reloads++
	s.logger.InfoContext(ctx, "package reference loaded",
		slog.String("path", s.path),
		slog.Int("frame_stocks", ref.Len()))
	return ref, nil
}

// Loads returns how many times the workbook has been read.
func (s *ReferenceStore) Loads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reloads
}

// Invalidate drops the cached reference.
func (s *ReferenceStore) Invalidate() {
	s.mu.Lock()
	s.ref = nil
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(s.path)
	}
}

// Start watches the directory holding the workbook. Editors usually replace
// files instead of writing in place, so the directory is watched rather than
// the file itself.
func (s *ReferenceStore) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create reference watcher: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	s.watcher = w
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.running = true
	go s.run(ctx, w, s.stopCh, s.doneCh)

	s.logger.InfoContext(ctx, "watching package reference", slog.String("dir", dir))
	return nil
}

// Stop ends the watch loop and waits for it to exit.
func (s *ReferenceStore) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	stopCh, doneCh, w := s.stopCh, s.doneCh, s.watcher
	s.watcher = nil
	s.mu.Unlock()

	close(stopCh)
	<-doneCh
	return w.Close()
}

func (s *ReferenceStore) run(ctx context.Context, w *fsnotify.Watcher, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)
	target := filepath.Clean(s.path)

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
				ev.Has(fsnotify.Rename) || ev.Has(fsnotify.Remove) {
				s.logger.Info("package reference changed",
					slog.String("path", ev.Name),
					slog.String("op", ev.Op.String()))
				s.Invalidate()
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			s.logger.Warn("reference watcher error", slog.String("error", err.Error()))
		}
	}
}
