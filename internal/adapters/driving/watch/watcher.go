// Package watch ingests documents as they appear or change in a directory.
// It is a driving adapter: filesystem events drive the ingestion service.
package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// DefaultDebounce is how long a path must be quiet before it is ingested.
// Editors and copies emit several writes per save.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrMissingIngestionService is returned when no ingestion service is provided.
	ErrMissingIngestionService = errors.New("watch: ingestion service is required")

	// ErrClosed is returned when Run is called on a closed watcher.
	ErrClosed = errors.New("watch: watcher is closed")
)

// Result reports one ingestion triggered by a filesystem event.
type Result struct {
	Path   string
	Chunks int
	Err    error
}

// Config configures a Watcher.
type Config struct {
	// Root is the directory to watch. Subdirectories are watched too.
	Root string

	// Tag is stamped on every ingested chunk.
	Tag string

	// ChunkSize and ChunkOverlap follow ChunkOptions.WithDefaults:
	// a negative overlap selects the default.
	ChunkSize    int
	ChunkOverlap int

	// Debounce defaults to DefaultDebounce when zero.
	Debounce time.Duration

	// Initial ingests every supported file already under Root before watching.
	Initial bool

	// OnResult, if set, is called after every ingestion. It may be called
	// from several goroutines.
	OnResult func(Result)
}

// Watcher turns Create and Write events on supported files into ingestions.
type Watcher struct {
	ingestion driving.IngestionService
	cfg       Config

	mu      sync.Mutex
	timers  map[string]*time.Timer
	closed  bool
	pending sync.WaitGroup
}

// New creates a watcher over cfg.Root.
func New(ingestion driving.IngestionService, cfg Config) (*Watcher, error) {
	if ingestion == nil {
		return nil, ErrMissingIngestionService
	}
	info, err := os.Stat(cfg.Root)
	if err != nil {
		return nil, fmt.Errorf("watch: root path error: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch: root path error: %s is not a directory", cfg.Root)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	return &Watcher{
		ingestion: ingestion,
		cfg:       cfg,
		timers:    make(map[string]*time.Timer),
	}, nil
}

// Run watches until ctx is cancelled. Pending debounced ingestions are
// dropped; ingestions already running finish before Run returns.
// A watcher runs once.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	w.mu.Unlock()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	defer fsw.Close()

	if err := w.addTree(fsw, w.cfg.Root); err != nil {
		return err
	}
	logger.Debug("watching %s", w.cfg.Root)

	if w.cfg.Initial {
		w.scan(ctx)
	}

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if path, ok := w.handleEvent(fsw, event); ok {
				w.schedule(ctx, path)
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// Close stops pending ingestions. Run must not be called afterwards.
func (w *Watcher) Close() error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.stop()
	return nil
}

// addTree watches dir and every non-hidden directory below it.
func (w *Watcher) addTree(fsw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		if err := fsw.Add(path); err != nil {
			return fmt.Errorf("watch: add %s: %w", path, err)
		}
		return nil
	})
}

// scan schedules every supported file already present.
func (w *Watcher) scan(ctx context.Context) {
	_ = filepath.WalkDir(w.cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("watch: scan %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != w.cfg.Root && isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if supported(path) {
			w.schedule(ctx, path)
		}
		return nil
	})
}

// handleEvent returns the path to ingest for an event, if any.
// New directories are added to the watch list.
func (w *Watcher) handleEvent(fsw *fsnotify.Watcher, event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	rel, err := filepath.Rel(w.cfg.Root, event.Name)
	if err != nil || isHidden(rel) {
		return "", false
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		if event.Has(fsnotify.Create) && fsw != nil {
			if err := w.addTree(fsw, event.Name); err != nil {
				logger.Warn("%v", err)
			}
		}
		return "", false
	}

	if !supported(event.Name) {
		logger.Debug("watch: skipping %s", event.Name)
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	// A timer that already fired gets replaced; its queued callback
	// then finds a different timer for path and exits.
	if t, ok := w.timers[path]; ok && t.Stop() {
		t.Reset(w.cfg.Debounce)
		return
	}
	var t *time.Timer
	t = time.AfterFunc(w.cfg.Debounce, func() {
		w.mu.Lock()
		if w.timers[path] != t {
			// Replaced by schedule after firing.
			w.mu.Unlock()
			return
		}
		delete(w.timers, path)
		if w.closed {
			w.mu.Unlock()
			return
		}
		w.pending.Add(1)
		w.mu.Unlock()

		defer w.pending.Done()
		w.ingest(ctx, path)
	})
	w.timers[path] = t
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	chunks, err := w.ingestion.Ingest(ctx, domain.IngestRequest{
		Location:     path,
		Tag:          w.cfg.Tag,
		ChunkSize:    w.cfg.ChunkSize,
		ChunkOverlap: w.cfg.ChunkOverlap,
	})
	if err != nil {
		logger.WithFields(map[string]any{"path": path}).Warnf("watch: ingest failed: %v", err)
	} else {
		logger.WithFields(map[string]any{"path": path, "chunks": chunks}).Info("watch: ingested")
	}
	if w.cfg.OnResult != nil {
		w.cfg.OnResult(Result{Path: path, Chunks: chunks, Err: err})
	}
}

// stop cancels pending timers and waits for running ingestions.
// The watcher cannot be restarted afterwards.
func (w *Watcher) stop() {
	w.mu.Lock()
	w.closed = true
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
	w.mu.Unlock()
	w.pending.Wait()
}

// Pending returns the number of paths waiting out their debounce.
func (w *Watcher) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

func supported(path string) bool {
	_, err := domain.FormatFromPath(path)
	return err == nil
}

// isHidden reports whether any element of path starts with a dot.
// "." and ".." are not hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part != "" && part != "." && part != ".." && strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
