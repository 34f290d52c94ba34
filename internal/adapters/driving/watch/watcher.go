// Package watch ingests job description files as they appear in a directory.
package watch

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/custodia-labs/jdrag/internal/core/domain"
	"github.com/custodia-labs/jdrag/internal/core/ports/driving"
	"github.com/custodia-labs/jdrag/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is ingested.
const DefaultSettle = 500 * time.Millisecond

// Result reports the outcome of one ingestion.
type Result struct {
	Path   string
	Ingest *domain.IngestResult
	Err    error
}

// Watcher ingests files created or rewritten in a directory.
type Watcher struct {
	dir        string
	ingest     driving.IngestService
	extensions map[string]bool
	settle     time.Duration
	log        *zap.Logger

	wg      sync.WaitGroup
	mu      sync.Mutex
	pending map[string]*time.Timer
	seen    map[string]time.Time
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *Watcher) { w.log = logger.OrNop(log) }
}

// New creates a Watcher for dir. Only files whose extension is in extensions are ingested.
func New(dir string, ingest driving.IngestService, extensions []string, opts ...Option) (*Watcher, error) {
	if ingest == nil {
		return nil, errors.New("watch: ingest service is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
	}

	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		exts[strings.ToLower(e)] = true
	}

	w := &Watcher{
		dir:        dir,
		ingest:     ingest,
		extensions: exts,
		settle:     DefaultSettle,
		log:        zap.NewNop(),
		pending:    make(map[string]*time.Timer),
		seen:       make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch starts watching and returns a channel of ingestion results.
// The channel is closed once ctx is cancelled and in-flight ingestions finish.
func (w *Watcher) Watch(ctx context.Context) (<-chan Result, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", w.dir, err)
	}

	results := make(chan Result, 16)

	go func() {
		defer func() {
			fsw.Close()
			w.stopPending()
			w.wg.Wait()
			close(results)
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fsw.Events:
				if !ok {
					return
				}
				path, ok := w.handleEvent(event)
				if !ok {
					continue
				}
				w.schedule(ctx, path, results)
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				w.log.Warn("watcher error", zap.Error(err))
			}
		}
	}()

	w.log.Info("watching directory", zap.String("dir", w.dir))
	return results, nil
}

// handleEvent returns the path to ingest for event, if any.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	if !w.extensions[strings.ToLower(filepath.Ext(event.Name))] {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || info.IsDir() {
		return "", false
	}
	return event.Name, true
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string, results chan<- Result) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok && t.Stop() {
		t.Reset(w.settle)
		return
	}

	w.wg.Add(1)
	var timer *time.Timer
	timer = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()

		w.mu.Lock()
		if w.pending[path] == timer {
			delete(w.pending, path)
		}
		w.mu.Unlock()

		res, ok := w.ingestFile(ctx, path)
		if !ok {
			return
		}
		select {
		case results <- res:
		case <-ctx.Done():
		}
	})
	w.pending[path] = timer
}

// stopPending cancels timers that have not fired.
func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		if t.Stop() {
			delete(w.pending, path)
			// The timer func will never run.
			w.wg.Done()
		}
	}
}

// ingestFile reads and ingests path unless its modification time was already ingested.
func (w *Watcher) ingestFile(ctx context.Context, path string) (Result, bool) {
	if ctx.Err() != nil {
		return Result{}, false
	}

	info, err := os.Stat(path)
	if err != nil {
		return Result{}, false
	}

	w.mu.Lock()
	if last, ok := w.seen[path]; ok && last.Equal(info.ModTime()) {
		w.mu.Unlock()
		return Result{}, false
	}
	w.seen[path] = info.ModTime()
	w.mu.Unlock()

	content, err := os.ReadFile(path)
	if err != nil {
		return Result{Path: path, Err: fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)}, true
	}

	res, err := w.ingest.Ingest(ctx, &domain.RawDocument{
		FileName: filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Content:  content,
	})
	if err != nil {
		w.log.Warn("ingest failed", zap.String("path", path), zap.Error(err))
		return Result{Path: path, Err: err}, true
	}

	w.log.Info("ingested",
		zap.String("path", path),
		zap.String("document_id", res.DocumentID),
		zap.Int("chunks", res.ChunksStored),
	)
	return Result{Path: path, Ingest: res}, true
}
