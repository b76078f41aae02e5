// Package importer watches a drop directory and imports image files that
// appear in it. Files are debounced until their size and mtime stop
// changing, so half-copied files are never imported, then handed to the
// library and removed from the drop directory on success.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lumenapp/lumen-server/internal/service"
)

// DefaultSettleDelay is how long a file must stay unchanged before import.
const DefaultSettleDelay = 2 * time.Second

// imageExtensions lists the file types the importer picks up.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
	".bmp":  true,
	".tiff": true,
}

// pendingFile tracks a file that may still be changing.
type pendingFile struct {
	size    int64
	modTime time.Time
	timer   *time.Timer
}

// Importer watches a single drop directory.
type Importer struct {
	dir         string
	settleDelay time.Duration
	library     *service.Library
	logger      *slog.Logger

	watcher *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*pendingFile

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates an importer for the given drop directory, creating it if needed.
func New(dir string, library *service.Library, logger *slog.Logger) (*Importer, error) {
	if dir == "" {
		return nil, fmt.Errorf("import directory cannot be empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create import directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch import directory: %w", err)
	}

	return &Importer{
		dir:         dir,
		settleDelay: DefaultSettleDelay,
		library:     library,
		logger:      logger,
		watcher:     watcher,
		pending:     make(map[string]*pendingFile),
		done:        make(chan struct{}),
	}, nil
}

// Start processes events until the context is canceled. Files already
// sitting in the drop directory are picked up first.
func (i *Importer) Start(ctx context.Context) error {
	i.sweepExisting(ctx)

	i.wg.Add(1)
	go i.processEvents(ctx)

	<-ctx.Done()
	return nil
}

// Stop tears down the watcher and pending timers.
func (i *Importer) Stop() error {
	close(i.done)

	i.mu.Lock()
	for _, p := range i.pending {
		p.timer.Stop()
	}
	clear(i.pending)
	i.mu.Unlock()

	err := i.watcher.Close()
	i.wg.Wait()
	return err
}

// sweepExisting queues every importable file already in the directory.
func (i *Importer) sweepExisting(ctx context.Context) {
	entries, err := os.ReadDir(i.dir)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("failed to read import directory", "dir", i.dir, "error", err)
		}
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(i.dir, entry.Name())
		if importable(path) {
			i.startSettling(ctx, path)
		}
	}
}

func (i *Importer) processEvents(ctx context.Context) {
	defer i.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-i.done:
			return
		case event, ok := <-i.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !importable(event.Name) {
				continue
			}
			i.startSettling(ctx, event.Name)
		case err, ok := <-i.watcher.Errors:
			if !ok {
				return
			}
			if i.logger != nil {
				i.logger.Warn("watcher error", "error", err)
			}
		}
	}
}

// startSettling begins or restarts the settle timer for a file.
func (i *Importer) startSettling(ctx context.Context, path string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if p, exists := i.pending[path]; exists {
		p.timer.Stop()
	}

	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		delete(i.pending, path)
		return
	}

	p := &pendingFile{size: info.Size(), modTime: info.ModTime()}
	p.timer = time.AfterFunc(i.settleDelay, func() {
		i.checkSettled(ctx, path)
	})
	i.pending[path] = p
}

// checkSettled imports the file once its size and mtime stop changing.
func (i *Importer) checkSettled(ctx context.Context, path string) {
	i.mu.Lock()
	p, exists := i.pending[path]
	if !exists {
		i.mu.Unlock()
		return
	}

	info, err := os.Stat(path)
	if err != nil {
		delete(i.pending, path)
		i.mu.Unlock()
		return
	}

	if info.Size() != p.size || !info.ModTime().Equal(p.modTime) {
		// Still changing, restart timer.
		p.size = info.Size()
		p.modTime = info.ModTime()
		p.timer = time.AfterFunc(i.settleDelay, func() {
			i.checkSettled(ctx, path)
		})
		i.mu.Unlock()
		return
	}

	delete(i.pending, path)
	i.mu.Unlock()

	i.importFile(ctx, path)
}

// importFile hands a settled file to the library and removes the source on
// success.
func (i *Importer) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if i.logger != nil {
			i.logger.Warn("failed to read drop file", "path", path, "error", err)
		}
		return
	}

	name := filepath.Base(path)
	_, err = i.library.ImportPhotos(ctx, []service.ImportFile{{
		Name:     name,
		MimeType: mimeTypeFor(name),
		Data:     data,
	}})
	if err != nil {
		if i.logger != nil {
			i.logger.Error("failed to import drop file", "path", path, "error", err)
		}
		return
	}

	if err := os.Remove(path); err != nil && i.logger != nil {
		i.logger.Warn("failed to remove imported drop file", "path", path, "error", err)
	}

	if i.logger != nil {
		i.logger.Info("drop file imported", "name", name)
	}
}

// importable reports whether a path looks like an image file.
func importable(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// mimeTypeFor resolves a MIME type from the file extension.
func mimeTypeFor(name string) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); t != "" {
		return t
	}
	return "application/octet-stream"
}
