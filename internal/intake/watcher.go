// Package intake ingests PDF files dropped into a watched directory.
package intake

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/file-intake/internal/service"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// Uploader stores one file on behalf of a user.
type Uploader interface {
	Upload(ctx context.Context, in service.UploadInput) (service.UploadResult, error)
}

// Config contains folder intake settings.
type Config struct {
	Dir         string
	OwnerEmail  string
	SettleDelay time.Duration
	Extensions  []string
}

// Watcher uploads files that appear in a directory and then moves them to
// processed/ or failed/.
type Watcher struct {
	cfg      Config
	uploader Uploader
	logger   *zap.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string
}

// NewWatcher creates a folder watcher.
func NewWatcher(cfg Config, uploader Uploader, logger *zap.Logger) *Watcher {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".pdf"}
	}
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 500 * time.Millisecond
	}
	return &Watcher{
		cfg:      cfg,
		uploader: uploader,
		logger:   logger.Named("intake_watcher"),
		timers:   make(map[string]*time.Timer),
		ready:    make(chan string, 100),
	}
}

// Run watches the directory until ctx is cancelled. Files already present
// when it starts are ingested first.
func (w *Watcher) Run(ctx context.Context) error {
	for _, sub := range []string{processedDir, failedDir} {
		if err := os.MkdirAll(filepath.Join(w.cfg.Dir, sub), 0o755); err != nil {
			return fmt.Errorf("create %s dir: %w", sub, err)
		}
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fsw.Close()

	if err := fsw.Add(w.cfg.Dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.cfg.Dir, err)
	}

	w.logger.Info("watching intake directory",
		zap.String("dir", w.cfg.Dir),
		zap.String("owner", w.cfg.OwnerEmail),
	)

	entries, err := os.ReadDir(w.cfg.Dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.schedule(filepath.Join(w.cfg.Dir, e.Name()))
		}
	}

	for {
		select {
		case <-ctx.Done():
			w.stopTimers()
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(event.Name)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case path := <-w.ready:
			w.ingest(ctx, path)
		}
	}
}

// schedule (re)starts the settle timer for path so that a file still being
// written is only read once writes stop.
func (w *Watcher) schedule(path string) {
	if !w.isWatchedExtension(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.cfg.SettleDelay)
		return
	}
	w.timers[path] = time.AfterFunc(w.cfg.SettleDelay, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		w.ready <- path
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			w.logger.Warn("reading intake file failed", zap.String("path", path), zap.Error(err))
		}
		return
	}

	name := filepath.Base(path)
	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	res, err := w.uploader.Upload(ctx, service.UploadInput{
		OwnerEmail:  w.cfg.OwnerEmail,
		FileName:    name,
		ContentType: contentType,
		Data:        data,
	})
	if err != nil {
		w.logger.Warn("intake upload failed", zap.String("file", name), zap.Error(err))
		w.move(path, failedDir)
		return
	}

	w.logger.Info("intake file uploaded",
		zap.String("file", name),
		zap.String("file_id", res.File.ID),
		zap.Bool("duplicate", res.Duplicate),
	)
	w.move(path, processedDir)
}

func (w *Watcher) move(path, sub string) {
	target := filepath.Join(w.cfg.Dir, sub, filepath.Base(path))
	if _, err := os.Stat(target); err == nil {
		target = filepath.Join(w.cfg.Dir, sub, fmt.Sprintf("%d-%s", time.Now().UnixNano(), filepath.Base(path)))
	}
	if err := os.Rename(path, target); err != nil {
		w.logger.Error("moving intake file failed",
			zap.String("from", path),
			zap.String("to", target),
			zap.Error(err),
		)
	}
}

// isWatchedExtension checks if the file has a watched extension.
func (w *Watcher) isWatchedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.cfg.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}
