// Package configwatcher reloads the bulk configuration file when it changes.
// Only connections opened after a reload see the new settings.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/bulk/pkg/log"
)

// ReloadFunc re-reads the configuration file.
type ReloadFunc func() error

// Plugin watches a single config file.
// It watches the file's directory so editors that replace the file are seen.
type Plugin struct {
	mu sync.Mutex

	debounceDelay time.Duration
	logger        log.Logger

	path     string
	reload   ReloadFunc
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	stopped  bool
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config, opts ...Option) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	p := &Plugin{
		debounceDelay: cfg.DebounceDelay,
		logger:        log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Start begins watching path and calls reload after each burst of changes.
// It returns an error if the file's directory cannot be watched.
func (p *Plugin) Start(ctx context.Context, path string, reload ReloadFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)

	p.mu.Lock()
	p.path = path
	p.reload = reload
	p.cancel = cancel
	p.mu.Unlock()

	p.logger.Info("config watcher started", log.String("path", path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)
	return nil
}

// Shutdown stops the watcher and any pending reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.stopped = true
	if p.debounce != nil {
		p.debounce.Stop()
	}
	cancel := p.cancel
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return
	}
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.debounce = time.AfterFunc(p.debounceDelay, p.runReload)
}

func (p *Plugin) runReload() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	reload := p.reload
	path := p.path
	p.mu.Unlock()

	if err := reload(); err != nil {
		p.logger.Warn("config reload failed",
			log.String("path", path),
			log.Err(err),
		)
		return
	}
	p.logger.Info("config reloaded", log.String("path", path))
}
