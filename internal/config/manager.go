package config

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ChangeHandler is called with the freshly loaded configuration after the
// config file changes on disk.
type ChangeHandler func(old, new *Config) error

// Manager watches the config file and hot-reloads it, notifying registered
// handlers. Reload failures keep the previous configuration.
type Manager struct {
	path     string
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	handlers []ChangeHandler
	current  *Config
	started  bool
	stopCh   chan struct{}
	mu       sync.RWMutex

	// debounce window for editors that write multiple events per save
	debounce time.Duration
}

// NewManager creates a hot-reload manager for the given config file.
func NewManager(path string, logger *zap.Logger) (*Manager, error) {
	if path == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	return &Manager{
		path:     path,
		logger:   logger,
		watcher:  watcher,
		stopCh:   make(chan struct{}),
		debounce: 200 * time.Millisecond,
	}, nil
}

// Start loads the initial configuration and begins watching for changes.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()

	cfg, err := LoadFile(m.path)
	if err != nil {
		return fmt.Errorf("initial config load: %w", err)
	}
	m.mu.Lock()
	m.current = cfg
	m.started = true
	m.mu.Unlock()

	// Watch the directory, not the file: editors replace files on save and
	// the inode-level watch would go stale.
	if err := m.watcher.Add(filepath.Dir(m.path)); err != nil {
		return fmt.Errorf("watch config directory: %w", err)
	}

	go m.watchLoop(ctx)

	m.logger.Info("Configuration manager started", zap.String("path", m.path))
	return nil
}

// Stop stops the watcher.
func (m *Manager) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.started {
		return nil
	}
	close(m.stopCh)
	m.started = false
	return m.watcher.Close()
}

// Get returns the current configuration snapshot.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// OnChange registers a handler invoked after each successful reload.
func (m *Manager) OnChange(h ChangeHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

func (m *Manager) watchLoop(ctx context.Context) {
	var timer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(m.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(m.debounce, m.reload)
		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn("Config watcher error", zap.Error(err))
		}
	}
}

func (m *Manager) reload() {
	cfg, err := LoadFile(m.path)
	if err != nil {
		m.logger.Error("Config reload failed, keeping previous", zap.Error(err))
		return
	}

	m.mu.Lock()
	old := m.current
	m.current = cfg
	handlers := make([]ChangeHandler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	for _, h := range handlers {
		if err := h(old, cfg); err != nil {
			m.logger.Error("Config change handler failed", zap.Error(err))
		}
	}
	m.logger.Info("Configuration reloaded", zap.String("path", m.path))
}
