// Package rolesync hot-reloads the assignee role registry from its backing
// file, grounded on the teacher's ConfigWatcher in
// apps/edge-mcp/internal/config/watcher.go (fsnotify + debounce + swap
// under a mutex), narrowed to the one file this domain needs to watch.
package rolesync

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/devmesh-org/taskmesh/internal/observability"
	"github.com/devmesh-org/taskmesh/pkg/models"
)

// roleFile is the on-disk shape of the backing file: a canonical slug list
// plus a legacy-alias map, mirroring models.NewAgentRoleRegistry's inputs.
type roleFile struct {
	Canonical []string          `yaml:"canonical"`
	Aliases   map[string]string `yaml:"aliases"`
}

// Watcher keeps an *models.AgentRoleRegistry current with its backing file,
// swapping the registry atomically under a mutex whenever the file changes.
type Watcher struct {
	path string
	mu   sync.RWMutex
	reg  *models.AgentRoleRegistry

	watcher *fsnotify.Watcher
	logger  observability.Logger
	ctx     context.Context
	cancel  context.CancelFunc

	debounce time.Duration
}

// NewWatcher loads the registry once from path and arms an fsnotify watch
// on it. Callers must call Start to begin watching and Stop to release the
// underlying file descriptor.
func NewWatcher(path string, logger observability.Logger) (*Watcher, error) {
	reg, err := loadRoleFile(path)
	if err != nil {
		return nil, fmt.Errorf("load agent roles file: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(path); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch agent roles file: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		reg:      reg,
		watcher:  fw,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		debounce: 500 * time.Millisecond,
	}, nil
}

// Registry returns the current role registry (thread-safe).
func (w *Watcher) Registry() *models.AgentRoleRegistry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.reg
}

// Start begins watching the backing file in the background.
func (w *Watcher) Start() {
	go w.loop()
	w.logger.Info("agent role registry watcher started", map[string]interface{}{"path": w.path})
}

// Stop cancels the watch loop and closes the fsnotify handle.
func (w *Watcher) Stop() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) loop() {
	var debounceTimer *time.Timer
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(w.debounce, w.reload)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("agent role registry watcher error", map[string]interface{}{"error": err.Error()})
		}
	}
}

func (w *Watcher) reload() {
	reg, err := loadRoleFile(w.path)
	if err != nil {
		w.logger.Error("reload agent roles file", map[string]interface{}{"error": err.Error()})
		return
	}
	w.mu.Lock()
	w.reg = reg
	w.mu.Unlock()
	w.logger.Info("agent role registry reloaded", map[string]interface{}{"path": w.path})
}

func loadRoleFile(path string) (*models.AgentRoleRegistry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rf roleFile
	if err := yaml.Unmarshal(raw, &rf); err != nil {
		return nil, fmt.Errorf("parse agent roles yaml: %w", err)
	}
	return models.NewAgentRoleRegistry(rf.Canonical, rf.Aliases), nil
}
