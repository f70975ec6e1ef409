// cmd/newsloom/config_manager.go
package main

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ConfigManager reloads configuration when the file on disk changes. Both a
// filesystem watcher and a periodic stat check are used; editors that replace
// the file atomically only show up as a Create in the parent directory.
type ConfigManager struct {
	configPath     string
	reloadInterval time.Duration
	lastModified   time.Time
	watcher        *fsnotify.Watcher
	mutex          sync.Mutex
	onReload       func(*Config)
}

// NewConfigManager creates a manager watching the given config file
func NewConfigManager(configPath string, reloadInterval time.Duration) (*ConfigManager, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, NewConfigError(ErrConfigLoad, "creating config watcher", err)
	}

	configDir := filepath.Dir(configPath)
	if err := watcher.Add(configDir); err != nil {
		watcher.Close()
		return nil, NewConfigError(ErrConfigLoad, "watching config directory "+configDir, err)
	}

	var modTime time.Time
	if info, err := os.Stat(configPath); err == nil {
		modTime = info.ModTime()
	}

	return &ConfigManager{
		configPath:     configPath,
		reloadInterval: reloadInterval,
		lastModified:   modTime,
		watcher:        watcher,
	}, nil
}

// SetReloadHandler registers a callback invoked after every successful reload
func (cm *ConfigManager) SetReloadHandler(handler func(*Config)) {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()
	cm.onReload = handler
}

// StartWatching begins watching for configuration changes
func (cm *ConfigManager) StartWatching() {
	go cm.watchForChanges()
	go cm.periodicCheck()
}

// Stop stops the configuration watcher
func (cm *ConfigManager) Stop() {
	if cm.watcher != nil {
		cm.watcher.Close()
	}
}

func (cm *ConfigManager) watchForChanges() {
	for {
		select {
		case event, ok := <-cm.watcher.Events:
			if !ok {
				return
			}
			if event.Name == cm.configPath && (event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create) {
				cm.checkAndReload()
			}

		case err, ok := <-cm.watcher.Errors:
			if !ok {
				return
			}
			GetLogger().Warning("Config watcher error: %v", err)
		}
	}
}

func (cm *ConfigManager) periodicCheck() {
	ticker := time.NewTicker(cm.reloadInterval)
	defer ticker.Stop()

	for range ticker.C {
		cm.checkAndReload()
	}
}

// checkAndReload reloads the config file if its mtime moved forward. A config
// that fails to parse or validate leaves the running config untouched.
func (cm *ConfigManager) checkAndReload() {
	cm.mutex.Lock()
	defer cm.mutex.Unlock()

	info, err := os.Stat(cm.configPath)
	if err != nil {
		return
	}
	if !info.ModTime().After(cm.lastModified) {
		return
	}

	GetLogger().Info("Config file changed, reloading")

	newConfig, err := LoadConfig(cm.configPath)
	if err != nil {
		GetLogger().Error("Config reload failed, keeping previous config: %v", err)
		return
	}
	if err := ValidateConfig(newConfig); err != nil {
		GetLogger().Error("Reloaded config invalid, keeping previous config: %v", err)
		return
	}

	cm.lastModified = info.ModTime()
	cfg = newConfig

	if cm.onReload != nil {
		cm.onReload(newConfig)
	}

	GetLogger().Info("Config reloaded")
}
