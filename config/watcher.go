package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/spf13/viper"
)

// Watcher holds the configuration loaded from a file and notifies
// subscribers whenever a valid new version is read.
type Watcher struct {
	viper       *viper.Viper
	log         logr.Logger
	mu          sync.RWMutex
	current     *Config
	subscribers []func(*Config)
}

// NewWatcher loads path. Call Start to follow changes to the file.
func NewWatcher(path string, log logr.Logger) (*Watcher, error) {
	v := newViper(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	config, err := decode(v)
	if err != nil {
		return nil, err
	}
	return &Watcher{viper: v, log: log, current: config}, nil
}

// Start watches the file with fsnotify. Invalid versions are logged and
// ignored.
func (w *Watcher) Start() {
	w.viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		w.log.Info("config file changed", "file", e.Name, "op", e.Op.String())
		w.apply()
	})
	w.viper.WatchConfig()
}

// Reload re-reads the file now.
func (w *Watcher) Reload() error {
	if err := w.viper.ReadInConfig(); err != nil {
		return err
	}
	return w.apply()
}

func (w *Watcher) apply() error {
	config, err := decode(w.viper)
	if err != nil {
		w.log.Error(err, "ignoring config change")
		return err
	}

	w.mu.Lock()
	w.current = config
	subscribers := make([]func(*Config), len(w.subscribers))
	copy(subscribers, w.subscribers)
	w.mu.Unlock()

	for _, subscriber := range subscribers {
		subscriber(config)
	}
	return nil
}

// Subscribe registers fn to receive every accepted configuration.
func (w *Watcher) Subscribe(fn func(*Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.subscribers = append(w.subscribers, fn)
}

// Current returns the last accepted configuration.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}
