// Package config loads and watches the psyche.yaml configuration file.
// The active configuration is an atomic snapshot; readers never block.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type Manager struct {
	configPtr atomic.Pointer[Config]
	path      string
	watchers  []func(*Config)
	watcherMu sync.RWMutex
	watchOnce sync.Once
	stopWatch chan struct{}
}

type Config struct {
	LLM        LLMConfig        `yaml:"llm"`
	Store      StoreConfig      `yaml:"store"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Dialogue   DialogueConfig   `yaml:"dialogue"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Session    SessionConfig    `yaml:"session"`
	Search     SearchConfig     `yaml:"search"`
}

type LLMConfig struct {
	DefaultProvider string        `yaml:"default_provider"`
	Model           string        `yaml:"model"`
	MaxTokens       int           `yaml:"max_tokens"`
	Timeout         time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	// Backend is one of "sqlite", "redis", "memory".
	Backend  string `yaml:"backend"`
	Path     string `yaml:"path"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"prefix"`
}

type TemplatesConfig struct {
	Dir string `yaml:"dir"`
}

type DialogueConfig struct {
	MaxTurns int    `yaml:"max_turns"`
	Greeting string `yaml:"greeting"`
}

type EvaluationConfig struct {
	// ChiefComplaintPolicy is "similarity" (LLM judge) or "exact".
	ChiefComplaintPolicy string `yaml:"chief_complaint_policy"`
	RubricVersion        string `yaml:"rubric_version"`
	GivenFormVersion     string `yaml:"given_form_version"`
}

type SessionConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

type SearchConfig struct {
	IndexPath string `yaml:"index_path"`
}

func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			DefaultProvider: "anthropic",
			MaxTokens:       4096,
			Timeout:         2 * time.Minute,
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    ".psyche/store.db",
		},
		Templates: TemplatesConfig{
			Dir: "templates",
		},
		Dialogue: DialogueConfig{
			MaxTurns: 100,
			Greeting: "Hello, I'm your psychiatrist today. How can I help you?",
		},
		Evaluation: EvaluationConfig{
			ChiefComplaintPolicy: "similarity",
			RubricVersion:        "1.0",
			GivenFormVersion:     "1.0",
		},
		Session: SessionConfig{
			IdleTimeout: 15 * time.Minute,
		},
		Search: SearchConfig{
			IndexPath: ".psyche/conversations.bleve",
		},
	}
}

// NewManager creates a manager for the config file at path. The manager
// starts with defaults; call Load to read the file.
func NewManager(path string) *Manager {
	m := &Manager{
		path:      path,
		stopWatch: make(chan struct{}),
	}
	m.configPtr.Store(DefaultConfig())
	return m
}

// Get returns the current configuration snapshot.
func (m *Manager) Get() *Config {
	return m.configPtr.Load()
}

// Load reads the config file over defaults and applies environment
// overrides. A missing file is not an error.
func (m *Manager) Load() error {
	cfg := DefaultConfig()

	data, err := os.ReadFile(m.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}

	m.applyEnvironment(cfg)

	if err := validate(cfg); err != nil {
		return err
	}

	m.configPtr.Store(cfg)
	m.notifyWatchers(cfg)
	return nil
}

func (m *Manager) applyEnvironment(cfg *Config) {
	if v := os.Getenv("PSYCHE_LLM_PROVIDER"); v != "" {
		cfg.LLM.DefaultProvider = v
	}
	if v := os.Getenv("PSYCHE_STORE_BACKEND"); v != "" {
		cfg.Store.Backend = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
	}
	if v := os.Getenv("PSYCHE_TEMPLATES_DIR"); v != "" {
		cfg.Templates.Dir = v
	}
}

func validate(cfg *Config) error {
	switch cfg.Store.Backend {
	case "sqlite", "redis", "memory":
	default:
		return fmt.Errorf("config: unknown store backend %q", cfg.Store.Backend)
	}
	switch cfg.Evaluation.ChiefComplaintPolicy {
	case "similarity", "exact":
	default:
		return fmt.Errorf("config: unknown chief complaint policy %q", cfg.Evaluation.ChiefComplaintPolicy)
	}
	if cfg.Dialogue.MaxTurns <= 0 {
		return fmt.Errorf("config: max_turns must be positive")
	}
	return nil
}

// OnChange registers a callback invoked after each successful Load.
func (m *Manager) OnChange(fn func(*Config)) {
	m.watcherMu.Lock()
	defer m.watcherMu.Unlock()
	m.watchers = append(m.watchers, fn)
}

func (m *Manager) notifyWatchers(cfg *Config) {
	m.watcherMu.RLock()
	defer m.watcherMu.RUnlock()
	for _, fn := range m.watchers {
		fn(cfg)
	}
}

// Watch starts a filesystem watcher that reloads the configuration when
// the file changes. Safe to call once; subsequent calls are no-ops.
func (m *Manager) Watch() error {
	var watchErr error
	m.watchOnce.Do(func() {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			watchErr = err
			return
		}
		if err := watcher.Add(filepath.Dir(m.path)); err != nil {
			watcher.Close()
			watchErr = err
			return
		}
		go m.watchLoop(watcher)
	})
	return watchErr
}

func (m *Manager) watchLoop(watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Name != m.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				// best-effort: a malformed edit keeps the last good snapshot
				_ = m.Load()
			}
		case <-watcher.Errors:
		case <-m.stopWatch:
			return
		}
	}
}

// Close stops the watcher.
func (m *Manager) Close() {
	close(m.stopWatch)
}
