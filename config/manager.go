package config

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const configFileName = "config.json"

// Change describes one accepted config update. Keys holds the json names of
// the fields that differ, in struct order.
type Change struct {
	Previous Config
	Current  Config
	Keys     []string
}

// Touches reports whether any of keys changed.
func (c Change) Touches(keys ...string) bool {
	for _, k := range keys {
		if slices.Contains(c.Keys, k) {
			return true
		}
	}
	return false
}

// Manager persists the config file, validates every update and reports
// what changed to the watcher callback. Writes made by the manager itself
// are recognised by content and never echo back as reloads.
type Manager struct {
	path     string
	debounce time.Duration
	logger   zerolog.Logger

	mu       sync.RWMutex
	cfg      Config
	written  [sha256.Size]byte
	onChange func(Change)
	watching bool
}

type managerOptions struct {
	configPath    string
	initialConfig *Config
	debounce      time.Duration
	logger        zerolog.Logger
}

type ManagerOption func(*managerOptions)

func WithConfigDir(dir string) ManagerOption {
	return func(o *managerOptions) {
		if dir != "" {
			o.configPath = filepath.Join(dir, configFileName)
		}
	}
}

func WithConfigPath(path string) ManagerOption {
	return func(o *managerOptions) {
		if path != "" {
			o.configPath = path
		}
	}
}

// WithInitialConfig seeds a config file that does not exist yet. An
// existing file always wins.
func WithInitialConfig(cfg *Config) ManagerOption {
	return func(o *managerOptions) {
		o.initialConfig = cfg
	}
}

func WithDebounce(d time.Duration) ManagerOption {
	return func(o *managerOptions) {
		if d > 0 {
			o.debounce = d
		}
	}
}

func WithLogger(l zerolog.Logger) ManagerOption {
	return func(o *managerOptions) {
		o.logger = l
	}
}

func NewManager(opts ...ManagerOption) (*Manager, error) {
	o := managerOptions{
		debounce: 300 * time.Millisecond,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.configPath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			if dir, err = os.Getwd(); err != nil {
				return nil, err
			}
		}
		o.configPath = filepath.Join(dir, "FinSage", configFileName)
	}
	if err := os.MkdirAll(filepath.Dir(o.configPath), 0o755); err != nil {
		return nil, fmt.Errorf("create config dir: %w", err)
	}

	m := &Manager{
		path:     o.configPath,
		debounce: o.debounce,
		logger:   o.logger.With().Str("component", "config").Logger(),
	}

	data, err := os.ReadFile(m.path)
	switch {
	case err == nil:
		cfg, err := m.decode(data)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		m.cfg = cfg
		m.written = sha256.Sum256(data)
	case errors.Is(err, os.ErrNotExist):
		cfg := *DefaultConfigWithRoot(filepath.Dir(m.path))
		if o.initialConfig != nil {
			cfg = *o.initialConfig
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		if err := m.persist(cfg); err != nil {
			return nil, fmt.Errorf("write initial config: %w", err)
		}
		m.cfg = cfg
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}
	return m, nil
}

func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

func (m *Manager) Path() string {
	return m.path
}

// UpdateFromJSON applies a full or partial JSON document on top of the
// current config. Keys absent from the document keep their values.
func (m *Manager) UpdateFromJSON(jsonStr string) error {
	cfg := m.Get()
	if err := json.Unmarshal([]byte(jsonStr), &cfg); err != nil {
		return fmt.Errorf("parse config json: %w", err)
	}
	return m.Update(cfg)
}

// Update validates cfg, writes it and notifies the watcher. An update that
// changes nothing is a no-op.
func (m *Manager) Update(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	change := diff(m.Get(), cfg)
	if len(change.Keys) == 0 {
		return nil
	}
	if err := m.persist(cfg); err != nil {
		return err
	}
	m.logger.Info().Strs("keys", change.Keys).Msg("config updated")
	m.apply(change)
	return nil
}

// Watch reloads the file after external edits and calls onChange with
// each accepted change until ctx is done. Invalid files are logged and
// ignored; a deleted file is restored from memory.
func (m *Manager) Watch(ctx context.Context, onChange func(Change)) error {
	m.mu.Lock()
	m.onChange = onChange
	if m.watching {
		m.mu.Unlock()
		return nil
	}
	m.watching = true
	m.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		// The directory is watched so atomic renames are seen.
		if err = watcher.Add(filepath.Dir(m.path)); err != nil {
			watcher.Close()
			err = fmt.Errorf("watch config dir: %w", err)
		}
	}
	if err != nil {
		m.mu.Lock()
		m.watching = false
		m.mu.Unlock()
		return err
	}
	go m.watchLoop(ctx, watcher)
	return nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	timer := time.NewTimer(m.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(m.path) {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			timer.Reset(m.debounce)
		case <-timer.C:
			m.reload()
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("config watcher error")
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reload() {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		m.logger.Warn().Str("path", m.path).Msg("config file removed, restoring")
		if err := m.persist(m.Get()); err != nil {
			m.logger.Error().Err(err).Msg("config restore failed")
		}
		return
	}
	if err != nil {
		m.logger.Error().Err(err).Msg("config reload failed")
		return
	}

	m.mu.RLock()
	own := sha256.Sum256(data) == m.written
	m.mu.RUnlock()
	if own {
		return
	}

	cfg, err := m.decode(data)
	if err != nil {
		m.logger.Warn().Err(err).Msg("ignoring invalid config on disk")
		return
	}
	change := diff(m.Get(), cfg)
	m.mu.Lock()
	m.written = sha256.Sum256(data)
	m.mu.Unlock()
	if len(change.Keys) == 0 {
		return
	}
	m.logger.Info().Str("path", m.path).Strs("keys", change.Keys).Msg("config reloaded")
	m.apply(change)
}

func (m *Manager) apply(change Change) {
	m.mu.Lock()
	m.cfg = change.Current
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(change)
	}
}

// decode reads data over the built-in defaults so keys missing from older
// files keep their default values, then validates the result.
func (m *Manager) decode(data []byte) (Config, error) {
	cfg := *DefaultConfigWithRoot(filepath.Dir(m.path))
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", m.path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// persist writes cfg through a temp file and rename and remembers the
// written bytes.
func (m *Manager) persist(cfg Config) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	data := buf.Bytes()

	tmp, err := os.CreateTemp(filepath.Dir(m.path), "cfg-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmp.Name(), m.path); err != nil {
		return fmt.Errorf("replace config: %w", err)
	}
	m.mu.Lock()
	m.written = sha256.Sum256(data)
	m.mu.Unlock()
	return nil
}

// diff lists the json keys whose values differ between prev and next.
func diff(prev, next Config) Change {
	change := Change{Previous: prev, Current: next}
	pv, nv := reflect.ValueOf(prev), reflect.ValueOf(next)
	t := pv.Type()
	for i := 0; i < t.NumField(); i++ {
		key, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if key == "" || key == "-" {
			continue
		}
		if !reflect.DeepEqual(pv.Field(i).Interface(), nv.Field(i).Interface()) {
			change.Keys = append(change.Keys, key)
		}
	}
	return change
}
