package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// DefaultConfigID is preferred as the default when present.
const DefaultConfigID = "eight-puzzle"

// extensions are tried in order when resolving a config ID.
var extensions = []string{".json", ".yaml", ".yml"}

// Manager handles puzzle configuration loading and caching
type Manager struct {
	configDir     string
	defaultID     string
	defaultConfig *engine.PuzzleConfig
	configs       map[string]*engine.PuzzleConfig
	mu            sync.RWMutex
}

// NewManager creates a new configuration manager
func NewManager(configDir string) (*Manager, error) {
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("config directory does not exist: %s", configDir)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*engine.PuzzleConfig),
	}
	m.loadDefaultConfig()
	return m, nil
}

func configID(filename string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range extensions {
		if ext == e {
			return strings.TrimSuffix(filename, filepath.Ext(filename)), true
		}
	}
	return "", false
}

// resolve finds the file backing id. An id that already carries a known
// extension is used as is.
func (m *Manager) resolve(id string) (string, string, error) {
	if base, ok := configID(id); ok {
		path := filepath.Join(m.configDir, id)
		if _, err := os.Stat(path); err == nil {
			return base, path, nil
		}
		return "", "", fmt.Errorf("%w: %s", ErrConfigNotFound, id)
	}

	for _, ext := range extensions {
		path := filepath.Join(m.configDir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return id, path, nil
		}
	}
	return "", "", fmt.Errorf("%w: %s", ErrConfigNotFound, id)
}

// LoadConfig loads a configuration by ID
func (m *Manager) LoadConfig(id string) (*engine.PuzzleConfig, error) {
	if strings.ContainsAny(id, `/\`) || id == "" || strings.HasPrefix(id, ".") {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, id)
	}

	m.mu.RLock()
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	base, path, err := m.resolve(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config, err := engine.DecodePuzzleConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, filepath.Base(path), err)
	}

	m.configs[base] = config
	m.configs[id] = config
	return config, nil
}

// ListConfigs returns every valid configuration sorted by ID. Invalid files
// are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	seen := make(map[string]bool)
	var configs []*service.ConfigInfo
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := configID(entry.Name())
		if !ok || seen[id] {
			continue
		}

		config, err := m.LoadConfig(id)
		if err != nil {
			continue
		}
		seen[id] = true
		configs = append(configs, Describe(entry.Name(), id, config))
	}

	sort.Slice(configs, func(i, j int) bool { return configs[i].ConfigID < configs[j].ConfigID })
	return configs, nil
}

// Describe builds the listing entry of a config.
func Describe(filename, id string, config *engine.PuzzleConfig) *service.ConfigInfo {
	info := &service.ConfigInfo{
		Filename:    filename,
		ConfigID:    id,
		Name:        config.Name,
		Description: config.Description,
		Kind:        config.Kind,
	}
	switch config.Kind {
	case engine.KindTiles:
		for info.Size*info.Size < len(config.Board) {
			info.Size++
		}
	case engine.KindPitchers:
		info.Pitchers = len(config.Capacities)
		info.Goal = config.Goal
	}
	return info
}

// GetDefault returns the default configuration and its ID
func (m *Manager) GetDefault() (string, *engine.PuzzleConfig) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultConfig
}

// SetDefault sets the default configuration by ID
func (m *Manager) SetDefault(id string) error {
	config, err := m.LoadConfig(id)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = id
	m.defaultConfig = config
	return nil
}

// RefreshCache drops every cached configuration and re-selects the default.
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.configs = make(map[string]*engine.PuzzleConfig)
	m.mu.Unlock()

	m.loadDefaultConfig()
}

// loadDefaultConfig prefers DefaultConfigID, then the first listed config,
// then engine.DefaultConfig.
func (m *Manager) loadDefaultConfig() {
	id, config := "default", engine.DefaultConfig()

	if c, err := m.LoadConfig(DefaultConfigID); err == nil {
		id, config = DefaultConfigID, c
	} else if infos, err := m.ListConfigs(); err == nil && len(infos) > 0 {
		if c, err := m.LoadConfig(infos[0].ConfigID); err == nil {
			id, config = infos[0].ConfigID, c
		}
	}

	m.mu.Lock()
	m.defaultID = id
	m.defaultConfig = config
	m.mu.Unlock()
}

// SaveConfig validates and writes a configuration. The ID's extension picks
// the format; JSON is used when it has none.
func (m *Manager) SaveConfig(id string, config *engine.PuzzleConfig) error {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: invalid config id %q", ErrInvalidConfig, id)
	}
	if err := engine.ValidatePuzzleConfig(config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	base, ok := configID(id)
	filename := id
	if !ok {
		base = id
		filename = id + ".json"
	}

	data, err := engine.EncodePuzzleConfig(config, filepath.Ext(filename))
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.configDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[base] = config
	m.mu.Unlock()

	return nil
}

// IsNotFound reports whether err means the config does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrConfigNotFound)
}

// Count returns the number of cached config entries.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.configs)
}
