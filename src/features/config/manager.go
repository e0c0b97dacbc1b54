package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Manager holds the application configuration and provides thread-safe access to it.
type Manager struct {
	mu     sync.RWMutex
	config *Config
}

// NewManager creates a new config Manager.
func NewManager(config *Config) *Manager {
	return &Manager{config: config}
}

// Get returns the current configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Update replaces the configuration.
func (m *Manager) Update(config *Config) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldConfig := m.config
	m.config = config

	if oldConfig != nil {
		slog.Debug("Configuration updated",
			"source_path_changed", oldConfig.SourcePath != config.SourcePath,
			"destination_path_changed", oldConfig.DestinationPath != config.DestinationPath,
			"schedule_changed", oldConfig.Schedule != config.Schedule,
			"watch_enabled_changed", oldConfig.Watch.Enabled != config.Watch.Enabled,
		)
	}
}

// Save writes the current configuration to the specified file path.
func (m *Manager) Save(path string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	file, err := os.Create(path)
	if err != nil {
		slog.Error("failed to create config file", "path", path, "error", err)
		return err
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	if err := encoder.Encode(m.config); err != nil {
		slog.Error("failed to encode config", "path", path, "error", err)
		return err
	}

	slog.Info("Configuration saved successfully", "path", path)
	return nil
}

// CheckPaths verifies the source directory exists and creates the
// destination directory if it is absent. A missing source is a startup
// failure; a missing destination is not.
func (m *Manager) CheckPaths() error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	info, err := os.Stat(cfg.SourcePath)
	if err != nil {
		return fmt.Errorf("source directory %s: %w", cfg.SourcePath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("source path %s is not a directory", cfg.SourcePath)
	}

	if err := os.MkdirAll(cfg.DestinationPath, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", cfg.DestinationPath, err)
	}

	slog.Info("Sync directories verified", "source", cfg.SourcePath, "destination", cfg.DestinationPath)
	return nil
}

// redactedCfg gets a redacted copy of the Config
func (m *Manager) redactedCfg() Config {
	var cfgCpy = *m.Get()
	if cfgCpy.Telegram.Token != "" {
		cfgCpy.Telegram.Token = "<redacted>"
	}
	return cfgCpy
}

// GetJSON returns the current configuration as a JSON string.
func (m *Manager) GetJSON() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	jsonBytes, err := json.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to JSON", "error", err)
		return err.Error()
	}
	return string(jsonBytes)
}

// GetYAML returns the current configuration as a YAML string.
func (m *Manager) GetYAML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	yamlBytes, err := yaml.Marshal(m.redactedCfg())
	if err != nil {
		slog.Error("failed to marshal config to YAML", "error", err)
		return err.Error()
	}
	return string(yamlBytes)
}
