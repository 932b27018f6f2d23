package monitor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

type ConfigCache struct {
	monitorsDir string
	cache       map[string]*Config
	mu          sync.RWMutex
}

func NewConfigCache(monitorsDir string) *ConfigCache {
	return &ConfigCache{
		monitorsDir: monitorsDir,
		cache:       make(map[string]*Config),
	}
}

func (cc *ConfigCache) Run() error {
	if _, err := os.Stat(cc.monitorsDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(cc.monitorsDir, "*.yml"))
	if err != nil {
		return fmt.Errorf("failed to find YML files: %w", err)
	}

	for _, file := range files {
		// Derive monitor name from filename (remove .yml extension)
		fileName := filepath.Base(file)
		monitorName := fileName[:len(fileName)-4]

		config, err := cc.LoadConfig(monitorName)
		if err != nil {
			return fmt.Errorf("error loading %s: %w", file, err)
		}

		slog.Debug("Configuration loaded", "monitor", monitorName, "enabled", config.Settings.Enabled, "refresh_interval", config.Settings.RefreshInterval)
	}

	return nil
}

func (cc *ConfigCache) LoadConfig(monitorName string) (*Config, error) {
	configFile := cc.getConfigFilePath(monitorName)
	monitorConfig, err := cc.parseConfig(configFile)
	if err != nil {
		return nil, err
	}

	// Set monitor name from parameter
	monitorConfig.Name = monitorName

	if err := cc.validateConfig(monitorConfig); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configFile, err)
	}

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.cache[monitorConfig.Name] = monitorConfig

	return monitorConfig, nil
}

func (cc *ConfigCache) GetConfig(monitorName string) (*Config, error) {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	monitorConfig, ok := cc.cache[monitorName]
	if !ok {
		return nil, fmt.Errorf("monitor config with name '%s' not found", monitorName)
	}
	return monitorConfig, nil
}

func (cc *ConfigCache) GetConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	configsCopy := make(map[string]*Config, len(cc.cache))
	for k, v := range cc.cache {
		configsCopy[k] = v
	}
	return configsCopy
}

func (cc *ConfigCache) GetEnabledConfigs() map[string]*Config {
	cc.mu.RLock()
	defer cc.mu.RUnlock()

	enabledConfigs := make(map[string]*Config)
	for k, v := range cc.cache {
		if v.Settings.Enabled {
			enabledConfigs[k] = v
		}
	}
	return enabledConfigs
}

func (cc *ConfigCache) GetConfigCount() int {
	cc.mu.RLock()
	defer cc.mu.RUnlock()
	return len(cc.cache)
}

func (cc *ConfigCache) parseConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var monitorConfig Config
	if err := yaml.Unmarshal(data, &monitorConfig); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if monitorConfig.Settings.RefreshInterval == 0 {
		monitorConfig.Settings.RefreshInterval = 3600
	}
	if monitorConfig.Settings.MaxItems == 0 {
		monitorConfig.Settings.MaxItems = 100
	}
	if monitorConfig.Settings.Timeout == 0 {
		monitorConfig.Settings.Timeout = 30
	}

	return &monitorConfig, nil
}

func (cc *ConfigCache) validateConfig(monitorConfig *Config) error {
	if monitorConfig == nil {
		return fmt.Errorf("monitorConfig is nil")
	}

	requiredFields := map[string]string{
		"monitor name": monitorConfig.Name,
		"search term":  monitorConfig.Term,
		"owner":        monitorConfig.Owner,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"refresh interval": monitorConfig.Settings.RefreshInterval,
		"max items":        monitorConfig.Settings.MaxItems,
		"timeout":          monitorConfig.Settings.Timeout,
	}

	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	return nil
}

func (cc *ConfigCache) getConfigFilePath(monitorName string) string {
	return filepath.Join(cc.monitorsDir, monitorName+".yml")
}
