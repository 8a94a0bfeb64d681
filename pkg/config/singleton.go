package config

import (
	"fmt"
	"sync"
)

var (
	// globalConfig holds the process-wide configuration.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once

	// configPath remembers the file passed to Initialize for Reload.
	configPath string
)

// Initialize loads configuration from path with environment variable
// overrides and stores it as the process-wide configuration.
// Only the first call has any effect.
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configPath = path
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the process-wide configuration, or nil before a
// successful Initialize. Safe for concurrent use.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig replaces the process-wide configuration. Intended for tests.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}

// ReloadConfig reloads the configuration from path. The running
// configuration is replaced only if the new file loads and validates;
// otherwise it stays in effect and the error is returned.
//
// An empty path reloads the file given to Initialize.
func ReloadConfig(path string) error {
	if path == "" {
		configMutex.RLock()
		path = configPath
		configMutex.RUnlock()
	}
	if path == "" {
		return fmt.Errorf("failed to reload configuration: no configuration file")
	}

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		return fmt.Errorf("failed to reload configuration: %w", err)
	}

	configMutex.Lock()
	globalConfig = cfg
	configPath = path
	configMutex.Unlock()

	return nil
}

// MustGetConfig is like GetConfig but panics if the configuration has not
// been initialized.
func MustGetConfig() *Config {
	cfg := GetConfig()
	if cfg == nil {
		panic("configuration not initialized: call Initialize first")
	}
	return cfg
}
