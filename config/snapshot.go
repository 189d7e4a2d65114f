package config

import (
	"sync"
	"sync/atomic"
	"time"
)

// ConfigSnapshot represents a complete, validated configuration.
type ConfigSnapshot struct {
	General     GeneralConfig
	Backend     BackendConfig
	Console     ConsoleConfig
	ValidatedAt time.Time
}

var (
	configSnapshot atomic.Pointer[ConfigSnapshot]

	// reloadMutex serializes Apply calls; readers never take it.
	reloadMutex sync.Mutex
)

// Apply validates cfg and makes it the current snapshot.
func Apply(cfg *MainConfig) error {
	reloadMutex.Lock()
	defer reloadMutex.Unlock()

	if err := validateConfiguration(cfg); err != nil {
		return err
	}
	configSnapshot.Store(&ConfigSnapshot{
		General:     cfg.General,
		Backend:     cfg.Backend,
		Console:     cfg.Console,
		ValidatedAt: time.Now(),
	})
	return nil
}

func getCurrentConfig() *ConfigSnapshot {
	if s := configSnapshot.Load(); s != nil {
		return s
	}
	d := Defaults()
	return &ConfigSnapshot{General: d.General, Backend: d.Backend, Console: d.Console}
}

func GetSettingsGeneral() GeneralConfig {
	return getCurrentConfig().General
}

func GetSettingsBackend() BackendConfig {
	return getCurrentConfig().Backend
}

func GetSettingsConsole() ConsoleConfig {
	return getCurrentConfig().Console
}
