package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// Configfile is the path of the configuration file. It can be overwritten before Load.
var Configfile = "./config/config.toml"

// PageSizes are the page sizes offered by the grid.
var PageSizes = []int{5, 10, 20, 50}

// ConfigurationError represents configuration-related errors.
type ConfigurationError struct {
	Type    string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Type, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// Defaults returns the configuration written when no config file exists.
func Defaults() MainConfig {
	return MainConfig{
		General: GeneralConfig{
			LogLevel:      "info",
			LogFile:       "./logs/admin.log",
			LogFileSize:   10,
			LogFileCount:  5,
			TimeFormat:    "rfc3339",
			TimeZone:      "local",
			WebPort:       "9090",
			WorkerLookups: 4,
			StatsCron:     "@every 5m",
			EnableMetrics: true,
		},
		Backend: BackendConfig{
			BaseURL:                      "http://localhost:8000",
			TimeoutSeconds:               15,
			RateLimit:                    20,
			RateLimitBurst:               40,
			CircuitBreakerFailures:       5,
			CircuitBreakerTimeoutSeconds: 30,
			UserAgent:                    "go_portfolio_admin",
		},
		Console: ConsoleConfig{
			Title:             "Portfolio Admin",
			DefaultPageSize:   10,
			SessionTTLMinutes: 60,
			MaxSessions:       1000,
			CookieName:        "admin_session",
		},
	}
}

// Load reads Configfile, creating it with defaults if it does not exist,
// validates it and stores it as the current snapshot.
func Load() error {
	if _, err := os.Stat(Configfile); errors.Is(err, os.ErrNotExist) {
		if err := WriteCfg(Defaults()); err != nil {
			return err
		}
	}

	cfg, err := Readconfigtoml()
	if err != nil {
		return err
	}
	return Apply(cfg)
}

// Readconfigtoml reads and decodes Configfile. Missing keys keep their default value.
func Readconfigtoml() (*MainConfig, error) {
	content, err := os.ReadFile(Configfile)
	if err != nil {
		return nil, &ConfigurationError{
			Type:    "read",
			Message: fmt.Sprintf("failed to open config file '%s'", Configfile),
			Cause:   err,
		}
	}

	cfg := Defaults()
	if err := toml.NewDecoder(bytes.NewReader(content)).Decode(&cfg); err != nil {
		return nil, &ConfigurationError{
			Type:    "decode",
			Message: "failed to decode TOML config",
			Cause:   err,
		}
	}

	return &cfg, nil
}

// WriteCfg marshals cfg to Configfile, creating the directory when needed.
func WriteCfg(cfg MainConfig) error {
	cnt, err := toml.Marshal(&cfg)
	if err != nil {
		return &ConfigurationError{Type: "encode", Message: "failed to encode config", Cause: err}
	}
	if dir := filepath.Dir(Configfile); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &ConfigurationError{Type: "write", Message: "failed to create config dir", Cause: err}
		}
	}
	if err := os.WriteFile(Configfile, cnt, 0o644); err != nil {
		return &ConfigurationError{Type: "write", Message: "failed to write config file", Cause: err}
	}
	return nil
}

// validateConfiguration corrects out of range values and rejects unusable ones.
func validateConfiguration(cfg *MainConfig) error {
	if cfg == nil {
		return &ConfigurationError{Type: "validation", Message: "configuration is nil"}
	}

	if cfg.General.LogLevel == "" {
		cfg.General.LogLevel = "info"
	}
	if cfg.General.WebPort == "" {
		cfg.General.WebPort = "9090"
	}
	if cfg.General.WorkerLookups <= 0 {
		cfg.General.WorkerLookups = 1
	}
	if cfg.Backend.TimeoutSeconds <= 0 {
		cfg.Backend.TimeoutSeconds = 15
	}
	if !slices.Contains(PageSizes, cfg.Console.DefaultPageSize) {
		cfg.Console.DefaultPageSize = 10
	}
	if cfg.Console.SessionTTLMinutes <= 0 {
		cfg.Console.SessionTTLMinutes = 60
	}
	if cfg.Console.MaxSessions <= 0 {
		cfg.Console.MaxSessions = 1000
	}
	if cfg.Console.CookieName == "" {
		cfg.Console.CookieName = "admin_session"
	}

	if cfg.Backend.BaseURL == "" {
		return &ConfigurationError{Type: "validation", Message: "backend base_url must be set"}
	}
	if cfg.Backend.RateLimit < 0 || cfg.Backend.CircuitBreakerFailures < 0 {
		return &ConfigurationError{Type: "validation", Message: "backend limits must not be negative"}
	}
	return nil
}
