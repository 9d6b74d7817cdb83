// Package runtimeconfig aggregates the runtime settings of the catalog
// module. Fields use simple types so host applications can bind them from
// whatever configuration source they already use.
package runtimeconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-appcatalog/internal/environments"
	goerrors "github.com/goliatone/go-errors"
)

var (
	ErrDatabaseDriverUnknown  = goerrors.New("catalog config: database driver is invalid", goerrors.CategoryValidation)
	ErrNetworkDriverUnknown   = goerrors.New("catalog config: default network driver is invalid", goerrors.CategoryValidation)
	ErrDeployTimeoutInvalid   = goerrors.New("catalog config: deploy wait timeout must be positive", goerrors.CategoryValidation)
	ErrPollIntervalInvalid    = goerrors.New("catalog config: poll interval must be positive", goerrors.CategoryValidation)
	ErrLoggingProviderMissing = goerrors.New("catalog config: logging provider is required when logging is enabled", goerrors.CategoryValidation)
	ErrLoggingProviderUnknown = goerrors.New("catalog config: logging provider is invalid", goerrors.CategoryValidation)
	ErrLoggingLevelInvalid    = goerrors.New("catalog config: logging level is invalid", goerrors.CategoryValidation)
	ErrLoggingFormatInvalid   = goerrors.New("catalog config: logging format is invalid", goerrors.CategoryValidation)
)

// Config aggregates feature flags and adapter bindings for the catalog
// module.
type Config struct {
	Enabled    bool
	Database   DatabaseConfig
	Cache      CacheConfig
	Networking NetworkingConfig
	Deploy     DeployConfig
	Features   Features
	Logging    LoggingConfig
}

// DatabaseConfig names the storage backend.
type DatabaseConfig struct {
	Driver string
	DSN    string
}

// CacheConfig captures read-cache behaviour for the environment repository.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// NetworkingConfig controls the default networks stamped into new
// environment documents.
type NetworkingConfig struct {
	DefaultDriver string
}

// DeployConfig bounds the client-side deployment wait helper.
type DeployConfig struct {
	WaitTimeout  time.Duration
	PollInterval time.Duration
}

// Features toggles module functionality.
type Features struct {
	Cache   bool
	Metrics bool
	Logger  bool
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// DefaultConfig returns opinionated defaults: sqlite storage, neutron
// default networks and a console logger.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "file::memory:?cache=shared",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Networking: NetworkingConfig{
			DefaultDriver: "neutron",
		},
		Deploy: DeployConfig{
			WaitTimeout:  environments.DefaultWaitTimeout,
			PollInterval: 2 * time.Second,
		},
		Features: Features{},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(cfg.Database.Driver)) {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("%w: %s", ErrDatabaseDriverUnknown, cfg.Database.Driver)
	}

	if driver := strings.TrimSpace(cfg.Networking.DefaultDriver); driver != "" {
		if _, ok := environments.DefaultNetworkTypes[driver]; !ok {
			return fmt.Errorf("%w: %s", ErrNetworkDriverUnknown, driver)
		}
	}

	if cfg.Deploy.WaitTimeout <= 0 {
		return ErrDeployTimeoutInvalid
	}
	if cfg.Deploy.PollInterval <= 0 {
		return ErrPollIntervalInvalid
	}

	if cfg.Features.Logger {
		provider := normalizeProvider(cfg.Logging.Provider)
		if provider == "" {
			return ErrLoggingProviderMissing
		}
		if !isSupportedProvider(provider) {
			return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
		}
		if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
			return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
		}
		if provider == "gologger" {
			if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
				return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
			}
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
