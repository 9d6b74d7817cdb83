package runtimeconfig

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateDatabaseDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Database.Driver = "oracle"
	if err := cfg.Validate(); !errors.Is(err, ErrDatabaseDriverUnknown) {
		t.Fatalf("expected ErrDatabaseDriverUnknown, got %v", err)
	}

	cfg.Database.Driver = "postgres"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("postgres should be accepted: %v", err)
	}
}

func TestValidateNetworkDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Networking.DefaultDriver = "flannel"
	if err := cfg.Validate(); !errors.Is(err, ErrNetworkDriverUnknown) {
		t.Fatalf("expected ErrNetworkDriverUnknown, got %v", err)
	}

	cfg.Networking.DefaultDriver = "nova"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("nova should be accepted: %v", err)
	}
}

func TestValidateDeployTimings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Deploy.WaitTimeout = 0
	if err := cfg.Validate(); !errors.Is(err, ErrDeployTimeoutInvalid) {
		t.Fatalf("expected ErrDeployTimeoutInvalid, got %v", err)
	}

	cfg = DefaultConfig()
	cfg.Deploy.PollInterval = -time.Second
	if err := cfg.Validate(); !errors.Is(err, ErrPollIntervalInvalid) {
		t.Fatalf("expected ErrPollIntervalInvalid, got %v", err)
	}
}

func TestValidateLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Features.Logger = true
	cfg.Logging.Provider = ""
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderMissing) {
		t.Fatalf("expected ErrLoggingProviderMissing, got %v", err)
	}

	cfg.Logging.Provider = "syslog"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}

	cfg.Logging.Provider = "gologger"
	cfg.Logging.Level = "verbose"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}

	cfg.Logging.Level = "debug"
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); !errors.Is(err, ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}

	cfg.Logging.Format = "json"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid logging config: %v", err)
	}
}
