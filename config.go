package appcatalog

import "github.com/goliatone/go-appcatalog/internal/runtimeconfig"

var (
	ErrDatabaseDriverUnknown  = runtimeconfig.ErrDatabaseDriverUnknown
	ErrNetworkDriverUnknown   = runtimeconfig.ErrNetworkDriverUnknown
	ErrDeployTimeoutInvalid   = runtimeconfig.ErrDeployTimeoutInvalid
	ErrPollIntervalInvalid    = runtimeconfig.ErrPollIntervalInvalid
	ErrLoggingProviderMissing = runtimeconfig.ErrLoggingProviderMissing
	ErrLoggingProviderUnknown = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid    = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid   = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config           = runtimeconfig.Config
	DatabaseConfig   = runtimeconfig.DatabaseConfig
	CacheConfig      = runtimeconfig.CacheConfig
	NetworkingConfig = runtimeconfig.NetworkingConfig
	DeployConfig     = runtimeconfig.DeployConfig
	Features         = runtimeconfig.Features
	LoggingConfig    = runtimeconfig.LoggingConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
