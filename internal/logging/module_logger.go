package logging

import (
	"context"

	"github.com/goliatone/go-appcatalog/pkg/interfaces"
)

const (
	rootModule         = "catalog"
	environmentsModule = "catalog.environments"
	sessionsModule     = "catalog.sessions"
	deploymentsModule  = "catalog.deployments"
	resultsModule      = "catalog.results"
	engineModule       = "catalog.engine"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// EnvironmentsLogger returns the logger namespace reserved for environment services.
func EnvironmentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, environmentsModule)
}

// SessionsLogger returns the logger namespace reserved for session services.
func SessionsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, sessionsModule)
}

// DeploymentsLogger returns the logger namespace reserved for deployment reporting.
func DeploymentsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, deploymentsModule)
}

// ResultsLogger returns the logger namespace reserved for the result reconciler.
func ResultsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, resultsModule)
}

// EngineLogger returns the logger namespace reserved for engine dispatch.
func EngineLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, engineModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
