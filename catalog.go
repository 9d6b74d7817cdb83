// Package appcatalog exposes the application-catalog core: tenant-owned
// environments, session-scoped draft editing with optimistic concurrency,
// deployment submission towards an orchestration engine and asynchronous
// result reconciliation.
package appcatalog

import (
	"github.com/goliatone/go-appcatalog/internal/actions"
	deploycmd "github.com/goliatone/go-appcatalog/internal/commands/deploy"
	"github.com/goliatone/go-appcatalog/internal/deployments"
	"github.com/goliatone/go-appcatalog/internal/di"
	"github.com/goliatone/go-appcatalog/internal/environments"
	"github.com/goliatone/go-appcatalog/internal/locks"
	"github.com/goliatone/go-appcatalog/internal/results"
	"github.com/goliatone/go-appcatalog/internal/sessions"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
)

// EnvironmentService exports the environment service contract.
type EnvironmentService = environments.Service

// SessionService exports the session service contract.
type SessionService = sessions.Service

// DeploymentService exports the deployment read service contract.
type DeploymentService = deployments.Service

// ActionService exports the deploy/action submission contract.
type ActionService = actions.Service

// ResultReconciler exports the engine result reconciliation contract.
type ResultReconciler = results.Reconciler

// DeployEnvironmentCommand exports the deployment submission message for
// hosts driving the module through a command bus.
type DeployEnvironmentCommand = deploycmd.DeployEnvironmentCommand

// ExecuteActionCommand exports the action execution message.
type ExecuteActionCommand = deploycmd.ExecuteActionCommand

// DeployEnvironmentHandler exports the command handler for DeployEnvironmentCommand.
type DeployEnvironmentHandler = deploycmd.DeployEnvironmentHandler

// ExecuteActionHandler exports the command handler for ExecuteActionCommand.
type ExecuteActionHandler = deploycmd.ExecuteActionHandler

// Module is the top level catalog runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a catalog module using the provided configuration and
// optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Environments returns the configured environment service.
func (m *Module) Environments() EnvironmentService {
	return m.container.EnvironmentService()
}

// Sessions returns the configured session service.
func (m *Module) Sessions() SessionService {
	return m.container.SessionService()
}

// Deployments returns the configured deployment read service.
func (m *Module) Deployments() DeploymentService {
	return m.container.DeploymentService()
}

// Actions returns the configured action service.
func (m *Module) Actions() ActionService {
	return m.container.ActionService()
}

// Results returns the engine result reconciler. Host applications route the
// engine's result and report callbacks through it.
func (m *Module) Results() ResultReconciler {
	return m.container.Reconciler()
}

// Poller returns the deploy-wait helper bound to the environment service.
func (m *Module) Poller() *environments.StatusPoller {
	return m.container.StatusPoller()
}

// Locks returns the named-lock manager. The core services do not take these
// locks themselves; hosts use the manager to serialize work they must run at
// most once across replicas, such as draining engine result queues.
func (m *Module) Locks() locks.Manager {
	return m.container.LockManager()
}

// DeployCommand returns the handler that submits DeployEnvironmentCommand
// messages through the session service.
func (m *Module) DeployCommand() *DeployEnvironmentHandler {
	return m.container.DeployCommandHandler()
}

// ExecuteActionCommandHandler returns the handler that submits
// ExecuteActionCommand messages through the action service.
func (m *Module) ExecuteActionCommandHandler() *ExecuteActionHandler {
	return m.container.ExecuteActionCommandHandler()
}

// Dispatcher returns the engine transport the module submits tasks through.
func (m *Module) Dispatcher() interfaces.Dispatcher {
	return m.container.Dispatcher()
}
