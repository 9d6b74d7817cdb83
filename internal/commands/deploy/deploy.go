// Package deploycmd exposes deployment submission as go-command messages so
// host applications can queue or dispatch them through a command bus.
package deploycmd

import (
	"context"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-appcatalog/internal/actions"
	"github.com/goliatone/go-appcatalog/internal/commands"
	"github.com/goliatone/go-appcatalog/internal/logging"
	"github.com/goliatone/go-appcatalog/internal/sessions"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	deployEnvironmentMessageType = "catalog.environments.deploy"
	executeActionMessageType     = "catalog.actions.execute"
)

// DeployEnvironmentCommand submits an opened session for deployment.
type DeployEnvironmentCommand struct {
	SessionID uuid.UUID `json:"session_id"`
	Token     string    `json:"token"`
	ProjectID string    `json:"project_id"`
	UserID    string    `json:"user_id"`
}

// Type implements command.Message.
func (DeployEnvironmentCommand) Type() string { return deployEnvironmentMessageType }

// Validate ensures the command carries a session and caller identity.
func (m DeployEnvironmentCommand) Validate() error {
	errs := validation.Errors{}
	if m.SessionID == uuid.Nil {
		errs["session_id"] = validation.NewError("catalog.environments.deploy.session_id_required", "session_id is required")
	}
	if strings.TrimSpace(m.UserID) == "" {
		errs["user_id"] = validation.NewError("catalog.environments.deploy.user_id_required", "user_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m DeployEnvironmentCommand) credentials() interfaces.Credentials {
	return interfaces.Credentials{
		Token:     m.Token,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
	}
}

// DeployEnvironmentHandler deploys sessions through the session service.
type DeployEnvironmentHandler struct {
	inner *commands.Handler[DeployEnvironmentCommand]
}

// NewDeployEnvironmentHandler constructs the handler over a session service.
func NewDeployEnvironmentHandler(service sessions.Service, logger interfaces.Logger, opts ...commands.HandlerOption[DeployEnvironmentCommand]) *DeployEnvironmentHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg DeployEnvironmentCommand) error {
		_, err := service.Deploy(ctx, msg.SessionID, msg.credentials())
		return err
	}

	handlerOpts := append([]commands.HandlerOption[DeployEnvironmentCommand]{
		commands.WithLogger[DeployEnvironmentCommand](logger),
		commands.WithOperation[DeployEnvironmentCommand]("environments.deploy"),
	}, opts...)

	return &DeployEnvironmentHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *DeployEnvironmentHandler) Execute(ctx context.Context, msg DeployEnvironmentCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ExecuteActionCommand runs a declared object action on an environment.
type ExecuteActionCommand struct {
	EnvironmentID uuid.UUID      `json:"environment_id"`
	ActionID      string         `json:"action_id"`
	Args          map[string]any `json:"args,omitempty"`
	Token         string         `json:"token"`
	ProjectID     string         `json:"project_id"`
	UserID        string         `json:"user_id"`
}

// Type implements command.Message.
func (ExecuteActionCommand) Type() string { return executeActionMessageType }

// Validate ensures the command names an environment and an action.
func (m ExecuteActionCommand) Validate() error {
	errs := validation.Errors{}
	if m.EnvironmentID == uuid.Nil {
		errs["environment_id"] = validation.NewError("catalog.actions.execute.environment_id_required", "environment_id is required")
	}
	if strings.TrimSpace(m.ActionID) == "" {
		errs["action_id"] = validation.NewError("catalog.actions.execute.action_id_required", "action_id is required")
	}
	if strings.TrimSpace(m.UserID) == "" {
		errs["user_id"] = validation.NewError("catalog.actions.execute.user_id_required", "user_id is required")
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (m ExecuteActionCommand) credentials() interfaces.Credentials {
	return interfaces.Credentials{
		Token:     m.Token,
		ProjectID: m.ProjectID,
		UserID:    m.UserID,
	}
}

// ExecuteActionHandler submits actions through the actions service.
type ExecuteActionHandler struct {
	inner *commands.Handler[ExecuteActionCommand]
}

// NewExecuteActionHandler constructs the handler over an actions service.
func NewExecuteActionHandler(service actions.Service, logger interfaces.Logger, opts ...commands.HandlerOption[ExecuteActionCommand]) *ExecuteActionHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ExecuteActionCommand) error {
		_, err := service.Execute(ctx, msg.EnvironmentID, msg.ActionID, msg.Args, msg.credentials())
		return err
	}

	handlerOpts := append([]commands.HandlerOption[ExecuteActionCommand]{
		commands.WithLogger[ExecuteActionCommand](logger),
		commands.WithOperation[ExecuteActionCommand]("actions.execute"),
	}, opts...)

	return &ExecuteActionHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute implements command.Commander.
func (h *ExecuteActionHandler) Execute(ctx context.Context, msg ExecuteActionCommand) error {
	return h.inner.Execute(ctx, msg)
}
