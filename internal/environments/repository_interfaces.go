package environments

import (
	"context"
	"fmt"

	catalogenvs "github.com/goliatone/go-appcatalog/environments"
	"github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

// Environment re-exports the shared aggregate type for package-local use.
type Environment = catalogenvs.Environment

// Status re-exports the derived environment status type and its values.
type Status = catalogenvs.Status

const (
	StatusReady         = catalogenvs.StatusReady
	StatusPending       = catalogenvs.StatusPending
	StatusDeploying     = catalogenvs.StatusDeploying
	StatusDeleting      = catalogenvs.StatusDeleting
	StatusDeployFailure = catalogenvs.StatusDeployFailure
	StatusDeleteFailure = catalogenvs.StatusDeleteFailure
)

// DeriveStatus re-exports the status derivation scan.
var DeriveStatus = catalogenvs.DeriveStatus

// EnvironmentRepository exposes persistence operations for environments.
type EnvironmentRepository interface {
	Create(ctx context.Context, env *Environment) (*Environment, error)
	Update(ctx context.Context, env *Environment) (*Environment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Environment, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Environment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// SessionIndex is the narrow view of session storage the environment service
// needs: session listing in authority order and point reads for
// session-aware description access.
type SessionIndex interface {
	// ListForEnvironment returns every session of the environment ordered by
	// (version desc, updated desc). The status deriver depends on exactly
	// this order.
	ListForEnvironment(ctx context.Context, environmentID uuid.UUID) ([]*sessions.Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*sessions.Session, error)
	Update(ctx context.Context, session *sessions.Session) (*sessions.Session, error)
}

// NotFoundError is returned when an environment cannot be located.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}
