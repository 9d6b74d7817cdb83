package deployments

import (
	"context"
	"fmt"

	catalogdeployments "github.com/goliatone/go-appcatalog/deployments"
	"github.com/google/uuid"
)

// Deployment and Status re-export the shared record types.
type (
	Deployment = catalogdeployments.Deployment
	Status     = catalogdeployments.Status
)

// Status levels, re-exported for callers working through this package.
const (
	LevelInfo    = catalogdeployments.LevelInfo
	LevelWarning = catalogdeployments.LevelWarning
	LevelError   = catalogdeployments.LevelError
)

// DeploymentRepository exposes persistence operations for deployments.
type DeploymentRepository interface {
	Create(ctx context.Context, deployment *Deployment) (*Deployment, error)
	Update(ctx context.Context, deployment *Deployment) (*Deployment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Deployment, error)
	ListForEnvironment(ctx context.Context, environmentID uuid.UUID) ([]*Deployment, error)
	// LatestStarted returns the most recently started deployment of the
	// environment; progress notifications and result reconciliation both
	// resolve their deployment this way.
	LatestStarted(ctx context.Context, environmentID uuid.UUID) (*Deployment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// StatusRepository exposes the append-only status log.
type StatusRepository interface {
	Append(ctx context.Context, status *Status) (*Status, error)
	ListForDeployment(ctx context.Context, deploymentID uuid.UUID) ([]*Status, error)
	CountByLevel(ctx context.Context, deploymentID uuid.UUID, level string) (int, error)
}

// NotFoundError is returned when a deployment cannot be located.
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
