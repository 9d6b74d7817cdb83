package deployments

import (
	"context"
	"errors"

	"github.com/goliatone/go-appcatalog/internal/logging"
	"github.com/goliatone/go-appcatalog/objects"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	"github.com/google/uuid"
)

var (
	// ErrDeploymentNotFound indicates the deployment does not exist.
	ErrDeploymentNotFound = errors.New("deployment not found")
	// ErrDeploymentMismatch indicates the deployment belongs to a different environment.
	ErrDeploymentMismatch = errors.New("deployment does not belong to environment")
	// ErrResultNotFound indicates no completed task result exists for the id.
	ErrResultNotFound = errors.New("task result not found")
)

// Service exposes deployment history and task results for an environment.
type Service interface {
	ListDeployments(ctx context.Context, environmentID uuid.UUID) ([]*Deployment, error)
	ListStatuses(ctx context.Context, environmentID, deploymentID uuid.UUID) ([]*Status, error)
	GetResult(ctx context.Context, environmentID, taskID uuid.UUID) (objects.Document, error)
}

type service struct {
	deployments DeploymentRepository
	statuses    StatusRepository
	sanitizer   *objects.Sanitizer
	logger      interfaces.Logger
}

// ServiceOption configures the deployments service.
type ServiceOption func(*service)

// WithLoggerProvider wires structured logging into the service.
func WithLoggerProvider(provider interfaces.LoggerProvider) ServiceOption {
	return func(s *service) {
		if provider != nil {
			s.logger = logging.DeploymentsLogger(provider)
		}
	}
}

// NewService builds the deployments reporting service.
func NewService(deployments DeploymentRepository, statuses StatusRepository, opts ...ServiceOption) Service {
	svc := &service{
		deployments: deployments,
		statuses:    statuses,
		sanitizer:   objects.DefaultSanitizer,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func (s *service) ListDeployments(ctx context.Context, environmentID uuid.UUID) ([]*Deployment, error) {
	deployments, err := s.deployments.ListForEnvironment(ctx, environmentID)
	if err != nil {
		return nil, err
	}
	for _, deployment := range deployments {
		deployment.Description = s.patchDescription(deployment.Description)
	}
	return deployments, nil
}

func (s *service) ListStatuses(ctx context.Context, environmentID, deploymentID uuid.UUID) ([]*Status, error) {
	if _, err := s.verifyDeployment(ctx, environmentID, deploymentID); err != nil {
		return nil, err
	}
	return s.statuses.ListForDeployment(ctx, deploymentID)
}

func (s *service) GetResult(ctx context.Context, environmentID, taskID uuid.UUID) (objects.Document, error) {
	deployment, err := s.deployments.GetByID(ctx, taskID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, ErrResultNotFound
		}
		return nil, err
	}
	if deployment.EnvironmentID != environmentID {
		return nil, ErrResultNotFound
	}
	if deployment.Result == nil {
		return nil, ErrResultNotFound
	}
	return objects.Clone(deployment.Result), nil
}

func (s *service) verifyDeployment(ctx context.Context, environmentID, deploymentID uuid.UUID) (*Deployment, error) {
	deployment, err := s.deployments.GetByID(ctx, deploymentID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			s.logger.Error("deployment not found", "deployment_id", deploymentID)
			return nil, ErrDeploymentNotFound
		}
		return nil, err
	}
	if deployment.EnvironmentID != environmentID {
		s.logger.Error("deployment not found in environment",
			"deployment_id", deploymentID,
			"environment_id", environmentID,
		)
		return nil, ErrDeploymentMismatch
	}
	return deployment, nil
}

// patchDescription renames the engine-facing applications list back to
// services and masks credentials before the description leaves the service.
func (s *service) patchDescription(description objects.Document) objects.Document {
	if description == nil {
		description = objects.Document{}
	}
	patched := objects.Clone(description)
	applications := patched[objects.KeyApplications]
	delete(patched, objects.KeyApplications)
	if applications == nil {
		applications = []any{}
	}
	patched[objects.KeyServices] = applications
	return s.sanitizer.Sanitize(patched).(objects.Document)
}
