package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	catalogdeps "github.com/goliatone/go-appcatalog/deployments"
	catalogenvs "github.com/goliatone/go-appcatalog/environments"
	"github.com/goliatone/go-appcatalog/internal/logging"
	"github.com/goliatone/go-appcatalog/objects"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

var (
	// ErrEnvironmentBusy rejects action execution while a deployment or
	// deletion is already running against the environment.
	ErrEnvironmentBusy = errors.New("actions: environment is deploying or deleting")
	// ErrActionNotFound indicates the object model declares no such action.
	ErrActionNotFound = errors.New("actions: action not found")
	// ErrActionDisabled indicates the action exists but is declared disabled.
	ErrActionDisabled = errors.New("actions: cannot execute disabled action")
	// ErrSessionInvalid indicates the implicit action session lost its
	// validity before the task could be submitted.
	ErrSessionInvalid = errors.New("actions: session is no longer valid")
)

// Service submits deployments, deletions and object actions to the engine.
// SubmitDeploy is the submitter the session service deploys through.
type Service interface {
	SubmitDeploy(ctx context.Context, env *catalogenvs.Environment, session *catalogsessions.Session, creds interfaces.Credentials) (uuid.UUID, error)
	Execute(ctx context.Context, environmentID uuid.UUID, actionID string, args map[string]any, creds interfaces.Credentials) (uuid.UUID, error)
	GetResult(ctx context.Context, environmentID, taskID uuid.UUID) (objects.Document, error)
}

// EnvironmentSource provides the environment lookups action execution needs.
type EnvironmentSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalogenvs.Environment, error)
	GetStatus(ctx context.Context, id uuid.UUID) (catalogenvs.Status, error)
}

// SessionBrancher opens and validates the implicit session an action
// executes under.
type SessionBrancher interface {
	OpenSession(ctx context.Context, environmentID uuid.UUID, userID string) (*catalogsessions.Session, error)
	Validate(ctx context.Context, session *catalogsessions.Session) (bool, error)
}

// ResultSource resolves completed task results.
type ResultSource interface {
	GetResult(ctx context.Context, environmentID, taskID uuid.UUID) (objects.Document, error)
}

// ServiceOption configures the actions service.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides deployment id generation (primarily for tests).
func WithIDGenerator(generate func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generate != nil {
			s.id = generate
		}
	}
}

// WithLoggerProvider wires structured logging into the service.
func WithLoggerProvider(provider interfaces.LoggerProvider) ServiceOption {
	return func(s *service) {
		if provider != nil {
			s.logger = logging.EngineLogger(provider)
		}
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(metrics interfaces.Metrics) ServiceOption {
	return func(s *service) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

type service struct {
	store      SubmissionStore
	dispatcher interfaces.Dispatcher
	envs       EnvironmentSource
	sessions   SessionBrancher
	results    ResultSource
	sanitizer  *objects.Sanitizer
	metrics    interfaces.Metrics
	id         func() uuid.UUID
	now        func() time.Time
	logger     interfaces.Logger
}

// NewService constructs the actions service. envs, sessions and results are
// only required for Execute/GetResult; SubmitDeploy needs the store and
// dispatcher alone.
func NewService(
	store SubmissionStore,
	dispatcher interfaces.Dispatcher,
	envs EnvironmentSource,
	sessions SessionBrancher,
	results ResultSource,
	opts ...ServiceOption,
) Service {
	s := &service{
		store:      store,
		dispatcher: dispatcher,
		envs:       envs,
		sessions:   sessions,
		results:    results,
		sanitizer:  objects.DefaultSanitizer,
		id:         uuid.New,
		now:        time.Now,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitDeploy turns a validated opened session into an engine task. The
// session moves to deploying (or deleting when the draft nulled the objects
// tree), the deployment row and its scheduled status line are written, and
// the task is dispatched; all of it stands or falls together.
func (s *service) SubmitDeploy(ctx context.Context, env *catalogenvs.Environment, session *catalogsessions.Session, creds interfaces.Credentials) (uuid.UUID, error) {
	teardown := session.Description[objects.KeyObjects] == nil

	var action map[string]any
	statusText := "Deletion is scheduled"
	nextState := catalogsessions.StateDeleting
	if !teardown {
		action = NewActionDescriptor(ActionMethodDeploy, env.ID.String(), nil)
		statusText = "Deployment is scheduled"
		nextState = catalogsessions.StateDeploying
	}

	return s.submit(ctx, env, session, creds, action, nextState, statusText)
}

// Execute runs a declared object action against a deployed environment. An
// implicit session is branched for the run; the environment must not have a
// deployment in flight.
func (s *service) Execute(ctx context.Context, environmentID uuid.UUID, actionID string, args map[string]any, creds interfaces.Credentials) (uuid.UUID, error) {
	status, err := s.envs.GetStatus(ctx, environmentID)
	if err != nil {
		return uuid.Nil, err
	}
	if status == catalogenvs.StatusDeploying || status == catalogenvs.StatusDeleting {
		s.logger.Warn("action rejected, environment busy",
			"environment_id", environmentID,
			"status", status,
		)
		return uuid.Nil, ErrEnvironmentBusy
	}

	env, err := s.envs.GetByID(ctx, environmentID)
	if err != nil {
		return uuid.Nil, err
	}

	session, err := s.sessions.OpenSession(ctx, environmentID, creds.UserID)
	if err != nil {
		return uuid.Nil, err
	}
	valid, err := s.sessions.Validate(ctx, session)
	if err != nil {
		return uuid.Nil, err
	}
	if !valid {
		return uuid.Nil, ErrSessionInvalid
	}

	target := FindAction(session.Description, actionID)
	if target == nil {
		return uuid.Nil, ErrActionNotFound
	}
	if !target.Enabled {
		return uuid.Nil, ErrActionDisabled
	}

	action := NewActionDescriptor(target.Name, target.ObjectID, args)
	statusText := fmt.Sprintf("Action %s is scheduled", target.Name)
	return s.submit(ctx, env, session, creds, action, catalogsessions.StateDeploying, statusText)
}

func (s *service) GetResult(ctx context.Context, environmentID, taskID uuid.UUID) (objects.Document, error) {
	return s.results.GetResult(ctx, environmentID, taskID)
}

func (s *service) submit(
	ctx context.Context,
	env *catalogenvs.Environment,
	session *catalogsessions.Session,
	creds interfaces.Credentials,
	action map[string]any,
	nextState catalogsessions.State,
	statusText string,
) (uuid.UUID, error) {
	task := BuildTask(action, env, session, creds)

	now := s.now().UTC()
	moved := *session
	moved.State = nextState
	moved.UpdatedAt = now

	deployment := &catalogdeps.Deployment{
		ID:            s.id(),
		EnvironmentID: env.ID,
		Description:   s.deploymentDescription(task),
		Action:        action,
		Started:       now,
	}
	firstStatus := &catalogdeps.Status{
		ID:           s.id(),
		DeploymentID: deployment.ID,
		Level:        catalogdeps.LevelInfo,
		Text:         statusText,
		CreatedAt:    now,
	}

	sub := &Submission{
		Session:     &moved,
		Deployment:  deployment,
		FirstStatus: firstStatus,
	}
	err := s.store.SubmitDeployment(ctx, sub, func(ctx context.Context) error {
		return s.dispatcher.HandleTask(ctx, task)
	})
	if err != nil {
		s.logger.Error("deployment submission failed",
			"environment_id", env.ID,
			"session_id", session.ID,
			"error", err,
		)
		return uuid.Nil, err
	}

	if s.metrics != nil {
		s.metrics.DeploymentSubmitted()
	}
	s.logger.Info("deployment submitted",
		"environment_id", env.ID,
		"session_id", session.ID,
		"task_id", deployment.ID,
		"state", nextState,
	)
	return deployment.ID, nil
}

// deploymentDescription snapshots the objects tree the task carries, with
// credentials masked, for the deployment history row.
func (s *service) deploymentDescription(task interfaces.Task) objects.Document {
	tree, ok := task.Model[objects.KeyObjects].(map[string]any)
	if !ok || tree == nil {
		return nil
	}
	return s.sanitizer.Sanitize(tree).(objects.Document)
}
