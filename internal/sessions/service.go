package sessions

import (
	"context"
	"errors"
	"time"

	catalogenvs "github.com/goliatone/go-appcatalog/environments"
	"github.com/goliatone/go-appcatalog/internal/logging"
	"github.com/goliatone/go-appcatalog/objects"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

// Service describes configuration-session capabilities: branching a session
// off an environment, validating it, and submitting it for deployment.
type Service interface {
	OpenSession(ctx context.Context, environmentID uuid.UUID, userID string) (*Session, error)
	GetSession(ctx context.Context, sessionID uuid.UUID, userID string) (*Session, error)
	Validate(ctx context.Context, session *Session) (bool, error)
	DeleteSession(ctx context.Context, sessionID uuid.UUID, userID string) error
	Deploy(ctx context.Context, sessionID uuid.UUID, creds interfaces.Credentials) (uuid.UUID, error)
}

// EnvironmentStore is the narrow environment access the session service
// needs.
type EnvironmentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*catalogenvs.Environment, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Submitter persists and dispatches a deployment for a validated session.
type Submitter interface {
	SubmitDeploy(ctx context.Context, env *catalogenvs.Environment, session *Session, creds interfaces.Credentials) (uuid.UUID, error)
}

var (
	ErrSessionRepositoryRequired = errors.New("sessions: repository required")
	ErrSessionNotFound           = errors.New("sessions: session not found")
	ErrSessionForbidden          = errors.New("sessions: session belongs to another user")
	ErrSessionInvalid            = errors.New("sessions: session is no longer valid")
	ErrSessionNotOpen            = errors.New("sessions: session is not open")
	ErrEnvironmentNotFound       = errors.New("sessions: environment not found")
	ErrSubmitterRequired         = errors.New("sessions: submitter required")
)

// ServiceOption configures service behaviour.
type ServiceOption func(*service)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides session id generation (primarily for tests).
func WithIDGenerator(generate func() uuid.UUID) ServiceOption {
	return func(s *service) {
		if generate != nil {
			s.id = generate
		}
	}
}

// WithLoggerProvider attaches a logger provider; defaults to a no-op logger.
func WithLoggerProvider(provider interfaces.LoggerProvider) ServiceOption {
	return func(s *service) {
		s.logger = logging.SessionsLogger(provider)
	}
}

type service struct {
	repo      SessionRepository
	envs      EnvironmentStore
	submitter Submitter
	id        func() uuid.UUID
	now       func() time.Time
	logger    interfaces.Logger
}

// NewService constructs a session service instance.
func NewService(repo SessionRepository, envs EnvironmentStore, submitter Submitter, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrSessionRepositoryRequired)
	}

	s := &service{
		repo:      repo,
		envs:      envs,
		submitter: submitter,
		id:        uuid.New,
		now:       time.Now,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenSession branches a new configuration session off the environment. The
// session freezes the environment version it saw and copies the document so
// edits stay private until deployed.
func (s *service) OpenSession(ctx context.Context, environmentID uuid.UUID, userID string) (*Session, error) {
	env, err := s.envs.GetByID(ctx, environmentID)
	if err != nil {
		return nil, ErrEnvironmentNotFound
	}

	now := s.now().UTC()
	session := &Session{
		ID:            s.id(),
		EnvironmentID: env.ID,
		UserID:        userID,
		Version:       env.Version,
		State:         catalogsessions.StateOpened,
		Description:   objects.Clone(env.Description),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	s.logger.Info("session.opened",
		"session_id", created.ID,
		"environment_id", env.ID,
		"version", created.Version,
	)
	return cloneSession(created), nil
}

// GetSession returns the session after re-running the validator; stale
// sessions surface ErrSessionInvalid so callers open a fresh one.
func (s *service) GetSession(ctx context.Context, sessionID uuid.UUID, userID string) (*Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	if userID != "" && session.UserID != userID {
		return nil, ErrSessionForbidden
	}
	valid, err := s.Validate(ctx, session)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrSessionInvalid
	}
	return cloneSession(session), nil
}

// Validate re-evaluates the pure session validator against current
// environment version and sibling states. Never cached.
func (s *service) Validate(ctx context.Context, session *Session) (bool, error) {
	if session == nil {
		return false, nil
	}
	env, err := s.envs.GetByID(ctx, session.EnvironmentID)
	if err != nil {
		return false, ErrEnvironmentNotFound
	}
	siblings, err := s.repo.ListForEnvironment(ctx, session.EnvironmentID)
	if err != nil {
		return false, err
	}
	return catalogsessions.Validate(session, env.Version, siblings), nil
}

// DeleteSession removes an open session outright. Sessions with a deployment
// in flight cannot be deleted; the only way out is the asynchronous result.
func (s *service) DeleteSession(ctx context.Context, sessionID uuid.UUID, userID string) error {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return ErrSessionNotFound
	}
	if userID != "" && session.UserID != userID {
		return ErrSessionForbidden
	}
	if session.State != catalogsessions.StateOpened {
		return ErrSessionNotOpen
	}
	return s.repo.Delete(ctx, sessionID)
}

// Deploy validates the session and hands it to the submitter. A session
// whose draft nulled the objects tree without ever having deployed anything
// tears the environment down synchronously; nothing is dispatched.
func (s *service) Deploy(ctx context.Context, sessionID uuid.UUID, creds interfaces.Credentials) (uuid.UUID, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return uuid.Nil, ErrSessionNotFound
	}
	if creds.UserID != "" && session.UserID != creds.UserID {
		return uuid.Nil, ErrSessionForbidden
	}
	if session.State != catalogsessions.StateOpened {
		return uuid.Nil, ErrSessionNotOpen
	}
	valid, err := s.Validate(ctx, session)
	if err != nil {
		return uuid.Nil, err
	}
	if !valid {
		return uuid.Nil, ErrSessionInvalid
	}

	env, err := s.envs.GetByID(ctx, session.EnvironmentID)
	if err != nil {
		return uuid.Nil, ErrEnvironmentNotFound
	}

	objectsTree, hasObjects := session.Description[objects.KeyObjects]
	_, hasCopy := session.Description[objects.KeyObjectsCopy]
	if hasObjects && objectsTree == nil && !hasCopy {
		// Delete requested before anything was ever deployed: there is
		// nothing for the engine to tear down.
		s.logger.Info("session.environment_removed", "environment_id", env.ID, "session_id", session.ID)
		if err := s.envs.Delete(ctx, env.ID); err != nil {
			return uuid.Nil, err
		}
		return uuid.Nil, s.repo.Delete(ctx, session.ID)
	}

	if s.submitter == nil {
		return uuid.Nil, ErrSubmitterRequired
	}
	return s.submitter.SubmitDeploy(ctx, env, session, creds)
}
