package environments

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-appcatalog/internal/logging"
	"github.com/goliatone/go-appcatalog/objects"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	"github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

// Service describes environment management capabilities.
type Service interface {
	CreateEnvironment(ctx context.Context, input CreateEnvironmentInput) (*Environment, error)
	GetEnvironment(ctx context.Context, id uuid.UUID, tenantID string) (*Environment, error)
	ListEnvironments(ctx context.Context, tenantID string) ([]*Environment, error)
	GetStatus(ctx context.Context, environmentID uuid.UUID) (Status, error)
	DeleteEnvironment(ctx context.Context, environmentID, sessionID uuid.UUID) error
	RemoveEnvironment(ctx context.Context, environmentID uuid.UUID) error

	GetDescription(ctx context.Context, environmentID uuid.UUID, sessionID *uuid.UUID, inner bool) (any, error)
	SaveDescription(ctx context.Context, sessionID uuid.UUID, document any, inner bool) error

	GetData(ctx context.Context, sessionID uuid.UUID, path string) (any, error)
	UpdateData(ctx context.Context, sessionID uuid.UUID, path string, value any) error
	InsertData(ctx context.Context, sessionID uuid.UUID, path string, value any) error
	ExtendData(ctx context.Context, sessionID uuid.UUID, path string, values []any) error
	RemoveData(ctx context.Context, sessionID uuid.UUID, path string) error
}

// CreateEnvironmentInput captures the information required to create an environment.
type CreateEnvironmentInput struct {
	Name          string
	TenantID      string
	UserID        string
	NetworkDriver string
}

var (
	ErrEnvironmentRepositoryRequired = errors.New("environments: repository required")
	ErrEnvironmentNameRequired       = errors.New("environments: name is required")
	ErrEnvironmentNameInvalid        = errors.New("environments: name is invalid")
	ErrEnvironmentNotFound           = errors.New("environments: environment not found")
	ErrEnvironmentForbidden          = errors.New("environments: environment belongs to another tenant")
	ErrSessionNotFound               = errors.New("environments: session not found")
	ErrSessionInvalid                = errors.New("environments: session is no longer valid")
	ErrNetworkDriverUnknown          = errors.New("environments: unknown network driver")
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

// WithIDGenerator overrides environment id generation (primarily for tests).
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
		s.logger = logging.EnvironmentsLogger(provider)
	}
}

// WithDefaultNetworkDriver sets the driver used when CreateEnvironmentInput
// leaves NetworkDriver empty. The driver must appear in DefaultNetworkTypes.
func WithDefaultNetworkDriver(driver string) ServiceOption {
	return func(s *service) {
		if driver = strings.TrimSpace(driver); driver != "" {
			s.networkDriver = driver
		}
	}
}

type service struct {
	repo          EnvironmentRepository
	sessions      SessionIndex
	id            func() uuid.UUID
	now           func() time.Time
	logger        interfaces.Logger
	networkDriver string
}

// NewService constructs an environment service instance.
func NewService(repo EnvironmentRepository, sessionIndex SessionIndex, opts ...ServiceOption) Service {
	if repo == nil {
		panic(ErrEnvironmentRepositoryRequired)
	}

	s := &service{
		repo:          repo,
		sessions:      sessionIndex,
		id:            uuid.New,
		now:           time.Now,
		logger:        logging.NoOp(),
		networkDriver: DefaultNetworkDriver,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) CreateEnvironment(ctx context.Context, input CreateEnvironmentInput) (*Environment, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrEnvironmentNameRequired
	}
	if !ValidName(name) {
		return nil, ErrEnvironmentNameInvalid
	}

	driver := input.NetworkDriver
	if driver == "" {
		driver = s.networkDriver
	}
	networkType, ok := DefaultNetworkTypes[driver]
	if !ok {
		return nil, ErrNetworkDriverUnknown
	}

	root := objects.NewObject(EnvironmentTypeName)
	root["name"] = name
	root["defaultNetworks"] = defaultNetworks(name, networkType)
	objects.Metadata(root)["metadata"] = map[string]any{}

	now := s.now().UTC()
	record := &Environment{
		ID:       s.id(),
		Name:     name,
		TenantID: input.TenantID,
		Version:  0,
		Description: map[string]any{
			objects.KeyObjects:    root,
			objects.KeyAttributes: []any{},
			"project_id":          input.TenantID,
			"user_id":             input.UserID,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	s.logger.Info("environment.created", "environment_id", created.ID, "tenant_id", created.TenantID)
	return cloneEnvironment(created), nil
}

func (s *service) GetEnvironment(ctx context.Context, id uuid.UUID, tenantID string) (*Environment, error) {
	if id == uuid.Nil {
		return nil, ErrEnvironmentNotFound
	}
	env, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, translateRepoError(err, ErrEnvironmentNotFound)
	}
	if tenantID != "" && env.TenantID != tenantID {
		return nil, ErrEnvironmentForbidden
	}
	return cloneEnvironment(env), nil
}

func (s *service) ListEnvironments(ctx context.Context, tenantID string) ([]*Environment, error) {
	records, err := s.repo.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return cloneEnvironmentSlice(records), nil
}

// GetStatus derives the environment status from its sessions; see
// environments.DeriveStatus for the scan rules.
func (s *service) GetStatus(ctx context.Context, environmentID uuid.UUID) (Status, error) {
	list, err := s.sessions.ListForEnvironment(ctx, environmentID)
	if err != nil {
		return "", err
	}
	return DeriveStatus(list), nil
}

// DeleteEnvironment marks the environment for deletion by nulling the
// objects tree in the session draft. The actual teardown happens when the
// session deploys and the engine reports the result.
func (s *service) DeleteEnvironment(ctx context.Context, environmentID, sessionID uuid.UUID) error {
	document, err := s.GetDescription(ctx, environmentID, &sessionID, false)
	if err != nil {
		return err
	}
	outer, ok := document.(map[string]any)
	if !ok {
		outer = map[string]any{}
	}
	outer[objects.KeyObjects] = nil
	return s.SaveDescription(ctx, sessionID, outer, false)
}

// RemoveEnvironment drops the environment row entirely. Reserved for the
// reconciler's teardown path and for environments whose delete deployment
// never got dispatched.
func (s *service) RemoveEnvironment(ctx context.Context, environmentID uuid.UUID) error {
	if err := s.repo.Delete(ctx, environmentID); err != nil {
		return translateRepoError(err, ErrEnvironmentNotFound)
	}
	s.logger.Info("environment.removed", "environment_id", environmentID)
	return nil
}

// GetDescription returns the document a caller should see: the session draft
// while the session is valid and not yet deployed, the environment's own
// document otherwise. With inner set, only the objects tree is returned.
func (s *service) GetDescription(ctx context.Context, environmentID uuid.UUID, sessionID *uuid.UUID, inner bool) (any, error) {
	var document map[string]any

	if sessionID != nil {
		session, err := s.sessions.GetByID(ctx, *sessionID)
		if err != nil {
			return nil, ErrSessionNotFound
		}
		env, err := s.repo.GetByID(ctx, session.EnvironmentID)
		if err != nil {
			return nil, translateRepoError(err, ErrEnvironmentNotFound)
		}
		siblings, err := s.sessions.ListForEnvironment(ctx, session.EnvironmentID)
		if err != nil {
			return nil, err
		}
		if sessions.Validate(session, env.Version, siblings) && session.State != sessions.StateDeployed {
			document = session.Description
		} else {
			document = env.Description
		}
	} else {
		env, err := s.repo.GetByID(ctx, environmentID)
		if err != nil {
			return nil, translateRepoError(err, ErrEnvironmentNotFound)
		}
		document = env.Description
	}

	document = objects.Clone(document)
	if !inner {
		return document, nil
	}
	return document[objects.KeyObjects], nil
}

// SaveDescription writes a document into the session draft. With inner set,
// only the objects tree is replaced.
func (s *service) SaveDescription(ctx context.Context, sessionID uuid.UUID, document any, inner bool) error {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return ErrSessionNotFound
	}

	if inner {
		draft := objects.Clone(session.Description)
		if draft == nil {
			draft = map[string]any{}
		}
		draft[objects.KeyObjects] = document
		session.Description = draft
	} else {
		outer, ok := document.(map[string]any)
		if !ok && document != nil {
			return objects.ErrMalformedPath
		}
		session.Description = outer
	}
	session.UpdatedAt = s.now().UTC()

	_, err = s.sessions.Update(ctx, session)
	return err
}

func (s *service) GetData(ctx context.Context, sessionID uuid.UUID, path string) (any, error) {
	draft, err := s.editableDraft(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return objects.Get(path, draft.document)
}

func (s *service) UpdateData(ctx context.Context, sessionID uuid.UUID, path string, value any) error {
	return s.mutateData(ctx, sessionID, func(document map[string]any) error {
		return objects.Update(path, value, document)
	})
}

func (s *service) InsertData(ctx context.Context, sessionID uuid.UUID, path string, value any) error {
	return s.mutateData(ctx, sessionID, func(document map[string]any) error {
		return objects.Insert(path, value, document)
	})
}

func (s *service) ExtendData(ctx context.Context, sessionID uuid.UUID, path string, values []any) error {
	return s.mutateData(ctx, sessionID, func(document map[string]any) error {
		return objects.Extend(path, values, document)
	})
}

func (s *service) RemoveData(ctx context.Context, sessionID uuid.UUID, path string) error {
	return s.mutateData(ctx, sessionID, func(document map[string]any) error {
		return objects.Remove(path, document)
	})
}

type draft struct {
	session  *sessions.Session
	document map[string]any
}

// editableDraft loads a session draft after re-running the validator; stale
// or in-flight sessions cannot be read or edited through the data paths.
func (s *service) editableDraft(ctx context.Context, sessionID uuid.UUID) (*draft, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	env, err := s.repo.GetByID(ctx, session.EnvironmentID)
	if err != nil {
		return nil, translateRepoError(err, ErrEnvironmentNotFound)
	}
	siblings, err := s.sessions.ListForEnvironment(ctx, session.EnvironmentID)
	if err != nil {
		return nil, err
	}
	if !sessions.Validate(session, env.Version, siblings) || session.State != sessions.StateOpened {
		return nil, ErrSessionInvalid
	}
	return &draft{session: session, document: session.Description}, nil
}

func (s *service) mutateData(ctx context.Context, sessionID uuid.UUID, mutate func(map[string]any) error) error {
	d, err := s.editableDraft(ctx, sessionID)
	if err != nil {
		return err
	}
	document := objects.Clone(d.document)
	if document == nil {
		document = map[string]any{}
	}
	if err := mutate(document); err != nil {
		return err
	}
	d.session.Description = document
	d.session.UpdatedAt = s.now().UTC()
	_, err = s.sessions.Update(ctx, d.session)
	return err
}

func translateRepoError(err error, fallback error) error {
	if err == nil {
		return nil
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return fallback
	}
	return err
}
