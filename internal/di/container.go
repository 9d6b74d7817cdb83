package di

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-appcatalog/internal/actions"
	deploycmd "github.com/goliatone/go-appcatalog/internal/commands/deploy"
	"github.com/goliatone/go-appcatalog/internal/deployments"
	"github.com/goliatone/go-appcatalog/internal/engine"
	"github.com/goliatone/go-appcatalog/internal/environments"
	"github.com/goliatone/go-appcatalog/internal/locks"
	"github.com/goliatone/go-appcatalog/internal/logging"
	"github.com/goliatone/go-appcatalog/internal/logging/console"
	"github.com/goliatone/go-appcatalog/internal/logging/gologger"
	"github.com/goliatone/go-appcatalog/internal/results"
	"github.com/goliatone/go-appcatalog/internal/runtimeconfig"
	"github.com/goliatone/go-appcatalog/internal/sessions"
	"github.com/goliatone/go-appcatalog/internal/stats"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/uptrace/bun"
)

// Container wires the catalog services over a shared repository set. Without
// a bun database it runs entirely on in-memory repositories, which is the
// configuration the test suites use.
type Container struct {
	Config runtimeconfig.Config

	bunDB         *bun.DB
	cacheTTL      time.Duration
	cacheService  repocache.CacheService
	keySerializer repocache.KeySerializer

	loggerProvider interfaces.LoggerProvider
	dispatcher     interfaces.Dispatcher
	eventSink      interfaces.EventSink
	metrics        interfaces.Metrics
	registerer     prometheus.Registerer

	environmentRepo environments.EnvironmentRepository
	sessionRepo     sessions.SessionRepository
	deploymentRepo  deployments.DeploymentRepository
	statusRepo      deployments.StatusRepository

	submissionStore actions.SubmissionStore
	lockManager     locks.Manager

	environmentSvc environments.Service
	sessionSvc     sessions.Service
	deploymentSvc  deployments.Service
	actionSvc      actions.Service
	reconciler     results.Reconciler
	poller         *environments.StatusPoller

	deployHandler        *deploycmd.DeployEnvironmentHandler
	executeActionHandler *deploycmd.ExecuteActionHandler
}

// Option mutates the container before it is finalised.
type Option func(*Container)

// WithBunDB runs every repository against the supplied bun database instead
// of the in-memory defaults.
func WithBunDB(db *bun.DB) Option {
	return func(c *Container) {
		c.bunDB = db
	}
}

// WithCache overrides the repository cache pair used by bun repositories.
func WithCache(service repocache.CacheService, serializer repocache.KeySerializer) Option {
	return func(c *Container) {
		c.cacheService = service
		c.keySerializer = serializer
	}
}

// WithDispatcher overrides the engine transport. The default is a no-op
// dispatcher that accepts and drops every task.
func WithDispatcher(dispatcher interfaces.Dispatcher) Option {
	return func(c *Container) {
		c.dispatcher = dispatcher
	}
}

// WithEventSink attaches a sink for deploy-end notifications.
func WithEventSink(sink interfaces.EventSink) Option {
	return func(c *Container) {
		c.eventSink = sink
	}
}

// WithLoggerProvider overrides the logger provider derived from config.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(c *Container) {
		c.loggerProvider = provider
	}
}

// WithMetricsRegisterer overrides where the stats collector registers its
// series. Defaults to the process-wide registerer.
func WithMetricsRegisterer(registerer prometheus.Registerer) Option {
	return func(c *Container) {
		c.registerer = registerer
	}
}

// WithLockManager overrides the named-lock manager binding.
func WithLockManager(manager locks.Manager) Option {
	return func(c *Container) {
		c.lockManager = manager
	}
}

// WithEnvironmentService overrides the default environment service binding.
func WithEnvironmentService(svc environments.Service) Option {
	return func(c *Container) {
		c.environmentSvc = svc
	}
}

// WithSessionService overrides the default session service binding.
func WithSessionService(svc sessions.Service) Option {
	return func(c *Container) {
		c.sessionSvc = svc
	}
}

// WithDeploymentService overrides the default deployment service binding.
func WithDeploymentService(svc deployments.Service) Option {
	return func(c *Container) {
		c.deploymentSvc = svc
	}
}

// WithActionService overrides the default action service binding.
func WithActionService(svc actions.Service) Option {
	return func(c *Container) {
		c.actionSvc = svc
	}
}

// NewContainer creates a container with the provided configuration.
func NewContainer(cfg runtimeconfig.Config, opts ...Option) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cacheTTL := cfg.Cache.DefaultTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	c := &Container{
		Config:          cfg,
		cacheTTL:        cacheTTL,
		environmentRepo: environments.NewMemoryRepository(),
		sessionRepo:     sessions.NewMemoryRepository(),
		deploymentRepo:  deployments.NewMemoryDeploymentRepository(),
		statusRepo:      deployments.NewMemoryStatusRepository(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.configureLogging(); err != nil {
		return nil, err
	}
	c.configureCacheDefaults()
	c.configureRepositories()
	c.configureEngine()
	c.configureServices()

	return c, nil
}

func (c *Container) configureLogging() error {
	if c.loggerProvider != nil || !c.Config.Features.Logger {
		return nil
	}

	switch strings.ToLower(strings.TrimSpace(c.Config.Logging.Provider)) {
	case "gologger":
		provider, err := gologger.NewProvider(gologger.Config{
			Level:     c.Config.Logging.Level,
			Format:    c.Config.Logging.Format,
			AddSource: c.Config.Logging.AddSource,
			Focus:     c.Config.Logging.Focus,
		})
		if err != nil {
			return err
		}
		c.loggerProvider = provider
	default:
		c.loggerProvider = console.NewProvider(console.Options{
			MinLevel: consoleLevel(c.Config.Logging.Level),
		})
	}
	return nil
}

func (c *Container) configureCacheDefaults() {
	if !c.Config.Features.Cache || !c.Config.Cache.Enabled {
		return
	}

	if c.cacheService == nil {
		cfg := repocache.DefaultConfig()
		if c.cacheTTL > 0 {
			cfg.TTL = c.cacheTTL
		}
		service, err := repocache.NewCacheService(cfg)
		if err == nil {
			c.cacheService = service
		}
	}

	if c.cacheService != nil && c.keySerializer == nil {
		c.keySerializer = repocache.NewDefaultKeySerializer()
	}
}

func (c *Container) configureRepositories() {
	if c.bunDB == nil {
		if c.submissionStore == nil {
			c.submissionStore = actions.NewMemorySubmissionStore(c.sessionRepo, c.deploymentRepo, c.statusRepo)
		}
		if c.lockManager == nil {
			c.lockManager = locks.NewMemoryManager()
		}
		return
	}

	c.environmentRepo = environments.NewBunEnvironmentRepositoryWithCache(c.bunDB, c.cacheService, c.keySerializer)
	c.sessionRepo = sessions.NewBunSessionRepository(c.bunDB)
	c.deploymentRepo = deployments.NewBunDeploymentRepository(c.bunDB)
	c.statusRepo = deployments.NewBunStatusRepository(c.bunDB)

	if c.submissionStore == nil {
		c.submissionStore = actions.NewBunSubmissionStore(c.bunDB)
	}
	if c.lockManager == nil {
		c.lockManager = locks.NewBunManager(c.bunDB)
	}
}

func (c *Container) configureEngine() {
	if c.dispatcher == nil {
		c.dispatcher = engine.NewNoOp()
	}
	if c.loggerProvider != nil {
		c.dispatcher = engine.NewLogging(c.dispatcher, c.loggerProvider)
	}

	if c.metrics == nil && c.Config.Features.Metrics {
		c.metrics = stats.NewCollector(c.registerer)
	}
}

func (c *Container) configureServices() {
	if c.environmentSvc == nil {
		opts := []environments.ServiceOption{}
		if c.loggerProvider != nil {
			opts = append(opts, environments.WithLoggerProvider(c.loggerProvider))
		}
		if driver := c.Config.Networking.DefaultDriver; driver != "" {
			opts = append(opts, environments.WithDefaultNetworkDriver(driver))
		}
		c.environmentSvc = environments.NewService(c.environmentRepo, c.sessionRepo, opts...)
	}

	if c.deploymentSvc == nil {
		opts := []deployments.ServiceOption{}
		if c.loggerProvider != nil {
			opts = append(opts, deployments.WithLoggerProvider(c.loggerProvider))
		}
		c.deploymentSvc = deployments.NewService(c.deploymentRepo, c.statusRepo, opts...)
	}

	if c.actionSvc == nil {
		opts := []actions.ServiceOption{}
		if c.loggerProvider != nil {
			opts = append(opts, actions.WithLoggerProvider(c.loggerProvider))
		}
		if c.metrics != nil {
			opts = append(opts, actions.WithMetrics(c.metrics))
		}
		c.actionSvc = actions.NewService(
			c.submissionStore,
			c.dispatcher,
			environmentSource{repo: c.environmentRepo, svc: c.environmentSvc},
			deferredBrancher{container: c},
			c.deploymentSvc,
			opts...,
		)
	}

	if c.sessionSvc == nil {
		opts := []sessions.ServiceOption{}
		if c.loggerProvider != nil {
			opts = append(opts, sessions.WithLoggerProvider(c.loggerProvider))
		}
		c.sessionSvc = sessions.NewService(c.sessionRepo, c.environmentRepo, c.actionSvc, opts...)
	}

	if c.reconciler == nil {
		opts := []results.Option{}
		if c.loggerProvider != nil {
			opts = append(opts, results.WithLoggerProvider(c.loggerProvider))
		}
		if c.eventSink != nil {
			opts = append(opts, results.WithEventSink(c.eventSink))
		}
		if c.metrics != nil {
			opts = append(opts, results.WithMetrics(c.metrics))
		}
		c.reconciler = results.NewReconciler(c.environmentRepo, c.sessionRepo, c.deploymentRepo, c.statusRepo, opts...)
	}

	if c.poller == nil {
		c.poller = environments.NewStatusPoller(c.environmentSvc,
			environments.WithWaitTimeout(c.Config.Deploy.WaitTimeout),
			environments.WithPollInterval(c.Config.Deploy.PollInterval),
		)
	}

	commandLogger := logging.ModuleLogger(c.loggerProvider, "catalog.commands")
	if c.deployHandler == nil {
		c.deployHandler = deploycmd.NewDeployEnvironmentHandler(c.sessionSvc, commandLogger)
	}
	if c.executeActionHandler == nil {
		c.executeActionHandler = deploycmd.NewExecuteActionHandler(c.actionSvc, commandLogger)
	}
}

// environmentSource pairs repository point reads with the derived status.
type environmentSource struct {
	repo environments.EnvironmentRepository
	svc  environments.Service
}

func (s environmentSource) GetByID(ctx context.Context, id uuid.UUID) (*environments.Environment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s environmentSource) GetStatus(ctx context.Context, id uuid.UUID) (environments.Status, error) {
	return s.svc.GetStatus(ctx, id)
}

// deferredBrancher breaks the construction cycle between the action and
// session services: actions open implicit sessions through the session
// service, which itself submits deployments through the action service.
type deferredBrancher struct {
	container *Container
}

func (b deferredBrancher) OpenSession(ctx context.Context, environmentID uuid.UUID, userID string) (*sessions.Session, error) {
	return b.container.sessionSvc.OpenSession(ctx, environmentID, userID)
}

func (b deferredBrancher) Validate(ctx context.Context, session *sessions.Session) (bool, error) {
	return b.container.sessionSvc.Validate(ctx, session)
}

func consoleLevel(level string) *console.Level {
	var resolved console.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		resolved = console.LevelTrace
	case "debug":
		resolved = console.LevelDebug
	case "info":
		resolved = console.LevelInfo
	case "warn", "warning":
		resolved = console.LevelWarn
	case "error":
		resolved = console.LevelError
	case "fatal":
		resolved = console.LevelFatal
	default:
		return nil
	}
	return &resolved
}

// EnvironmentService returns the configured environment service.
func (c *Container) EnvironmentService() environments.Service {
	return c.environmentSvc
}

// SessionService returns the configured session service.
func (c *Container) SessionService() sessions.Service {
	return c.sessionSvc
}

// DeploymentService returns the configured deployment service.
func (c *Container) DeploymentService() deployments.Service {
	return c.deploymentSvc
}

// ActionService returns the configured action service.
func (c *Container) ActionService() actions.Service {
	return c.actionSvc
}

// Reconciler returns the engine result reconciler.
func (c *Container) Reconciler() results.Reconciler {
	return c.reconciler
}

// StatusPoller returns the deploy-wait poller.
func (c *Container) StatusPoller() *environments.StatusPoller {
	return c.poller
}

// Dispatcher exposes the engine transport, wrapped with logging when a
// logger provider is configured.
func (c *Container) Dispatcher() interfaces.Dispatcher {
	return c.dispatcher
}

// LockManager exposes the named-lock manager.
func (c *Container) LockManager() locks.Manager {
	return c.lockManager
}

// Metrics exposes the configured metrics collector, nil when disabled.
func (c *Container) Metrics() interfaces.Metrics {
	return c.metrics
}

// LoggerProvider exposes the configured logger provider, nil when logging is
// disabled.
func (c *Container) LoggerProvider() interfaces.LoggerProvider {
	return c.loggerProvider
}

// EnvironmentRepository exposes the configured environment repository.
func (c *Container) EnvironmentRepository() environments.EnvironmentRepository {
	return c.environmentRepo
}

// SessionRepository exposes the configured session repository.
func (c *Container) SessionRepository() sessions.SessionRepository {
	return c.sessionRepo
}

// DeploymentRepository exposes the configured deployment repository.
func (c *Container) DeploymentRepository() deployments.DeploymentRepository {
	return c.deploymentRepo
}

// StatusRepository exposes the configured status repository.
func (c *Container) StatusRepository() deployments.StatusRepository {
	return c.statusRepo
}

// SubmissionStore exposes the atomic deployment submission store.
func (c *Container) SubmissionStore() actions.SubmissionStore {
	return c.submissionStore
}

// DeployCommandHandler exposes session deployment as a go-command handler.
func (c *Container) DeployCommandHandler() *deploycmd.DeployEnvironmentHandler {
	return c.deployHandler
}

// ExecuteActionCommandHandler exposes action execution as a go-command handler.
func (c *Container) ExecuteActionCommandHandler() *deploycmd.ExecuteActionHandler {
	return c.executeActionHandler
}
