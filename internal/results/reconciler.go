// Package results reconciles asynchronous engine outcomes back into the
// catalog: deployment results close the open deployment and advance the
// environment version, progress notifications append to its status log.
package results

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	catalogdeps "github.com/goliatone/go-appcatalog/deployments"
	internaldeps "github.com/goliatone/go-appcatalog/internal/deployments"
	internalenvs "github.com/goliatone/go-appcatalog/internal/environments"
	"github.com/goliatone/go-appcatalog/internal/logging"
	internalsessions "github.com/goliatone/go-appcatalog/internal/sessions"
	"github.com/goliatone/go-appcatalog/objects"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

// EventDeployEnd is emitted after a successful reconciliation.
const EventDeployEnd = "environment.deploy.end"

// ErrNoDeploymentRunning reports a progress notification for an environment
// with no deployment history.
var ErrNoDeploymentRunning = errors.New("results: no deployment running for environment")

// Reconciler applies engine results and progress reports to stored state.
type Reconciler interface {
	ProcessResult(ctx context.Context, environmentID uuid.UUID, result interfaces.Result) error
	ReportNotification(ctx context.Context, report interfaces.Report) error
}

// Option configures the reconciler.
type Option func(*reconciler)

// WithNow overrides the time source (primarily for tests).
func WithNow(now func() time.Time) Option {
	return func(r *reconciler) {
		if now != nil {
			r.now = now
		}
	}
}

// WithIDGenerator overrides status id generation (primarily for tests).
func WithIDGenerator(generate func() uuid.UUID) Option {
	return func(r *reconciler) {
		if generate != nil {
			r.id = generate
		}
	}
}

// WithLoggerProvider wires structured logging into the reconciler.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(r *reconciler) {
		if provider != nil {
			r.logger = logging.ResultsLogger(provider)
		}
	}
}

// WithEventSink attaches an event sink for deploy-end notifications.
func WithEventSink(sink interfaces.EventSink) Option {
	return func(r *reconciler) {
		r.events = sink
	}
}

// WithMetrics attaches a metrics collector.
func WithMetrics(metrics interfaces.Metrics) Option {
	return func(r *reconciler) {
		if metrics != nil {
			r.metrics = metrics
		}
	}
}

type reconciler struct {
	envs        internalenvs.EnvironmentRepository
	sessions    internalsessions.SessionRepository
	deployments internaldeps.DeploymentRepository
	statuses    internaldeps.StatusRepository
	sanitizer   *objects.Sanitizer
	events      interfaces.EventSink
	metrics     interfaces.Metrics
	id          func() uuid.UUID
	now         func() time.Time
	logger      interfaces.Logger
}

// NewReconciler constructs the result reconciler over the supplied
// repositories.
func NewReconciler(
	envs internalenvs.EnvironmentRepository,
	sessions internalsessions.SessionRepository,
	deployments internaldeps.DeploymentRepository,
	statuses internaldeps.StatusRepository,
	opts ...Option,
) Reconciler {
	r := &reconciler{
		envs:        envs,
		sessions:    sessions,
		deployments: deployments,
		statuses:    statuses,
		sanitizer:   objects.DefaultSanitizer,
		id:          uuid.New,
		now:         time.Now,
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ProcessResult applies an engine task outcome. The call is idempotent with
// respect to removed environments: a result for an environment that no
// longer exists is logged and dropped.
func (r *reconciler) ProcessResult(ctx context.Context, environmentID uuid.UUID, result interfaces.Result) error {
	r.logger.Debug("engine result received",
		"environment_id", environmentID,
		"result", r.sanitizer.Sanitize(result.Model),
	)

	env, err := r.envs.GetByID(ctx, environmentID)
	if err != nil {
		var notFound *internalenvs.NotFoundError
		if errors.As(err, &notFound) {
			r.logger.Warn("result dropped, environment not found", "environment_id", environmentID)
			return nil
		}
		return err
	}

	model := objects.Clone(result.Model)
	if isTeardownComplete(model) {
		r.logger.Info("environment removed after deletion", "environment_id", environmentID)
		return r.envs.Delete(ctx, environmentID)
	}

	actionName := "Deletion"
	deleted := true
	if tree, ok := model[objects.KeyObjects].(map[string]any); ok && tree != nil {
		applications := tree[objects.KeyApplications]
		delete(tree, objects.KeyApplications)
		if applications == nil {
			applications = []any{}
		}
		tree[objects.KeyServices] = applications
		actionName = "Deployment"
		deleted = false
	}

	env.Description = model
	env.Version++
	env.UpdatedAt = r.now().UTC()
	if _, err := r.envs.Update(ctx, env); err != nil {
		return fmt.Errorf("update environment: %w", err)
	}

	deployment, err := r.deployments.LatestStarted(ctx, environmentID)
	if err != nil {
		return fmt.Errorf("find running deployment: %w", err)
	}
	finished := r.now().UTC()
	deployment.Finished = &finished
	deployment.Result = objects.Clone(result.Action)
	if _, err := r.deployments.Update(ctx, deployment); err != nil {
		return fmt.Errorf("close deployment: %w", err)
	}

	numErrors, err := r.statuses.CountByLevel(ctx, deployment.ID, catalogdeps.LevelError)
	if err != nil {
		return err
	}
	numWarnings, err := r.statuses.CountByLevel(ctx, deployment.ID, catalogdeps.LevelWarning)
	if err != nil {
		return err
	}

	finalText := actionName + " finished"
	if numErrors > 0 {
		finalText += " with errors"
	} else if numWarnings > 0 {
		finalText += " with warnings"
	}
	if _, err := r.statuses.Append(ctx, &catalogdeps.Status{
		ID:           r.id(),
		DeploymentID: deployment.ID,
		Level:        catalogdeps.LevelInfo,
		Text:         finalText,
		CreatedAt:    finished,
	}); err != nil {
		return err
	}

	failed := numErrors > 0 || isException(result.Action)
	if err := r.closeSession(ctx, environmentID, deleted, failed); err != nil {
		return err
	}

	r.trackOutcome(ctx, env, deployment, model, failed, deleted)
	return nil
}

// ReportNotification appends one engine progress line to the most recently
// started deployment of the environment it refers to.
func (r *reconciler) ReportNotification(ctx context.Context, report interfaces.Report) error {
	r.logger.Debug("engine report received",
		"environment_id", report.EnvironmentID,
		"text", report.Text,
	)

	environmentID, err := uuid.Parse(report.EnvironmentID)
	if err != nil {
		return fmt.Errorf("parse environment id: %w", err)
	}
	deployment, err := r.deployments.LatestStarted(ctx, environmentID)
	if err != nil {
		var notFound *internaldeps.NotFoundError
		if errors.As(err, &notFound) {
			return ErrNoDeploymentRunning
		}
		return err
	}

	level := report.Level
	if level == "" {
		level = catalogdeps.LevelInfo
	}
	status := &catalogdeps.Status{
		ID:           r.id(),
		DeploymentID: deployment.ID,
		Level:        level,
		Text:         report.Text,
		CreatedAt:    r.now().UTC(),
	}
	if report.ID != "" {
		entityID := report.ID
		status.EntityID = &entityID
	}
	if _, err := r.statuses.Append(ctx, status); err != nil {
		return err
	}

	if r.metrics != nil {
		r.metrics.NotificationReceived(level)
	}
	return nil
}

func (r *reconciler) closeSession(ctx context.Context, environmentID uuid.UUID, deleted, failed bool) error {
	inFlight := catalogsessions.StateDeploying
	if deleted {
		inFlight = catalogsessions.StateDeleting
	}

	session, err := r.sessions.FindByState(ctx, environmentID, inFlight)
	if err != nil {
		var notFound *internalsessions.NotFoundError
		if errors.As(err, &notFound) {
			r.logger.Warn("no in-flight session to close",
				"environment_id", environmentID,
				"state", inFlight,
			)
			return nil
		}
		return err
	}

	switch {
	case failed && deleted:
		session.State = catalogsessions.StateDeleteFailure
	case failed:
		session.State = catalogsessions.StateDeployFailure
	default:
		session.State = catalogsessions.StateDeployed
	}
	session.UpdatedAt = r.now().UTC()
	_, err = r.sessions.Update(ctx, session)
	return err
}

func (r *reconciler) trackOutcome(ctx context.Context, env *internalenvs.Environment, deployment *catalogdeps.Deployment, model objects.Document, failed, deleted bool) {
	var types []string
	if tree, ok := model[objects.KeyObjects].(map[string]any); ok && tree != nil {
		if services, ok := tree[objects.KeyServices].([]any); ok {
			for _, svc := range services {
				if app, ok := svc.(map[string]any); ok {
					if typeName := objects.TypeName(app); typeName != "" {
						types = append(types, typeName)
					}
				}
			}
		}
	}

	if failed {
		if r.metrics != nil {
			r.metrics.DeploymentFailed()
		}
		r.logger.Warn("deployment finished",
			"environment_id", env.ID,
			"tenant_id", env.TenantID,
			"status", "Failed",
			"apps", strings.Join(types, ", "),
		)
		return
	}

	if r.metrics != nil {
		r.metrics.DeploymentSucceeded()
	}
	r.logger.Info("deployment finished",
		"environment_id", env.ID,
		"tenant_id", env.TenantID,
		"status", "Successful",
		"apps", strings.Join(types, ", "),
	)

	// The deploy-end event announces a successful deployment only; a
	// finished deletion has nothing to announce.
	if deleted || r.events == nil {
		return
	}
	if err := r.events.Emit(ctx, interfaces.Event{
		Type: EventDeployEnd,
		Payload: map[string]any{
			"environment_id": env.ID.String(),
			"tenant_id":      env.TenantID,
			"name":           env.Name,
			"version":        env.Version,
			"description":    r.sanitizer.Sanitize(objects.Clone(model)),
			"started":        deployment.Started,
			"finished":       deployment.Finished,
		},
	}); err != nil {
		r.logger.Warn("deploy end event not delivered", "error", err)
	}
}

// isTeardownComplete reports a deletion result: the engine nulled the
// objects tree and its snapshot copy, so nothing of the environment remains.
func isTeardownComplete(model objects.Document) bool {
	tree, hasObjects := model[objects.KeyObjects]
	if !hasObjects || tree != nil {
		return false
	}
	snapshot, hasCopy := model[objects.KeyObjectsCopy]
	return hasCopy && snapshot == nil
}

func isException(action map[string]any) bool {
	flagged, ok := action["isException"].(bool)
	return ok && flagged
}
