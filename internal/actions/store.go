package actions

import (
	"context"
	"errors"

	catalogdeps "github.com/goliatone/go-appcatalog/deployments"
	internaldeps "github.com/goliatone/go-appcatalog/internal/deployments"
	internalsessions "github.com/goliatone/go-appcatalog/internal/sessions"
	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
)

// ErrSubmissionConflict reports that the session left the opened state, or a
// sibling deployment started, between validation and the submit write.
var ErrSubmissionConflict = errors.New("actions: concurrent submission detected")

// Submission is the unit of work the store persists when a task is handed to
// the engine: the session moved into its in-flight state, the deployment row
// and its opening status line.
type Submission struct {
	Session     *catalogsessions.Session
	Deployment  *catalogdeps.Deployment
	FirstStatus *catalogdeps.Status
}

// SubmissionStore persists a submission and runs the engine dispatch as one
// unit: a dispatch failure leaves no trace of the submission behind.
type SubmissionStore interface {
	SubmitDeployment(ctx context.Context, sub *Submission, dispatch func(context.Context) error) error
}

type memorySubmissionStore struct {
	sessions    internalsessions.SessionRepository
	deployments internaldeps.DeploymentRepository
	statuses    internaldeps.StatusRepository
}

// NewMemorySubmissionStore builds a store over in-memory repositories. The
// write path compensates instead of using a transaction: the deployment row
// and session transition are undone when dispatch fails, and the status line
// is only appended once dispatch has succeeded.
func NewMemorySubmissionStore(
	sessions internalsessions.SessionRepository,
	deployments internaldeps.DeploymentRepository,
	statuses internaldeps.StatusRepository,
) SubmissionStore {
	return &memorySubmissionStore{
		sessions:    sessions,
		deployments: deployments,
		statuses:    statuses,
	}
}

func (m *memorySubmissionStore) SubmitDeployment(ctx context.Context, sub *Submission, dispatch func(context.Context) error) error {
	current, err := m.sessions.GetByID(ctx, sub.Session.ID)
	if err != nil {
		return err
	}
	if current.State != catalogsessions.StateOpened {
		return ErrSubmissionConflict
	}
	siblings, err := m.sessions.ListForEnvironment(ctx, sub.Session.EnvironmentID)
	if err != nil {
		return err
	}
	for _, sibling := range siblings {
		if sibling.ID != sub.Session.ID && sibling.State.InFlight() {
			return ErrSubmissionConflict
		}
	}

	if _, err := m.sessions.Update(ctx, sub.Session); err != nil {
		return err
	}
	if _, err := m.deployments.Create(ctx, sub.Deployment); err != nil {
		m.restoreSession(ctx, current)
		return err
	}

	if err := dispatch(ctx); err != nil {
		m.restoreSession(ctx, current)
		_ = m.deployments.Delete(ctx, sub.Deployment.ID)
		return err
	}

	_, err = m.statuses.Append(ctx, sub.FirstStatus)
	return err
}

func (m *memorySubmissionStore) restoreSession(ctx context.Context, previous *catalogsessions.Session) {
	_, _ = m.sessions.Update(ctx, previous)
}
