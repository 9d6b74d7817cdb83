package sessions

import (
	"context"
	"fmt"

	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
	"github.com/google/uuid"
)

// Session re-exports the shared session type for package-local use.
type Session = catalogsessions.Session

// State re-exports the session lifecycle state type.
type State = catalogsessions.State

// SessionRepository exposes persistence operations for sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) (*Session, error)
	Update(ctx context.Context, session *Session) (*Session, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	// ListForEnvironment returns the environment's sessions ordered by
	// (version desc, updated desc); validator checks and the status deriver
	// both rely on this order.
	ListForEnvironment(ctx context.Context, environmentID uuid.UUID) ([]*Session, error)
	// FindByState returns the first session of the environment currently in
	// the supplied state, or a NotFoundError.
	FindByState(ctx context.Context, environmentID uuid.UUID, state State) (*Session, error)
}

// NotFoundError is returned when a session cannot be located.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return "session not found"
	}
	return fmt.Sprintf("session %q not found", e.Key)
}
