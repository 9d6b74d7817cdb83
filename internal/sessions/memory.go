package sessions

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-appcatalog/objects"
	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Session
}

// NewMemoryRepository constructs an in-memory session repository.
func NewMemoryRepository() SessionRepository {
	return &memoryRepository{
		byID: make(map[uuid.UUID]*Session),
	}
}

func (m *memoryRepository) Create(_ context.Context, session *Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneSession(session)
	m.byID[cloned.ID] = cloned
	return cloneSession(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, session *Session) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[session.ID]; !ok {
		return nil, &NotFoundError{Key: session.ID.String()}
	}
	cloned := cloneSession(session)
	m.byID[cloned.ID] = cloned
	return cloneSession(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Key: id.String()}
	}
	return cloneSession(session), nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Key: id.String()}
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryRepository) ListForEnvironment(_ context.Context, environmentID uuid.UUID) ([]*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Session
	for _, session := range m.byID {
		if session.EnvironmentID == environmentID {
			out = append(out, cloneSession(session))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Version != out[j].Version {
			return out[i].Version > out[j].Version
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *memoryRepository) FindByState(_ context.Context, environmentID uuid.UUID, state State) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, session := range m.byID {
		if session.EnvironmentID == environmentID && session.State == state {
			return cloneSession(session), nil
		}
	}
	return nil, &NotFoundError{Key: environmentID.String() + "/" + string(state)}
}

func cloneSession(session *Session) *Session {
	if session == nil {
		return nil
	}
	cloned := *session
	cloned.Description = objects.Clone(session.Description)
	return &cloned
}
