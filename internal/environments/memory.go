package environments

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Environment
}

// NewMemoryRepository constructs an in-memory environment repository.
func NewMemoryRepository() EnvironmentRepository {
	return &memoryRepository{
		byID: make(map[uuid.UUID]*Environment),
	}
}

func (m *memoryRepository) Create(_ context.Context, env *Environment) (*Environment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneEnvironment(env)
	m.byID[cloned.ID] = cloned
	return cloneEnvironment(cloned), nil
}

func (m *memoryRepository) Update(_ context.Context, env *Environment) (*Environment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[env.ID]; !ok {
		return nil, &NotFoundError{Resource: "environment", Key: env.ID.String()}
	}
	cloned := cloneEnvironment(env)
	m.byID[cloned.ID] = cloned
	return cloneEnvironment(cloned), nil
}

func (m *memoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Environment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	env, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "environment", Key: id.String()}
	}
	return cloneEnvironment(env), nil
}

func (m *memoryRepository) ListByTenant(_ context.Context, tenantID string) ([]*Environment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Environment
	for _, env := range m.byID {
		if env.TenantID == tenantID {
			out = append(out, cloneEnvironment(env))
		}
	}
	return out, nil
}

func (m *memoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "environment", Key: id.String()}
	}
	delete(m.byID, id)
	return nil
}
