package deployments

import (
	"context"
	"sort"
	"sync"

	"github.com/goliatone/go-appcatalog/objects"
	"github.com/google/uuid"
)

type memoryDeploymentRepository struct {
	mu   sync.RWMutex
	byID map[uuid.UUID]*Deployment
}

// NewMemoryDeploymentRepository constructs an in-memory deployment repository.
func NewMemoryDeploymentRepository() DeploymentRepository {
	return &memoryDeploymentRepository{
		byID: make(map[uuid.UUID]*Deployment),
	}
}

func (m *memoryDeploymentRepository) Create(_ context.Context, deployment *Deployment) (*Deployment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneDeployment(deployment)
	m.byID[cloned.ID] = cloned
	return cloneDeployment(cloned), nil
}

func (m *memoryDeploymentRepository) Update(_ context.Context, deployment *Deployment) (*Deployment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[deployment.ID]; !ok {
		return nil, &NotFoundError{Resource: "deployment", Key: deployment.ID.String()}
	}
	cloned := cloneDeployment(deployment)
	m.byID[cloned.ID] = cloned
	return cloneDeployment(cloned), nil
}

func (m *memoryDeploymentRepository) GetByID(_ context.Context, id uuid.UUID) (*Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deployment, ok := m.byID[id]
	if !ok {
		return nil, &NotFoundError{Resource: "deployment", Key: id.String()}
	}
	return cloneDeployment(deployment), nil
}

func (m *memoryDeploymentRepository) ListForEnvironment(_ context.Context, environmentID uuid.UUID) ([]*Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listForEnvironmentLocked(environmentID), nil
}

func (m *memoryDeploymentRepository) LatestStarted(_ context.Context, environmentID uuid.UUID) (*Deployment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	deployments := m.listForEnvironmentLocked(environmentID)
	if len(deployments) == 0 {
		return nil, &NotFoundError{Resource: "deployment", Key: environmentID.String()}
	}
	return deployments[0], nil
}

func (m *memoryDeploymentRepository) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byID[id]; !ok {
		return &NotFoundError{Resource: "deployment", Key: id.String()}
	}
	delete(m.byID, id)
	return nil
}

func (m *memoryDeploymentRepository) listForEnvironmentLocked(environmentID uuid.UUID) []*Deployment {
	var out []*Deployment
	for _, deployment := range m.byID {
		if deployment.EnvironmentID == environmentID {
			out = append(out, cloneDeployment(deployment))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Started.After(out[j].Started)
	})
	return out
}

type memoryStatusRepository struct {
	mu       sync.RWMutex
	statuses []*Status
}

// NewMemoryStatusRepository constructs an in-memory status repository.
func NewMemoryStatusRepository() StatusRepository {
	return &memoryStatusRepository{}
}

func (m *memoryStatusRepository) Append(_ context.Context, status *Status) (*Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cloned := cloneStatus(status)
	m.statuses = append(m.statuses, cloned)
	return cloneStatus(cloned), nil
}

func (m *memoryStatusRepository) ListForDeployment(_ context.Context, deploymentID uuid.UUID) ([]*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*Status
	for _, status := range m.statuses {
		if status.DeploymentID == deploymentID {
			out = append(out, cloneStatus(status))
		}
	}
	return out, nil
}

func (m *memoryStatusRepository) CountByLevel(_ context.Context, deploymentID uuid.UUID, level string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, status := range m.statuses {
		if status.DeploymentID == deploymentID && status.Level == level {
			count++
		}
	}
	return count, nil
}

func cloneDeployment(deployment *Deployment) *Deployment {
	if deployment == nil {
		return nil
	}
	cloned := *deployment
	cloned.Description = objects.Clone(deployment.Description)
	cloned.Action = objects.Clone(deployment.Action)
	cloned.Result = objects.Clone(deployment.Result)
	if deployment.Finished != nil {
		finished := *deployment.Finished
		cloned.Finished = &finished
	}
	return &cloned
}

func cloneStatus(status *Status) *Status {
	if status == nil {
		return nil
	}
	cloned := *status
	if status.EntityID != nil {
		entity := *status.EntityID
		cloned.EntityID = &entity
	}
	return &cloned
}
