package deployments

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewDeploymentRepository creates a repository for deployment records.
func NewDeploymentRepository(db *bun.DB) repository.Repository[*Deployment] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Deployment]{
		NewRecord: func() *Deployment { return &Deployment{} },
		GetID: func(deployment *Deployment) uuid.UUID {
			return deployment.ID
		},
		SetID: func(deployment *Deployment, id uuid.UUID) {
			deployment.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(deployment *Deployment) string {
			return deployment.ID.String()
		},
	})
}

// NewStatusRepository creates a repository for deployment status rows.
func NewStatusRepository(db *bun.DB) repository.Repository[*Status] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Status]{
		NewRecord: func() *Status { return &Status{} },
		GetID: func(status *Status) uuid.UUID {
			return status.ID
		},
		SetID: func(status *Status, id uuid.UUID) {
			status.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(status *Status) string {
			return status.ID.String()
		},
	})
}
