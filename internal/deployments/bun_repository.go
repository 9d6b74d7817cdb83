package deployments

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunDeploymentRepository implements DeploymentRepository on top of bun.
type BunDeploymentRepository struct {
	repo repository.Repository[*Deployment]
}

// NewBunDeploymentRepository creates a deployment repository.
func NewBunDeploymentRepository(db *bun.DB) *BunDeploymentRepository {
	return &BunDeploymentRepository{repo: NewDeploymentRepository(db)}
}

func (r *BunDeploymentRepository) Create(ctx context.Context, deployment *Deployment) (*Deployment, error) {
	return r.repo.Create(ctx, deployment)
}

func (r *BunDeploymentRepository) Update(ctx context.Context, deployment *Deployment) (*Deployment, error) {
	return r.repo.Update(ctx, deployment,
		repository.UpdateByID(deployment.ID.String()),
		repository.UpdateColumns(
			"result",
			"finished",
		),
	)
}

func (r *BunDeploymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Deployment, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "deployment", id.String())
	}
	return record, nil
}

func (r *BunDeploymentRepository) ListForEnvironment(ctx context.Context, environmentID uuid.UUID) ([]*Deployment, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.environment_id = ?", environmentID.String()).
			OrderExpr("?TableAlias.started DESC")
	}))
	return records, err
}

func (r *BunDeploymentRepository) LatestStarted(ctx context.Context, environmentID uuid.UUID) (*Deployment, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.environment_id = ?", environmentID.String()).
				OrderExpr("?TableAlias.started DESC")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "deployment", Key: environmentID.String()}
	}
	return records[0], nil
}

func (r *BunDeploymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Deployment{ID: id})
}

// BunStatusRepository implements StatusRepository on top of bun.
type BunStatusRepository struct {
	repo repository.Repository[*Status]
}

// NewBunStatusRepository creates a status repository.
func NewBunStatusRepository(db *bun.DB) *BunStatusRepository {
	return &BunStatusRepository{repo: NewStatusRepository(db)}
}

func (r *BunStatusRepository) Append(ctx context.Context, status *Status) (*Status, error) {
	return r.repo.Create(ctx, status)
}

func (r *BunStatusRepository) ListForDeployment(ctx context.Context, deploymentID uuid.UUID) ([]*Status, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.deployment_id = ?", deploymentID.String()).
			OrderExpr("?TableAlias.created_at ASC")
	}))
	return records, err
}

func (r *BunStatusRepository) CountByLevel(ctx context.Context, deploymentID uuid.UUID, level string) (int, error) {
	_, total, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deployment_id = ?", deploymentID.String()).
				Where("?TableAlias.level = ?", level)
		}),
	)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}
