package sessions

import (
	"context"
	"fmt"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunSessionRepository implements SessionRepository on top of bun.
type BunSessionRepository struct {
	repo repository.Repository[*Session]
}

// NewBunSessionRepository creates a session repository.
func NewBunSessionRepository(db *bun.DB) *BunSessionRepository {
	return &BunSessionRepository{repo: NewSessionRepository(db)}
}

func (r *BunSessionRepository) Create(ctx context.Context, session *Session) (*Session, error) {
	record, err := r.repo.Create(ctx, session)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *BunSessionRepository) Update(ctx context.Context, session *Session) (*Session, error) {
	updated, err := r.repo.Update(ctx, session,
		repository.UpdateByID(session.ID.String()),
		repository.UpdateColumns(
			"state",
			"description",
			"updated_at",
		),
	)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *BunSessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, id.String())
	}
	return record, nil
}

func (r *BunSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.repo.Delete(ctx, &Session{ID: id})
}

func (r *BunSessionRepository) ListForEnvironment(ctx context.Context, environmentID uuid.UUID) ([]*Session, error) {
	records, _, err := r.repo.List(ctx, repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.environment_id = ?", environmentID.String()).
			OrderExpr("?TableAlias.version DESC, ?TableAlias.updated_at DESC")
	}))
	return records, err
}

func (r *BunSessionRepository) FindByState(ctx context.Context, environmentID uuid.UUID, state State) (*Session, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.environment_id = ?", environmentID.String()).
				Where("?TableAlias.state = ?", string(state))
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Key: fmt.Sprintf("%s/%s", environmentID, state)}
	}
	return records[0], nil
}

func mapRepositoryError(err error, key string) error {
	if err == nil {
		return nil
	}
	if errors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Key: key}
	}
	return fmt.Errorf("session repository error: %w", err)
}
