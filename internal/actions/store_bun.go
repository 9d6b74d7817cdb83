package actions

import (
	"context"
	"fmt"

	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
	"github.com/uptrace/bun"
)

// BunSubmissionStore persists submissions inside a single database
// transaction. The engine dispatch runs inside the transaction too, so a
// transport failure rolls everything back and the session stays opened.
type BunSubmissionStore struct {
	db *bun.DB
}

// NewBunSubmissionStore creates a submission store over a bun database.
func NewBunSubmissionStore(db *bun.DB) *BunSubmissionStore {
	return &BunSubmissionStore{db: db}
}

func (s *BunSubmissionStore) SubmitDeployment(ctx context.Context, sub *Submission, dispatch func(context.Context) error) error {
	if s.db == nil {
		return fmt.Errorf("submission store: database not configured")
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Guarded transition: only an opened session may move in flight.
		res, err := tx.NewUpdate().
			Model(sub.Session).
			Column("state", "updated_at").
			Where("?TableAlias.id = ?", sub.Session.ID).
			Where("?TableAlias.state = ?", catalogsessions.StateOpened).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("transition session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("transition session: %w", err)
		}
		if affected == 0 {
			return ErrSubmissionConflict
		}

		siblings, err := tx.NewSelect().
			Model((*catalogsessions.Session)(nil)).
			Where("?TableAlias.environment_id = ?", sub.Session.EnvironmentID).
			Where("?TableAlias.id != ?", sub.Session.ID).
			Where("?TableAlias.state IN (?)", bun.In([]catalogsessions.State{
				catalogsessions.StateDeploying,
				catalogsessions.StateDeleting,
			})).
			Count(ctx)
		if err != nil {
			return fmt.Errorf("check sibling sessions: %w", err)
		}
		if siblings > 0 {
			return ErrSubmissionConflict
		}

		if _, err := tx.NewInsert().Model(sub.Deployment).Exec(ctx); err != nil {
			return fmt.Errorf("insert deployment: %w", err)
		}
		if _, err := tx.NewInsert().Model(sub.FirstStatus).Exec(ctx); err != nil {
			return fmt.Errorf("insert deployment status: %w", err)
		}

		return dispatch(ctx)
	})
}
