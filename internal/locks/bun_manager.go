package locks

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Lock is the sentinel row an acquired name is represented by.
type Lock struct {
	bun.BaseModel `bun:"table:locks,alias:l"`

	ID string    `bun:",pk" json:"id"`
	TS time.Time `bun:"ts,notnull" json:"ts"`
}

// BunManager implements Manager over a locks table; the primary-key
// constraint on the name arbitrates contenders.
type BunManager struct {
	db    *bun.DB
	delay time.Duration
}

// NewBunManager creates a database-backed lock manager.
func NewBunManager(db *bun.DB) *BunManager {
	return &BunManager{db: db, delay: RetryDelay}
}

func (m *BunManager) Acquire(ctx context.Context, name string) (Handle, error) {
	row := &Lock{ID: name, TS: time.Now().UTC()}
	for attempt := 0; attempt < MaxAcquireAttempts; attempt++ {
		if attempt > 0 {
			if err := wait(ctx, m.delay); err != nil {
				return nil, err
			}
		}
		// A duplicate key means another holder; any other failure is
		// indistinguishable at this level, so it costs an attempt too.
		if _, err := m.db.NewInsert().Model(row).Exec(ctx); err == nil {
			return &bunHandle{db: m.db, name: name}, nil
		}
	}
	return nil, ErrLockHeld
}

type bunHandle struct {
	db   *bun.DB
	name string
}

func (h *bunHandle) Release(ctx context.Context) error {
	_, err := h.db.NewDelete().
		Model((*Lock)(nil)).
		Where("?TableAlias.id = ?", h.name).
		Exec(ctx)
	return err
}
