package sessions

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewSessionRepository creates a repository for session records.
func NewSessionRepository(db *bun.DB) repository.Repository[*Session] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Session]{
		NewRecord: func() *Session { return &Session{} },
		GetID: func(session *Session) uuid.UUID {
			return session.ID
		},
		SetID: func(session *Session, id uuid.UUID) {
			session.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(session *Session) string {
			return session.ID.String()
		},
	})
}
