// Package sessions declares the configuration-session model: a per-user
// draft copy of an environment's document tagged with the environment version
// it was branched from.
package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Session is a private working copy of an environment document.
//
// Version is frozen at branch time and never advances; staleness is detected
// by comparing it against the environment's current version. State follows
// the lifecycle below and never leaves a terminal value.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID            uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	EnvironmentID uuid.UUID      `bun:"environment_id,notnull,type:uuid" json:"environment_id"`
	UserID        string         `bun:"user_id,notnull" json:"user_id"`
	Version       int64          `bun:"version,notnull,default:0" json:"version"`
	State         State          `bun:"state,notnull" json:"state"`
	Description   map[string]any `bun:"description,type:jsonb" json:"description,omitempty"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// State is the session lifecycle state.
//
//	opened ──▶ deploying ──▶ deployed | deploy_failure
//	       └─▶ deleting  ──▶ deployed | delete_failure
//
// An opened session may also be deleted outright while no sibling deploy is
// in flight; that removes the record rather than transitioning it.
type State string

const (
	StateOpened        State = "opened"
	StateDeploying     State = "deploying"
	StateDeleting      State = "deleting"
	StateDeployed      State = "deployed"
	StateDeployFailure State = "deploy_failure"
	StateDeleteFailure State = "delete_failure"
)

// InFlight reports whether the state marks a deployment the engine is still
// executing.
func (s State) InFlight() bool {
	return s == StateDeploying || s == StateDeleting
}

// Terminal reports whether the session can never transition again.
func (s State) Terminal() bool {
	switch s {
	case StateDeployed, StateDeployFailure, StateDeleteFailure:
		return true
	}
	return false
}
