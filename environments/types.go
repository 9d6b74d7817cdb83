// Package environments declares the environment aggregate shared by the
// catalog services: a tenant-owned application topology document plus the
// monotonic version counter the optimistic-concurrency protocol hangs off.
package environments

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Environment is a deployable application topology owned by a single tenant.
//
// Version only ever grows, and only the result reconciler advances it: each
// successfully applied deployment bumps it by exactly one. Sessions snapshot
// the value at branch time and are rejected as stale once it moves past them.
type Environment struct {
	bun.BaseModel `bun:"table:environments,alias:e"`

	ID          uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	Name        string         `bun:"name,notnull" json:"name"`
	TenantID    string         `bun:"tenant_id,notnull" json:"tenant_id"`
	Version     int64          `bun:"version,notnull,default:0" json:"version"`
	Description map[string]any `bun:"description,type:jsonb" json:"description,omitempty"`
	CreatedAt   time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Status is the derived environment-level state. It is computed from the
// environment's sessions on every read and never stored.
type Status string

const (
	StatusReady         Status = "ready"
	StatusPending       Status = "pending"
	StatusDeploying     Status = "deploying"
	StatusDeleting      Status = "deleting"
	StatusDeployFailure Status = "deploy_failure"
	StatusDeleteFailure Status = "delete_failure"
)
