// Package deployments declares the deployment (task) record and its
// append-only status log.
package deployments

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Deployment tracks one execution attempt (deploy or delete) against an
// environment. Finished is set exactly once, by the result reconciler.
type Deployment struct {
	bun.BaseModel `bun:"table:deployments,alias:d"`

	ID            uuid.UUID      `bun:",pk,type:uuid" json:"id"`
	EnvironmentID uuid.UUID      `bun:"environment_id,notnull,type:uuid" json:"environment_id"`
	Description   map[string]any `bun:"description,type:jsonb" json:"description,omitempty"`
	Action        map[string]any `bun:"action,type:jsonb" json:"action,omitempty"`
	Result        map[string]any `bun:"result,type:jsonb" json:"result,omitempty"`
	Started       time.Time      `bun:"started,nullzero,default:current_timestamp" json:"started"`
	Finished      *time.Time     `bun:"finished,nullzero" json:"finished,omitempty"`
}

// State derives the deployment lifecycle from the record; it is never stored.
func (d *Deployment) State() DeploymentState {
	if d.Finished != nil {
		return DeploymentStateCompleted
	}
	return DeploymentStateRunning
}

// DeploymentState is the derived execution state of a deployment.
type DeploymentState string

const (
	DeploymentStateRunning   DeploymentState = "running"
	DeploymentStateCompleted DeploymentState = "completed"
)

// Severity levels used by status log entries.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Status is one line of a deployment's progress log. Rows are append-only
// and may be written concurrently by progress-notification deliveries; no
// ordering beyond the insertion timestamp is guaranteed.
type Status struct {
	bun.BaseModel `bun:"table:deployment_statuses,alias:ds"`

	ID           uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	DeploymentID uuid.UUID  `bun:"deployment_id,notnull,type:uuid" json:"deployment_id"`
	EntityID     *string    `bun:"entity_id" json:"entity_id,omitempty"`
	Level        string     `bun:"level,notnull,default:'info'" json:"level"`
	Text         string     `bun:"text,notnull" json:"text"`
	CreatedAt    time.Time  `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
}
