// Package actions builds engine task payloads and submits deployments: the
// deployment row, its opening status line and the session state transition
// are persisted atomically, then the task is handed to the dispatcher.
package actions

import (
	catalogenvs "github.com/goliatone/go-appcatalog/environments"
	"github.com/goliatone/go-appcatalog/objects"
	"github.com/goliatone/go-appcatalog/pkg/interfaces"
	catalogsessions "github.com/goliatone/go-appcatalog/sessions"
)

// ActionMethodDeploy is the engine method invoked for a full deployment.
const ActionMethodDeploy = "deploy"

// ActionTarget names an invocable action found in the object model: the id
// of the object carrying it plus the declaration stored under `?._actions`.
type ActionTarget struct {
	ObjectID string
	Name     string
	Enabled  bool
}

// NewActionDescriptor builds the action block of a task payload. A teardown
// task carries no action block at all.
func NewActionDescriptor(method, objectID string, args map[string]any) map[string]any {
	if method == "" || objectID == "" {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}
	return map[string]any{
		"object_id": objectID,
		"method":    method,
		"args":      args,
	}
}

// BuildTask assembles the payload handed to the orchestration engine. The
// session document is cloned; inside the copy the root object is stamped
// with the environment id and the services list is renamed to applications,
// which is the key the engine expects. Teardown tasks (nil objects tree)
// keep the document untouched.
func BuildTask(action map[string]any, env *catalogenvs.Environment, session *catalogsessions.Session, creds interfaces.Credentials) interfaces.Task {
	model := objects.Clone(session.Description)
	if root, ok := model[objects.KeyObjects].(map[string]any); ok && root != nil {
		if meta, ok := root[objects.MetadataKey].(map[string]any); ok {
			meta["id"] = env.ID.String()
		}
		services := root[objects.KeyServices]
		delete(root, objects.KeyServices)
		if services == nil {
			services = []any{}
		}
		root[objects.KeyApplications] = services
	}

	return interfaces.Task{
		ID:        env.ID.String(),
		Action:    action,
		Model:     model,
		Token:     creds.Token,
		ProjectID: creds.ProjectID,
		UserID:    creds.UserID,
	}
}

// FindAction walks the object model looking for the object whose `?._actions`
// map declares the given action id. Lists and nested maps are searched
// depth-first; the first match wins.
func FindAction(model any, actionID string) *ActionTarget {
	switch node := model.(type) {
	case []any:
		for _, item := range node {
			if target := FindAction(item, actionID); target != nil {
				return target
			}
		}
	case map[string]any:
		if target := actionFromMetadata(node, actionID); target != nil {
			return target
		}
		for _, value := range node {
			if target := FindAction(value, actionID); target != nil {
				return target
			}
		}
	}
	return nil
}

func actionFromMetadata(node map[string]any, actionID string) *ActionTarget {
	meta, ok := node[objects.MetadataKey].(map[string]any)
	if !ok {
		return nil
	}
	id, ok := meta["id"].(string)
	if !ok {
		return nil
	}
	declared, ok := meta["_actions"].(map[string]any)
	if !ok {
		return nil
	}
	decl, ok := declared[actionID].(map[string]any)
	if !ok {
		return nil
	}

	target := &ActionTarget{ObjectID: id, Enabled: true}
	if name, ok := decl["name"].(string); ok {
		target.Name = name
	}
	if enabled, ok := decl["enabled"].(bool); ok {
		target.Enabled = enabled
	}
	return target
}
