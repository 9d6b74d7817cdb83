// Package objects implements the object-model document used by the catalog
// core: a tree of nested maps and slices in which every application object
// carries a "?" metadata block with at least an id and a type. The package is
// a pure library; nothing here touches storage or transport.
package objects

import (
	"strings"

	"github.com/google/uuid"
)

// MetadataKey is the reserved key under which object nodes store their
// metadata block.
const MetadataKey = "?"

// Document is the root object-model structure persisted with an environment
// and branched into sessions. Objects is nil when the environment is marked
// for deletion.
type Document = map[string]any

// Well-known top-level document keys.
const (
	KeyObjects     = "Objects"
	KeyObjectsCopy = "ObjectsCopy"
	KeyAttributes  = "Attributes"
)

// Keys the engine and the API disagree on: the stored model lists child
// applications under "services", the engine task payload expects
// "applications".
const (
	KeyServices     = "services"
	KeyApplications = "applications"
)

// Metadata returns the "?" block of an object node, or nil when the node has
// none or is not an object.
func Metadata(node any) map[string]any {
	obj, ok := node.(map[string]any)
	if !ok {
		return nil
	}
	meta, ok := obj[MetadataKey].(map[string]any)
	if !ok {
		return nil
	}
	return meta
}

// ID returns the object id stored in the node's metadata block.
func ID(node any) string {
	meta := Metadata(node)
	if meta == nil {
		return ""
	}
	id, _ := meta["id"].(string)
	return id
}

// TypeName returns the object type stored in the node's metadata block.
func TypeName(node any) string {
	meta := Metadata(node)
	if meta == nil {
		return ""
	}
	name, _ := meta["type"].(string)
	return name
}

// NewObject builds an object node with a fresh id and the supplied type.
func NewObject(typeName string) map[string]any {
	meta := map[string]any{"id": uuid.NewString()}
	if typeName != "" {
		meta["type"] = typeName
	}
	return map[string]any{MetadataKey: meta}
}

// Clone deep-copies a document tree. Scalars are shared; maps and slices are
// copied so mutations on the clone never leak into the source.
func Clone[T any](value T) T {
	return cloneValue(any(value)).(T)
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		if v == nil {
			return map[string]any(nil)
		}
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = cloneValue(item)
		}
		return out
	case []any:
		if v == nil {
			return []any(nil)
		}
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return value
	}
}

// Regenerate walks the tree and assigns a fresh id to every object node that
// carries a metadata block, replacing %KEY% placeholders in string leaves
// with the supplied values. Used when stamping template documents (default
// networks) into a new environment.
func Regenerate(value any, replacements map[string]string) any {
	switch v := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			out[key] = Regenerate(item, replacements)
		}
		if meta, ok := out[MetadataKey].(map[string]any); ok {
			meta["id"] = uuid.NewString()
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = Regenerate(item, replacements)
		}
		return out
	case string:
		for key, repl := range replacements {
			v = strings.ReplaceAll(v, "%"+key+"%", repl)
		}
		return v
	default:
		return value
	}
}
