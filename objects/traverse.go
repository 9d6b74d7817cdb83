package objects

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrMalformedPath reports a path that cannot be resolved against the
	// supplied document (unknown key, out-of-range index, scalar mid-path).
	ErrMalformedPath = errors.New("objects: source object or path is malformed")
	// ErrNotAList reports list operations addressed at a non-list node.
	ErrNotAList = errors.New("objects: path does not resolve to a list")
	// ErrRootMutation reports update/remove calls addressed at the document root.
	ErrRootMutation = errors.New("objects: document root cannot be mutated in place")
)

// Get resolves a slash-separated path against a document tree.
//
// Path segments resolve maps by key. Against a list, a segment first selects
// the element whose "?".id equals the segment; only when no element matches
// and the segment is all digits does it fall back to a positional index.
//
//	value, err := objects.Get("/services/ae4f…/name", doc)
func Get(path string, source any) (any, error) {
	node := source
	for _, segment := range splitPath(path) {
		switch current := node.(type) {
		case []any:
			next, err := resolveListSegment(current, segment)
			if err != nil {
				return nil, err
			}
			node = next
		case map[string]any:
			next, ok := current[segment]
			if !ok {
				return nil, fmt.Errorf("%w: %q", ErrMalformedPath, path)
			}
			node = next
		case string, int, int64, float64, bool:
			return node, nil
		default:
			return nil, fmt.Errorf("%w: %q", ErrMalformedPath, path)
		}
	}
	return node, nil
}

// Update replaces the value addressed by path. The document root itself
// cannot be replaced this way.
func Update(path string, value any, source any) error {
	parent, key, err := resolveParent(path, source)
	if err != nil {
		return err
	}
	switch node := parent.(type) {
	case map[string]any:
		node[key] = value
		return nil
	case []any:
		for i, item := range node {
			if ID(item) == key {
				node[i] = value
				return nil
			}
		}
		if idx, ok := numericIndex(key, len(node)); ok {
			node[idx] = value
			return nil
		}
		return fmt.Errorf("%w: %q", ErrMalformedPath, path)
	default:
		return fmt.Errorf("%w: %q", ErrMalformedPath, path)
	}
}

// Insert appends a value to the list addressed by path. Because documents
// hold lists by value inside their parent maps, the parent entry is rewritten
// with the grown slice.
func Insert(path string, value any, source any) error {
	return appendToList(path, source, value)
}

// Extend appends every element of values to the list addressed by path.
func Extend(path string, values []any, source any) error {
	return appendToList(path, source, values...)
}

// Remove deletes the node addressed by path from its parent container. List
// elements are matched by "?".id first, positional index second, mirroring Get.
func Remove(path string, source any) error {
	parent, key, err := resolveParent(path, source)
	if err != nil {
		return err
	}
	switch node := parent.(type) {
	case map[string]any:
		if _, ok := node[key]; !ok {
			return fmt.Errorf("%w: %q", ErrMalformedPath, path)
		}
		delete(node, key)
		return nil
	case []any:
		idx := -1
		for i, item := range node {
			if ID(item) == key {
				idx = i
				break
			}
		}
		if idx < 0 {
			i, ok := numericIndex(key, len(node))
			if !ok {
				return fmt.Errorf("%w: %q", ErrMalformedPath, path)
			}
			idx = i
		}
		shrunk := append(node[:idx:idx], node[idx+1:]...)
		return Update(parentPath(path), shrunk, source)
	default:
		return fmt.Errorf("%w: %q", ErrMalformedPath, path)
	}
}

// appendToList grows the list addressed by path. The grown slice is written
// back through the list's parent because append may reallocate the backing
// array.
func appendToList(path string, source any, values ...any) error {
	node, err := Get(path, source)
	if err != nil {
		return err
	}
	list, ok := node.([]any)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotAList, path)
	}
	return Update(path, append(list, values...), source)
}

// resolveParent returns the container holding the last path segment, plus
// that segment.
func resolveParent(path string, source any) (any, string, error) {
	segments := splitPath(path)
	if len(segments) == 0 {
		return nil, "", ErrRootMutation
	}
	parent, err := Get(parentPath(path), source)
	if err != nil {
		return nil, "", err
	}
	return parent, segments[len(segments)-1], nil
}

func parentPath(path string) string {
	segments := splitPath(path)
	if len(segments) <= 1 {
		return "/"
	}
	return "/" + strings.Join(segments[:len(segments)-1], "/")
}

func resolveListSegment(list []any, segment string) (any, error) {
	for _, item := range list {
		if ID(item) == segment {
			return item, nil
		}
	}
	if idx, ok := numericIndex(segment, len(list)); ok {
		return list[idx], nil
	}
	return nil, fmt.Errorf("%w: list segment %q", ErrMalformedPath, segment)
}

func numericIndex(segment string, length int) (int, bool) {
	if segment == "" {
		return 0, false
	}
	for _, r := range segment {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(segment)
	if err != nil || idx < 0 || idx >= length {
		return 0, false
	}
	return idx, true
}

func splitPath(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0:0]
	for _, part := range parts {
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
