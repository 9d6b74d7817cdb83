package objects

import "strings"

// SanitizedMessage replaces every credential-looking string value found by
// the Sanitizer.
const SanitizedMessage = "*** SANITIZED ***"

// DefaultSanitizer masks the credential keys the engine payload is known to
// carry.
var DefaultSanitizer = NewSanitizer("token", "pass", "trustid")

// Sanitizer masks string values stored under keys whose name looks like a
// credential. Used before task payloads are persisted or logged.
type Sanitizer struct {
	tokens  []string
	message string
}

// NewSanitizer builds a sanitizer for the supplied key substrings.
func NewSanitizer(tokens ...string) *Sanitizer {
	return &Sanitizer{tokens: tokens, message: SanitizedMessage}
}

// Sanitize returns a copy of obj with every matching value replaced. The
// input is never mutated.
func (s *Sanitizer) Sanitize(obj any) any {
	switch v := obj.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, item := range v {
			if _, isString := item.(string); isString && s.containsToken(key) {
				out[key] = s.message
				continue
			}
			out[key] = s.Sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = s.Sanitize(item)
		}
		return out
	default:
		return obj
	}
}

func (s *Sanitizer) containsToken(key string) bool {
	lower := strings.ToLower(key)
	for _, token := range s.tokens {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}
