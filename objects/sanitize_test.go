package objects

import "testing"

func TestSanitizeMasksCredentialKeys(t *testing.T) {
	payload := map[string]any{
		"token":    "secret",
		"Password": "hunter2",
		"trustId":  "trust",
		"name":     "visible",
		"nested": map[string]any{
			"authToken": "secret",
			"count":     3,
		},
		"list": []any{
			map[string]any{"pass": "secret"},
		},
	}

	out := DefaultSanitizer.Sanitize(payload).(map[string]any)

	for _, key := range []string{"token", "Password", "trustId"} {
		if out[key] != SanitizedMessage {
			t.Fatalf("expected %s to be masked, got %v", key, out[key])
		}
	}
	if out["name"] != "visible" {
		t.Fatalf("expected name untouched, got %v", out["name"])
	}
	nested := out["nested"].(map[string]any)
	if nested["authToken"] != SanitizedMessage {
		t.Fatalf("expected nested token masked, got %v", nested["authToken"])
	}
	if nested["count"] != 3 {
		t.Fatalf("expected nested count untouched, got %v", nested["count"])
	}
	item := out["list"].([]any)[0].(map[string]any)
	if item["pass"] != SanitizedMessage {
		t.Fatalf("expected list element masked, got %v", item["pass"])
	}
}

func TestSanitizeLeavesNonStringValues(t *testing.T) {
	payload := map[string]any{"token": 42}

	out := DefaultSanitizer.Sanitize(payload).(map[string]any)
	if out["token"] != 42 {
		t.Fatalf("non-string values pass through, got %v", out["token"])
	}
}

func TestSanitizeDoesNotMutateInput(t *testing.T) {
	payload := map[string]any{"token": "secret"}

	_ = DefaultSanitizer.Sanitize(payload)
	if payload["token"] != "secret" {
		t.Fatalf("sanitize must copy, not mutate")
	}
}
