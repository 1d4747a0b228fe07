package logger

import (
	"strings"
	"testing"
)

func TestSanitizeKVsRedactsSensitiveKeys(t *testing.T) {
	out := sanitizeKVs([]interface{}{
		"email", "a@b.co",
		"password", "hunter2",
		"notes", "dizzy after lunch",
		"status", "taken",
	})
	if len(out) != 8 {
		t.Fatalf("unexpected kv length: %d", len(out))
	}
	for _, i := range []int{1, 3, 5} {
		if out[i] != "[REDACTED]" {
			t.Fatalf("value for %v not redacted: %v", out[i-1], out[i])
		}
	}
	if out[7] != "taken" {
		t.Fatalf("status should pass through, got %v", out[7])
	}
}

func TestSanitizeKVsHashesIdentifiers(t *testing.T) {
	out := sanitizeKVs([]interface{}{"patient_id", "5a4e0b7c-2f1e-4f55-9b1c-0d1f4a7b9e21"})
	got, ok := out[1].(string)
	if !ok || !strings.HasPrefix(got, "hash:") {
		t.Fatalf("expected hashed value, got %v", out[1])
	}
	if len(got) != len("hash:")+12 {
		t.Fatalf("unexpected hash length: %q", got)
	}
}

func TestSanitizeKVsOddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"k", "v", "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("dangling key should be kept: %v", out)
	}
}
