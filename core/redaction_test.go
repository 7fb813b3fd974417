package core

import "testing"

func TestRedactSensitiveMap(t *testing.T) {
	fields := map[string]any{
		"flow":               "AppOnly",
		"authority":          "https://login.example/tenant",
		"client_id":          "app-1",
		"client_secret":      "raw-secret",
		"authorization_code": "code-abc",
		"access_token":       "tok-123",
		"user_assertion":     "assertion-raw",
		"nested": map[string]any{
			"api_key":  "k",
			"resource": "https://graph.example",
		},
		"list": []any{
			map[string]any{"password": "p", "request_id": "r-1"},
		},
	}

	redacted := RedactSensitiveMap(fields)

	for _, key := range []string{"client_secret", "authorization_code", "access_token", "user_assertion"} {
		if redacted[key] != RedactedValue {
			t.Fatalf("%s not redacted: %v", key, redacted[key])
		}
	}
	if redacted["flow"] != "AppOnly" || redacted["client_id"] != "app-1" {
		t.Fatalf("traceability fields must survive: %v", redacted)
	}
	nested := redacted["nested"].(map[string]any)
	if nested["api_key"] != RedactedValue {
		t.Fatalf("nested api_key not redacted: %v", nested)
	}
	if nested["resource"] != "https://graph.example" {
		t.Fatalf("nested resource must survive: %v", nested)
	}
	item := redacted["list"].([]any)[0].(map[string]any)
	if item["password"] != RedactedValue || item["request_id"] != "r-1" {
		t.Fatalf("list entries not handled: %v", item)
	}

	// Source map stays untouched.
	if fields["client_secret"] != "raw-secret" {
		t.Fatalf("redaction mutated the source map")
	}
}

func TestRedactSensitiveMap_EmptyInput(t *testing.T) {
	if out := RedactSensitiveMap(nil); len(out) != 0 {
		t.Fatalf("expected empty map, got %v", out)
	}
}
