package logger

import "testing"

func TestRedact(t *testing.T) {
	in := []interface{}{"username", "asha", "password", "hunter2", "jwt_token", "abc", "pr_id", 7}
	out := redact(in)

	if out[1] != "asha" {
		t.Errorf("username should pass through, got %v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Errorf("password should be redacted, got %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Errorf("token should be redacted, got %v", out[5])
	}
	if out[7] != 7 {
		t.Errorf("pr_id should pass through, got %v", out[7])
	}
	if in[3] != "hunter2" {
		t.Error("redact must not modify its input")
	}
}

func TestRedact_OddLength(t *testing.T) {
	out := redact([]interface{}{"password"})
	if len(out) != 1 || out[0] != "password" {
		t.Errorf("dangling key should be kept as is, got %v", out)
	}
}
