package env

import "testing"

func TestGetFallsBackWhenUnset(t *testing.T) {
	t.Setenv("PAWFUND_TEST_PORT", "")
	if got := Get("PAWFUND_TEST_PORT", "8080"); got != "8080" {
		t.Fatalf("expected fallback, got %q", got)
	}
	t.Setenv("PAWFUND_TEST_PORT", "9090")
	if got := Get("PAWFUND_TEST_PORT", "8080"); got != "9090" {
		t.Fatalf("expected env value, got %q", got)
	}
}
