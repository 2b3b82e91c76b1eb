package middleware

import (
	"testing"

	"golang.org/x/time/rate"
)

func TestLimitFromEnvDefaults(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")

	rps, burst := limitFromEnv()
	if rps != rate.Limit(5) {
		t.Errorf("expected default rps 5, got %v", rps)
	}
	if burst != 30 {
		t.Errorf("expected default burst 30, got %d", burst)
	}
}

func TestLimitFromEnvOverrides(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "10")

	rps, burst := limitFromEnv()
	if rps != rate.Limit(2.5) {
		t.Errorf("expected rps 2.5, got %v", rps)
	}
	if burst != 10 {
		t.Errorf("expected burst 10, got %d", burst)
	}
}

func TestLimitFromEnvIgnoresGarbage(t *testing.T) {
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "-4")

	rps, burst := limitFromEnv()
	if rps != rate.Limit(5) {
		t.Errorf("expected fallback rps 5, got %v", rps)
	}
	if burst != 30 {
		t.Errorf("expected fallback burst 30, got %d", burst)
	}
}
