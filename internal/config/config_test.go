package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Server.ServiceName != "assessment-service" {
		t.Errorf("Expected service name assessment-service, got %s", cfg.Server.ServiceName)
	}
	if cfg.Grading.RegradePolicy != RegradeReplace {
		t.Errorf("Expected regrade policy %s, got %s", RegradeReplace, cfg.Grading.RegradePolicy)
	}
	if cfg.Analytics.MinPassingRate != 0.5 || cfg.Analytics.MinCompletionRate != 0.5 {
		t.Errorf("Expected attention thresholds of 0.5, got %f and %f", cfg.Analytics.MinPassingRate, cfg.Analytics.MinCompletionRate)
	}
	if cfg.Analytics.TopTests != 5 {
		t.Errorf("Expected 5 top tests, got %d", cfg.Analytics.TopTests)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("REGRADE_POLICY", RegradeReject)
	t.Setenv("GRADING_LOCK_TTL", "45s")
	t.Setenv("ATTENTION_MIN_PASSING_RATE", "0.7")
	t.Setenv("DASHBOARD_TOP_TESTS", "10")
	t.Setenv("CONSUL_ENABLED", "false")

	cfg := Load()

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Grading.RegradePolicy != RegradeReject {
		t.Errorf("Expected regrade policy %s, got %s", RegradeReject, cfg.Grading.RegradePolicy)
	}
	if cfg.Grading.LockTTL != 45*time.Second {
		t.Errorf("Expected lock ttl 45s, got %v", cfg.Grading.LockTTL)
	}
	if cfg.Analytics.MinPassingRate != 0.7 {
		t.Errorf("Expected min passing rate 0.7, got %f", cfg.Analytics.MinPassingRate)
	}
	if cfg.Analytics.TopTests != 10 {
		t.Errorf("Expected 10 top tests, got %d", cfg.Analytics.TopTests)
	}
	if cfg.Consul.Enabled {
		t.Errorf("Expected consul registration disabled")
	}
}

func TestEnvHelpersFallBackOnBadInput(t *testing.T) {
	t.Setenv("TEST_INT", "abc")
	t.Setenv("TEST_UINT", "-1")
	t.Setenv("TEST_DURATION", "soon")
	t.Setenv("TEST_BOOL", "maybe")
	t.Setenv("TEST_FLOAT", "x.y")

	if got := getEnvAsInt("TEST_INT", 3); got != 3 {
		t.Errorf("Expected fallback 3, got %d", got)
	}
	if got := getEnvAsUint64("TEST_UINT", 7); got != 7 {
		t.Errorf("Expected fallback 7, got %d", got)
	}
	if got := getEnvAsDuration("TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("Expected fallback 1s, got %v", got)
	}
	if got := getEnvAsBool("TEST_BOOL", true); !got {
		t.Errorf("Expected fallback true, got %v", got)
	}
	if got := getEnvAsFloat("TEST_FLOAT", 1.5); got != 1.5 {
		t.Errorf("Expected fallback 1.5, got %f", got)
	}
	if got := getEnv("TEST_UNSET_KEY", "default"); got != "default" {
		t.Errorf("Expected default, got %s", got)
	}
}
