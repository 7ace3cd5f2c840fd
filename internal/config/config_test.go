package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "development" {
		t.Fatalf("expected development, got %s", cfg.Environment)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("expected port 8080, got %d", cfg.HTTP.Port)
	}
	if cfg.Security.SessionTTL != 12*time.Hour {
		t.Fatalf("expected 12h session ttl, got %s", cfg.Security.SessionTTL)
	}
	if cfg.Exam.PassThreshold != 55 {
		t.Fatalf("expected pass threshold 55, got %v", cfg.Exam.PassThreshold)
	}
	if cfg.Storage.BucketSchedules != "examdesk-schedules" {
		t.Fatalf("unexpected bucket: %s", cfg.Storage.BucketSchedules)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EXAMDESK_ENVIRONMENT", "production")
	t.Setenv("EXAMDESK_REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "production" {
		t.Fatalf("expected production, got %s", cfg.Environment)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("expected redis addr override, got %s", cfg.Redis.Addr)
	}
}
