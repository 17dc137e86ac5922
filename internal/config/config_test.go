package config

import (
	"testing"
	"time"
)

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error without JWT_SECRET")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKER", "")
	t.Setenv("DEFAULT_PHOTO_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessTokenTTL != 15*24*time.Hour {
		t.Fatalf("access ttl = %v", cfg.AccessTokenTTL)
	}
	if cfg.DefaultPhotoURL != DefaultPhotoURL {
		t.Fatalf("default photo = %q", cfg.DefaultPhotoURL)
	}
	if cfg.HTTPAddr != "0.0.0.0:8431" || cfg.SnowflakeNode != 1 || !cfg.EnsureSchema {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("ACCESS_TOKEN_TTL", "1h")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AccessTokenTTL != time.Hour || cfg.LoginMaxAttempts != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
}

func TestLoadDefaultPhotoOverride(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("DEFAULT_PHOTO_URL", "https://cdn.example.com/avatar.png")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultPhotoURL != "https://cdn.example.com/avatar.png" {
		t.Fatalf("default photo = %q", cfg.DefaultPhotoURL)
	}
}
