package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadAppliesEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlDoc := `
server:
  port: "9000"
  allowed_origins: ["http://localhost:3000"]
redis:
  addr: "localhost:6379"
postgres:
  url: "postgres://file"
quiz:
  ttl: "15m"
  attempt_ttl: "2h"
log:
  level: debug
  format: pretty
mentor:
  url: "http://mentor.local/generate"
  timeout: "20s"
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("PORT", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("LOG_FORMAT", "")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9000" || cfg.Redis.Addr != "localhost:6379" || cfg.Log.Format != "pretty" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Postgres.URL != "postgres://env" || cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if got := TTLDuration(cfg.Quiz.AttemptTTL, time.Minute); got != 2*time.Hour {
		t.Fatalf("unexpected attempt ttl %v", got)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("PORT", "7070")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Fatalf("expected env port, got %q", cfg.Server.Port)
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected yaml error")
	}
}

func TestTTLDuration(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", time.Minute},
		{"90s", 90 * time.Second},
		{"soon", time.Minute},
	}
	for _, tc := range cases {
		if got := TTLDuration(tc.raw, time.Minute); got != tc.want {
			t.Fatalf("TTLDuration(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
