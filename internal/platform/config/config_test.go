package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		DatabaseURL:        "postgres://localhost/hireflow",
		Environment:        "development",
		MaxBodyBytes:       1 << 20,
		RateLimitPerMinute: 60,
		WorkEmailDomain:    "company.com",
		InitialPassword:    "Welcome@2024",
		HolderPolicy:       "first_listed",
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/hireflow")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":8080" || cfg.WorkEmailDomain != "company.com" || cfg.HolderPolicy != "first_listed" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 15*time.Second {
		t.Fatalf("expected 15s shutdown timeout, got %s", cfg.ShutdownTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hireflow.yaml")
	body := "ONBOARDING_WORK_EMAIL_DOMAIN: file.example\nRATE_LIMIT_PER_MINUTE: 5\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RATE_LIMIT_PER_MINUTE", "42")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.WorkEmailDomain != "file.example" {
		t.Fatalf("expected domain from file, got %q", cfg.WorkEmailDomain)
	}
	if cfg.RateLimitPerMinute != 42 {
		t.Fatalf("expected env to win, got %d", cfg.RateLimitPerMinute)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }},
		{name: "production without secret", mutate: func(c *Config) { c.Environment = "production" }},
		{name: "tiny body limit", mutate: func(c *Config) { c.MaxBodyBytes = 10 }},
		{name: "zero rate limit", mutate: func(c *Config) { c.RateLimitPerMinute = 0 }},
		{name: "email without host", mutate: func(c *Config) { c.EmailEnabled = true }},
		{name: "blank domain", mutate: func(c *Config) { c.WorkEmailDomain = " " }},
		{name: "short password", mutate: func(c *Config) { c.InitialPassword = "short" }},
		{name: "unknown holder policy", mutate: func(c *Config) { c.HolderPolicy = "random" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
}
