package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/file-intake/internal/domain"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AI_BASE_URL", "http://localhost:8000/")
	t.Setenv("DATABASE_URL", "postgres://localhost/fileintake")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AI.BaseURL != "http://localhost:8000" {
		t.Errorf("BaseURL = %q, trailing slash should be trimmed", cfg.AI.BaseURL)
	}
	if cfg.AI.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.AI.Timeout)
	}
	if cfg.AI.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", cfg.AI.MaxRetries)
	}
	if cfg.AI.BreakerThreshold != 5 || cfg.AI.BreakerCooldown != 30*time.Second {
		t.Errorf("breaker = %d/%v, want 5/30s", cfg.AI.BreakerThreshold, cfg.AI.BreakerCooldown)
	}
	if cfg.Upload.RecentCount != 5 {
		t.Errorf("RecentCount = %d, want 5", cfg.Upload.RecentCount)
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("AI_MOCK_MODE", "false")
	t.Setenv("DATABASE_URL", "postgres://localhost/fileintake")

	_, err := Load("")
	if !errors.Is(err, domain.ErrInvalidConfig) {
		t.Fatalf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoad_MockModeNeedsNoBaseURL(t *testing.T) {
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("AI_MOCK_MODE", "true")
	t.Setenv("DATABASE_URL", "postgres://localhost/fileintake")

	if _, err := Load(""); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
ai:
  base_url: http://ai.internal:9000
  timeout: 10s
  max_retries: 1
  prompts:
    summarize: "Summarize briefly:"
database:
  dsn: postgres://yaml/db
upload:
  recent_count: 8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AI_BASE_URL", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AI_MAX_RETRIES", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AI.BaseURL != "http://ai.internal:9000" {
		t.Errorf("BaseURL = %q", cfg.AI.BaseURL)
	}
	if cfg.AI.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v", cfg.AI.Timeout)
	}
	if cfg.AI.MaxRetries != 2 {
		t.Errorf("env should override file, MaxRetries = %d", cfg.AI.MaxRetries)
	}
	if cfg.AI.Prompts["summarize"] != "Summarize briefly:" {
		t.Errorf("Prompts = %v", cfg.AI.Prompts)
	}
	if cfg.Upload.RecentCount != 8 {
		t.Errorf("RecentCount = %d", cfg.Upload.RecentCount)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.AI.BaseURL = "http://localhost:8000"
		cfg.Database.DSN = "postgres://localhost/db"
		return cfg
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		wantOK bool
	}{
		{"valid", func(*Config) {}, true},
		{"short timeout", func(c *Config) { c.AI.Timeout = 100 * time.Millisecond }, false},
		{"negative retries", func(c *Config) { c.AI.MaxRetries = -1 }, false},
		{"zero breaker threshold", func(c *Config) { c.AI.BreakerThreshold = 0 }, false},
		{"missing dsn", func(c *Config) { c.Database.DSN = "" }, false},
		{"bad threshold", func(c *Config) { c.Tagging.ConfidenceThreshold = 1.5 }, false},
		{"watch dir without owner", func(c *Config) { c.Intake.WatchDir = "/tmp/in" }, false},
		{"unknown prompt intent", func(c *Config) { c.AI.Prompts = map[string]string{"translate": "x"} }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err == nil) != tt.wantOK {
				t.Errorf("Validate() error = %v, wantOK %v", err, tt.wantOK)
			}
		})
	}
}
