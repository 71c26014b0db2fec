// Package config handles application configuration from a YAML file and
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/file-intake/internal/domain"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	// Server configuration
	Server ServerConfig `yaml:"server"`

	// AI service configuration
	AI AIConfig `yaml:"ai"`

	// Relational store configuration
	Database DatabaseConfig `yaml:"database"`

	// Redis configuration for upload de-duplication
	Redis RedisConfig `yaml:"redis"`

	// Upload handling configuration
	Upload UploadConfig `yaml:"upload"`

	// Document tagging configuration
	Tagging TaggingConfig `yaml:"tagging"`

	// Folder intake configuration
	Intake IntakeConfig `yaml:"intake"`

	// API authentication configuration
	Auth AuthConfig `yaml:"auth"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Port is the HTTP port to listen on.
	Port string `yaml:"port"`

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// AIConfig contains settings for the external summarization service.
type AIConfig struct {
	// BaseURL is the root URL of the AI service. Required unless MockMode.
	BaseURL string `yaml:"base_url"`

	// Timeout is the maximum time to wait for a single attempt.
	Timeout time.Duration `yaml:"timeout"`

	// MaxRetries is the number of retries on transient failures.
	MaxRetries int `yaml:"max_retries"`

	// RetryBaseDelay is multiplied by 2^attempt between retries.
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`

	// BreakerThreshold is the number of consecutive transient failures that
	// opens the circuit breaker.
	BreakerThreshold int `yaml:"breaker_threshold"`

	// BreakerCooldown is how long the open breaker rejects calls.
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`

	// MockMode replaces the HTTP transport with canned responses.
	MockMode bool `yaml:"mock_mode"`

	// Prompts overrides prompt templates by intent name.
	Prompts map[string]string `yaml:"prompts"`
}

// DatabaseConfig contains relational store settings.
type DatabaseConfig struct {
	DSN          string `yaml:"dsn"`
	AutoMigrate  bool   `yaml:"auto_migrate"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// RedisConfig contains Redis settings. An empty URL disables de-duplication.
type RedisConfig struct {
	URL      string        `yaml:"url"`
	DedupTTL time.Duration `yaml:"dedup_ttl"`
}

// UploadConfig contains upload processing settings.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted upload in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxTextSize is the maximum stored extracted text in bytes.
	MaxTextSize int `yaml:"max_text_size"`

	// RedactSensitive masks secrets and e-mail addresses in stored text.
	RedactSensitive bool `yaml:"redact_sensitive"`

	// RecentCount is the default number of files listed.
	RecentCount int `yaml:"recent_count"`
}

// TaggingConfig contains rule-based tagging settings.
type TaggingConfig struct {
	// Enabled turns document tagging on.
	Enabled bool `yaml:"enabled"`

	// ConfidenceThreshold is the minimum confidence for a tag to be stored.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`
}

// IntakeConfig contains folder watcher settings. An empty WatchDir disables it.
type IntakeConfig struct {
	WatchDir    string        `yaml:"watch_dir"`
	OwnerEmail  string        `yaml:"owner_email"`
	SettleDelay time.Duration `yaml:"settle_delay"`
}

// AuthConfig contains API authentication settings.
type AuthConfig struct {
	// APIKey, when set, is required in the X-API-Key header.
	APIKey string `yaml:"api_key"`
}

// Default returns the configuration used before any file or environment
// overrides are applied.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 3 * time.Minute,
		},
		AI: AIConfig{
			Timeout:          30 * time.Second,
			MaxRetries:       3,
			RetryBaseDelay:   time.Second,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Database: DatabaseConfig{
			AutoMigrate:  true,
			MaxOpenConns: 10,
		},
		Redis: RedisConfig{
			DedupTTL: 24 * time.Hour,
		},
		Upload: UploadConfig{
			MaxFileSize: 20 << 20, // 20MB
			MaxTextSize: 1 << 20,
			RecentCount: 5,
		},
		Tagging: TaggingConfig{
			Enabled:             true,
			ConfidenceThreshold: 0.7,
		},
		Intake: IntakeConfig{
			SettleDelay: 500 * time.Millisecond,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", domain.ErrInvalidConfig, path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Server.Port = getEnvOrDefault("PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getDurationOrDefault("SERVER_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getDurationOrDefault("SERVER_WRITE_TIMEOUT", cfg.Server.WriteTimeout)

	cfg.AI.BaseURL = strings.TrimRight(getEnvOrDefault("AI_BASE_URL", cfg.AI.BaseURL), "/")
	cfg.AI.Timeout = getDurationOrDefault("AI_TIMEOUT", cfg.AI.Timeout)
	cfg.AI.MaxRetries = getIntOrDefault("AI_MAX_RETRIES", cfg.AI.MaxRetries)
	cfg.AI.RetryBaseDelay = getDurationOrDefault("AI_RETRY_BASE_DELAY", cfg.AI.RetryBaseDelay)
	cfg.AI.BreakerThreshold = getIntOrDefault("AI_BREAKER_THRESHOLD", cfg.AI.BreakerThreshold)
	cfg.AI.BreakerCooldown = getDurationOrDefault("AI_BREAKER_COOLDOWN", cfg.AI.BreakerCooldown)
	cfg.AI.MockMode = getBoolOrDefault("AI_MOCK_MODE", cfg.AI.MockMode)

	cfg.Database.DSN = getEnvOrDefault("DATABASE_URL", cfg.Database.DSN)
	cfg.Database.AutoMigrate = getBoolOrDefault("DB_AUTO_MIGRATE", cfg.Database.AutoMigrate)
	cfg.Database.MaxOpenConns = getIntOrDefault("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)

	cfg.Redis.URL = getEnvOrDefault("REDIS_URL", cfg.Redis.URL)
	cfg.Redis.DedupTTL = getDurationOrDefault("DEDUP_TTL", cfg.Redis.DedupTTL)

	cfg.Upload.MaxFileSize = int64(getIntOrDefault("MAX_UPLOAD_SIZE", int(cfg.Upload.MaxFileSize)))
	cfg.Upload.MaxTextSize = getIntOrDefault("MAX_TEXT_SIZE", cfg.Upload.MaxTextSize)
	cfg.Upload.RedactSensitive = getBoolOrDefault("REDACT_SENSITIVE", cfg.Upload.RedactSensitive)
	cfg.Upload.RecentCount = getIntOrDefault("RECENT_FILE_COUNT", cfg.Upload.RecentCount)

	cfg.Tagging.Enabled = getBoolOrDefault("ENABLE_TAGGING", cfg.Tagging.Enabled)
	cfg.Tagging.ConfidenceThreshold = getFloatOrDefault("TAG_CONFIDENCE_THRESHOLD", cfg.Tagging.ConfidenceThreshold)

	cfg.Intake.WatchDir = getEnvOrDefault("INTAKE_WATCH_DIR", cfg.Intake.WatchDir)
	cfg.Intake.OwnerEmail = getEnvOrDefault("INTAKE_OWNER_EMAIL", cfg.Intake.OwnerEmail)
	cfg.Intake.SettleDelay = getDurationOrDefault("INTAKE_SETTLE_DELAY", cfg.Intake.SettleDelay)

	cfg.Auth.APIKey = getEnvOrDefault("API_KEY", cfg.Auth.APIKey)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// The AI base URL is required unless in mock mode
	if !c.AI.MockMode && strings.TrimSpace(c.AI.BaseURL) == "" {
		return fmt.Errorf("%w: AI_BASE_URL is required when not in mock mode", domain.ErrInvalidConfig)
	}

	if c.AI.Timeout < time.Second {
		return fmt.Errorf("%w: AI_TIMEOUT must be at least 1 second", domain.ErrInvalidConfig)
	}

	if c.AI.MaxRetries < 0 {
		return fmt.Errorf("%w: AI_MAX_RETRIES must not be negative", domain.ErrInvalidConfig)
	}

	if c.AI.BreakerThreshold < 1 {
		return fmt.Errorf("%w: AI_BREAKER_THRESHOLD must be at least 1", domain.ErrInvalidConfig)
	}

	if c.Database.DSN == "" {
		return fmt.Errorf("%w: DATABASE_URL is required", domain.ErrInvalidConfig)
	}

	if c.Upload.MaxFileSize < 1024 {
		return fmt.Errorf("%w: MAX_UPLOAD_SIZE must be at least 1024 bytes", domain.ErrInvalidConfig)
	}

	if c.Upload.MaxTextSize < 1000 {
		return fmt.Errorf("%w: MAX_TEXT_SIZE must be at least 1000 bytes", domain.ErrInvalidConfig)
	}

	if c.Tagging.ConfidenceThreshold < 0 || c.Tagging.ConfidenceThreshold > 1 {
		return fmt.Errorf("%w: TAG_CONFIDENCE_THRESHOLD must be between 0 and 1", domain.ErrInvalidConfig)
	}

	if c.Intake.WatchDir != "" && c.Intake.OwnerEmail == "" {
		return fmt.Errorf("%w: INTAKE_OWNER_EMAIL is required when INTAKE_WATCH_DIR is set", domain.ErrInvalidConfig)
	}

	for name := range c.AI.Prompts {
		if _, ok := domain.ParseQueryIntent(name); !ok {
			return fmt.Errorf("%w: prompt override for unknown intent %q", domain.ErrInvalidConfig, name)
		}
	}

	return nil
}

// Helper functions for reading environment variables

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getBoolOrDefault(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getFloatOrDefault(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getDurationOrDefault(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		// Try parsing as seconds first (e.g., "15")
		if secs, err := strconv.Atoi(val); err == nil {
			return time.Duration(secs) * time.Second
		}
		// Try parsing as duration string (e.g., "15s", "1m")
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
