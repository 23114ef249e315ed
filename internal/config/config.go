package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Auth0
	Auth0Domain   string
	Auth0Audience string

	// Server
	Port               string
	PublicURL          string // advertised in the OpenAPI document
	CORSOrigins        []string
	Env                string
	RateLimitPerMinute int

	// Redis (optional): enables locks shared across replicas
	RedisAddress  string
	RedisPassword string

	// Outstanding digest email
	SMTP   SMTPConfig
	Digest DigestConfig

	// S3 Storage (optional): export archive
	S3 S3Config
}

// SMTPConfig holds outgoing mail configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether mail delivery is configured
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.From != ""
}

// DigestConfig holds the daily outstanding digest schedule
type DigestConfig struct {
	Enabled    bool
	Recipients []string
	Time       string // HH:MM, server local time
}

// S3Config holds AWS S3 configuration
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Endpoint        string // Optional: for MinIO/LocalStack local dev
	PresignExpiry   time.Duration
}

// Enabled reports whether an archive bucket is configured
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := load()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadForCLI reads configuration for the operator CLI, which talks to the database directly and skips Auth0
func LoadForCLI() (*Config, error) {
	cfg := load()
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	return cfg, nil
}

func load() *Config {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		Port:               getEnv("PORT", "8080"),
		PublicURL:          strings.TrimSuffix(getEnv("PUBLIC_URL", ""), "/"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		Env:                getEnv("ENV", "development"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RedisAddress:       getEnv("REDIS_ADDRESS", ""),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASS", ""),
			From:     getEnv("EMAIL_FROM", ""),
		},
		Digest: DigestConfig{
			Enabled:    getEnvBool("DIGEST_ENABLED", false),
			Recipients: splitList(getEnv("DIGEST_RECIPIENTS", "")),
			Time:       getEnv("DIGEST_TIME", "09:00"),
		},
		S3: S3Config{
			Region:          getEnv("S3_REGION", "ap-south-1"),
			Bucket:          getEnv("S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Endpoint:        getEnv("S3_ENDPOINT", ""), // Empty = use AWS, set for MinIO/LocalStack
			PresignExpiry:   getEnvDuration("S3_PRESIGN_EXPIRY", 15*time.Minute),
		},
	}
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Auth0Domain == "" {
		return fmt.Errorf("AUTH0_DOMAIN is required")
	}
	if c.Auth0Audience == "" {
		return fmt.Errorf("AUTH0_AUDIENCE is required")
	}
	if _, _, err := ParseClock(c.Digest.Time); err != nil {
		return fmt.Errorf("DIGEST_TIME: %w", err)
	}
	if c.Digest.Enabled {
		if !c.SMTP.Enabled() {
			return fmt.Errorf("DIGEST_ENABLED requires SMTP_HOST and EMAIL_FROM")
		}
		if len(c.Digest.Recipients) == 0 {
			return fmt.Errorf("DIGEST_ENABLED requires DIGEST_RECIPIENTS")
		}
	}
	return nil
}

// ParseClock parses an "HH:MM" time of day
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q, expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return n
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return b
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return d
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
