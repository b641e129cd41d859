package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds all application configuration. Every option can be given as a
// command-line flag or an environment variable; a .env file in the working
// directory is read first.
type Config struct {
	// HTTP server
	Port               string   `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	CORSAllowedOrigins []string `long:"cors-origin" env:"CORS_ALLOWED_ORIGINS" env-delim:"," default:"*" description:"Allowed CORS origins"`
	APIAccessKey       string   `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for admin endpoints (optional)"`
	MapAPIKey          string   `long:"map-api-key" env:"MAP_API_KEY" description:"Map provider key handed to the browser map widget"`

	// Database
	DatabaseURL   string `long:"database-url" env:"DATABASE_URL" description:"PostgreSQL DSN; empty runs in demo mode"`
	MigrationsDir string `long:"migrations-dir" env:"MIGRATIONS_DIR" default:"./migrations" description:"Directory of goose migrations"`
	AutoMigrate   bool   `long:"auto-migrate" env:"AUTO_MIGRATE" description:"Apply pending migrations on startup"`

	// Scan provider
	AnthropicAPIKey  string        `long:"anthropic-api-key" env:"ANTHROPIC_API_KEY" description:"Anthropic API key; scanning is disabled without it"`
	AnthropicBaseURL string        `long:"anthropic-base-url" env:"ANTHROPIC_BASE_URL" default:"https://api.anthropic.com" description:"Anthropic API base URL"`
	AnthropicModel   string        `long:"anthropic-model" env:"ANTHROPIC_MODEL" default:"claude-3-5-sonnet-20241022" description:"Model used for label analysis"`
	ScanTimeout      time.Duration `long:"scan-timeout" env:"SCAN_TIMEOUT" default:"60s" description:"Timeout of one provider call"`

	// Scan cache
	RedisAddr     string        `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the scan cache (optional)"`
	RedisPassword string        `long:"redis-password" env:"REDIS_PASSWORD" description:"Redis password"`
	ScanCacheTTL  time.Duration `long:"scan-cache-ttl" env:"SCAN_CACHE_TTL" default:"24h" description:"Lifetime of cached scan results"`

	// Image archive
	S3Bucket        string `long:"s3-bucket" env:"S3_BUCKET" description:"S3 bucket archiving scanned images (optional)"`
	AWSRegion       string `long:"aws-region" env:"AWS_REGION" default:"ap-northeast-2" description:"AWS region of the bucket"`
	S3PublicBaseURL string `long:"s3-public-base-url" env:"S3_PUBLIC_BASE_URL" description:"Public URL prefix of archived images"`
	AWSAccessKeyID  string `long:"aws-access-key-id" env:"AWS_ACCESS_KEY_ID" description:"Static AWS access key (default credential chain when empty)"`
	AWSSecretKey    string `long:"aws-secret-access-key" env:"AWS_SECRET_ACCESS_KEY" description:"Static AWS secret key"`

	Environment string `long:"env" env:"APP_ENV" default:"development" choice:"development" choice:"production" description:"Runtime environment"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Production reports whether error details must be hidden from clients.
func (c *Config) Production() bool {
	return c.Environment == EnvProduction
}

// Load reads .env, then parses args and the environment. It returns nil
// without an error when help was requested.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to read .env file", "error", err)
	}

	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}
	return &cfg, nil
}
