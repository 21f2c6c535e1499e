package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Storage     StorageConfig
	Supabase    SupabaseConfig
	AI          AIConfig
	Documents   DocumentsConfig
	Limits      LimitsConfig
}

type ServerConfig struct {
	Host           string
	Port           string
	PublicURL      string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL     string
	TestURL string
}

type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	Secret       string
	Issuer       string
	AccessTTL    time.Duration
	SessionTTL   time.Duration
	CookieDomain string
	CookieSecure bool
}

type StorageConfig struct {
	Type       string
	Path       string
	SigningKey string
	S3Endpoint string
	S3Region   string
	S3Bucket   string
	AccessKey  string
	SecretKey  string
	S3UseSSL   bool
}

type SupabaseConfig struct {
	URL    string
	APIKey string
	Bucket string
}

type AIConfig struct {
	Enabled        bool
	APIKey         string
	BaseURL        string
	Model          string
	MaxTokens      int
	Temperature    float64
	TimeoutSeconds int
}

type DocumentsConfig struct {
	RequireReview bool
	PresignExpiry time.Duration
	SearchBatch   int
}

type LimitsConfig struct {
	MaxFileSize      int64
	AllowedMimeTypes []string
	RateLimit        int
	RateLimitWindow  time.Duration
}

// Load configuration from environment variables
func Load() (*Config, error) {
	// Load .env file in non-production environments
	if os.Getenv("ENVIRONMENT") != "production" {
		_ = godotenv.Load()
	}

	port := getEnv("PORT", "8080")
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:           getEnv("HOST", "localhost"),
			Port:           port,
			PublicURL:      strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:"+port), "/"),
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			URL:     getEnv("DATABASE_URL", "file:buildtrack.db"),
			TestURL: getEnv("DATABASE_URL_TEST", ""),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		JWT: JWTConfig{
			Secret:       getEnv("JWT_SECRET", ""),
			Issuer:       getEnv("JWT_ISSUER", "buildtrack"),
			AccessTTL:    parseDuration(getEnv("JWT_ACCESS_TTL", "15m")),
			SessionTTL:   parseDuration(getEnv("SESSION_TTL", "168h")),
			CookieDomain: getEnv("COOKIE_DOMAIN", ""),
			CookieSecure: parseBool(getEnv("COOKIE_SECURE", "false")),
		},
		Storage: StorageConfig{
			Type:       getEnv("STORAGE_TYPE", "local"),
			Path:       getEnv("STORAGE_PATH", "./uploads"),
			SigningKey: getEnv("STORAGE_SIGNING_KEY", ""),
			S3Endpoint: getEnv("S3_ENDPOINT", "s3.amazonaws.com"),
			S3Region:   getEnv("S3_REGION", "us-west-2"),
			S3Bucket:   getEnv("S3_BUCKET", ""),
			AccessKey:  getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3UseSSL:   parseBool(getEnv("S3_USE_SSL", "true")),
		},
		Supabase: SupabaseConfig{
			URL:    getEnv("SUPABASE_URL", ""),
			APIKey: getEnv("SUPABASE_API_KEY", ""),
			Bucket: getEnv("SUPABASE_BUCKET", "documents"),
		},
		AI: AIConfig{
			Enabled:        parseBool(getEnv("ENABLE_AI_LOOKUP", "true")),
			APIKey:         getEnv("ANTHROPIC_API_KEY", ""),
			BaseURL:        getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
			Model:          getEnv("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022"),
			MaxTokens:      parseInt(getEnv("ANTHROPIC_MAX_TOKENS", "2048")),
			Temperature:    parseFloat(getEnv("ANTHROPIC_TEMPERATURE", "0.2")),
			TimeoutSeconds: parseInt(getEnv("ANTHROPIC_TIMEOUT_SECONDS", "60")),
		},
		Documents: DocumentsConfig{
			RequireReview: parseBool(getEnv("DOCUMENT_REQUIRE_REVIEW", "false")),
			PresignExpiry: parseDuration(getEnv("PRESIGN_EXPIRY", "15m")),
			SearchBatch:   parseInt(getEnv("DOCUMENT_SEARCH_BATCH", "500")),
		},
		Limits: LimitsConfig{
			MaxFileSize:      parseInt64(getEnv("MAX_FILE_SIZE", "104857600")),
			AllowedMimeTypes: splitList(getEnv("ALLOWED_MIME_TYPES", "")),
			RateLimit:        parseInt(getEnv("RATE_LIMIT_REQUESTS", "100")),
			RateLimitWindow:  parseDuration(getEnv("RATE_LIMIT_WINDOW", "60s")),
		},
	}

	if config.Storage.SigningKey == "" {
		config.Storage.SigningKey = config.JWT.Secret
	}

	// Validate required configuration
	if err := validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// GetDatabaseURL returns the appropriate database URL based on environment
func (c *Config) GetDatabaseURL() string {
	if c.Environment == "test" && c.Database.TestURL != "" {
		return c.Database.TestURL
	}
	return c.Database.URL
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsTest returns true if running in test environment
func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

func validate(config *Config) error {
	if config.IsProduction() && config.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required in production")
	}
	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if config.JWT.AccessTTL <= 0 || config.JWT.SessionTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL and SESSION_TTL must be positive durations")
	}
	switch config.Storage.Type {
	case "local":
	case "s3":
		if config.Storage.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when STORAGE_TYPE=s3")
		}
	case "supabase":
		if config.Supabase.URL == "" || config.Supabase.APIKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_API_KEY are required when STORAGE_TYPE=supabase")
		}
	default:
		return fmt.Errorf("unknown STORAGE_TYPE %q", config.Storage.Type)
	}
	if config.Limits.RateLimit > 0 && config.Limits.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be a positive duration")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseInt(value string) int {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	return 0
}

func parseInt64(value string) int64 {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	return 0
}

func parseFloat(value string) float64 {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	return 0
}

func parseBool(value string) bool {
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return false
}

func parseDuration(value string) time.Duration {
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	return 0
}
