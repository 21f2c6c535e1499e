package handlers

import (
	"os"
	"strconv"
)

// HandlerConfig provides environment-aware configuration for handlers
type HandlerConfig struct {
	// Pagination settings
	MaxPageSize     int `json:"max_page_size"`
	DefaultPageSize int `json:"default_page_size"`

	// File upload settings
	MaxFileSize int64 `json:"max_file_size"`
	// MaxMultipartMemory is how much of a multipart upload gin keeps in memory before spilling to disk.
	MaxMultipartMemory int64 `json:"max_multipart_memory"`

	// Error handling settings
	EnableDebugErrors bool `json:"enable_debug_errors"`

	// Environment
	Environment string `json:"environment"`
}

// NewHandlerConfig creates a new handler configuration with environment-specific defaults
func NewHandlerConfig() *HandlerConfig {
	config := &HandlerConfig{
		// Default values
		MaxPageSize:        100,
		DefaultPageSize:    20,
		MaxFileSize:        100 * 1024 * 1024, // 100MB
		MaxMultipartMemory: 32 << 20,
		EnableDebugErrors:  false,
		Environment:        "production",
	}

	// Override with environment variables
	config.loadFromEnv()

	// Apply environment-specific overrides
	config.applyEnvironmentDefaults()

	return config
}

// loadFromEnv loads configuration from environment variables
func (c *HandlerConfig) loadFromEnv() {
	if val := os.Getenv("MAX_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.MaxPageSize = parsed
		}
	}

	if val := os.Getenv("DEFAULT_PAGE_SIZE"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			c.DefaultPageSize = parsed
		}
	}

	if val := os.Getenv("MAX_FILE_SIZE"); val != "" {
		if parsed, err := strconv.ParseInt(val, 10, 64); err == nil {
			c.MaxFileSize = parsed
		}
	}

	if val := os.Getenv("ENABLE_DEBUG_ERRORS"); val != "" {
		c.EnableDebugErrors = val == "true"
	}

	if val := os.Getenv("ENVIRONMENT"); val != "" {
		c.Environment = val
	}
}

// applyEnvironmentDefaults applies environment-specific default values
func (c *HandlerConfig) applyEnvironmentDefaults() {
	switch c.Environment {
	case "development", "dev", "test", "testing":
		if os.Getenv("ENABLE_DEBUG_ERRORS") == "" {
			c.EnableDebugErrors = true
		}

	case "production", "prod":
		c.EnableDebugErrors = false
		// Stricter limits in production
		if c.MaxPageSize > 50 {
			c.MaxPageSize = 50
		}
	}
}

// IsProduction returns true if running in production environment
func (c *HandlerConfig) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// ValidatePageSize ensures page size is within acceptable limits
func (c *HandlerConfig) ValidatePageSize(pageSize int) int {
	if pageSize < 1 {
		return c.DefaultPageSize
	}
	if pageSize > c.MaxPageSize {
		return c.MaxPageSize
	}
	return pageSize
}

// ValidateFileSize checks if file size is acceptable
func (c *HandlerConfig) ValidateFileSize(size int64) bool {
	return size <= c.MaxFileSize
}
