// Package remote provides the query service client. The query service owns
// all business data; the console is a read-mostly polling cache over it with
// three narrow booking write paths.
package remote

import (
	"os"
	"time"
)

// Config holds the configuration for query service access.
type Config struct {
	// BaseURL is the query service base URL
	BaseURL string

	// APIKey is the bearer token for service authentication
	APIKey string

	// Timeout for RPC requests
	Timeout time.Duration
}

// DefaultConfig returns the default configuration, reading from environment
// variables.
func DefaultConfig() Config {
	return Config{
		BaseURL: getEnv("QUERY_SERVICE_URL", "http://localhost:9090"),
		APIKey:  getEnv("QUERY_SERVICE_KEY", ""),
		Timeout: 30 * time.Second,
	}
}

// getEnv returns an environment variable value or a default if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
