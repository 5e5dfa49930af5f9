// config/backend.go
package config

import (
	"log"
	"os"
	"strings"
	"time"
)

// BackendConfig holds the connection settings for the hosted data backend.
// All reads and writes go through its named RPC operations; the backend's
// internal schema is not this service's concern.
type BackendConfig struct {
	BaseURL string
	APIKey  string

	// Defaults for the resilient invoker. Per-call options can override.
	Retries    int
	RetryDelay time.Duration
	Timeout    time.Duration
}

// LoadBackendConfig reads backend settings from the environment.
func LoadBackendConfig() *BackendConfig {
	baseURL := os.Getenv("BACKEND_URL")
	if baseURL == "" {
		env := os.Getenv("ENV")
		if env == "development" || env == "dev" {
			baseURL = "http://localhost:54321"
		} else {
			log.Fatal("BACKEND_URL environment variable is required for production")
		}
	}
	baseURL = strings.TrimRight(baseURL, "/")

	apiKey := os.Getenv("BACKEND_API_KEY")
	if apiKey == "" {
		log.Println("Warning: BACKEND_API_KEY is not set; backend calls will be unauthenticated")
	}

	log.Printf("Using data backend at: %s", baseURL)

	return &BackendConfig{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Retries:    2,
		RetryDelay: 1 * time.Second,
		Timeout:    15 * time.Second,
	}
}
