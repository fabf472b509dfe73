// Package config loads server configuration from the environment, with
// an optional .env file for local development.
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultPort            = "8111"
	DefaultGroqAPIURL      = "https://api.groq.com/openai/v1/chat/completions"
	DefaultGroqModel       = "llama-3.3-70b-versatile"
	DefaultMaxUploadBytes  = 10 << 20
	DefaultSessionTTL      = time.Hour
	DefaultTemplatesPath   = "templates.yaml"
	DefaultAcceptThreshold = 5
)

// Config holds everything the server needs to start.
type Config struct {
	Port string

	// Groq classifier. Classification is disabled when the key is empty.
	GroqAPIKey string
	GroqAPIURL string
	GroqModel  string

	MaxUploadBytes  int64
	SessionTTL      time.Duration
	TemplatesPath   string
	AcceptThreshold int

	// Storage selection. UseMemoryStore forces the in-memory merchant
	// store; otherwise Firestore is used with GoogleCloudProject.
	UseMemoryStore     bool
	GoogleCloudProject string

	CORSOrigins []string
}

// Load reads configuration from the environment. A .env file in the
// working directory is loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded environment from .env")
	}

	cfg := &Config{
		Port:               envOr("PORT", DefaultPort),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		GroqAPIURL:         envOr("GROQ_API_URL", DefaultGroqAPIURL),
		GroqModel:          envOr("GROQ_MODEL", DefaultGroqModel),
		MaxUploadBytes:     DefaultMaxUploadBytes,
		SessionTTL:         DefaultSessionTTL,
		TemplatesPath:      envOr("TEMPLATES_PATH", DefaultTemplatesPath),
		AcceptThreshold:    DefaultAcceptThreshold,
		UseMemoryStore:     os.Getenv("USE_MEMORY_STORE") == "true" || os.Getenv("ENV") == "local",
		GoogleCloudProject: os.Getenv("GOOGLE_CLOUD_PROJECT"),
		CORSOrigins:        splitOrigins(envOr("CORS_ORIGINS", "*")),
	}

	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES %q", v)
		}
		cfg.MaxUploadBytes = n
	}
	if v := os.Getenv("SESSION_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_SECONDS %q", v)
		}
		cfg.SessionTTL = time.Duration(n) * time.Second
	}
	if v := os.Getenv("TEMPLATE_ACCEPT_THRESHOLD"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid TEMPLATE_ACCEPT_THRESHOLD %q", v)
		}
		cfg.AcceptThreshold = n
	}

	if cfg.GroqAPIKey == "" {
		log.Printf("[config] GROQ_API_KEY not set, AI categorization disabled")
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitOrigins(s string) []string {
	parts := strings.Split(s, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
