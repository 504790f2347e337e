package config

import (
	"fmt"
	"os"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

const (
	LLMBackendMock   = "mock"
	LLMBackendGemini = "gemini"
	LLMBackendVertex = "vertex"
)

type Config struct {
	Mode Mode

	Port string

	LLMBackend   string // "mock", "gemini" or "vertex"
	GeminiAPIKey string
	GCPProjectID string
	GCPLocation  string
	ModelName    string
	LLMTimeout   time.Duration

	StorageBackend string // "memory" o "firestore"
	SeedFile       string
	Location       *time.Location
	LogLevel       string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

// Load reads all env vars and builds the config
func Load() (*Config, error) {
	modeStr := getEnv("BRAINBUDDY_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultBackend := LLMBackendMock
	if mode == ModeGCP {
		defaultBackend = LLMBackendVertex
	}

	timeout, err := time.ParseDuration(getEnv("BRAINBUDDY_LLM_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("BRAINBUDDY_LLM_TIMEOUT: %w", err)
	}

	loc := time.Local
	if tz := os.Getenv("BRAINBUDDY_TIMEZONE"); tz != "" {
		loc, err = time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("BRAINBUDDY_TIMEZONE: %w", err)
		}
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("BRAINBUDDY_PORT", "8080"),

		LLMBackend:   getEnv("BRAINBUDDY_LLM_BACKEND", defaultBackend),
		GeminiAPIKey: getEnv("BRAINBUDDY_GEMINI_API_KEY", ""),
		GCPProjectID: getEnv("BRAINBUDDY_GCP_PROJECT", ""),
		GCPLocation:  getEnv("BRAINBUDDY_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("BRAINBUDDY_MODEL_NAME", "gemini-2.0-flash"),
		LLMTimeout:   timeout,

		StorageBackend: getEnv("BRAINBUDDY_STORAGE_BACKEND", "memory"),
		SeedFile:       getEnv("BRAINBUDDY_SEED_FILE", ""),
		Location:       loc,
		LogLevel:       getEnv("BRAINBUDDY_LOG_LEVEL", "info"),
	}

	// true = use mock even on GCP
	if getBoolEnv("BRAINBUDDY_USE_MOCK_LLM", false) {
		cfg.LLMBackend = LLMBackendMock
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LLMBackend {
	case LLMBackendMock:
	case LLMBackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("BRAINBUDDY_GEMINI_API_KEY must be set for the gemini backend")
		}
	case LLMBackendVertex:
		if c.GCPProjectID == "" {
			return fmt.Errorf("BRAINBUDDY_GCP_PROJECT must be set for the vertex backend")
		}
	default:
		return fmt.Errorf("unknown BRAINBUDDY_LLM_BACKEND %q", c.LLMBackend)
	}

	switch c.StorageBackend {
	case "memory":
	case "firestore":
		if c.GCPProjectID == "" {
			return fmt.Errorf("BRAINBUDDY_GCP_PROJECT must be set for firestore storage")
		}
	default:
		return fmt.Errorf("unknown BRAINBUDDY_STORAGE_BACKEND %q", c.StorageBackend)
	}
	return nil
}

// Now returns the current time in the configured location.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location)
}
