package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
// Values are loaded from environment variables with sensible defaults.
// A missing remote credential is a degraded-mode condition, not a
// startup failure: the affected client returns sentinel outcomes.
type Config struct {
	// Server
	Port     int
	LogLevel string

	// IBM Cloud IAM (token exchange)
	IAMEndpoint string

	// Watsonx text generation
	WatsonxBaseURL   string
	WatsonxModelID   string
	WatsonxAPIKey    string
	WatsonxProjectID string

	// Watson NLU sentiment
	NLUAPIKey string
	NLUURL    string

	// HTTP client
	HTTPTimeout time.Duration

	// IAM token caching policy. Zero disables caching; a fresh token
	// is fetched for every remote call.
	IAMTokenTTL time.Duration

	// Resilience
	MaxConcurrency int

	// Observability
	OTLPEndpoint string

	// JWT / Auth
	JWTSecret    string
	JWTAccessTTL time.Duration

	// Seed users, "user:password" pairs separated by commas.
	PortalUsers string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Port:     getEnvInt("PORT", 8080),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		IAMEndpoint: getEnv("IAM_ENDPOINT", "https://iam.cloud.ibm.com/identity/token"),

		WatsonxBaseURL:   getEnv("WATSONX_BASE_URL", "https://us-south.ml.cloud.ibm.com"),
		WatsonxModelID:   getEnv("WATSONX_MODEL_ID", "ibm/granite-13b-instruct-v2"),
		WatsonxAPIKey:    getEnv("IBM_CLOUD_API_KEY", ""),
		WatsonxProjectID: getEnv("WATSONX_PROJECT_ID", ""),

		NLUAPIKey: getEnv("NLU_API_KEY", ""),
		NLUURL:    getEnv("NLU_URL", ""),

		HTTPTimeout: getEnvDuration("HTTP_TIMEOUT", 30*time.Second),

		IAMTokenTTL: getEnvDuration("IAM_TOKEN_TTL", 0),

		MaxConcurrency: getEnvInt("MAX_CONCURRENCY", 50),

		OTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),

		JWTSecret:    getEnv("JWT_SECRET", "citizen-portal-dev-secret-change-me"),
		JWTAccessTTL: getEnvDuration("JWT_ACCESS_TTL", 1*time.Hour),

		PortalUsers: getEnv("PORTAL_USERS", "citizen1:password123"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
