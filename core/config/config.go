package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingToken = errors.New("GITHUB_TOKEN is required")

type Config struct {
	OTel     OTelConfig
	GitHub   GitHubConfig
	Backends BackendsConfig
	Env      string
	RedisURL string
	// BasePath prefixes the webhook route, e.g. "/hooks" serves /hooks/github-webhook.
	BasePath     string
	SettingsPath string
}

type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
	// SampleRatio is the share of root traces kept, from OTEL_TRACES_SAMPLER_ARG.
	SampleRatio float64
}

type GitHubConfig struct {
	Token         string
	WebhookSecret string
}

type BackendsConfig struct {
	SparcCommand string
	SwarmCommand string
}

// Load loads configuration from environment variables.
// In development, it loads .env from the working directory first.
//
// A missing GITHUB_TOKEN is the only fatal condition.
func Load() (Config, error) {
	if getEnv("AUTOFIX_ENV", "development") == "development" {
		_ = godotenv.Load(".env")
	}

	cfg := Config{
		Env:          getEnv("AUTOFIX_ENV", "development"),
		RedisURL:     getEnv("REDIS_URL", ""),
		BasePath:     strings.TrimSuffix(getEnv("WEBHOOK_BASE_PATH", ""), "/"),
		SettingsPath: getEnv("AUTOFIX_SETTINGS_PATH", ".autofix/config.json"),
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "autofix"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
			SampleRatio:    getEnvRatio("OTEL_TRACES_SAMPLER_ARG", 1),
		},
		GitHub: GitHubConfig{
			Token:         getEnv("GITHUB_TOKEN", ""),
			WebhookSecret: getEnv("GITHUB_WEBHOOK_SECRET", ""),
		},
		Backends: BackendsConfig{
			SparcCommand: getEnv("SPARC_COMMAND", "npx claude-flow@alpha sparc"),
			SwarmCommand: getEnv("SWARM_COMMAND", "npx claude-flow@alpha swarm"),
		},
	}

	if cfg.GitHub.Token == "" {
		return cfg, ErrMissingToken
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c OTelConfig) Enabled() bool {
	return c.Endpoint != ""
}

func (c GitHubConfig) SignatureRequired() bool {
	return c.WebhookSecret != ""
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// getEnvRatio reads a value in [0, 1]; anything else yields fallback.
func getEnvRatio(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v < 0 || v > 1 {
		return fallback
	}
	return v
}
