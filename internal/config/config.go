package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"creativedesk/internal/models"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Port          string
	DatabasePath  string // SQLite file path
	ProvidersPath string // providers.yaml; empty falls back to env keys
	SearXNGURL    string // empty disables search validation

	// Env fallbacks when no providers file is present
	GeminiAPIKey    string
	OpenAIAPIKey    string
	OpenAIBaseURL   string
	AnthropicAPIKey string

	// Session autosave job
	AutosaveEnabled  bool
	AutosaveInterval time.Duration
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "3002"),
		DatabasePath:  getEnv("DATABASE_PATH", "creativedesk.db"),
		ProvidersPath: getEnv("PROVIDERS_PATH", ""),
		SearXNGURL:    getEnv("SEARXNG_URL", ""),

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:   getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		AutosaveEnabled:  getBoolEnv("AUTOSAVE_ENABLED", true),
		AutosaveInterval: time.Duration(getIntEnv("AUTOSAVE_INTERVAL_SECONDS", 180)) * time.Second,
	}
}

// LoadProviders loads the classifier provider chain from a YAML file.
// Order in the file is priority order.
func LoadProviders(filePath string) (*models.ProvidersFile, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read providers file: %w", err)
	}

	var file models.ProvidersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse providers YAML: %w", err)
	}

	return &file, nil
}

// EnvProviders builds the default provider chain from environment keys when
// no providers file is configured. Priority: Gemini, OpenAI, Anthropic.
func (c *Config) EnvProviders() []models.ProviderConfig {
	return []models.ProviderConfig{
		{
			Name:    "gemini",
			Kind:    models.ProviderKindGemini,
			APIKey:  c.GeminiAPIKey,
			Model:   "gemini-2.0-flash",
			Enabled: true,
		},
		{
			Name:    "openai",
			Kind:    models.ProviderKindOpenAI,
			APIKey:  c.OpenAIAPIKey,
			BaseURL: c.OpenAIBaseURL,
			Model:   "gpt-4o-mini",
			Enabled: true,
		},
		{
			Name:    "anthropic",
			Kind:    models.ProviderKindAnthropic,
			APIKey:  c.AnthropicAPIKey,
			BaseURL: "https://api.anthropic.com",
			Model:   "claude-3-5-haiku-latest",
			Enabled: true,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return defaultValue
}
