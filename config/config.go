package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Environment string

	// Document store
	MongoDBURL  string
	MongoDBName string

	// OpenAI
	OpenAIAPIKey        string
	LLMModel            string
	LLMTemperature      float64
	LLMSummaryMaxTokens int
	LLMActionMaxTokens  int
	LLMTimeout          time.Duration

	// Gmail (desktop OAuth flow)
	GoogleCredentialsFile string
	GoogleTokenFile       string

	// Digest run
	DigestUserID   string
	DigestLookback time.Duration
}

func Load() (*Config, error) {
	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),

		MongoDBURL:  getEnv("MONGODB_URL", "mongodb://localhost:27017"),
		MongoDBName: getEnv("MONGODB_DATABASE", "triage"),

		OpenAIAPIKey:        getEnv("OPENAI_API_KEY", ""),
		LLMModel:            getEnv("LLM_MODEL", "gpt-4o-mini"),
		LLMTemperature:      getEnvFloat("LLM_TEMPERATURE", 0.3),
		LLMSummaryMaxTokens: getEnvInt("LLM_SUMMARY_MAX_TOKENS", 100),
		LLMActionMaxTokens:  getEnvInt("LLM_ACTION_MAX_TOKENS", 60),
		LLMTimeout:          time.Duration(getEnvInt("LLM_TIMEOUT_SEC", 15)) * time.Second,

		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		GoogleTokenFile:       getEnv("GOOGLE_TOKEN_FILE", "token.json"),

		DigestUserID:   getEnv("DIGEST_USER_ID", "default"),
		DigestLookback: time.Duration(getEnvInt("DIGEST_LOOKBACK_HOURS", 24)) * time.Hour,
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
