package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration loaded from the environment
type Config struct {
	// Port the HTTP server listens on
	Port string
	// DatabaseURL selects PostgreSQL when set; otherwise SQLitePath is used
	DatabaseURL string
	// SQLitePath is the local database file used without DATABASE_URL
	SQLitePath string
	// DefaultUsername is the owner applied when a request carries no identity
	DefaultUsername string
	// AnthropicAPIKey enables the AI proxy endpoints when set
	AnthropicAPIKey string
	// DictionaryAPIURL is the base URL of the example-sentence lookup service
	DictionaryAPIURL string
}

// Load reads configuration from the environment, honoring a local .env file
func Load() *Config {
	// Missing .env is fine; real deployments set variables directly
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		SQLitePath:       getEnv("SQLITE_PATH", "data/german-app.db"),
		DefaultUsername:  getEnv("DEFAULT_USERNAME", "default"),
		AnthropicAPIKey:  os.Getenv("ANTHROPIC_API_KEY"),
		DictionaryAPIURL: getEnv("DICTIONARY_API_URL", "https://api.dictionaryapi.dev/api/v2/entries/de"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
