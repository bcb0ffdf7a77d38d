package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const devSecretKey = "dev-insecure-secret-change-me"

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver    string
	SQLitePath  string
	DatabaseURL string

	// Sessions
	SecretKey  string
	SessionTTL time.Duration

	// Completion API
	LLMProvider       string
	LLMModel          string
	OpenAIAPIKey      string
	OpenAIBaseURL     string
	GeminiAPIKey      string
	SystemPrompt      string
	CompletionTimeout time.Duration
	// HistoryLimit bounds the turns shown on the dashboard only.
	HistoryLimit int

	// Logging
	LogLevel string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	env := getEnvOrDefault("ENV", "development")
	provider := getEnvOrDefault("LLM_PROVIDER", "openai")

	cfg := &Config{
		Port:              getEnvOrDefault("PORT", "8080"),
		Env:               env,
		DBDriver:          getEnvOrDefault("DB_DRIVER", "sqlite"),
		SQLitePath:        getEnvOrDefault("SQLITE_PATH", "database.db"),
		DatabaseURL:       getEnvOrDefault("DATABASE_URL", ""),
		SecretKey:         secretKey(env),
		SessionTTL:        time.Duration(getEnvAsIntOrDefault("SESSION_TTL_MINUTES", 720)) * time.Minute,
		LLMProvider:       provider,
		LLMModel:          getEnvOrDefault("LLM_MODEL", defaultModel(provider)),
		OpenAIAPIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     getEnvOrDefault("OPENAI_BASE_URL", ""),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		SystemPrompt:      getEnvOrDefault("SYSTEM_PROMPT", "You are UltraKI Pro V2, a helpful assistant."),
		CompletionTimeout: time.Duration(getEnvAsIntOrDefault("COMPLETION_TIMEOUT_SECONDS", 60)) * time.Second,
		HistoryLimit:      getEnvAsIntOrDefault("HISTORY_LIMIT", 10),
		LogLevel:          getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if cfg.DBDriver == "postgres" && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	}

	return cfg
}

// IsDevelopment reports whether the insecure development defaults are allowed.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// UsesDevSecret reports whether sessions are signed with the built-in key.
func (c *Config) UsesDevSecret() bool {
	return c.SecretKey == devSecretKey
}

func secretKey(env string) string {
	if env == "development" {
		return getEnvOrDefault("SECRET_KEY", devSecretKey)
	}
	return mustGetEnv("SECRET_KEY")
}

func defaultModel(provider string) string {
	if provider == "gemini" {
		return "gemini-1.5-flash"
	}
	return "gpt-4o-mini"
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
