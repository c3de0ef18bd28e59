package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

type Config struct {
	Port     string
	LogLevel string

	StoreBackend string
	DatabaseURL  string
	SQLitePath   string

	LLMProvider    string
	AnthropicKey   string
	AnthropicModel string
	GoogleKey      string
	GeminiModel    string
	LLMTimeout     time.Duration
	LLMMaxRetries  int

	SessionMaxAgeDays int
	CleanupInterval   time.Duration

	SlackToken         string
	SlackSigningSecret string

	LinearToken  string
	LinearTeamID string
}

// keys that are also read without the PROSORA_ prefix
var unprefixed = []string{
	"port",
	"database_url",
	"anthropic_api_key",
	"google_api_key",
	"slack_bot_token",
	"slack_signing_secret",
	"linear_api_key",
	"linear_team_id",
}

// LoadConfig loads configuration from environment variables and an optional
// YAML file. It first tries to load .env, then reads PROSORA_* variables with
// the standard unprefixed names as fallbacks.
func LoadConfig(configFile string) (*Config, error) {
	// Load .env file if it exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or couldn't be loaded: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PROSORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range unprefixed {
		if err := v.BindEnv(key, "PROSORA_"+strings.ToUpper(key), strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("prosora")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("store_backend", BackendMemory)
	v.SetDefault("sqlite_path", "prosora.db")
	v.SetDefault("llm_provider", "anthropic")
	v.SetDefault("anthropic_model", "claude-sonnet-4-5-20250929")
	v.SetDefault("gemini_model", "gemini-1.5-flash")
	v.SetDefault("llm_timeout", "60s")
	v.SetDefault("llm_max_retries", 2)
	v.SetDefault("session_max_age_days", 7)
	v.SetDefault("cleanup_interval", "1h")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Port:               v.GetString("port"),
		LogLevel:           v.GetString("log_level"),
		StoreBackend:       strings.ToLower(v.GetString("store_backend")),
		DatabaseURL:        v.GetString("database_url"),
		SQLitePath:         v.GetString("sqlite_path"),
		LLMProvider:        strings.ToLower(v.GetString("llm_provider")),
		AnthropicKey:       v.GetString("anthropic_api_key"),
		AnthropicModel:     v.GetString("anthropic_model"),
		GoogleKey:          v.GetString("google_api_key"),
		GeminiModel:        v.GetString("gemini_model"),
		LLMTimeout:         v.GetDuration("llm_timeout"),
		LLMMaxRetries:      v.GetInt("llm_max_retries"),
		SessionMaxAgeDays:  v.GetInt("session_max_age_days"),
		CleanupInterval:    v.GetDuration("cleanup_interval"),
		SlackToken:         v.GetString("slack_bot_token"),
		SlackSigningSecret: v.GetString("slack_signing_secret"),
		LinearToken:        v.GetString("linear_api_key"),
		LinearTeamID:       v.GetString("linear_team_id"),
	}
}

// SlackEnabled reports whether both Slack credentials are present.
func (c *Config) SlackEnabled() bool {
	return c.SlackToken != "" && c.SlackSigningSecret != ""
}

// LinearEnabled reports whether issue export can be wired.
func (c *Config) LinearEnabled() bool {
	return c.LinearToken != "" && c.LinearTeamID != ""
}

// APIKey returns the key for the configured provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == "gemini" {
		return c.GoogleKey
	}
	return c.AnthropicKey
}

// Model returns the model for the configured provider.
func (c *Config) Model() string {
	if c.LLMProvider == "gemini" {
		return c.GeminiModel
	}
	return c.AnthropicModel
}

// Validate checks the settings needed to serve. Offline commands skip it.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory, BackendSQLite:
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendSQLite && c.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
	}

	switch c.LLMProvider {
	case "anthropic":
		if c.AnthropicKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
	case "gemini":
		if c.GoogleKey == "" {
			return fmt.Errorf("GOOGLE_API_KEY is required")
		}
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider)
	}

	if c.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}
	if c.LLMMaxRetries < 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must not be negative")
	}
	if c.SessionMaxAgeDays <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE_DAYS must be positive")
	}
	if c.CleanupInterval <= 0 {
		return fmt.Errorf("CLEANUP_INTERVAL must be positive")
	}
	return nil
}
