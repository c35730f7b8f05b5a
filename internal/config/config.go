// Package config loads and validates the application configuration from
// a YAML file, BOT_* environment variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	tgmodels "github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines all application configuration parameters.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	AI        AIConfig        `mapstructure:"ai"`
	Models    ModelsConfig    `mapstructure:"models"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds transport settings. BotInfo is populated at startup
// from GetMe and is not part of the file.
type TelegramConfig struct {
	Token   string         `mapstructure:"token" validate:"required"`
	BotInfo *tgmodels.User `mapstructure:"-"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path             string        `mapstructure:"path" validate:"required"`
	OperationTimeout time.Duration `mapstructure:"operation_timeout" validate:"min=1s,max=1m"`
}

// AIConfig holds provider credentials and request policy.
type AIConfig struct {
	RequestTimeout time.Duration             `mapstructure:"request_timeout" validate:"min=1s,max=10m"`
	TranslateModel string                    `mapstructure:"translate_model" validate:"required"`
	Providers      map[string]ProviderConfig `mapstructure:"providers" validate:"dive"`
	Gemini         GeminiConfig              `mapstructure:"gemini"`
}

// ProviderConfig describes one OpenAI-compatible backend.
type ProviderConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey  string `mapstructure:"api_key"`
}

// GeminiConfig describes the Gemini backend. The provider is enabled when an
// API key is present.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=60"`
}

// ModelsConfig is the source of the typed model registry.
type ModelsConfig struct {
	Text  []ModelConfig `mapstructure:"text" validate:"dive"`
	Image []ModelConfig `mapstructure:"image" validate:"dive"`
}

// ModelConfig describes one registry entry.
type ModelConfig struct {
	ID          string `mapstructure:"id" validate:"required"`
	Provider    string `mapstructure:"provider" validate:"required"`
	DisplayName string `mapstructure:"display_name"`
	Vision      bool   `mapstructure:"vision"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// TaskConfig enables a named scheduled task with a cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// LoadConfig reads configuration from the given YAML file (optional), applies
// BOT_* environment variable overrides and defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		}
		// Missing config file is fine; env and defaults apply.
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	// Registered empty so BOT_* env overrides are picked up even without a
	// config file entry.
	v.SetDefault("telegram.token", "")
	v.SetDefault("ai.gemini.api_key", "")

	v.SetDefault("database.path", "storage.db")
	v.SetDefault("database.operation_timeout", 5*time.Second)

	v.SetDefault("ai.request_timeout", 2*time.Minute)
	v.SetDefault("ai.translate_model", "gpt-4o")
	v.SetDefault("ai.gemini.temperature", 1.0)
	v.SetDefault("ai.gemini.max_retries", 2)
	v.SetDefault("ai.gemini.retry_delay_seconds", 5)

	v.SetDefault("models.text", []map[string]any{
		{"id": "gpt-4o", "provider": "openai", "display_name": "GPT-4o", "vision": true},
		{"id": "gpt-4o-mini", "provider": "openai", "display_name": "GPT-4o mini", "vision": false},
		{"id": "gemini-2.0-flash", "provider": "gemini", "display_name": "Gemini 2.0 Flash", "vision": true},
	})
	v.SetDefault("models.image", []map[string]any{
		{"id": "dall-e-3", "provider": "openai", "display_name": "DALL-E 3"},
		{"id": "flux", "provider": "openai", "display_name": "Flux"},
	})

	// Cron expressions carry a seconds field.
	v.SetDefault("scheduler.tasks.session_flush.enabled", true)
	v.SetDefault("scheduler.tasks.session_flush.schedule", "0 */5 * * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 0 4 * * *")
}
