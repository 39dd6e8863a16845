package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime settings for the bot.
type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	APIBaseURL    string `mapstructure:"API_BASE_URL"`
	Timezone      string `mapstructure:"TIMEZONE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	// Daily booking window rendered in the slot grid.
	WindowStart string `mapstructure:"BOOKING_WINDOW_START"`
	WindowEnd   string `mapstructure:"BOOKING_WINDOW_END"`
	StepMinutes int    `mapstructure:"SLOT_STEP_MINUTES"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	Env      string `mapstructure:"ENV"`
}

// Load reads config.yaml if present and falls back to environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	// An explicit default (even empty) is what makes AutomaticEnv pick the
	// key up during Unmarshal.
	viper.SetDefault("TELEGRAM_BOT_TOKEN", "")
	viper.SetDefault("API_BASE_URL", "http://127.0.0.1:8000/api")
	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("BOOKING_WINDOW_START", "06:00")
	viper.SetDefault("BOOKING_WINDOW_END", "22:00")
	viper.SetDefault("SLOT_STEP_MINUTES", 30)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("ENV", "development")

	// A missing config file is fine, environment variables cover everything.
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.StepMinutes <= 0 {
		return nil, fmt.Errorf("SLOT_STEP_MINUTES must be positive, got %d", cfg.StepMinutes)
	}

	return &cfg, nil
}
