package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix shared by every environment variable the service reads.
const EnvPrefix = "ANNOTATE"

// setDefaults registers the default value of every configuration key. Keys must be
// registered here (even with an empty default) for viper to bind them from the environment.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)

	v.SetDefault("generation.cleanup_delay_seconds", 60)
	v.SetDefault("generation.request_timeout_seconds", 60)
	v.SetDefault("generation.worker_count", 8)
	v.SetDefault("generation.queue_size", 100)
	v.SetDefault("generation.max_count", 1000)
	v.SetDefault("generation.start_on_submit", false)
	v.SetDefault("generation.label_precedence", "bracket_first")
	v.SetDefault("generation.default_provider", "openai")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.results_ttl_minutes", 1440)

	v.SetDefault("pagination.default_page_size", 50)
	v.SetDefault("pagination.max_page_size", 1000)

	v.SetDefault("metrics.enabled", true)
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// A .env file in the working directory is loaded first when present.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if path := os.Getenv(EnvPrefix + "_CONFIG_PATH"); path != "" {
		v.SetConfigFile(path)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
