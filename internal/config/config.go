package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"     validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"   validate:"required"`
	Generation GenerationConfig `mapstructure:"generation" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Pagination PaginationConfig `mapstructure:"pagination" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port"                     validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level"                validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// GenerationConfig controls the streaming generation task manager.
type GenerationConfig struct {
	// CleanupDelaySeconds is how long a finished task stays in the registry
	// so clients can still fetch its final status.
	CleanupDelaySeconds   int    `mapstructure:"cleanup_delay_seconds"   validate:"gte=0"`
	RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" validate:"gte=1"`
	WorkerCount           int    `mapstructure:"worker_count"            validate:"gte=1"`
	QueueSize             int    `mapstructure:"queue_size"              validate:"gte=1"`
	MaxCount              int    `mapstructure:"max_count"               validate:"gte=1"`
	StartOnSubmit         bool   `mapstructure:"start_on_submit"`
	LabelPrecedence       string `mapstructure:"label_precedence"        validate:"oneof=bracket_first prefix_first"`
	DefaultProvider       string `mapstructure:"default_provider"        validate:"oneof=openai ollama gemini"`
}

// RedisConfig configures the optional results archive. An empty URL disables it.
type RedisConfig struct {
	URL               string `mapstructure:"url"                 validate:"omitempty,url"`
	ResultsTTLMinutes int    `mapstructure:"results_ttl_minutes" validate:"gte=1"`
}

// PaginationConfig bounds the annotation search page sizes.
type PaginationConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size" validate:"gte=1"`
	MaxPageSize     int `mapstructure:"max_page_size"     validate:"gtefield=DefaultPageSize"`
}

// MetricsConfig toggles the Prometheus /metrics endpoint.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
