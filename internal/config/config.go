package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Backend  BackendConfig  `mapstructure:"backend" validate:"required"`
	Session  SessionConfig  `mapstructure:"session" validate:"required"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// ServerConfig contains the settings of the BFF HTTP surface.
type ServerConfig struct {
	Port         int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel     string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	CookieName   string `mapstructure:"cookie_name" validate:"required"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
}

// BackendConfig describes the remote learning backend.
type BackendConfig struct {
	BaseURL string `mapstructure:"base_url" validate:"required,url"`
	// TimeoutSeconds bounds every backend call except strategy generation.
	TimeoutSeconds int `mapstructure:"timeout_seconds" validate:"gt=0"`
	// GenerateTimeoutSeconds bounds strategy generation, which runs an LLM remotely.
	GenerateTimeoutSeconds int `mapstructure:"generate_timeout_seconds" validate:"gt=0"`
	// RatePerSecond of zero disables outbound throttling.
	RatePerSecond float64 `mapstructure:"rate_per_second" validate:"gte=0"`
	Burst         int     `mapstructure:"burst" validate:"gte=0"`
}

// SessionConfig selects where browser sessions are kept.
type SessionConfig struct {
	Store    string `mapstructure:"store" validate:"required,oneof=memory redis postgres"`
	TTLHours int    `mapstructure:"ttl_hours" validate:"gt=0"`
}

// DatabaseConfig is required when the session store is postgres.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"omitempty,url"`
}

// RedisConfig is required when the session store is redis.
type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}
