package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "ATHENA"

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvs(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	if err := validateStoreSettings(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// validateStoreSettings checks the settings that only matter for the selected session store.
func validateStoreSettings(cfg Config) error {
	switch cfg.Session.Store {
	case "postgres":
		if cfg.Database.URL == "" {
			return errors.New("database.url is required when session.store is postgres")
		}
	case "redis":
		if cfg.Redis.Addr == "" {
			return errors.New("redis.addr is required when session.store is redis")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.cookie_name", "athena_session")
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("backend.base_url", "http://localhost:8000/api")
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("backend.generate_timeout_seconds", 90)
	v.SetDefault("backend.rate_per_second", 0)
	v.SetDefault("backend.burst", 10)
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl_hours", 72)
	v.SetDefault("redis.db", 0)
}

// bindEnvs makes keys without defaults visible to Unmarshal; AutomaticEnv alone
// only resolves keys viper already knows about.
func bindEnvs(v *viper.Viper) {
	for _, key := range []string{"database.url", "redis.addr", "redis.password"} {
		_ = v.BindEnv(key)
	}
}
