package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	// Initialize a new viper instance
	v := viper.New()

	// Set default values for settings that have sensible fallbacks
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.rate_limit_per_second", 10.0)
	v.SetDefault("server.rate_limit_burst", 20)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("office.open_time", "09:00")
	v.SetDefault("office.close_time", "18:00")
	v.SetDefault("office.slot_minutes", 60)

	// Configure to read from an optional config file in the working
	// directory. A missing file is fine; env vars alone can carry the
	// full configuration.
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Configure to read from environment variables with APPT_ prefix.
	// Nested keys map dots to underscores, e.g. server.port becomes
	// APPT_SERVER_PORT.
	v.SetEnvPrefix("APPT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Viper's AutomaticEnv does not surface env-only keys to Unmarshal
	// unless the key is known, so bind each one explicitly.
	for _, key := range []string{
		"server.port",
		"server.log_level",
		"server.rate_limit_per_second",
		"server.rate_limit_burst",
		"database.url",
		"auth.jwt_secret",
		"auth.token_lifetime_minutes",
		"auth.bcrypt_cost",
		"office.open_time",
		"office.close_time",
		"office.slot_minutes",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	// Unmarshal config into the typed struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
