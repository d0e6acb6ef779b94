package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Office   OfficeConfig   `mapstructure:"office" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RateLimitPerSecond is the sustained request rate allowed per
	// client IP. RateLimitBurst is the burst allowance above it.
	RateLimitPerSecond float64 `mapstructure:"rate_limit_per_second" validate:"required,gt=0"`
	RateLimitBurst     int     `mapstructure:"rate_limit_burst" validate:"required,gt=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes controls how long issued access tokens are
	// valid for.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// BCryptCost is the work factor for password hashing.
	BCryptCost int `mapstructure:"bcrypt_cost" validate:"required,gte=4,lte=31"`
}

// OfficeConfig describes the bookable window of the business day.
// Appointments are only accepted inside it.
type OfficeConfig struct {
	// OpenTime and CloseTime are wall-clock times in "HH:MM" form.
	OpenTime  string `mapstructure:"open_time" validate:"required,len=5"`
	CloseTime string `mapstructure:"close_time" validate:"required,len=5"`

	// SlotMinutes is the fixed appointment duration.
	SlotMinutes int `mapstructure:"slot_minutes" validate:"required,gt=0"`
}
