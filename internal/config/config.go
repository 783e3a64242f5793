package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Upload   UploadConfig   `mapstructure:"upload"   validate:"required"`
	Stream   StreamConfig   `mapstructure:"stream"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port               int           `mapstructure:"port"                 validate:"required,gt=0,lt=65536"`
	LogLevel           string        `mapstructure:"log_level"            validate:"required,oneof=debug info warn error"`
	Version            string        `mapstructure:"version"              validate:"required"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"     validate:"gt=0"`
}

// DatabaseConfig selects the gorm dialect and connection.
type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver       string `mapstructure:"driver"         validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
	// AutoMigrate creates missing tables and indexes on startup.
	AutoMigrate bool `mapstructure:"auto_migrate"`
}

// AuthConfig contains all authentication settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	CookieName           string `mapstructure:"cookie_name"            validate:"required"`
	CookieSecure         bool   `mapstructure:"cookie_secure"`
	BcryptCost           int    `mapstructure:"bcrypt_cost"            validate:"gte=4,lte=31"`
	// RateLimitPerMinute bounds signup/signin attempts per client IP; 0 disables it.
	RateLimitPerMinute int `mapstructure:"rate_limit_per_minute" validate:"gte=0"`
	RateLimitBurst     int `mapstructure:"rate_limit_burst"      validate:"gte=0"`
}

// UploadConfig bounds CSV imports.
type UploadConfig struct {
	MaxBytes          int64 `mapstructure:"max_bytes"           validate:"gt=0"`
	MaxRows           int   `mapstructure:"max_rows"            validate:"gt=0"`
	BatchSize         int   `mapstructure:"batch_size"          validate:"gt=0"`
	MaxReportedErrors int   `mapstructure:"max_reported_errors" validate:"gt=0"`
}

// StreamConfig tunes server-sent event delivery.
type StreamConfig struct {
	// HeartbeatInterval is the period between keep-alive events; 0 sends only
	// the initial heartbeat.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval" validate:"gte=0"`
	// BufferSize is the number of events queued per subscriber before drops.
	BufferSize int `mapstructure:"buffer_size" validate:"gt=0"`
}

// TokenLifetime returns the session token lifetime as a duration.
func (c AuthConfig) TokenLifetime() time.Duration {
	return time.Duration(c.TokenLifetimeMinutes) * time.Minute
}
