package config

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
	"github.com/yigit/lecturealert/internal/pkg/helpers"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	JWT      JWTConfig      `yaml:"jwt"`
	Logging  LoggingConfig  `yaml:"logging"`
	SMTP     SMTPConfig     `yaml:"smtp"`
	App      AppConfig      `yaml:"app"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port         string `yaml:"port" env:"SERVER_PORT, overwrite"`
	Mode         string `yaml:"mode" env:"SERVER_MODE, overwrite"`
	BaseURL      string `yaml:"base_url" env:"SERVER_BASE_URL, overwrite"`
	CookieSecure bool   `yaml:"cookie_secure" env:"SERVER_COOKIE_SECURE, overwrite"`
}

// DatabaseConfig holds PostgreSQL settings
type DatabaseConfig struct {
	Host            string `yaml:"host" env:"DB_HOST, overwrite"`
	Port            string `yaml:"port" env:"DB_PORT, overwrite"`
	User            string `yaml:"user" env:"DB_USER, overwrite"`
	Password        string `yaml:"password" env:"DB_PASSWORD, overwrite"`
	DBName          string `yaml:"dbname" env:"DB_NAME, overwrite"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE, overwrite"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS, overwrite"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS, overwrite"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME, overwrite"`
	MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR, overwrite"`
	Seed            bool   `yaml:"seed" env:"DB_SEED, overwrite"`
}

// RedisConfig holds the session store settings. An empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR, overwrite"`
	Password string `yaml:"password" env:"REDIS_PASSWORD, overwrite"`
	DB       int    `yaml:"db" env:"REDIS_DB, overwrite"`
}

// JWTConfig holds token settings
type JWTConfig struct {
	Secret                string `yaml:"secret" env:"JWT_SECRET, overwrite"`
	AccessTokenExpiration string `yaml:"access_token_expiration" env:"JWT_ACCESS_TOKEN_EXPIRATION, overwrite"`
	Issuer                string `yaml:"issuer" env:"JWT_ISSUER, overwrite"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL, overwrite"`
	Format string `yaml:"format" env:"LOG_FORMAT, overwrite"`
}

// SMTPConfig holds verification mail settings
type SMTPConfig struct {
	Host      string `yaml:"host" env:"SMTP_HOST, overwrite"`
	Port      int    `yaml:"port" env:"SMTP_PORT, overwrite"`
	Username  string `yaml:"username" env:"SMTP_USERNAME, overwrite"`
	Password  string `yaml:"password" env:"SMTP_PASSWORD, overwrite"`
	FromName  string `yaml:"from_name" env:"SMTP_FROM_NAME, overwrite"`
	FromEmail string `yaml:"from_email" env:"SMTP_FROM_EMAIL, overwrite"`
	UseTLS    bool   `yaml:"use_tls" env:"SMTP_USE_TLS, overwrite"`
}

// AppConfig holds dashboard behaviour settings
type AppConfig struct {
	Timezone       string `yaml:"timezone" env:"APP_TIMEZONE, overwrite"`
	UpcomingLimit  int    `yaml:"upcoming_limit" env:"APP_UPCOMING_LIMIT, overwrite"`
	RequestTimeout string `yaml:"request_timeout" env:"APP_REQUEST_TIMEOUT, overwrite"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return load(configPath, envconfig.OsLookuper())
}

func load(configPath string, lookuper envconfig.Lookuper) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// Override with environment variables
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   config,
		Lookuper: lookuper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.BaseURL = "http://localhost:8080"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "lecturealert"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 5
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.JWT.AccessTokenExpiration = "24h"
	config.JWT.Issuer = "lecturealert.app"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
	config.SMTP.FromName = "LectureAlert"
	config.SMTP.FromEmail = "noreply@lecturealert.app"
	config.SMTP.UseTLS = true

	config.App.Timezone = "Local"
	config.App.UpcomingLimit = 5
	config.App.RequestTimeout = "10s"
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if _, err := time.ParseDuration(config.JWT.AccessTokenExpiration); err != nil {
		return fmt.Errorf("invalid JWT access token expiration format: %w", err)
	}

	if _, err := time.ParseDuration(config.Database.ConnMaxLifetime); err != nil {
		return fmt.Errorf("invalid connection max lifetime: %w", err)
	}

	if _, err := time.ParseDuration(config.App.RequestTimeout); err != nil {
		return fmt.Errorf("invalid request timeout: %w", err)
	}

	if _, err := time.LoadLocation(config.App.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", config.App.Timezone, err)
	}

	if config.App.UpcomingLimit <= 0 {
		return fmt.Errorf("upcoming limit must be positive")
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	return c.Database.ConnectionString()
}

// ConnectionString builds the pgx URL for this database
func (d DatabaseConfig) ConnectionString() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.DBName,
		sslMode,
	)
}

// Location returns the time zone used for "today" classification
func (c *Config) Location() *time.Location {
	return helpers.LoadLocation(c.App.Timezone)
}

// AccessTokenTTL returns the parsed access token lifetime
func (c *Config) AccessTokenTTL() time.Duration {
	return helpers.ParseDuration(c.JWT.AccessTokenExpiration, 24*time.Hour)
}

// RequestTimeout returns the per-request backend timeout
func (c *Config) RequestTimeout() time.Duration {
	return helpers.ParseDuration(c.App.RequestTimeout, 10*time.Second)
}
