// Package config loads service configuration from environment
// variables, the way the teacher's orchestrator config package does:
// a flat set of getEnv helpers feeding a typed Config struct, so every
// setting has one documented default and one env var name.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds this service's runtime configuration.
type Config struct {
	Service  ServiceConfig
	Database DatabaseConfig
	Monitor  MonitorConfig
}

// ServiceConfig holds logging and identification settings shared by
// the CLI and the daemon front ends.
type ServiceConfig struct {
	Name      string
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds the Postgres connection this service uses for
// its append-only job-audit log. With Enabled false a front end runs
// with no database at all and audit events are not recorded. The CLI
// always runs without one, whatever Enabled says.
type DatabaseConfig struct {
	Enabled     bool
	Host        string
	Port        int
	Database    string
	User        string
	Password    string
	MaxConns    int
	MinConns    int
	MaxIdleTime time.Duration
	MaxLifetime time.Duration
}

// MonitorConfig holds the read-only HTTP monitor's listen settings.
type MonitorConfig struct {
	Enabled bool
	Port    int
}

// Load reads configuration for serviceName from the environment.
func Load(serviceName string) (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:      serviceName,
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			LogFormat: getEnv("LOG_FORMAT", "text"),
		},
		Database: DatabaseConfig{
			Enabled:     getEnvBool("AUDIT_DB_ENABLED", false),
			Host:        getEnv("POSTGRES_HOST", "localhost"),
			Port:        getEnvInt("POSTGRES_PORT", 5432),
			Database:    getEnv("POSTGRES_DB", "sequencer"),
			User:        getEnv("POSTGRES_USER", "sequencer"),
			Password:    getEnv("POSTGRES_PASSWORD", "sequencer"),
			MaxConns:    getEnvInt("POSTGRES_MAX_CONNS", 10),
			MinConns:    getEnvInt("POSTGRES_MIN_CONNS", 2),
			MaxIdleTime: getEnvDuration("POSTGRES_MAX_IDLE_TIME", 30*time.Minute),
			MaxLifetime: getEnvDuration("POSTGRES_MAX_LIFETIME", 1*time.Hour),
		},
		Monitor: MonitorConfig{
			Enabled: getEnvBool("MONITOR_ENABLED", false),
			Port:    getEnvInt("MONITOR_PORT", 8080),
		},
	}

	return cfg, cfg.Validate()
}

// Validate checks the loaded configuration for internal consistency.
func (c *Config) Validate() error {
	if c.Database.Enabled && c.Database.Host == "" {
		return fmt.Errorf("audit database enabled but host is empty")
	}
	if c.Database.MaxConns < c.Database.MinConns {
		return fmt.Errorf("postgres max_conns must be >= min_conns")
	}
	if c.Monitor.Enabled && (c.Monitor.Port < 1 || c.Monitor.Port > 65535) {
		return fmt.Errorf("invalid monitor port: %d", c.Monitor.Port)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string for the audit
// database.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
