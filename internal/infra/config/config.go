package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings" // For LogLevel normalization

	"github.com/joho/godotenv"
)

const (
	defaultDBHost    = "localhost"
	defaultDBPort    = 5432
	defaultDBSSLMode = "disable"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	Database    DatabaseConfig
	LogLevel    string
	LogFile     string // Empty means stderr
	Environment string
}

// DatabaseConfig holds the PostgreSQL connection parameters.
// Credentials have no built-in defaults.
type DatabaseConfig struct {
	Name     string
	User     string
	Password string
	Host     string
	Port     int
	SSLMode  string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// Errors are ignored if the file doesn't exist.
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}

	cfg.Database.Name = os.Getenv("DB_NAME")
	if cfg.Database.Name == "" {
		return nil, fmt.Errorf("DB_NAME is not set")
	}

	cfg.Database.User = os.Getenv("DB_USER")
	if cfg.Database.User == "" {
		return nil, fmt.Errorf("DB_USER is not set")
	}

	// LookupEnv so that an explicitly empty password (trust auth) is allowed,
	// while a missing one is still rejected.
	password, ok := os.LookupEnv("DB_PASSWORD")
	if !ok {
		return nil, fmt.Errorf("DB_PASSWORD is not set")
	}
	cfg.Database.Password = password

	cfg.Database.Host = os.Getenv("DB_HOST")
	if cfg.Database.Host == "" {
		cfg.Database.Host = defaultDBHost
	}

	cfg.Database.Port = defaultDBPort
	if portStr := os.Getenv("DB_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid DB_PORT: %w", err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid DB_PORT: %d is out of range", port)
		}
		cfg.Database.Port = port
	}

	cfg.Database.SSLMode = strings.ToLower(os.Getenv("DB_SSLMODE"))
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = defaultDBSSLMode
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.LogFile = os.Getenv("LOG_FILE")

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}

// DSN returns a postgres:// connection URL understood by lib/pq.
func (c DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	q := url.Values{}
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Address is host:port, for logging.
func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
