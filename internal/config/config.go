// Package config loads run settings from the environment and job
// manifests from YAML files.
package config

import (
	"fmt"
	"time"

	"github.com/BartekS5/ingest/pkg/database"
)

// Defaults used when neither flags nor environment set a value.
const (
	DefaultDriver    = "postgres"
	DefaultUser      = "root"
	DefaultPassword  = "root"
	DefaultHost      = "localhost"
	DefaultPort      = 5432
	DefaultDBName    = "ny_taxi"
	DefaultSSLMode   = "disable"
	DefaultChunkSize = 100000
	DefaultTimeout   = 120 * time.Second
	DefaultLogLevel  = "info"
)

// Config holds all configuration for the application, typically loaded
// from environment variables (populated by the .env file in main.go).
type Config struct {
	DB        database.Params
	ChunkSize int
	Timeout   time.Duration
	Insecure  bool
	LogFile   string
	LogLevel  string
}

// LoadConfig reads INGEST_* variables, falling back to defaults.
// INGEST_DB_URL, when set, replaces the individual INGEST_DB_* values.
func LoadConfig() (*Config, error) {
	port, err := getEnvInt("INGEST_DB_PORT", DefaultPort)
	if err != nil {
		return nil, err
	}
	chunkSize, err := getEnvInt("INGEST_CHUNK_SIZE", DefaultChunkSize)
	if err != nil {
		return nil, err
	}
	timeout, err := getEnvDuration("INGEST_HTTP_TIMEOUT", DefaultTimeout)
	if err != nil {
		return nil, err
	}
	insecure, err := getEnvBool("INGEST_INSECURE", false)
	if err != nil {
		return nil, err
	}

	db := database.Params{
		Driver:   getEnv("INGEST_DB_DRIVER", DefaultDriver),
		User:     getEnv("INGEST_DB_USER", DefaultUser),
		Password: getEnv("INGEST_DB_PASSWORD", DefaultPassword),
		Host:     getEnv("INGEST_DB_HOST", DefaultHost),
		Port:     port,
		Name:     getEnv("INGEST_DB_NAME", DefaultDBName),
		SSLMode:  getEnv("INGEST_DB_SSLMODE", DefaultSSLMode),
	}
	if raw := getEnv("INGEST_DB_URL", ""); raw != "" {
		if db, err = database.ParseURL(raw); err != nil {
			return nil, err
		}
	}

	cfg := &Config{
		DB:        db,
		ChunkSize: chunkSize,
		Timeout:   timeout,
		Insecure:  insecure,
		LogFile:   getEnv("INGEST_LOG_FILE", ""),
		LogLevel:  getEnv("INGEST_LOG_LEVEL", DefaultLogLevel),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate canonicalizes the driver name and checks ranges.
func (c *Config) Validate() error {
	driver, err := database.CanonicalDriver(c.DB.Driver)
	if err != nil {
		return err
	}
	c.DB.Driver = driver

	if c.DB.Port < 0 || c.DB.Port > 65535 {
		return fmt.Errorf("invalid database port %d", c.DB.Port)
	}
	if c.DB.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", c.ChunkSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.Timeout)
	}
	return nil
}
