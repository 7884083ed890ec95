// Package config provides configuration for the ledger-close pipeline.
// It loads settings from environment variables and .env files.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	DBPath      string // SQLite database file
	Actor       string // operator name stamped on writes and audit events
	MappingFile string // YAML code mapping for legacy migration
	Debug       bool
}

// Load loads configuration from environment variables, after loading an
// optional .env file (the current directory's by default).
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	config := &Config{
		DBPath:      getEnvOrDefault("LEDGER_DB_PATH", "./ledger-close.db"),
		Actor:       getEnvOrDefault("LEDGER_ACTOR", "SYSTEM"),
		MappingFile: getEnvOrDefault("LEDGER_MAPPING_FILE", "config/legacy-mapping.yaml"),
		Debug:       os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate checks that the named fields are set.
func (c *Config) Validate(required ...string) error {
	var missing []string

	for _, field := range required {
		var value string
		switch field {
		case "dbPath":
			value = c.DBPath
		case "actor":
			value = c.Actor
		case "mappingFile":
			value = c.MappingFile
		}
		if value == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
