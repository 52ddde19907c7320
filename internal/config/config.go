package config

import (
	"os"
	"strconv"

	"pillartwo/internal"
	"pillartwo/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	Engine  EngineConfig
	Export  ExportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// LoggingConfig holds the log verbosity
type LoggingConfig struct {
	Level internal.LogLevel
}

// EngineConfig selects the rulebook, the fiscal year and the seed of the
// mock statistical flags.
type EngineConfig struct {
	RulebookPath string
	FiscalYear   string
	Seed         int64
}

// ExportConfig holds workbook export settings
type ExportConfig struct {
	Dir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server:  *loadServerConfig(),
		Logging: *loadLoggingConfig(),
		Engine:  *loadEngineConfig(),
		Export:  *loadExportConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:    getEnvOrDefault("PORT", "8080"),
		GinMode: getEnvOrDefault("GIN_MODE", "release"),
	}
}

func loadLoggingConfig() *LoggingConfig {
	level, _ := internal.ParseLogLevel(os.Getenv("LOG_LEVEL"))
	return &LoggingConfig{Level: level}
}

func loadEngineConfig() *EngineConfig {
	return &EngineConfig{
		RulebookPath: getEnvOrDefault("RULEBOOK_PATH", ""),
		FiscalYear:   getEnvOrDefault("FISCAL_YEAR", ""),
		Seed:         getEnvInt64OrDefault("RNG_SEED", 42),
	}
}

func loadExportConfig() *ExportConfig {
	return &ExportConfig{
		Dir: getEnvOrDefault("EXPORT_DIR", "."),
	}
}

func validateConfig(config *Config) error {
	port, err := strconv.Atoi(config.Server.Port)
	if err != nil || port <= 0 || port > 65535 {
		return errors.ConfigInvalid("PORT must be a TCP port number, got " + strconv.Quote(config.Server.Port))
	}
	switch config.Server.GinMode {
	case "debug", "release", "test":
	default:
		return errors.ConfigInvalid("GIN_MODE must be debug, release or test")
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		if _, ok := internal.ParseLogLevel(level); !ok {
			return errors.ConfigInvalid("LOG_LEVEL " + strconv.Quote(level) + " is not a known level")
		}
	}
	if fy := config.Engine.FiscalYear; fy != "" {
		if _, err := strconv.Atoi(fy); err != nil || len(fy) != 4 {
			return errors.ConfigInvalid("FISCAL_YEAR must be a four-digit year")
		}
	}
	if raw := os.Getenv("RNG_SEED"); raw != "" {
		if _, err := strconv.ParseInt(raw, 10, 64); err != nil {
			return errors.ConfigInvalid("RNG_SEED must be an integer")
		}
	}
	if config.Export.Dir == "" {
		return errors.ConfigInvalid("export directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
