package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"me_msggen/internal/domain"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override, e.g. MSGGEN_GENERATOR_SENDER.
const EnvPrefix = "MSGGEN_"

// GeneratorConfig holds the message synthesis parameters
type GeneratorConfig struct {
	Sender          int   `yaml:"sender" env:"SENDER"`
	Quantity        int64 `yaml:"quantity" env:"QUANTITY"`
	ContraIncrement int64 `yaml:"contra_increment" env:"CONTRA_INCREMENT"`
}

// OutputConfig controls where and how records are written
type OutputConfig struct {
	Echo         bool   `yaml:"echo" env:"ECHO"`                   // Also print test records to stdout
	ConcatSeeded bool   `yaml:"concat_seeded" env:"CONCAT_SEEDED"` // Write seeded records without separators
	WSURL        string `yaml:"ws_url" env:"WS_URL"`               // Optional engine gateway for live test records
	WSRetries    int    `yaml:"ws_retries" env:"WS_RETRIES"`
}

// StorageConfig controls the SQLite run archive
type StorageConfig struct {
	Enabled bool   `yaml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" env:"PATH"`
}

// LoggingConfig controls slog output
type LoggingConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	Dir   string `yaml:"dir" env:"DIR"` // Empty disables the rotating file
}

// Config holds all generator settings.
// The YAML file is applied over defaults, then MSGGEN_* environment variables win.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Generator GeneratorConfig `yaml:"generator" envPrefix:"GENERATOR_"`
	Output    OutputConfig    `yaml:"output" envPrefix:"OUTPUT_"`
	Storage   StorageConfig   `yaml:"storage" envPrefix:"STORAGE_"`
	Logging   LoggingConfig   `yaml:"logging" envPrefix:"LOGGING_"`

	Debug struct {
		DumpState string `yaml:"dump_state" env:"DUMP_STATE"` // Path for the post-run book dump
	} `yaml:"debug" envPrefix:"DEBUG_"`
}

// DefaultConfig returns the settings used when no file is given
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "msggen"
	cfg.App.Version = "1.0.0"
	cfg.Generator.Sender = 1
	cfg.Generator.Quantity = 100
	cfg.Generator.ContraIncrement = 100
	cfg.Output.WSRetries = 3
	cfg.Storage.Path = "msggen.db"
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return cfg
}

// LoadConfig reads the YAML file at path (if any) and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.ConfigError{Field: "path", Err: fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)}
		}
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, &domain.ConfigError{Field: "yaml", Err: err}
		}
	}

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// overrideWithEnv loads .env if present and applies MSGGEN_* variables.
func overrideWithEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.ConfigError{Field: ".env", Err: err}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return &domain.ConfigError{Field: "env", Err: err}
	}
	return nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Generator.Sender < 0 {
		return &domain.ConfigError{Field: "generator.sender", Err: errors.New("must not be negative")}
	}
	if c.Generator.Quantity <= 0 {
		return &domain.ConfigError{Field: "generator.quantity", Err: errors.New("must be positive")}
	}
	if c.Generator.ContraIncrement <= 0 {
		return &domain.ConfigError{Field: "generator.contra_increment", Err: errors.New("must be positive")}
	}

	if u := c.Output.WSURL; u != "" && !strings.HasPrefix(u, "ws://") && !strings.HasPrefix(u, "wss://") {
		return &domain.ConfigError{Field: "output.ws_url", Err: fmt.Errorf("invalid WS URL: %s", u)}
	}
	if c.Output.WSRetries < 0 {
		return &domain.ConfigError{Field: "output.ws_retries", Err: errors.New("must not be negative")}
	}

	if c.Storage.Enabled && c.Storage.Path == "" {
		return &domain.ConfigError{Field: "storage.path", Err: errors.New("required when storage is enabled")}
	}

	return nil
}
