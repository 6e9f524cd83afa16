// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Template backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	Input struct {
		// Encodings are tried in order when decoding a ledger.
		Encodings []string `mapstructure:"encodings" yaml:"encodings"`
	} `mapstructure:"input" yaml:"input"`

	Templates struct {
		Backend   string `mapstructure:"backend" yaml:"backend"`
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"templates" yaml:"templates"`

	Database struct {
		Path    string `mapstructure:"path" yaml:"path"`
		Persist bool   `mapstructure:"persist" yaml:"persist"`
		// PersistINK2 also stores the tax schedule after each build.
		PersistINK2 bool `mapstructure:"persist_ink2" yaml:"persist_ink2"`
		// WatchInterval is how often the sqlite backend checks for template
		// changes committed by other processes. Zero disables the check.
		WatchInterval time.Duration `mapstructure:"watch_interval" yaml:"watch_interval"`
	} `mapstructure:"database" yaml:"database"`

	Output struct {
		Format    string `mapstructure:"format" yaml:"format"`
		Delimiter string `mapstructure:"delimiter" yaml:"delimiter"`
	} `mapstructure:"output" yaml:"output"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return Load("")
}

// Load reads configuration. A non-empty path replaces the config file
// search, and a missing explicit file is an error.
func Load(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.sie-report")
		v.AddConfigPath(".sie-report")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix("SIE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless explicit)
	if err := v.ReadInConfig(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	normalize(&config)

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("input.encodings", []string{"utf-8", "windows-1252", "iso-8859-1"})

	v.SetDefault("templates.backend", BackendFile)
	v.SetDefault("templates.directory", "templates")

	v.SetDefault("database.path", "sie-report.db")
	v.SetDefault("database.persist", true)
	v.SetDefault("database.persist_ink2", false)
	v.SetDefault("database.watch_interval", "2s")

	v.SetDefault("output.format", "json")
	v.SetDefault("output.delimiter", ",")
}

// normalize folds case on enumerated settings. Encodings given as one
// comma separated env var are split.
func normalize(config *Config) {
	config.Log.Level = strings.ToLower(strings.TrimSpace(config.Log.Level))
	config.Log.Format = strings.ToLower(strings.TrimSpace(config.Log.Format))
	config.Templates.Backend = strings.ToLower(strings.TrimSpace(config.Templates.Backend))
	config.Output.Format = strings.ToLower(strings.TrimSpace(config.Output.Format))

	var encodings []string
	for _, e := range config.Input.Encodings {
		for _, part := range strings.FieldsFunc(e, func(r rune) bool { return r == ',' || r == ' ' }) {
			encodings = append(encodings, part)
		}
	}
	config.Input.Encodings = encodings
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	switch config.Templates.Backend {
	case BackendFile:
		if config.Templates.Directory == "" {
			return fmt.Errorf("templates.directory is required for the file backend")
		}
	case BackendSQLite:
		if config.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite backend")
		}
	default:
		return fmt.Errorf("invalid templates backend: %s (must be 'file' or 'sqlite')", config.Templates.Backend)
	}

	if config.Database.WatchInterval < 0 {
		return fmt.Errorf("database.watch_interval cannot be negative: %s", config.Database.WatchInterval)
	}

	if config.Output.Format != "json" && config.Output.Format != "csv" {
		return fmt.Errorf("invalid output format: %s (must be 'json' or 'csv')", config.Output.Format)
	}

	if len([]rune(config.Output.Delimiter)) != 1 {
		return fmt.Errorf("CSV delimiter must be a single character, got: %s", config.Output.Delimiter)
	}

	return nil
}

// Delimiter returns the output delimiter as a rune.
func (c *Config) Delimiter() rune {
	for _, r := range c.Output.Delimiter {
		return r
	}
	return ','
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
