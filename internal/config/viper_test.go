package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeConfig_Defaults(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "info", config.Log.Level)
	assert.Equal(t, "text", config.Log.Format)
	assert.Equal(t, []string{"utf-8", "windows-1252", "iso-8859-1"}, config.Input.Encodings)
	assert.Equal(t, BackendFile, config.Templates.Backend)
	assert.Equal(t, "templates", config.Templates.Directory)
	assert.Equal(t, "sie-report.db", config.Database.Path)
	assert.True(t, config.Database.Persist)
	assert.False(t, config.Database.PersistINK2)
	assert.Equal(t, 2*time.Second, config.Database.WatchInterval)
	assert.Equal(t, "json", config.Output.Format)
	assert.Equal(t, ',', config.Delimiter())
}

func TestInitializeConfig_EnvironmentVariables(t *testing.T) {
	clearTestEnvVars(t)
	t.Chdir(t.TempDir())

	testEnvVars := map[string]string{
		"SIE_LOG_LEVEL":           "DEBUG",
		"SIE_LOG_FORMAT":          "json",
		"SIE_TEMPLATES_BACKEND":   "sqlite",
		"SIE_DATABASE_PATH":       "/tmp/reports.db",
		"SIE_DATABASE_PERSIST":    "false",
		"SIE_OUTPUT_FORMAT":       "CSV",
		"SIE_OUTPUT_DELIMITER":    ";",
		"SIE_INPUT_ENCODINGS":     "iso-8859-1,utf-8",
		"SIE_TEMPLATES_DIRECTORY": "/srv/templates",
	}
	for key, value := range testEnvVars {
		t.Setenv(key, value)
	}

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "debug", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, BackendSQLite, config.Templates.Backend)
	assert.Equal(t, "/srv/templates", config.Templates.Directory)
	assert.Equal(t, "/tmp/reports.db", config.Database.Path)
	assert.False(t, config.Database.Persist)
	assert.Equal(t, "csv", config.Output.Format)
	assert.Equal(t, ';', config.Delimiter())
	assert.Equal(t, []string{"iso-8859-1", "utf-8"}, config.Input.Encodings)
}

const fileConfig = `
log:
  level: "warn"
  format: "json"
templates:
  backend: "file"
  directory: "rules"
database:
  persist_ink2: true
  watch_interval: 500ms
output:
  delimiter: "|"
`

func TestInitializeConfig_ConfigFile(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(fileConfig), 0644))
	t.Chdir(tempDir)

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "warn", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, "rules", config.Templates.Directory)
	assert.True(t, config.Database.PersistINK2)
	assert.Equal(t, 500*time.Millisecond, config.Database.WatchInterval)
	assert.Equal(t, '|', config.Delimiter())
}

func TestInitializeConfig_HierarchicalPrecedence(t *testing.T) {
	clearTestEnvVars(t)
	tempDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tempDir, "config.yaml"), []byte(fileConfig), 0644))
	t.Chdir(tempDir)

	t.Setenv("SIE_LOG_LEVEL", "error")

	config, err := InitializeConfig()
	require.NoError(t, err)

	assert.Equal(t, "error", config.Log.Level)
	assert.Equal(t, "json", config.Log.Format)
	assert.Equal(t, '|', config.Delimiter())
}

func TestLoad_ExplicitFile(t *testing.T) {
	clearTestEnvVars(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fileConfig), 0644))

	config, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rules", config.Templates.Directory)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validConfig() *Config {
	var c Config
	c.Log.Level = "info"
	c.Log.Format = "text"
	c.Templates.Backend = BackendFile
	c.Templates.Directory = "templates"
	c.Database.Path = "sie-report.db"
	c.Output.Format = "json"
	c.Output.Delimiter = ","
	return &c
}

func TestValidateConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name         string
		modifyConfig func(*Config)
		expectError  string
	}{
		{
			name:         "invalid log level",
			modifyConfig: func(c *Config) { c.Log.Level = "invalid" },
			expectError:  "invalid log level",
		},
		{
			name:         "invalid log format",
			modifyConfig: func(c *Config) { c.Log.Format = "xml" },
			expectError:  "invalid log format",
		},
		{
			name:         "invalid backend",
			modifyConfig: func(c *Config) { c.Templates.Backend = "postgres" },
			expectError:  "invalid templates backend",
		},
		{
			name:         "file backend without directory",
			modifyConfig: func(c *Config) { c.Templates.Directory = "" },
			expectError:  "templates.directory is required",
		},
		{
			name: "sqlite backend without path",
			modifyConfig: func(c *Config) {
				c.Templates.Backend = BackendSQLite
				c.Database.Path = ""
			},
			expectError: "database.path is required",
		},
		{
			name:         "negative watch interval",
			modifyConfig: func(c *Config) { c.Database.WatchInterval = -time.Second },
			expectError:  "watch_interval cannot be negative",
		},
		{
			name:         "invalid output format",
			modifyConfig: func(c *Config) { c.Output.Format = "pdf" },
			expectError:  "invalid output format",
		},
		{
			name:         "invalid CSV delimiter",
			modifyConfig: func(c *Config) { c.Output.Delimiter = "abc" },
			expectError:  "CSV delimiter must be a single character",
		},
	}

	require.NoError(t, validateConfig(validConfig()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.modifyConfig(config)
			err := validateConfig(config)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestConfigureLoggingFromConfig(t *testing.T) {
	tests := []struct {
		name   string
		level  string
		format string
	}{
		{name: "text format info level", level: "info", format: "text"},
		{name: "json format debug level", level: "debug", format: "json"},
		{name: "bad level falls back", level: "loud", format: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Log.Level = tt.level
			c.Log.Format = tt.format
			logger := ConfigureLoggingFromConfig(c)
			assert.NotNil(t, logger)
		})
	}
}

func TestLoadEnv_NoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	assert.NotPanics(t, LoadEnv)
}

// clearTestEnvVars unsets every SIE_ variable for the duration of the test.
func clearTestEnvVars(t *testing.T) {
	t.Helper()
	envVars := []string{
		"SIE_LOG_LEVEL",
		"SIE_LOG_FORMAT",
		"SIE_INPUT_ENCODINGS",
		"SIE_TEMPLATES_BACKEND",
		"SIE_TEMPLATES_DIRECTORY",
		"SIE_DATABASE_PATH",
		"SIE_DATABASE_PERSIST",
		"SIE_DATABASE_PERSIST_INK2",
		"SIE_DATABASE_WATCH_INTERVAL",
		"SIE_OUTPUT_FORMAT",
		"SIE_OUTPUT_DELIMITER",
	}
	for _, envVar := range envVars {
		t.Setenv(envVar, "")
		require.NoError(t, os.Unsetenv(envVar))
	}
}
