// Package root contains the root command for the application
package root

import (
	"fmt"
	"sync"

	"fjacquet/sie-report/internal/config"
	"fjacquet/sie-report/internal/container"
	"fjacquet/sie-report/internal/logging"

	"github.com/spf13/cobra"
)

// CommonFlags represents the flags that are common to multiple commands
type CommonFlags struct {
	Input      string
	Output     string
	ConfigFile string
	LogLevel   string
}

var (
	// Log is the shared logger instance for commands
	Log logging.Logger = logging.NewLogrusAdapter("info", "text")

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "sie-report",
		Short: "A CLI tool to build annual report sections from SIE ledger exports.",
		Long: `sie-report reads SIE ledger exports and assembles the income statement (RR),
the balance sheet (BR) and the INK2 tax-adjustment schedule from row templates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			Log.Info("Welcome to sie-report!")
			Log.Info("Use --help to see available commands")
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			if err := Close(); err != nil {
				Log.WithError(err).Warn("Failed to close previous container")
			}
			cfg, err := config.Load(SharedFlags.ConfigFile)
			if err != nil {
				return err
			}
			if SharedFlags.LogLevel != "" {
				cfg.Log.Level = SharedFlags.LogLevel
			}
			state.mu.Lock()
			state.cfg = cfg
			state.mu.Unlock()
			Log = logging.NewLogrusAdapterFromLogger(config.ConfigureLoggingFromConfig(cfg))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if err := Close(); err != nil {
				Log.WithError(err).Warn("Failed to close resources")
			}
		},
	}

	// SharedFlags holds the persistent flag values.
	SharedFlags = CommonFlags{}

	state struct {
		mu  sync.Mutex
		cfg *config.Config
		c   *container.Container
	}
)

// Init initializes the root command and all flags
func Init() {
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Input, "input", "i", "", "Input ledger file (.se, .si, .sie)")
	Cmd.PersistentFlags().StringVarP(&SharedFlags.Output, "output", "o", "", "Output file (stdout when empty)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.ConfigFile, "config", "", "Config file (default: config.yaml in $HOME/.sie-report, .sie-report or .)")
	Cmd.PersistentFlags().StringVar(&SharedFlags.LogLevel, "log-level", "", "Log level override")
}

// Config returns the loaded configuration. Commands may adjust it before the
// first call to GetContainer.
func Config() *config.Config {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.cfg == nil {
		cfg, err := config.Load(SharedFlags.ConfigFile)
		if err != nil {
			Log.WithError(err).Warn("Falling back to default configuration")
			cfg, _ = config.InitializeConfig()
		}
		state.cfg = cfg
	}
	return state.cfg
}

// GetContainer builds the dependency container on first use.
func GetContainer() (*container.Container, error) {
	cfg := Config()
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.c != nil {
		return state.c, nil
	}
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	c, err := container.NewContainerWithLogger(cfg, Log)
	if err != nil {
		return nil, err
	}
	state.c = c
	return c, nil
}

// SetContainer replaces the container, for tests.
func SetContainer(c *container.Container) {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.c = c
	if c != nil {
		state.cfg = c.GetConfig()
	}
}

// Close releases the container, if one was built.
func Close() error {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.c == nil {
		return nil
	}
	err := state.c.Close()
	state.c = nil
	return err
}
