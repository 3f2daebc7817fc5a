package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timvw/zellij-autolock/internal/config"
	"github.com/timvw/zellij-autolock/internal/events"
	"github.com/timvw/zellij-autolock/internal/mux"
)

var (
	// Global flags.
	flagConfig      string
	flagMux         string
	flagEventSocket string
	flagVerbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "zellij-autolock",
	Short: "Lock the multiplexer while a full-screen program has focus",
	Long: `zellij-autolock switches the terminal multiplexer into Locked mode while
the focused pane runs one of the configured trigger commands (vim, nvim, ...)
and back to Normal mode when it exits, so the program receives every key.

Only Normal and Locked are ever switched between: a mode entered by the
user (pane, tab, search, ...) is left alone.

Configuration is loaded from .zellij-autolock.yaml, ~/.config/zellij-autolock/config.yaml
or ZELLIJ_AUTOLOCK_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file (default: search .zellij-autolock.yaml, ~/.config/zellij-autolock/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagMux, "mux", "", "terminal multiplexer: zellij, tmux (default: auto-detect)")
	rootCmd.PersistentFlags().StringVar(&flagEventSocket, "event-socket", "", "unix datagram socket for events (default: $XDG_RUNTIME_DIR/zellij-autolock/events.sock)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log every sample and decision (same as print_to_log)")
}

// loadConfig loads the configuration and applies command line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyFlags(cfg)
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if flagMux != "" {
		cfg.Mux = flagMux
	}
	if flagEventSocket != "" {
		cfg.EventSocket = flagEventSocket
	}
	if flagVerbose {
		cfg.PrintToLog = true
	}
}

// socketPath returns the configured events socket or the per-user default.
func socketPath(cfg *config.Config) string {
	if cfg.EventSocket != "" {
		return cfg.EventSocket
	}
	return events.DefaultSocketPath()
}

// getMultiplexer returns the configured or auto-detected multiplexer.
func getMultiplexer(cfg *config.Config) (mux.Multiplexer, error) {
	return mux.FromName(cfg.Mux)
}

// newLogger builds the stderr console logger. print_to_log lowers the level
// to Debug, where every sample and decision is logged.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.Sampling = nil
	if cfg.PrintToLog {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}
