package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	telem "github.com/timvw/zellij-autolock/internal/otel"
	"github.com/timvw/zellij-autolock/internal/supervisor"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the auto-lock daemon",
	Long: `Run the auto-lock daemon until interrupted.

The daemon samples the command running in the focused pane whenever it is
told something changed, and switches between Normal and Locked mode
accordingly. It listens on a unix datagram socket for notifications:

  {"type":"poke"}                                   re-evaluate now
  {"type":"mode","mode":"locked"}                   the input mode changed
  {"type":"tab","position":2}                       another tab got focus
  {"type":"pane","tab":2,"pane_id":7,"command":""}  another pane got focus

Tab messages carry "floating_visible":true while the tab shows its floating
panes; pane messages carry "floating":true for a floating pane. A floating
pane is ignored unless the last tab message set floating_visible.

Send them from shell hooks with "zellij-autolock poke" / "zellij-autolock mode",
or set poll_seconds to re-evaluate periodically without hooks.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runDaemon(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration: defaults -> config file -> env vars -> flags.
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.ConfigFile != "" {
		fmt.Fprintf(os.Stderr, "config: loaded %s\n", cfg.ConfigFile)
	}

	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	// Wire build version into OTEL service metadata
	telem.Version = Version

	// Initialize OTEL (no-op if no endpoint configured)
	tel, err := telem.Init(ctx, telem.Config{
		Endpoint: cfg.OTELEndpoint,
		Headers:  cfg.OTELHeaders,
	})
	if err != nil {
		log.Warn("otel init failed", zap.Error(err))
	}
	var metrics *telem.Metrics
	if tel != nil {
		metrics = tel.Metrics
		defer func() {
			// The run context is already cancelled at this point.
			if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
				log.Warn("otel shutdown failed", zap.Error(err))
			}
		}()
	}

	m, err := getMultiplexer(cfg)
	if err != nil {
		return err
	}

	opts := supervisor.Options{
		Logger:       log,
		Metrics:      metrics,
		SocketPath:   socketPath(cfg),
		PollInterval: cfg.PollInterval,
		ConfigFile:   cfg.ConfigFile,
		Reload:       loadConfig,
	}
	if tel != nil {
		opts.Tracer = tel.Tracer
	}
	log.Info("starting",
		zap.String("version", Version),
		zap.String("mux", m.Name()),
		zap.String("event_socket", opts.SocketPath),
		zap.Duration("poll_interval", opts.PollInterval),
		zap.Bool("otel", tel.Exporting()))

	return supervisor.New(cfg, m, opts).Run(ctx)
}
