package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/zellij-autolock/internal/events"
	"github.com/timvw/zellij-autolock/internal/model"
)

var pokeCmd = &cobra.Command{
	Use:   "poke",
	Short: "Ask the running daemon to re-evaluate the focused pane",
	Long: `Send a poke to the running daemon. It samples the focused pane immediately
and once more after reaction_seconds.

Typical use is a shell hook that runs after every command, e.g. for zsh:

  precmd() { zellij-autolock poke 2>/dev/null }
  preexec() { (sleep 0.2; zellij-autolock poke) 2>/dev/null &! }`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return send(events.Poke("cli"))
	},
}

var modeCmd = &cobra.Command{
	Use:   "mode <mode>",
	Short: "Report an input mode change to the running daemon",
	Long: `Tell the running daemon that the multiplexer entered <mode> (normal, locked,
pane, tab, search, ...). The daemon never switches away from a mode other
than Normal or Locked, so reporting user-entered modes keeps it from
interfering.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := model.ParseMode(args[0])
		if err != nil {
			return fmt.Errorf("invalid mode %q: %w", args[0], err)
		}
		return send(events.ModeChanged(mode, "cli"))
	},
}

func init() {
	rootCmd.AddCommand(pokeCmd)
	rootCmd.AddCommand(modeCmd)
}

func send(m events.Message) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	path := socketPath(cfg)
	if err := events.Send(path, m); err != nil {
		return fmt.Errorf("is the daemon running? %w", err)
	}
	return nil
}
