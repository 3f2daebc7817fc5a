package mux

import (
	"context"
	"fmt"
	"strings"

	"github.com/timvw/zellij-autolock/internal/model"
)

// tmuxHeader mirrors the zellij list-clients header so both backends feed
// the same table parser.
const tmuxHeader = "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND"

// tmuxClientFormat renders the calling client as one list-clients row. Pane
// ids come out as "terminal_%3", which the parser treats as a terminal pane.
const tmuxClientFormat = "#{client_name} terminal_#{pane_id} #{pane_current_command}"

// Tmux implements Multiplexer for tmux. tmux has no zellij-style input
// modes; Locked maps to the "off" key table, which passes every key through
// to the pane, and Normal restores the "root" table.
type Tmux struct {
	run Runner
}

// NewTmux creates a tmux backend. A nil runner executes the real binary.
func NewTmux(run Runner) *Tmux {
	if run == nil {
		run = execRunner
	}
	return &Tmux{run: run}
}

// Name returns "tmux".
func (t *Tmux) Name() string {
	return "tmux"
}

// ListClients reports the current client and the command of its active
// pane, prefixed with the list-clients header.
func (t *Tmux) ListClients(ctx context.Context) (string, error) {
	out, err := t.run(ctx, "tmux", "display-message", "-p", tmuxClientFormat)
	if err != nil {
		return "", fmt.Errorf("tmux display-message: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", nil
	}
	return tmuxHeader + "\n" + out + "\n", nil
}

// SwitchMode selects the global key table matching mode.
func (t *Tmux) SwitchMode(ctx context.Context, mode model.Mode) error {
	table, err := tmuxKeyTable(mode)
	if err != nil {
		return err
	}
	if _, err := t.run(ctx, "tmux", "set-option", "-g", "key-table", table); err != nil {
		return fmt.Errorf("tmux set-option key-table %s: %w", table, err)
	}
	return nil
}

func tmuxKeyTable(mode model.Mode) (string, error) {
	switch mode {
	case model.ModeLocked:
		return "off", nil
	case model.ModeNormal:
		return "root", nil
	default:
		return "", fmt.Errorf("tmux: %w: %s", ErrUnsupportedMode, mode)
	}
}
