package mux

import (
	"context"
	"fmt"

	"github.com/timvw/zellij-autolock/internal/model"
)

// Zellij implements Multiplexer through `zellij action`. Run inside a
// zellij session, the actions target the session of the calling process.
type Zellij struct {
	run Runner
}

// NewZellij creates a zellij backend. A nil runner executes the real binary.
func NewZellij(run Runner) *Zellij {
	if run == nil {
		run = execRunner
	}
	return &Zellij{run: run}
}

// Name returns "zellij".
func (z *Zellij) Name() string {
	return "zellij"
}

// ListClients runs `zellij action list-clients`.
func (z *Zellij) ListClients(ctx context.Context) (string, error) {
	out, err := z.run(ctx, "zellij", "action", "list-clients")
	if err != nil {
		return "", fmt.Errorf("zellij action list-clients: %w", err)
	}
	return out, nil
}

// SwitchMode runs `zellij action switch-mode <mode>`.
func (z *Zellij) SwitchMode(ctx context.Context, mode model.Mode) error {
	if mode == "" {
		return fmt.Errorf("zellij switch-mode: %w: empty", ErrUnsupportedMode)
	}
	if _, err := z.run(ctx, "zellij", "action", "switch-mode", mode.String()); err != nil {
		return fmt.Errorf("zellij action switch-mode %s: %w", mode, err)
	}
	return nil
}
