// Package mux provides the terminal multiplexer backends (zellij, tmux) that
// the supervisor drives: listing what the focused pane runs and switching
// the input mode.
//
// This package is pure transport. It returns raw listing output without
// interpreting it; classification lives in the parser package.
package mux

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/timvw/zellij-autolock/internal/model"
)

// Multiplexer abstracts the multiplexer operations the controller needs.
type Multiplexer interface {
	// Name returns the multiplexer name (e.g., "zellij", "tmux").
	Name() string

	// ListClients returns the raw client listing: a header line followed by
	// one row per client, in the layout of `zellij action list-clients`.
	ListClients(ctx context.Context) (string, error)

	// SwitchMode asks the multiplexer to enter the given input mode.
	SwitchMode(ctx context.Context, mode model.Mode) error
}

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// ErrUnsupportedMode is returned by backends that cannot express a mode.
var ErrUnsupportedMode = errors.New("unsupported mode")

// execRunner runs the command through os/exec. Stderr is folded into the
// error so callers can log why the multiplexer refused.
func execRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", err
	}
	return string(out), nil
}
