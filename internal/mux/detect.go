package mux

import (
	"fmt"
	"os"
	"strings"
)

// Detect picks the multiplexer the process runs inside, judged by the
// environment variables each one sets for its panes. Zellij wins when both
// are set.
func Detect() (Multiplexer, error) {
	if os.Getenv("ZELLIJ") != "" {
		return NewZellij(nil), nil
	}
	if os.Getenv("TMUX") != "" {
		return NewTmux(nil), nil
	}
	return nil, fmt.Errorf("no supported terminal multiplexer detected (run inside zellij or tmux, or pass --mux)")
}

// FromName creates a Multiplexer by name. An empty name or "auto" detects.
func FromName(name string) (Multiplexer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return Detect()
	case "zellij":
		return NewZellij(nil), nil
	case "tmux":
		return NewTmux(nil), nil
	default:
		return nil, fmt.Errorf("unknown multiplexer: %q (supported: zellij, tmux)", name)
	}
}
