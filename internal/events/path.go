package events

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultSocketPath returns the per-user collector socket.
func DefaultSocketPath() string {
	runtimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if runtimeDir != "" {
		return filepath.Join(runtimeDir, "zellij-autolock", "events.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("zellij-autolock-%d", os.Getuid()), "events.sock")
}
