package model

import (
	"fmt"
	"strings"
)

// Mode is a host input mode. The enumeration is open: the host may report
// modes this package has no constant for.
type Mode string

const (
	ModeNormal      Mode = "normal"
	ModeLocked      Mode = "locked"
	ModeResize      Mode = "resize"
	ModePane        Mode = "pane"
	ModeTab         Mode = "tab"
	ModeScroll      Mode = "scroll"
	ModeEnterSearch Mode = "entersearch"
	ModeSearch      Mode = "search"
	ModeRenameTab   Mode = "renametab"
	ModeRenamePane  Mode = "renamepane"
	ModeSession     Mode = "session"
	ModeMove        Mode = "move"
	ModePrompt      Mode = "prompt"
	ModeTmux        Mode = "tmux"
)

// ParseMode normalizes a mode name as reported by the host or typed by a
// user ("Locked", "enter_search", " normal "). Any non-empty name is
// accepted since the host may know modes we don't.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "_", "")
	name = strings.ReplaceAll(name, "-", "")
	if name == "" {
		return "", fmt.Errorf("empty mode name")
	}
	return Mode(name), nil
}

// String returns the mode name.
func (m Mode) String() string {
	return string(m)
}

// TabInfo describes one tab as reported by a tab update.
type TabInfo struct {
	Position                int    `json:"position"`
	Name                    string `json:"name,omitempty"`
	Active                  bool   `json:"active"`
	AreFloatingPanesVisible bool   `json:"are_floating_panes_visible,omitempty"`
}

// FocusedTab returns the active tab, if any.
func FocusedTab(tabs []TabInfo) (TabInfo, bool) {
	for _, t := range tabs {
		if t.Active {
			return t, true
		}
	}
	return TabInfo{}, false
}

// PaneInfo describes one pane in a pane manifest.
type PaneInfo struct {
	ID           uint32 `json:"id"`
	IsPlugin     bool   `json:"is_plugin,omitempty"`
	IsFocused    bool   `json:"is_focused,omitempty"`
	IsFloating   bool   `json:"is_floating,omitempty"`
	IsSuppressed bool   `json:"is_suppressed,omitempty"`
	// TerminalCommand is the command the pane was started with, when the
	// host knows it. Empty for plain shells.
	TerminalCommand string `json:"terminal_command,omitempty"`
}

// PaneManifest maps tab positions to the panes they contain.
type PaneManifest map[int][]PaneInfo

// FocusedPane returns the focused terminal pane of the given tab. When the
// tab shows its floating panes, a focused floating pane wins over the
// focused tiled pane underneath it.
func (pm PaneManifest) FocusedPane(tab int, floatingVisible bool) (PaneInfo, bool) {
	var tiled *PaneInfo
	for i := range pm[tab] {
		p := pm[tab][i]
		if !p.IsFocused || p.IsPlugin || p.IsSuppressed {
			continue
		}
		if p.IsFloating {
			if floatingVisible {
				return p, true
			}
			continue
		}
		if tiled == nil {
			tiled = &p
		}
	}
	if tiled == nil {
		return PaneInfo{}, false
	}
	return *tiled, true
}

// ClientInfo is one connected client as reported by a structured client
// listing.
type ClientInfo struct {
	ClientID        uint16 `json:"client_id"`
	PaneID          string `json:"pane_id"`
	RunningCommand  string `json:"running_command"`
	IsCurrentClient bool   `json:"is_current_client"`
}

// Permission is a capability requested from the host at load time.
type Permission string

const (
	PermissionRunCommands            Permission = "RunCommands"
	PermissionChangeApplicationState Permission = "ChangeApplicationState"
	PermissionReadApplicationState   Permission = "ReadApplicationState"
)

// EventKind names a host event stream the plugin subscribes to.
type EventKind string

const (
	EventPermissionResult EventKind = "PermissionRequestResult"
	EventModeUpdate       EventKind = "ModeUpdate"
	EventTabUpdate        EventKind = "TabUpdate"
	EventPaneUpdate       EventKind = "PaneUpdate"
	EventRunCommandResult EventKind = "RunCommandResult"
	EventListClients      EventKind = "ListClients"
	EventTimer            EventKind = "Timer"
)
