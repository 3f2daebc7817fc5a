// Package events receives notifications from outside the process: the
// multiplexer's own hooks, shell integration and the `poke`/`mode` commands
// send small JSON datagrams to a unix socket, which the collector turns
// into controller events.
package events

import (
	"fmt"
	"strings"

	"github.com/timvw/zellij-autolock/internal/autolock"
	"github.com/timvw/zellij-autolock/internal/model"
)

// Message types.
const (
	TypePoke = "poke"
	TypeMode = "mode"
	TypeTab  = "tab"
	TypePane = "pane"
)

// Message is the datagram payload.
//
// A pane message with Floating set is only taken as the focused pane when
// the last tab message for that tab set FloatingVisible.
type Message struct {
	Type string `json:"type"`

	// mode
	Mode string `json:"mode,omitempty"`

	// tab
	Position        *int `json:"position,omitempty"`
	FloatingVisible bool `json:"floating_visible,omitempty"`

	// pane
	Tab      *int    `json:"tab,omitempty"`
	PaneID   *uint32 `json:"pane_id,omitempty"`
	Floating bool    `json:"floating,omitempty"`
	Command  string  `json:"command,omitempty"`

	// Source names the sender in logs, e.g. "shell" or "cli".
	Source string `json:"source,omitempty"`
}

// Validate checks that the fields required by the message type are present.
func (m Message) Validate() error {
	switch m.Type {
	case TypePoke:
		return nil
	case TypeMode:
		if _, err := model.ParseMode(m.Mode); err != nil {
			return fmt.Errorf("mode message: %w", err)
		}
		return nil
	case TypeTab:
		if m.Position == nil || *m.Position < 0 {
			return fmt.Errorf("tab message: position is required")
		}
		return nil
	case TypePane:
		if m.Tab == nil || *m.Tab < 0 {
			return fmt.Errorf("pane message: tab is required")
		}
		if m.PaneID == nil {
			return fmt.Errorf("pane message: pane_id is required")
		}
		return nil
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("invalid type %q", m.Type)
	}
}

// Event converts a valid message into the controller event it reports.
func (m Message) Event() (autolock.Event, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	switch m.Type {
	case TypeMode:
		mode, _ := model.ParseMode(m.Mode)
		return autolock.ModeUpdate{Mode: mode}, nil
	case TypeTab:
		return autolock.TabUpdate{Tabs: []model.TabInfo{{
			Position:                *m.Position,
			Active:                  true,
			AreFloatingPanesVisible: m.FloatingVisible,
		}}}, nil
	case TypePane:
		return autolock.PaneUpdate{Manifest: model.PaneManifest{*m.Tab: {{
			ID:              *m.PaneID,
			IsFocused:       true,
			IsFloating:      m.Floating,
			TerminalCommand: strings.TrimSpace(m.Command),
		}}}}, nil
	default:
		source := m.Source
		if source == "" {
			source = "socket"
		}
		return autolock.Poke{Source: source}, nil
	}
}

// Poke returns a poke message.
func Poke(source string) Message {
	return Message{Type: TypePoke, Source: source}
}

// ModeChanged returns a mode message.
func ModeChanged(mode model.Mode, source string) Message {
	return Message{Type: TypeMode, Mode: mode.String(), Source: source}
}
