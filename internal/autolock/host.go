// Package autolock switches the multiplexer into Locked mode while the
// focused pane runs a full-screen editor and back to Normal when it exits.
//
// The Controller is driven by host events, one at a time, and talks back
// to the host only through the Host interface: every request is
// fire-and-forget and its outcome arrives later as another event.
package autolock

import (
	"time"

	"github.com/timvw/zellij-autolock/internal/config"
	"github.com/timvw/zellij-autolock/internal/model"
)

// Host is everything the controller asks of the multiplexer.
type Host interface {
	Lister

	RequestPermissions(perms ...model.Permission)
	Subscribe(kinds ...model.EventKind)
	// HideSelf hides the plugin's own pane; nothing is ever rendered.
	HideSelf()
	// SwitchMode requests an input mode change. The host confirms with a
	// ModeUpdate event, or reports SwitchFailed.
	SwitchMode(mode model.Mode)
	// SetTimeout delivers a TimerFired event after d.
	SetTimeout(d time.Duration)
}

// Event is a host notification.
type Event interface {
	// Kind names the event for logs and traces.
	Kind() string
}

// PermissionResult answers the permission request made at load.
type PermissionResult struct {
	Granted bool
}

// TabUpdate lists the tabs; one of them is active.
type TabUpdate struct {
	Tabs []model.TabInfo
}

// PaneUpdate is the pane manifest of every tab.
type PaneUpdate struct {
	Manifest model.PaneManifest
}

// ModeUpdate reports the host's current input mode.
type ModeUpdate struct {
	Mode model.Mode
}

// ListingResult carries the output of a tabular client listing.
type ListingResult struct {
	Tag      Tag
	ExitCode int
	Stdout   string
	Stderr   string
}

// ClientList carries a structured client listing.
type ClientList struct {
	Tag     Tag
	Clients []model.ClientInfo
}

// SwitchFailed reports that a requested mode change did not happen.
type SwitchFailed struct {
	Mode model.Mode
	Err  error
}

// TimerFired is delivered once per SetTimeout.
type TimerFired struct{}

// Poke asks for immediate re-evaluation, bypassing focus change detection.
type Poke struct {
	Source string
}

// ConfigChanged replaces the configuration of a running controller.
type ConfigChanged struct {
	Config *config.Config
}

func (PermissionResult) Kind() string { return "permission_result" }
func (TabUpdate) Kind() string        { return "tab_update" }
func (PaneUpdate) Kind() string       { return "pane_update" }
func (ModeUpdate) Kind() string       { return "mode_update" }
func (ListingResult) Kind() string    { return "listing_result" }
func (ClientList) Kind() string       { return "client_list" }
func (SwitchFailed) Kind() string     { return "switch_failed" }
func (TimerFired) Kind() string       { return "timer" }
func (Poke) Kind() string             { return "poke" }
func (ConfigChanged) Kind() string    { return "config_changed" }

// Permissions requested at load.
var Permissions = []model.Permission{
	model.PermissionRunCommands,
	model.PermissionChangeApplicationState,
	model.PermissionReadApplicationState,
}

// Subscriptions requested at load.
var Subscriptions = []model.EventKind{
	model.EventPermissionResult,
	model.EventModeUpdate,
	model.EventTabUpdate,
	model.EventPaneUpdate,
	model.EventRunCommandResult,
	model.EventListClients,
	model.EventTimer,
}
