package autolock

import (
	"github.com/timvw/zellij-autolock/internal/config"
	"github.com/timvw/zellij-autolock/internal/model"
	"github.com/timvw/zellij-autolock/internal/parser"
)

// Decision is the outcome of evaluating one sample against the current mode.
type Decision struct {
	// Target is the mode the focused command calls for.
	Target model.Mode
	// Apply is true when a mode switch to Target should be requested.
	Apply bool
	// Trigger and Watch report which set matched.
	Trigger bool
	Watch   bool
}

// Decide maps a sample to a target mode.
//
// A command in either set calls for Locked; otherwise Locked falls back to
// Normal and any other mode is left alone. A switch is only applied from
// Normal or Locked: modes the user entered deliberately (pane, tab, search,
// ...) are never overridden, even with a trigger command underneath.
func Decide(sample parser.Sample, triggers, watches config.CommandSet, current model.Mode) Decision {
	var d Decision
	if sample.Outcome == parser.Running && sample.Command != nil {
		d.Trigger = matches(triggers, sample.Command)
		d.Watch = matches(watches, sample.Command)
	}

	switch {
	case d.Trigger || d.Watch:
		d.Target = model.ModeLocked
	case current == model.ModeLocked:
		d.Target = model.ModeNormal
	default:
		d.Target = current
	}

	d.Apply = d.Target != current && isOwnMode(current)
	return d
}

func matches(set config.CommandSet, cmd *parser.Command) bool {
	return set.Contains(cmd.Normalized) || set.Contains(cmd.Base)
}

// isOwnMode reports whether m is one of the two modes this controller may
// switch away from.
func isOwnMode(m model.Mode) bool {
	return m == model.ModeNormal || m == model.ModeLocked
}
