// Package parser turns raw client listings into a classified Sample.
//
// Two listing shapes are understood: the table printed by
// `zellij action list-clients` and the structured client list delivered as
// a host event. Both normalize to the same Sample. Parsing is deterministic:
// the only judgment made here is whether the listing was usable at all.
package parser

import (
	"path"
	"strings"
)

// Outcome classifies a sample.
type Outcome int

const (
	// Indeterminate means the listing yielded nothing usable. The listing
	// tool is known to intermittently print nothing while a command is
	// running, so this is "ask again later", never "no command".
	Indeterminate Outcome = iota
	// NoCommand means the focused pane was positively identified and runs
	// no command (or is not a terminal pane).
	NoCommand
	// Running means a command was detected.
	Running
)

// String returns the lowercase outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case Indeterminate:
		return "indeterminate"
	case NoCommand:
		return "none"
	case Running:
		return "command"
	default:
		return "unknown"
	}
}

// Command is a detected command in two normalized forms.
type Command struct {
	// Normalized is the full command line with surrounding whitespace
	// trimmed, runs of whitespace collapsed and the executable's directory
	// stripped ("/usr/bin/vim a.txt" becomes "vim a.txt").
	Normalized string `json:"normalized"`
	// Base is the executable name alone ("vim").
	Base string `json:"base"`
}

// Sample is the result of one listing.
type Sample struct {
	Outcome Outcome  `json:"-"`
	Command *Command `json:"command,omitempty"`
}

// IndeterminateSample, NoCommandSample and RunningSample build samples.
func IndeterminateSample() Sample { return Sample{Outcome: Indeterminate} }

func NoCommandSample() Sample { return Sample{Outcome: NoCommand} }

func RunningSample(c Command) Sample { return Sample{Outcome: Running, Command: &c} }

// noCommandMarker is printed by list-clients for panes without a command.
const noCommandMarker = "N/A"

// NormalizeCommand trims and normalizes a raw command line. It returns
// false when nothing remains after trimming or the line is the no-command
// marker.
func NormalizeCommand(raw string) (Command, bool) {
	fields := strings.Fields(raw)
	if len(fields) == 0 || (len(fields) == 1 && fields[0] == noCommandMarker) {
		return Command{}, false
	}
	base := stripDir(fields[0])
	if base == "" {
		return Command{}, false
	}
	normalized := base
	if len(fields) > 1 {
		normalized += " " + strings.Join(fields[1:], " ")
	}
	return Command{Normalized: normalized, Base: base}, true
}

// stripDir returns the final path segment of an executable path.
func stripDir(exe string) string {
	if !strings.Contains(exe, "/") {
		return exe
	}
	base := path.Base(exe)
	if base == "/" || base == "." {
		return ""
	}
	return base
}

func isPaneKind(col string) bool {
	return strings.HasPrefix(col, "terminal") || strings.HasPrefix(col, "plugin")
}
