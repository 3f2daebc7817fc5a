package autolock

import (
	"fmt"
	"math"
)

// Sentinels for a location that is not known yet.
const (
	UnknownTab  = -1
	UnknownPane = uint32(math.MaxUint32)
)

// FocusedLocation identifies the focused pane.
type FocusedLocation struct {
	Tab  int
	Pane uint32
}

// String renders the location for logs, e.g. "tab=2 pane=?".
func (l FocusedLocation) String() string {
	tab, pane := "?", "?"
	if l.Tab != UnknownTab {
		tab = fmt.Sprint(l.Tab)
	}
	if l.Pane != UnknownPane {
		pane = fmt.Sprint(l.Pane)
	}
	return "tab=" + tab + " pane=" + pane
}

// FocusTracker remembers which tab and pane have focus. Its methods report
// whether focus changed; acting on that is up to the caller.
type FocusTracker struct {
	loc     FocusedLocation
	command string
}

// NewFocusTracker returns a tracker with both tab and pane unknown.
func NewFocusTracker() *FocusTracker {
	return &FocusTracker{loc: FocusedLocation{Tab: UnknownTab, Pane: UnknownPane}}
}

// Location returns the current focus.
func (f *FocusTracker) Location() FocusedLocation {
	return f.loc
}

// Command returns the host-reported command of the focused pane, if any.
func (f *FocusTracker) Command() string {
	return f.command
}

// OnTabFocusChanged records the focused tab. Moving to another tab forgets
// the pane: the new tab's focused pane is not known until its pane update.
func (f *FocusTracker) OnTabFocusChanged(pos int) bool {
	if pos == f.loc.Tab {
		return false
	}
	f.loc = FocusedLocation{Tab: pos, Pane: UnknownPane}
	f.command = ""
	return true
}

// OnPaneFocusCandidate records the focused pane of a tab. Candidates for a
// tab other than the tracked one are ignored. A pane whose reported command
// changed counts as a focus change even when the id is the same.
func (f *FocusTracker) OnPaneFocusCandidate(tab int, pane uint32, command string) bool {
	if tab != f.loc.Tab {
		return false
	}
	if pane == f.loc.Pane && command == f.command {
		return false
	}
	f.loc.Pane = pane
	f.command = command
	return true
}
