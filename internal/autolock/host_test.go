package autolock

import (
	"time"

	"github.com/timvw/zellij-autolock/internal/model"
)

// fakeHost records every request the controller makes.
type fakeHost struct {
	permissions   []model.Permission
	subscriptions []model.EventKind
	hidden        int
	listings      []Tag
	switches      []model.Mode
	timeouts      []time.Duration
}

func (h *fakeHost) RequestPermissions(perms ...model.Permission) {
	h.permissions = append(h.permissions, perms...)
}

func (h *fakeHost) Subscribe(kinds ...model.EventKind) {
	h.subscriptions = append(h.subscriptions, kinds...)
}

func (h *fakeHost) HideSelf() { h.hidden++ }

func (h *fakeHost) RequestListing(tag Tag) { h.listings = append(h.listings, tag) }

func (h *fakeHost) SwitchMode(mode model.Mode) { h.switches = append(h.switches, mode) }

func (h *fakeHost) SetTimeout(d time.Duration) { h.timeouts = append(h.timeouts, d) }

func (h *fakeHost) lastTag() Tag {
	if len(h.listings) == 0 {
		return Tag{}
	}
	return h.listings[len(h.listings)-1]
}

// listing builds a list-clients table whose single row runs cmd.
func listing(cmd string) string {
	return "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n1 terminal_1 " + cmd + "\n"
}
