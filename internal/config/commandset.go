package config

import (
	"sort"
	"strings"

	"github.com/timvw/zellij-autolock/internal/parser"
)

// CommandSet is an immutable set of exact command names.
type CommandSet map[string]struct{}

// ParseCommandSet splits a pipe-separated list ("vim|nvim|hx"). Entries are
// normalized like detected commands, so "/usr/bin/vim" is stored as "vim";
// empty entries are dropped.
func ParseCommandSet(s string) CommandSet {
	set := CommandSet{}
	for _, name := range strings.Split(s, "|") {
		cmd, ok := parser.NormalizeCommand(name)
		if !ok {
			continue
		}
		set[cmd.Normalized] = struct{}{}
	}
	return set
}

// Contains reports whether name is in the set.
func (s CommandSet) Contains(name string) bool {
	_, ok := s[name]
	return ok
}

// Names returns the sorted members.
func (s CommandSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// String renders the set in its pipe-separated config form.
func (s CommandSet) String() string {
	return strings.Join(s.Names(), "|")
}
