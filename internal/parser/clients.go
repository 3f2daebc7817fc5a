package parser

import (
	"strings"

	"github.com/timvw/zellij-autolock/internal/model"
)

// ParseClientTable parses the output of `zellij action list-clients`:
//
//	CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND
//	1         terminal_3     nvim main.go
//
// The first line is a header. Only the first data row is considered. The
// pane-kind column is located as the first column after the client id that
// starts with "terminal" or "plugin", which covers both the three-column
// layout above and layouts with a separate numeric pane id column. Every
// column after it is the running command, or the marker N/A.
func ParseClientTable(stdout string) Sample {
	lines := nonEmptyLines(stdout)
	if len(lines) < 2 {
		return IndeterminateSample()
	}
	cols := strings.Fields(lines[1])

	kind := -1
	for i := 1; i < len(cols); i++ {
		if isPaneKind(cols[i]) {
			kind = i
			break
		}
	}
	if kind < 0 {
		return IndeterminateSample()
	}
	// "terminal_7 terminal /usr/bin/vim": skip a bare kind column that
	// follows a prefixed pane id.
	for kind+1 < len(cols) && (cols[kind+1] == "terminal" || cols[kind+1] == "plugin") {
		kind++
	}
	if !strings.HasPrefix(cols[kind], "terminal") {
		return NoCommandSample()
	}
	if kind == len(cols)-1 {
		return IndeterminateSample()
	}

	cmd, ok := NormalizeCommand(strings.Join(cols[kind+1:], " "))
	if !ok {
		return NoCommandSample()
	}
	return RunningSample(cmd)
}

// ParseClients classifies a structured client listing by the entry marked
// as the current client.
func ParseClients(clients []model.ClientInfo) Sample {
	for _, c := range clients {
		if !c.IsCurrentClient {
			continue
		}
		if strings.HasPrefix(c.PaneID, "plugin") {
			return NoCommandSample()
		}
		cmd, ok := NormalizeCommand(c.RunningCommand)
		if !ok {
			return NoCommandSample()
		}
		return RunningSample(cmd)
	}
	return IndeterminateSample()
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
