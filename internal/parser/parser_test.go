package parser

import (
	"testing"

	"github.com/timvw/zellij-autolock/internal/model"
)

func TestNormalizeCommand(t *testing.T) {
	tests := []struct {
		raw            string
		wantNormalized string
		wantBase       string
		wantOK         bool
	}{
		{raw: "vim", wantNormalized: "vim", wantBase: "vim", wantOK: true},
		{raw: "  nvim somefile.txt  ", wantNormalized: "nvim somefile.txt", wantBase: "nvim", wantOK: true},
		{raw: "/usr/bin/vim", wantNormalized: "vim", wantBase: "vim", wantOK: true},
		{raw: "/opt/homebrew/bin/nvim   -u   NONE", wantNormalized: "nvim -u NONE", wantBase: "nvim", wantOK: true},
		{raw: "./bin/hx src/main.rs", wantNormalized: "hx src/main.rs", wantBase: "hx", wantOK: true},
		{raw: "N/A", wantOK: false},
		{raw: "", wantOK: false},
		{raw: "   \t", wantOK: false},
		{raw: "/", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := NormalizeCommand(tt.raw)
		if ok != tt.wantOK {
			t.Errorf("NormalizeCommand(%q): ok got %v, want %v", tt.raw, ok, tt.wantOK)
			continue
		}
		if !ok {
			continue
		}
		if got.Normalized != tt.wantNormalized {
			t.Errorf("NormalizeCommand(%q).Normalized: got %q, want %q", tt.raw, got.Normalized, tt.wantNormalized)
		}
		if got.Base != tt.wantBase {
			t.Errorf("NormalizeCommand(%q).Base: got %q, want %q", tt.raw, got.Base, tt.wantBase)
		}
	}
}

func TestParseClientTable(t *testing.T) {
	tests := []struct {
		name        string
		stdout      string
		wantOutcome Outcome
		wantBase    string
		wantNorm    string
	}{
		{
			name:        "four column header with path",
			stdout:      "CLIENT_ID  PANE_ID  PANE_KIND  RUNNING_COMMAND\n1  7  terminal  /usr/bin/vim\n",
			wantOutcome: Running,
			wantBase:    "vim",
			wantNorm:    "vim",
		},
		{
			name:        "zellij three column layout",
			stdout:      "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n1         terminal_3     nvim main.go\n",
			wantOutcome: Running,
			wantBase:    "nvim",
			wantNorm:    "nvim main.go",
		},
		{
			name:        "prefixed pane id followed by bare kind",
			stdout:      "CLIENT_ID PANE_ID PANE_KIND RUNNING_COMMAND\n1 terminal_7 terminal /usr/local/bin/hx\n",
			wantOutcome: Running,
			wantBase:    "hx",
			wantNorm:    "hx",
		},
		{
			name:        "no command marker",
			stdout:      "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n1 terminal_1 N/A\n",
			wantOutcome: NoCommand,
		},
		{
			name:        "plugin pane focused",
			stdout:      "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n1 plugin_2 N/A\n",
			wantOutcome: NoCommand,
		},
		{
			name:        "empty output",
			stdout:      "",
			wantOutcome: Indeterminate,
		},
		{
			name:        "header only",
			stdout:      "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n",
			wantOutcome: Indeterminate,
		},
		{
			name:        "too few columns",
			stdout:      "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n1 terminal_1\n",
			wantOutcome: Indeterminate,
		},
		{
			name:        "garbled row",
			stdout:      "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n???\n",
			wantOutcome: Indeterminate,
		},
		{
			name:        "crlf and blank lines",
			stdout:      "\r\nCLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\r\n\r\n1 terminal_1 vim\r\n",
			wantOutcome: Running,
			wantBase:    "vim",
			wantNorm:    "vim",
		},
		{
			name:        "only the first client row counts",
			stdout:      "CLIENT_ID ZELLIJ_PANE_ID RUNNING_COMMAND\n1 terminal_1 N/A\n2 terminal_4 vim\n",
			wantOutcome: NoCommand,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseClientTable(tt.stdout)
			if got.Outcome != tt.wantOutcome {
				t.Fatalf("Outcome: got %s, want %s", got.Outcome, tt.wantOutcome)
			}
			if tt.wantOutcome != Running {
				if got.Command != nil {
					t.Errorf("Command: got %+v, want nil", *got.Command)
				}
				return
			}
			if got.Command == nil {
				t.Fatal("Command: got nil, want a command")
			}
			if got.Command.Base != tt.wantBase {
				t.Errorf("Base: got %q, want %q", got.Command.Base, tt.wantBase)
			}
			if got.Command.Normalized != tt.wantNorm {
				t.Errorf("Normalized: got %q, want %q", got.Command.Normalized, tt.wantNorm)
			}
		})
	}
}

func TestParseClients(t *testing.T) {
	tests := []struct {
		name        string
		clients     []model.ClientInfo
		wantOutcome Outcome
		wantBase    string
	}{
		{
			name: "current client running vim",
			clients: []model.ClientInfo{
				{ClientID: 1, PaneID: "terminal_1", RunningCommand: "bash"},
				{ClientID: 2, PaneID: "terminal_2", RunningCommand: "/usr/bin/vim notes.md", IsCurrentClient: true},
			},
			wantOutcome: Running,
			wantBase:    "vim",
		},
		{
			name:        "current client without command",
			clients:     []model.ClientInfo{{ClientID: 1, PaneID: "terminal_1", IsCurrentClient: true}},
			wantOutcome: NoCommand,
		},
		{
			name:        "current client on plugin pane",
			clients:     []model.ClientInfo{{ClientID: 1, PaneID: "plugin_3", RunningCommand: "vim", IsCurrentClient: true}},
			wantOutcome: NoCommand,
		},
		{
			name:        "no current client",
			clients:     []model.ClientInfo{{ClientID: 1, PaneID: "terminal_1", RunningCommand: "vim"}},
			wantOutcome: Indeterminate,
		},
		{
			name:        "empty listing",
			wantOutcome: Indeterminate,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseClients(tt.clients)
			if got.Outcome != tt.wantOutcome {
				t.Fatalf("Outcome: got %s, want %s", got.Outcome, tt.wantOutcome)
			}
			if tt.wantOutcome == Running && got.Command.Base != tt.wantBase {
				t.Errorf("Base: got %q, want %q", got.Command.Base, tt.wantBase)
			}
		})
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{
		Indeterminate: "indeterminate",
		NoCommand:     "none",
		Running:       "command",
		Outcome(42):   "unknown",
	} {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String(): got %q, want %q", int(o), got, want)
		}
	}
}
