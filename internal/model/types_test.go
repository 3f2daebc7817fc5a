package model

import (
	"encoding/json"
	"testing"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "locked", want: ModeLocked},
		{in: "Locked", want: ModeLocked},
		{in: " normal ", want: ModeNormal},
		{in: "enter_search", want: ModeEnterSearch},
		{in: "rename-tab", want: ModeRenameTab},
		{in: "somethingnew", want: Mode("somethingnew")},
		{in: "", wantErr: true},
		{in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMode(%q): expected error, got %q", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMode(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFocusedTab(t *testing.T) {
	tabs := []TabInfo{{Position: 0}, {Position: 1, Active: true}, {Position: 2}}
	got, ok := FocusedTab(tabs)
	if !ok {
		t.Fatal("expected a focused tab")
	}
	if got.Position != 1 {
		t.Errorf("Position: got %d, want 1", got.Position)
	}

	if _, ok := FocusedTab([]TabInfo{{Position: 0}}); ok {
		t.Error("expected no focused tab when none is active")
	}
}

func TestPaneManifest_FocusedPane(t *testing.T) {
	tests := []struct {
		name            string
		panes           []PaneInfo
		floatingVisible bool
		wantID          uint32
		wantOK          bool
	}{
		{
			name:   "single focused terminal",
			panes:  []PaneInfo{{ID: 1}, {ID: 2, IsFocused: true}},
			wantID: 2,
			wantOK: true,
		},
		{
			name:   "focused plugin is skipped",
			panes:  []PaneInfo{{ID: 1, IsFocused: true, IsPlugin: true}, {ID: 3, IsFocused: true}},
			wantID: 3,
			wantOK: true,
		},
		{
			name:   "suppressed pane is skipped",
			panes:  []PaneInfo{{ID: 4, IsFocused: true, IsSuppressed: true}},
			wantOK: false,
		},
		{
			name:            "visible floating pane wins",
			panes:           []PaneInfo{{ID: 1, IsFocused: true}, {ID: 5, IsFocused: true, IsFloating: true}},
			floatingVisible: true,
			wantID:          5,
			wantOK:          true,
		},
		{
			name:   "hidden floating pane is ignored",
			panes:  []PaneInfo{{ID: 5, IsFocused: true, IsFloating: true}, {ID: 1, IsFocused: true}},
			wantID: 1,
			wantOK: true,
		},
		{
			name:   "nothing focused",
			panes:  []PaneInfo{{ID: 1}},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pm := PaneManifest{7: tt.panes}
			got, ok := pm.FocusedPane(7, tt.floatingVisible)
			if ok != tt.wantOK {
				t.Fatalf("ok: got %v, want %v", ok, tt.wantOK)
			}
			if ok && got.ID != tt.wantID {
				t.Errorf("ID: got %d, want %d", got.ID, tt.wantID)
			}
		})
	}
}

func TestPaneManifest_UnknownTab(t *testing.T) {
	pm := PaneManifest{0: {{ID: 1, IsFocused: true}}}
	if _, ok := pm.FocusedPane(3, false); ok {
		t.Error("expected no pane for a tab missing from the manifest")
	}
}

func TestClientInfo_JSONFieldNames(t *testing.T) {
	data := []byte(`{"client_id":1,"pane_id":"terminal_2","running_command":"nvim main.go","is_current_client":true}`)
	var c ClientInfo
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !c.IsCurrentClient || c.RunningCommand != "nvim main.go" || c.PaneID != "terminal_2" {
		t.Errorf("unexpected decode: %+v", c)
	}
}
