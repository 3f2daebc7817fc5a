package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/timvw/zellij-autolock/internal/autolock"
	"github.com/timvw/zellij-autolock/internal/config"
	"github.com/timvw/zellij-autolock/internal/model"
	"github.com/timvw/zellij-autolock/internal/parser"
)

// sampleReport is the JSON printed by the sample command.
type sampleReport struct {
	Mux      string `json:"mux"`
	Outcome  string `json:"outcome"`
	Command  string `json:"command,omitempty"`
	Base     string `json:"base,omitempty"`
	Trigger  bool   `json:"trigger"`
	Watch    bool   `json:"watch"`
	Target   string `json:"target"`
	Listing  string `json:"listing,omitempty"`
	ExitCode int    `json:"exit_code"`
	Error    string `json:"error,omitempty"`
}

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Sample the focused pane once and print the classification",
	Long: `Run one client listing against the multiplexer, classify what the focused
pane runs and print the result as JSON, together with the mode the daemon
would aim for when starting from Normal mode.

Use --verbose to include the raw listing.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		m, err := getMultiplexer(cfg)
		if err != nil {
			return err
		}

		report := sampleReport{Mux: m.Name()}
		out, err := m.ListClients(cmd.Context())
		if err != nil {
			report.ExitCode = 1
			report.Error = err.Error()
		}
		if flagVerbose {
			report.Listing = out
		}
		fillReport(&report, parser.ParseClientTable(out), cfg)

		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal sample: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
}

func fillReport(r *sampleReport, s parser.Sample, cfg *config.Config) {
	r.Outcome = s.Outcome.String()
	if s.Command != nil {
		r.Command = s.Command.Normalized
		r.Base = s.Command.Base
	}
	if s.Outcome == parser.Indeterminate {
		r.Target = model.ModeNormal.String()
		return
	}
	d := autolock.Decide(s, cfg.Triggers, cfg.WatchTriggers, model.ModeNormal)
	r.Trigger = d.Trigger
	r.Watch = d.Watch
	r.Target = d.Target.String()
}
