package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"go.olrik.dev/sentinel/internal/core"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := NewRootCommand()

	for _, name := range []string{"run", "status", "events", "version"} {
		found, _, err := root.Find([]string{name})
		if err != nil || found.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.RunE == nil {
		t.Error("root command should run the daemon when no command is given")
	}
}

func TestVersionCommand(t *testing.T) {
	original := core.Config
	defer func() { core.Config = original }()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	got := strings.TrimSpace(out.String())
	if got != core.FormatVersion(core.Version) {
		t.Errorf("version output = %q, want %q", got, core.FormatVersion(core.Version))
	}
}

func TestRootCommand_BadConfigFails(t *testing.T) {
	original := core.Config
	defer func() { core.Config = original }()

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"--config", "/nonexistent/sentinel.hcl", "version"})
	if err := root.Execute(); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestRootCommand_IgnoresUnknownArguments(t *testing.T) {
	original := core.Config
	defer func() { core.Config = original }()

	tests := []struct {
		name    string
		args    []string
		wantRun string
	}{
		{"unknown shorthand", []string{"-x"}, "sentinel"},
		{"unknown long flag", []string{"--foo=bar"}, "sentinel"},
		{"positional and flag", []string{"whatever", "-x"}, "sentinel"},
		{"known flag kept", []string{"-v", "--foo=bar"}, "sentinel"},
		{"run with unknown flags", []string{"run", "-x", "--foo=bar"}, "run"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := NewRootCommand()
			var ran string
			record := func(cmd *cobra.Command, args []string) error {
				ran = cmd.Name()
				return nil
			}
			root.RunE = record
			run, _, err := root.Find([]string{"run"})
			if err != nil {
				t.Fatalf("run command not found: %v", err)
			}
			run.RunE = record

			var out bytes.Buffer
			root.SetOut(&out)
			root.SetErr(&out)
			root.SetArgs(tt.args)
			if err := root.Execute(); err != nil {
				t.Fatalf("Execute(%v) failed: %v", tt.args, err)
			}
			if ran != tt.wantRun {
				t.Errorf("Execute(%v) ran %q, want %q", tt.args, ran, tt.wantRun)
			}
		})
	}
}
