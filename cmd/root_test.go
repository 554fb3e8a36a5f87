package cmd

import (
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr bool
	}{
		{
			name: "version flag",
			args: []string{"--version"},
			want: "commit:",
		},
		{
			name: "help flag",
			args: []string{"--help"},
			want: "Quick Start",
		},
		{
			name:    "unknown command",
			args:    []string{"nonexistent-command"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupEnv(t)
			out, err := execute(t, tt.args...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.want != "" && !strings.Contains(out, tt.want) {
				t.Errorf("output = %q, want it to contain %q", out, tt.want)
			}
		})
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"record", "merge", "recover", "list", "show", "search", "export", "detect", "serve", "config"}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		if !registered[name] {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	p := setupEnv(t)
	path := p.Home + "/bad.yaml"
	writeTestFile(t, path, "poll_interval: 1ms\n")

	if _, err := execute(t, "--config", path, "config", "show"); err == nil {
		t.Error("Execute() should fail for an out-of-range poll_interval")
	}
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	p := setupEnv(t)
	if _, err := execute(t, "--config", p.Home+"/missing.yaml", "list"); err == nil {
		t.Error("Execute() should fail when --config names a missing file")
	}
}
