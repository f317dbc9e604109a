package cmd

import (
	"testing"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	expected := []string{"chat", "serve", "auth", "version"}
	for _, name := range expected {
		found := false
		for _, sub := range rootCmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestServeCommandFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	tests := []struct {
		flag     string
		expected string
	}{
		{"transport", "http"},
		{"http-addr", ":8080"},
		{"yolo", "false"},
		{"metrics-enabled", "true"},
		{"metrics-addr", ":9090"},
	}

	for _, tt := range tests {
		f := cmd.Flags().Lookup(tt.flag)
		if f == nil {
			t.Errorf("serve command is missing flag %q", tt.flag)
			continue
		}
		if f.DefValue != tt.expected {
			t.Errorf("flag %q default = %q, want %q", tt.flag, f.DefValue, tt.expected)
		}
	}
}

func TestLoadMetricsEnvVars(t *testing.T) {
	cmd := newServeCmd()

	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("METRICS_ADDR", ":7070")

	config := MetricsConfig{Enabled: true, Addr: ":9090"}
	loadMetricsEnvVars(cmd, &config)

	if config.Enabled {
		t.Error("expected METRICS_ENABLED=false to disable metrics")
	}
	if config.Addr != ":7070" {
		t.Errorf("Addr = %q, want %q", config.Addr, ":7070")
	}
}

func TestLoadMetricsEnvVars_FlagWins(t *testing.T) {
	cmd := newServeCmd()
	if err := cmd.Flags().Set("metrics-addr", ":6060"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	t.Setenv("METRICS_ADDR", ":7070")

	config := MetricsConfig{Enabled: true, Addr: ":6060"}
	loadMetricsEnvVars(cmd, &config)

	if config.Addr != ":6060" {
		t.Errorf("Addr = %q, want %q (explicit flag must win)", config.Addr, ":6060")
	}
}

func TestChatCommandFlagDefaults(t *testing.T) {
	cmd := newChatCmd()

	if f := cmd.Flags().Lookup("account"); f == nil || f.DefValue != "default" {
		t.Error("chat command should default --account to 'default'")
	}
	if f := cmd.Flags().Lookup("model"); f == nil || f.DefValue == "" {
		t.Error("chat command should carry a default model name")
	}
}
