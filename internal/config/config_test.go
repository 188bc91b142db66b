package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	cfg := &Config{}
	cfg.Server.BaseURL = "https://hotdesk.example.com"
	cfg.SetDefaults()
	return cfg
}

func TestSetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	if cfg.Server.Timeout != 30*time.Second {
		t.Errorf("Server.Timeout = %v", cfg.Server.Timeout)
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("Server.LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Server.CookieFile == "" {
		t.Error("Server.CookieFile empty")
	}
	if cfg.Refresh.Interval != 4*time.Minute {
		t.Errorf("Refresh.Interval = %v, want 4m", cfg.Refresh.Interval)
	}
	if cfg.Refresh.WakeCheckInterval != 30*time.Second {
		t.Errorf("Refresh.WakeCheckInterval = %v", cfg.Refresh.WakeCheckInterval)
	}
	if cfg.Refresh.DriftThreshold != 2*time.Minute {
		t.Errorf("Refresh.DriftThreshold = %v", cfg.Refresh.DriftThreshold)
	}
	if cfg.Journal.Output != "stdout" {
		t.Errorf("Journal.Output = %q", cfg.Journal.Output)
	}
	if cfg.Metrics.Addr != "127.0.0.1:9464" {
		t.Errorf("Metrics.Addr = %q", cfg.Metrics.Addr)
	}
}

func TestSetDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.LogLevel = "debug"
	cfg.Refresh.Interval = 90 * time.Second
	cfg.SetDefaults()

	if cfg.Server.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug preserved", cfg.Server.LogLevel)
	}
	if cfg.Refresh.Interval != 90*time.Second {
		t.Errorf("Interval = %v, want 90s preserved", cfg.Refresh.Interval)
	}
}

func TestValidate_AcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			"missing base URL",
			func(c *Config) { c.Server.BaseURL = "" },
			"required",
		},
		{
			"malformed base URL",
			func(c *Config) { c.Server.BaseURL = "not a url" },
			"valid URL",
		},
		{
			"bad log level",
			func(c *Config) { c.Server.LogLevel = "verbose" },
			"one of",
		},
		{
			"refresh interval too short",
			func(c *Config) { c.Refresh.Interval = time.Second },
			"at least",
		},
		{
			"bad journal output",
			func(c *Config) { c.Journal.Output = "syslog" },
			"stdout",
		},
		{
			"relative journal file",
			func(c *Config) { c.Journal.Output = "file://relative/path" },
			"stdout",
		},
		{
			"bad metrics addr",
			func(c *Config) { c.Metrics.Addr = "no-port" },
			"host:port",
		},
		{
			"wake check slower than refresh",
			func(c *Config) {
				c.Refresh.WakeEnabled = true
				c.Refresh.WakeCheckInterval = 10 * time.Minute
			},
			"wake_check_interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_AcceptsAbsoluteJournalFile(t *testing.T) {
	cfg := validConfig()
	cfg.Journal.Output = "file:///var/log/deskctl/journal.jsonl"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestFindConfigFileInPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deskctl.yaml")
	if err := os.WriteFile(path, []byte("server:\n  base_url: https://example.com\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	if got := findConfigFileInPaths([]string{t.TempDir(), dir}); got != path {
		t.Errorf("findConfigFileInPaths = %q, want %q", got, path)
	}

	if got := findConfigFileInPaths([]string{t.TempDir()}); got != "" {
		t.Errorf("findConfigFileInPaths = %q, want empty", got)
	}
}
