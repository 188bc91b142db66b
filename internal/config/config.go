// Package config loads and validates deskctl configuration from
// YAML files and DESKCTL_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Refresh RefreshConfig `mapstructure:"refresh"`
	Journal JournalConfig `mapstructure:"journal"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// ServerConfig points at the HotDesk backend.
type ServerConfig struct {
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"min=1s,max=5m"`
	LogLevel   string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	CookieFile string        `mapstructure:"cookie_file" validate:"required"`
}

// RefreshConfig tunes the session keep-alive loop.
type RefreshConfig struct {
	Interval          time.Duration `mapstructure:"interval" validate:"min=10s,max=1h"`
	WakeEnabled       bool          `mapstructure:"wake_enabled"`
	WakeCheckInterval time.Duration `mapstructure:"wake_check_interval" validate:"min=1s,max=10m"`
	DriftThreshold    time.Duration `mapstructure:"drift_threshold" validate:"min=10s,max=1h"`
}

// JournalConfig controls the session event journal.
type JournalConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Output        string        `mapstructure:"output" validate:"journal_output"`
	ChannelSize   int           `mapstructure:"channel_size" validate:"min=1,max=65536"`
	BatchSize     int           `mapstructure:"batch_size" validate:"min=1,max=1024"`
	FlushInterval time.Duration `mapstructure:"flush_interval" validate:"min=100ms,max=1m"`
}

// MetricsConfig controls the Prometheus endpoint used by watch mode.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

// SetDefaults fills unset fields with working defaults.
func (c *Config) SetDefaults() {
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.CookieFile == "" {
		c.Server.CookieFile = defaultCookieFile()
	}

	if c.Refresh.Interval == 0 {
		c.Refresh.Interval = 4 * time.Minute
	}
	if c.Refresh.WakeCheckInterval == 0 {
		c.Refresh.WakeCheckInterval = 30 * time.Second
	}
	if c.Refresh.DriftThreshold == 0 {
		c.Refresh.DriftThreshold = 2 * time.Minute
	}

	if c.Journal.Output == "" {
		c.Journal.Output = "stdout"
	}
	if c.Journal.ChannelSize == 0 {
		c.Journal.ChannelSize = 256
	}
	if c.Journal.BatchSize == 0 {
		c.Journal.BatchSize = 16
	}
	if c.Journal.FlushInterval == 0 {
		c.Journal.FlushInterval = 2 * time.Second
	}

	if c.Metrics.Addr == "" {
		c.Metrics.Addr = "127.0.0.1:9464"
	}
}

func defaultCookieFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "cookies.json"
	}
	return filepath.Join(home, ".deskctl", "cookies.json")
}
