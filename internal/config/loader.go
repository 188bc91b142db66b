package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

// InitViper initializes Viper with the configuration file and environment variables.
// If configFile is empty, it searches for deskctl.yaml/.yml in standard locations.
// The search requires an explicit YAML extension to avoid matching the binary
// itself, which Viper's built-in SetConfigName would match.
func InitViper(configFile string) {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else if found := findConfigFile(); found != "" {
		viper.SetConfigFile(found)
	} else {
		// No config file found in any standard location.
		// Set name/type without search paths so ReadInConfig returns
		// ConfigFileNotFoundError (handled gracefully by callers).
		viper.SetConfigName("deskctl")
		viper.SetConfigType("yaml")
	}

	// Environment variable support: DESKCTL_SERVER_BASE_URL
	viper.SetEnvPrefix("DESKCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	bindNestedEnvKeys()
}

// findConfigFile searches standard locations for a deskctl config file
// with an explicit YAML extension (.yaml or .yml).
func findConfigFile() string {
	home, _ := os.UserHomeDir()
	paths := []string{
		".",
		filepath.Join(home, ".deskctl"),
	}
	if runtime.GOOS == "windows" {
		if pd := os.Getenv("ProgramData"); pd != "" {
			paths = append(paths, filepath.Join(pd, "deskctl"))
		}
	} else {
		paths = append(paths, "/etc/deskctl")
	}
	return findConfigFileInPaths(paths)
}

// findConfigFileInPaths searches the given directories for deskctl.yaml or .yml.
// Returns the full path of the first match, or empty string if none found.
func findConfigFileInPaths(paths []string) string {
	for _, dir := range paths {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, "deskctl"+ext)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds all config keys for environment variable support.
// Example: DESKCTL_SERVER_BASE_URL overrides server.base_url
func bindNestedEnvKeys() {
	_ = viper.BindEnv("server.base_url")
	_ = viper.BindEnv("server.timeout")
	_ = viper.BindEnv("server.log_level")
	_ = viper.BindEnv("server.cookie_file")

	_ = viper.BindEnv("refresh.interval")
	_ = viper.BindEnv("refresh.wake_enabled")
	_ = viper.BindEnv("refresh.wake_check_interval")
	_ = viper.BindEnv("refresh.drift_threshold")

	_ = viper.BindEnv("journal.enabled")
	_ = viper.BindEnv("journal.output")
	_ = viper.BindEnv("journal.channel_size")
	_ = viper.BindEnv("journal.batch_size")
	_ = viper.BindEnv("journal.flush_interval")

	_ = viper.BindEnv("metrics.enabled")
	_ = viper.BindEnv("metrics.addr")
}

// LoadConfig reads the configuration file, applies environment
// overrides and defaults, and validates the result.
func LoadConfig() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - continue with env vars only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// ConfigFileUsed returns the path to the configuration file that was
// loaded, or an empty string in env-vars-only mode.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}
