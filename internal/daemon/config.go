// Package daemon manages the Diabetree service lifecycle and
// configuration.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all service configuration.
type Config struct {
	Profile   ProfileConfig   `toml:"profile"`
	API       APIConfig       `toml:"api"`
	Storage   StorageConfig   `toml:"storage"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Logging   LoggingConfig   `toml:"logging"`
}

// ProfileConfig identifies the owner and tunes evaluation.
type ProfileConfig struct {
	Owner          string  `toml:"owner"`
	TargetMin      float64 `toml:"target_min"`
	TargetMax      float64 `toml:"target_max"`
	WindowHours    int     `toml:"window_hours"`
	SpacingMinutes int     `toml:"spacing_minutes"`
}

// APIConfig controls the HTTP API server.
type APIConfig struct {
	Host        string   `toml:"host"`
	Port        int      `toml:"port"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig controls where the database lives.
type StorageConfig struct {
	Dir string `toml:"dir"`
}

// TelemetryConfig controls observability endpoints.
type TelemetryConfig struct {
	Prometheus bool `toml:"prometheus"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	homeDir := diabetreeHome()
	return Config{
		Profile: ProfileConfig{
			Owner:          "default",
			TargetMin:      70,
			TargetMax:      180,
			WindowHours:    168, // 7 days
			SpacingMinutes: 5,
		},
		API: APIConfig{
			Host:        "127.0.0.1",
			Port:        8675,
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Dir: homeDir,
		},
		Telemetry: TelemetryConfig{
			Prometheus: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  filepath.Join(homeDir, "diabetree.log"),
		},
	}
}

// LoadConfig reads config from ~/.diabetree/config.toml, falling back to
// defaults for anything unset.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	path := filepath.Join(diabetreeHome(), "config.toml")

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil // no config file yet, use defaults
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Profile.TargetMin <= 0 || cfg.Profile.TargetMax <= cfg.Profile.TargetMin {
		return cfg, fmt.Errorf("invalid target range: min=%.1f max=%.1f",
			cfg.Profile.TargetMin, cfg.Profile.TargetMax)
	}

	return cfg, nil
}

// SaveConfig writes the config to ~/.diabetree/config.toml.
func SaveConfig(cfg Config) error {
	path := filepath.Join(diabetreeHome(), "config.toml")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Window returns the evaluation lookback as a duration.
func (p ProfileConfig) Window() time.Duration {
	if p.WindowHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(p.WindowHours) * time.Hour
}

// Spacing returns the dedup gap as a duration.
func (p ProfileConfig) Spacing() time.Duration {
	if p.SpacingMinutes <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(p.SpacingMinutes) * time.Minute
}

func diabetreeHome() string {
	if env := os.Getenv("DIABETREE_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".diabetree")
}

// Home is exported for use by other packages.
func Home() string {
	return diabetreeHome()
}
