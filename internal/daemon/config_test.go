package daemon

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Profile.TargetMin != 70 || cfg.Profile.TargetMax != 180 {
		t.Errorf("unexpected default range: %.0f-%.0f", cfg.Profile.TargetMin, cfg.Profile.TargetMax)
	}
	if cfg.Profile.Window() != 168*time.Hour {
		t.Errorf("expected 7-day window, got %v", cfg.Profile.Window())
	}
	if cfg.Profile.Spacing() != 5*time.Minute {
		t.Errorf("expected 5-minute spacing, got %v", cfg.Profile.Spacing())
	}
	if cfg.API.Port == 0 {
		t.Error("default port must be set")
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DIABETREE_HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Profile.Owner != "default" {
		t.Errorf("expected default owner, got %q", cfg.Profile.Owner)
	}
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DIABETREE_HOME", home)

	content := `
[profile]
owner = "alex"
target_min = 80.0
target_max = 160.0
window_hours = 72

[api]
port = 9000

[telemetry]
prometheus = true
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Profile.Owner != "alex" {
		t.Errorf("owner not loaded: %q", cfg.Profile.Owner)
	}
	if cfg.Profile.TargetMin != 80 || cfg.Profile.TargetMax != 160 {
		t.Errorf("range not loaded: %.0f-%.0f", cfg.Profile.TargetMin, cfg.Profile.TargetMax)
	}
	if cfg.Profile.Window() != 72*time.Hour {
		t.Errorf("window not loaded: %v", cfg.Profile.Window())
	}
	if cfg.API.Port != 9000 {
		t.Errorf("port not loaded: %d", cfg.API.Port)
	}
	if !cfg.Telemetry.Prometheus {
		t.Error("telemetry flag not loaded")
	}
	// Sections absent from the file keep their defaults.
	if cfg.API.Host != "127.0.0.1" {
		t.Errorf("host default lost: %q", cfg.API.Host)
	}
}

func TestLoadConfig_RejectsInvalidRange(t *testing.T) {
	home := t.TempDir()
	t.Setenv("DIABETREE_HOME", home)

	content := `
[profile]
target_min = 200.0
target_max = 100.0
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := LoadConfig(); err == nil {
		t.Error("inverted target range should be rejected")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("DIABETREE_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.Profile.Owner = "sam"
	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Profile.Owner != "sam" {
		t.Errorf("round trip lost owner: %q", loaded.Profile.Owner)
	}
}
