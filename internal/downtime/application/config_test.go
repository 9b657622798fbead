package application_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"factoryline-cloud/internal/downtime/application"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DOWNTIME_CONFIG", "")
	t.Setenv("DOWNTIME_INTERVAL", "")
	t.Setenv("DOWNTIME_WORKERS", "")
	t.Setenv("DOWNTIME_LINES", "")

	cfg, err := application.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Interval.Std() != 15*time.Minute {
		t.Fatalf("interval = %s, want 15m", cfg.Interval.Std())
	}
	if cfg.Workers != 4 {
		t.Fatalf("workers = %d, want 4", cfg.Workers)
	}
}

func TestLoadConfig_YamlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downtime.yaml")
	content := "interval: 5m\nworkers: 8\nlines:\n  - line-1\n  - line-2\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DOWNTIME_CONFIG", path)
	t.Setenv("DOWNTIME_INTERVAL", "")
	t.Setenv("DOWNTIME_WORKERS", "")
	t.Setenv("DOWNTIME_LINES", "")

	cfg, err := application.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Interval.Std() != 5*time.Minute {
		t.Fatalf("interval = %s, want 5m", cfg.Interval.Std())
	}
	if cfg.Workers != 8 {
		t.Fatalf("workers = %d, want 8", cfg.Workers)
	}
	if len(cfg.Lines) != 2 || cfg.Lines[0] != "line-1" {
		t.Fatalf("lines = %v", cfg.Lines)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("DOWNTIME_CONFIG", "")
	t.Setenv("DOWNTIME_INTERVAL", "1m")
	t.Setenv("DOWNTIME_WORKERS", "2")
	t.Setenv("DOWNTIME_LINES", "line-9, line-10")

	cfg, err := application.LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Interval.Std() != time.Minute {
		t.Fatalf("interval = %s, want 1m", cfg.Interval.Std())
	}
	if cfg.Workers != 2 {
		t.Fatalf("workers = %d, want 2", cfg.Workers)
	}
	if len(cfg.Lines) != 2 || cfg.Lines[1] != "line-10" {
		t.Fatalf("lines = %v", cfg.Lines)
	}
}
