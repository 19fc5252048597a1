package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected defaults to load, got %v", err)
	}

	if cfg.Particles.Capacity != 25000 {
		t.Errorf("expected capacity 25000, got %d", cfg.Particles.Capacity)
	}
	if cfg.Particles.SpawnBudget != 150 {
		t.Errorf("expected spawn budget 150, got %d", cfg.Particles.SpawnBudget)
	}
	if cfg.Particles.BurstSize != 30 {
		t.Errorf("expected burst size 30, got %d", cfg.Particles.BurstSize)
	}
	if cfg.Regime.EnterThreshold != 0.06 || cfg.Regime.ExitThreshold != 0.03 {
		t.Errorf("expected thresholds 0.06/0.03, got %v/%v", cfg.Regime.EnterThreshold, cfg.Regime.ExitThreshold)
	}
	if cfg.Gesture.Decay != 0.7 || cfg.Gesture.Threshold != 0.5 {
		t.Errorf("expected gesture contract 0.7/0.5, got %v/%v", cfg.Gesture.Decay, cfg.Gesture.Threshold)
	}
	if cfg.Derived.CycleLength != 20 {
		t.Errorf("expected derived cycle length 20, got %v", cfg.Derived.CycleLength)
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "particles:\n  capacity: 1000\nregime:\n  cooldown: 0.5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected overlay to load, got %v", err)
	}
	if cfg.Particles.Capacity != 1000 {
		t.Errorf("expected overridden capacity 1000, got %d", cfg.Particles.Capacity)
	}
	if cfg.Regime.Cooldown != 0.5 {
		t.Errorf("expected overridden cooldown 0.5, got %v", cfg.Regime.Cooldown)
	}
	// Untouched fields keep their defaults
	if cfg.Particles.SpawnBudget != 150 {
		t.Errorf("expected default spawn budget to survive overlay, got %d", cfg.Particles.SpawnBudget)
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"zero capacity", "particles:\n  capacity: 0\n", "capacity must be positive"},
		{"negative cooldown", "regime:\n  cooldown: -1\n", "cooldown must not be negative"},
		{"negative duration", "regime:\n  calm_duration: -3\n", "durations must not be negative"},
		{"inverted thresholds", "regime:\n  enter_threshold: 0.01\n  exit_threshold: 0.05\n", "exceeds enter_threshold"},
		{"zero process width", "density:\n  process_width: 0\n", "process_width must be positive"},
		{"zero min total weight", "density:\n  min_total_weight: 0\n", "min_total_weight must be positive"},
		{"nan min total weight", "density:\n  min_total_weight: .nan\n", "min_total_weight must be positive"},
		{"inverted life", "particles:\n  burst:\n    life: {min: 2, max: 1}\n", "inverted range"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tc.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if cfg != nil {
				t.Error("expected nil config on error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Particles.Capacity = 1234

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}

	back, err := Load(path)
	if err != nil {
		t.Fatalf("expected written config to load, got %v", err)
	}
	if back.Particles.Capacity != 1234 {
		t.Errorf("expected capacity 1234 after round trip, got %d", back.Particles.Capacity)
	}
}

func TestDefaultIsIndependent(t *testing.T) {
	a := Default()
	b := Default()
	a.Particles.Capacity = 1
	if b.Particles.Capacity == 1 {
		t.Error("expected Default to return independent copies")
	}
}
