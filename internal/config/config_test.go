package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}

	if cfg.Ball.MinSpeed > cfg.Ball.InitialSpeed || cfg.Ball.InitialSpeed > cfg.Ball.MaxSpeed {
		t.Errorf("default speeds out of order: min=%g initial=%g max=%g",
			cfg.Ball.MinSpeed, cfg.Ball.InitialSpeed, cfg.Ball.MaxSpeed)
	}
}

func TestValidateRejectsBrokenGeometry(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero canvas width", func(c *Config) { c.Canvas.Width = 0 }},
		{"negative canvas height", func(c *Config) { c.Canvas.Height = -10 }},
		{"zero paddle height", func(c *Config) { c.Paddle.Height = 0 }},
		{"negative ball radius", func(c *Config) { c.Ball.Radius = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestValidateClampsSoftValues(t *testing.T) {
	cfg := Default()
	cfg.Gesture.SmoothingFactor = 3.5
	cfg.AI.Difficulty = -0.2
	cfg.Ball.MinSpeed = -5
	cfg.Ball.MaxSpeed = 0.5
	cfg.Ball.InitialSpeed = 100
	cfg.Ball.ServeDirection = "sideways"
	cfg.Camera.FrameSkip = 0
	cfg.Gesture.FistRequiredFingers = 9

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Gesture.SmoothingFactor != 1 {
		t.Errorf("smoothing factor = %g, want 1", cfg.Gesture.SmoothingFactor)
	}
	if cfg.AI.Difficulty != 0 {
		t.Errorf("difficulty = %g, want 0", cfg.AI.Difficulty)
	}
	if cfg.Ball.MinSpeed <= 0 {
		t.Errorf("min speed = %g, want positive", cfg.Ball.MinSpeed)
	}
	if cfg.Ball.MaxSpeed < cfg.Ball.MinSpeed {
		t.Errorf("max speed %g below min speed %g", cfg.Ball.MaxSpeed, cfg.Ball.MinSpeed)
	}
	if cfg.Ball.InitialSpeed > cfg.Ball.MaxSpeed {
		t.Errorf("initial speed %g above max %g", cfg.Ball.InitialSpeed, cfg.Ball.MaxSpeed)
	}
	if cfg.Ball.ServeDirection != ServeRandom {
		t.Errorf("serve direction = %q, want %q", cfg.Ball.ServeDirection, ServeRandom)
	}
	if cfg.Camera.FrameSkip != 1 {
		t.Errorf("frame skip = %d, want 1", cfg.Camera.FrameSkip)
	}
	if cfg.Gesture.FistRequiredFingers != 4 {
		t.Errorf("fist required fingers = %d, want 4", cfg.Gesture.FistRequiredFingers)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "handpong.yml")
	data := []byte(`
canvas:
  width: 800
  height: 600
game:
  win_score: 5
  seed: 42
ball:
  serve_direction: conceder
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Canvas.Width != 800 || cfg.Canvas.Height != 600 {
		t.Errorf("canvas = %dx%d, want 800x600", cfg.Canvas.Width, cfg.Canvas.Height)
	}
	if cfg.Game.WinScore != 5 {
		t.Errorf("win score = %d, want 5", cfg.Game.WinScore)
	}
	if cfg.Game.Seed != 42 {
		t.Errorf("seed = %d, want 42", cfg.Game.Seed)
	}
	if cfg.Ball.ServeDirection != ServeConceder {
		t.Errorf("serve direction = %q, want %q", cfg.Ball.ServeDirection, ServeConceder)
	}
	// Untouched sections keep their defaults.
	if cfg.Paddle.Height != 80 {
		t.Errorf("paddle height = %g, want default 80", cfg.Paddle.Height)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Canvas.Width != 600 {
		t.Errorf("canvas width = %d, want 600", cfg.Canvas.Width)
	}
}
