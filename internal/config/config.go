// Package config holds the tunable settings for the handpong application.
// Values are compiled-in defaults, optionally overridden from a YAML file,
// and clamped to safe ranges at load time so bad values never reach the
// physics or the gesture pipeline.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServeDirection controls where the ball heads after a serve.
const (
	// ServeRandom picks the horizontal direction from the engine RNG.
	ServeRandom = "random"
	// ServeConceder serves toward the side that just conceded a point.
	ServeConceder = "conceder"
)

// CanvasConfig defines the game playfield dimensions in pixels.
type CanvasConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// CameraConfig defines camera acquisition settings.
type CameraConfig struct {
	DeviceID int `yaml:"device_id"`
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	FPS      int `yaml:"fps"`
	// FrameSkip runs hand detection only every Nth captured frame.
	FrameSkip int `yaml:"frame_skip"`
	// MotionThreshold is the percentage of changed pixels that counts as
	// motion; below it the pipeline drops to the idle frame rate.
	MotionThreshold float64 `yaml:"motion_threshold"`
}

// DetectionConfig defines hand detection thresholds.
type DetectionConfig struct {
	MaxHands        int     `yaml:"max_hands"`
	MinConfidence   float64 `yaml:"min_confidence"`
	MinTrackingConf float64 `yaml:"min_tracking_confidence"`
	// HandConfidence is the per-hand handedness score below which a hand
	// is ignored by the classifier.
	HandConfidence float64 `yaml:"hand_confidence"`
}

// GestureConfig defines the classifier and smoother tunables.
type GestureConfig struct {
	// FingerClosedRatio is the tip/knuckle distance ratio below which a
	// finger counts as curled.
	FingerClosedRatio float64 `yaml:"finger_closed_ratio"`
	// ThumbClosedRatio is the curl threshold for the thumb, which sits
	// closer to the wrist than the other fingers.
	ThumbClosedRatio float64 `yaml:"thumb_closed_ratio"`
	// FistRequiredFingers is how many of the four non-thumb fingers must
	// be curled for a fist.
	FistRequiredFingers int `yaml:"fist_required_fingers"`

	SmoothingFactor float64 `yaml:"smoothing_factor"`
	Deadzone        float64 `yaml:"deadzone"`
	HistorySize     int     `yaml:"history_size"`

	FistHoldMs int `yaml:"fist_hold_ms"`
	CooldownMs int `yaml:"cooldown_ms"`
	// MissedFrameGrace is how many consecutive frames a hand may go
	// undetected before its side is reported lost.
	MissedFrameGrace int `yaml:"missed_frame_grace"`
	// AITakeoverMs is how long a side must stay lost before the engine
	// hands that paddle to the AI.
	AITakeoverMs int `yaml:"ai_takeover_ms"`
}

// BallConfig defines ball physics settings.
type BallConfig struct {
	Radius       float64 `yaml:"radius"`
	InitialSpeed float64 `yaml:"initial_speed"`
	MinSpeed     float64 `yaml:"min_speed"`
	MaxSpeed     float64 `yaml:"max_speed"`
	// HitSpeedUp is the speed multiplier applied on every paddle hit.
	HitSpeedUp float64 `yaml:"hit_speed_up"`
	// SpeedIncrement is the step applied by the thumbs up/down commands.
	SpeedIncrement float64 `yaml:"speed_increment"`
	// ServeDirection is "random" or "conceder".
	ServeDirection string `yaml:"serve_direction"`
}

// PaddleConfig defines paddle geometry and movement.
type PaddleConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Speed  float64 `yaml:"speed"`
	// Inset is the distance from the canvas edge to the paddle face.
	Inset float64 `yaml:"inset"`
}

// AIConfig defines the computer opponent behavior.
type AIConfig struct {
	// Difficulty is the per-tick probability that the AI reacts.
	Difficulty  float64 `yaml:"difficulty"`
	Speed       float64 `yaml:"speed"`
	ErrorMargin float64 `yaml:"error_margin"`
}

// GameConfig defines session-level rules.
type GameConfig struct {
	WinScore int `yaml:"win_score"`
	// Seed makes serve directions reproducible; 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

// ServerConfig defines the optional local debug server.
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Config is the root configuration for the application.
type Config struct {
	Canvas    CanvasConfig    `yaml:"canvas"`
	Camera    CameraConfig    `yaml:"camera"`
	Detection DetectionConfig `yaml:"detection"`
	Gesture   GestureConfig   `yaml:"gesture"`
	Ball      BallConfig      `yaml:"ball"`
	Paddle    PaddleConfig    `yaml:"paddle"`
	AI        AIConfig        `yaml:"ai"`
	Game      GameConfig      `yaml:"game"`
	Server    ServerConfig    `yaml:"server"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Canvas: CanvasConfig{Width: 600, Height: 400},
		Camera: CameraConfig{
			DeviceID:        0,
			Width:           320,
			Height:          240,
			FPS:             30,
			FrameSkip:       2,
			MotionThreshold: 1.0,
		},
		Detection: DetectionConfig{
			MaxHands:        2,
			MinConfidence:   0.5,
			MinTrackingConf: 0.5,
			HandConfidence:  0.7,
		},
		Gesture: GestureConfig{
			FingerClosedRatio:   1.0,
			ThumbClosedRatio:    1.3,
			FistRequiredFingers: 4,
			SmoothingFactor:     0.5,
			Deadzone:            0.008,
			HistorySize:         5,
			FistHoldMs:          250,
			CooldownMs:          1000,
			MissedFrameGrace:    5,
			AITakeoverMs:        1500,
		},
		Ball: BallConfig{
			Radius:         8,
			InitialSpeed:   5,
			MinSpeed:       2,
			MaxSpeed:       12,
			HitSpeedUp:     1.05,
			SpeedIncrement: 1,
			ServeDirection: ServeRandom,
		},
		Paddle: PaddleConfig{Width: 10, Height: 80, Speed: 6, Inset: 10},
		AI:     AIConfig{Difficulty: 0.7, Speed: 4, ErrorMargin: 20},
		Game:   GameConfig{WinScore: 10},
		Server: ServerConfig{Enabled: false, Addr: "localhost:8080"},
	}
}

// Load reads the configuration from a YAML file layered over the defaults.
// An empty path returns the defaults. The result is always clamped to
// valid ranges.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unusable values and clamps the rest into their valid
// ranges. Dimensions and counts that would break the physics or the
// pipeline outright are errors; soft tunables are clamped silently.
func (c *Config) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas dimensions must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Paddle.Width <= 0 || c.Paddle.Height <= 0 {
		return fmt.Errorf("paddle dimensions must be positive, got %gx%g", c.Paddle.Width, c.Paddle.Height)
	}
	if c.Paddle.Height > float64(c.Canvas.Height) {
		c.Paddle.Height = float64(c.Canvas.Height)
	}
	if c.Ball.Radius <= 0 {
		return fmt.Errorf("ball radius must be positive, got %g", c.Ball.Radius)
	}

	if c.Camera.FPS <= 0 {
		c.Camera.FPS = 30
	}
	if c.Camera.FrameSkip < 1 {
		c.Camera.FrameSkip = 1
	}
	if c.Camera.Width <= 0 {
		c.Camera.Width = 320
	}
	if c.Camera.Height <= 0 {
		c.Camera.Height = 240
	}
	if c.Camera.MotionThreshold <= 0 {
		c.Camera.MotionThreshold = 1.0
	}

	if c.Detection.MaxHands < 1 {
		c.Detection.MaxHands = 1
	}
	c.Detection.MinConfidence = clamp01(c.Detection.MinConfidence)
	c.Detection.MinTrackingConf = clamp01(c.Detection.MinTrackingConf)
	c.Detection.HandConfidence = clamp01(c.Detection.HandConfidence)

	c.Gesture.SmoothingFactor = clampRange(c.Gesture.SmoothingFactor, 0.01, 1)
	if c.Gesture.Deadzone < 0 {
		c.Gesture.Deadzone = 0
	}
	if c.Gesture.HistorySize < 1 {
		c.Gesture.HistorySize = 1
	}
	if c.Gesture.FingerClosedRatio <= 0 {
		c.Gesture.FingerClosedRatio = 1.0
	}
	if c.Gesture.ThumbClosedRatio <= 0 {
		c.Gesture.ThumbClosedRatio = 1.3
	}
	c.Gesture.FistRequiredFingers = int(clampRange(float64(c.Gesture.FistRequiredFingers), 1, 4))
	if c.Gesture.FistHoldMs < 0 {
		c.Gesture.FistHoldMs = 0
	}
	if c.Gesture.CooldownMs < 0 {
		c.Gesture.CooldownMs = 0
	}
	if c.Gesture.MissedFrameGrace < 0 {
		c.Gesture.MissedFrameGrace = 0
	}
	if c.Gesture.AITakeoverMs < 0 {
		c.Gesture.AITakeoverMs = 0
	}

	if c.Ball.MinSpeed <= 0 {
		c.Ball.MinSpeed = 1
	}
	if c.Ball.MaxSpeed < c.Ball.MinSpeed {
		c.Ball.MaxSpeed = c.Ball.MinSpeed
	}
	c.Ball.InitialSpeed = clampRange(c.Ball.InitialSpeed, c.Ball.MinSpeed, c.Ball.MaxSpeed)
	if c.Ball.HitSpeedUp < 1 {
		c.Ball.HitSpeedUp = 1
	}
	if c.Ball.SpeedIncrement <= 0 {
		c.Ball.SpeedIncrement = 1
	}
	if c.Ball.ServeDirection != ServeRandom && c.Ball.ServeDirection != ServeConceder {
		c.Ball.ServeDirection = ServeRandom
	}

	if c.Paddle.Speed <= 0 {
		c.Paddle.Speed = 1
	}
	if c.Paddle.Inset < 0 {
		c.Paddle.Inset = 0
	}

	c.AI.Difficulty = clamp01(c.AI.Difficulty)
	if c.AI.Speed <= 0 {
		c.AI.Speed = 1
	}
	if c.AI.ErrorMargin < 0 {
		c.AI.ErrorMargin = 0
	}

	if c.Game.WinScore < 1 {
		c.Game.WinScore = 1
	}

	return nil
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
