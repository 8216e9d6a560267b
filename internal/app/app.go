// Package app owns the capture side of the game: it runs the camera,
// motion gating, hand detection, classification and temporal smoothing
// in one pipeline goroutine, and publishes gesture snapshots, commands
// and preview frames for the game loop to consume.
package app

import (
	"image"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ayusman/handpong/internal/capture"
	"github.com/ayusman/handpong/internal/config"
	"github.com/ayusman/handpong/internal/detector"
	"github.com/ayusman/handpong/internal/gesture"
)

// Pipeline timing constants.
const (
	// IdleFPS is the frame rate while no motion is detected.
	IdleFPS = 5
	// IdleTimeout is how long motion must be absent before the pipeline
	// drops back to the idle frame rate.
	IdleTimeout = 2 * time.Second
	// PreviewEvery publishes a preview image every Nth captured frame.
	PreviewEvery = 3
	// fpsWindow bounds the timestamp buffer behind the FPS estimate.
	fpsWindow = 30
)

// Preview is a camera frame converted for on-screen display.
type Preview struct {
	Img image.Image
	At  time.Time
}

// App wires the capture pipeline together. Start spawns the pipeline
// goroutine; the smoother output is the interface to the game loop.
type App struct {
	cfg      *config.Config
	camera   capture.Camera
	motion   *capture.MotionDetector
	det      detector.Detector
	class    *gesture.Classifier
	smoother *gesture.Smoother

	preview atomic.Pointer[Preview]
	fps     fpsCounter

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// New builds the pipeline from configuration. MediaPipe detection is
// preferred; when the helper is unavailable the mock detector keeps the
// rest of the application usable (the AI plays both paddles).
func New(cfg *config.Config) *App {
	a := &App{
		cfg: cfg,
		camera: capture.NewCamera(capture.Options{
			DeviceID: cfg.Camera.DeviceID,
			Width:    cfg.Camera.Width,
			Height:   cfg.Camera.Height,
			FPS:      cfg.Camera.FPS,
		}),
		motion: capture.NewMotionDetector(cfg.Camera.MotionThreshold),
		class: gesture.NewClassifier(gesture.ClassifierConfig{
			FingerClosedRatio: cfg.Gesture.FingerClosedRatio,
			ThumbClosedRatio:  cfg.Gesture.ThumbClosedRatio,
			RequiredFingers:   cfg.Gesture.FistRequiredFingers,
			MinConfidence:     cfg.Detection.HandConfidence,
		}),
		smoother: gesture.NewSmoother(gesture.SmootherConfig{
			SmoothingFactor:  cfg.Gesture.SmoothingFactor,
			Deadzone:         cfg.Gesture.Deadzone,
			HistorySize:      cfg.Gesture.HistorySize,
			FistHold:         time.Duration(cfg.Gesture.FistHoldMs) * time.Millisecond,
			Cooldown:         time.Duration(cfg.Gesture.CooldownMs) * time.Millisecond,
			MissedFrameGrace: cfg.Gesture.MissedFrameGrace,
		}),
	}

	if mp, err := detector.NewMediaPipeDetector(detector.Config{
		MaxHands:        cfg.Detection.MaxHands,
		MinConfidence:   cfg.Detection.MinConfidence,
		MinTrackingConf: cfg.Detection.MinTrackingConf,
	}); err == nil {
		a.det = mp
		log.Println("using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.det = detector.NewMockDetector()
	}

	return a
}

// Start opens the camera and launches the pipeline goroutine. Starting a
// running pipeline is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}

	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(IdleFPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	log.Println("capture pipeline started")
	return nil
}

// Stop halts the pipeline and releases the camera, motion detector and
// hand detector. It waits for the pipeline goroutine to exit first so no
// resource is closed mid-frame.
func (a *App) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh == nil {
		return
	}
	close(a.stopCh)
	<-a.done
	a.stopCh = nil
	a.done = nil

	if err := a.camera.Close(); err != nil {
		log.Printf("error closing camera: %v", err)
	}
	a.motion.Close()
	if err := a.det.Close(); err != nil {
		log.Printf("error closing detector: %v", err)
	}

	log.Println("capture pipeline stopped")
}

// Running reports whether the pipeline is active.
func (a *App) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stopCh != nil
}

// Smoother returns the gesture smoother whose snapshots and commands
// drive the game.
func (a *App) Smoother() *gesture.Smoother {
	return a.smoother
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// SetCamera replaces the camera. Only valid before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// SetDetector replaces the hand detector. Only valid before Start.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.det = d
}

// Preview returns the most recent camera preview frame, or nil before
// the first one is published.
func (a *App) Preview() *Preview {
	return a.preview.Load()
}

// SetDebug toggles per-frame gesture diagnostics.
func (a *App) SetDebug(on bool) {
	a.smoother.SetDebug(on)
}

// Debug reports whether gesture diagnostics are enabled.
func (a *App) Debug() bool {
	return a.smoother.Debug()
}

// FPS returns the measured pipeline frame rate.
func (a *App) FPS() float64 {
	return a.fps.rate()
}

// fpsCounter estimates the processing rate from a bounded buffer of
// recent frame timestamps.
type fpsCounter struct {
	mu    sync.Mutex
	times []time.Time
}

func (f *fpsCounter) tick(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.times) >= fpsWindow {
		copy(f.times, f.times[1:])
		f.times = f.times[:len(f.times)-1]
	}
	f.times = append(f.times, now)
}

func (f *fpsCounter) rate() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.times) < 2 {
		return 0
	}
	span := f.times[len(f.times)-1].Sub(f.times[0]).Seconds()
	if span <= 0 {
		return 0
	}
	return float64(len(f.times)-1) / span
}
