package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/handpong/internal/detector"
	"github.com/ayusman/handpong/internal/gesture"
)

// run is the capture pipeline loop. Each tick it reads a frame, mirrors
// it, gates on motion, detects hands every Nth frame and feeds the
// smoother. Camera or detector failures degrade to no-hands
// observations so the smoother's grace period and the mapper's AI
// takeover handle the outage; the loop itself never dies.
func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	activeFPS := a.cfg.Camera.FPS
	frameSkip := a.cfg.Camera.FrameSkip

	activeMode := false
	lastMotion := time.Now()
	frameCount := 0

	interval := time.Second / time.Duration(IdleFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			now := time.Now()

			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("error reading frame: %v", err)
				a.smoother.Update(now, [2]gesture.Observation{})
				continue
			}

			// Mirror so on-screen movement matches the player's.
			gocv.Flip(*frame, frame, 1)

			a.fps.tick(now)
			frameCount++

			motion, _ := a.motion.Detect(frame)
			if motion {
				lastMotion = now
				if !activeMode {
					activeMode = true
					a.camera.SetFPS(activeFPS)
					interval = time.Second / time.Duration(activeFPS)
					ticker.Reset(interval)
					log.Println("pipeline active")
				}
			} else if activeMode && now.Sub(lastMotion) > IdleTimeout {
				activeMode = false
				a.camera.SetFPS(IdleFPS)
				interval = time.Second / time.Duration(IdleFPS)
				ticker.Reset(interval)
				log.Println("pipeline idle")
			}

			if frameCount%PreviewEvery == 0 {
				a.publishPreview(frame, now)
			}

			if !activeMode {
				frame.Close()
				a.smoother.Update(now, [2]gesture.Observation{})
				continue
			}

			// Detection runs on every Nth active frame; skipped frames
			// leave the smoother state untouched.
			if frameCount%frameSkip != 0 {
				frame.Close()
				continue
			}

			hands, err := a.det.Detect(frame)
			frame.Close()
			if err != nil {
				log.Printf("error detecting hands: %v", err)
				a.smoother.Update(now, [2]gesture.Observation{})
				continue
			}

			a.smoother.Update(now, a.observe(hands))
		}
	}
}

// observe classifies each detected hand and assigns it to a screen half.
// The frame is already mirrored, so a hand on the left half of the image
// controls the left paddle. A malformed hand is skipped rather than
// failing the frame; when two hands land on the same half the higher
// scoring one wins.
func (a *App) observe(hands []detector.HandLandmarks) [2]gesture.Observation {
	var obs [2]gesture.Observation
	var scores [2]float64

	for i := range hands {
		hand := &hands[i]
		if !hand.Valid() || hand.Score < a.cfg.Detection.HandConfidence {
			continue
		}

		center := hand.PalmCenter()
		side := gesture.SideRight
		if center.X < 0.5 {
			side = gesture.SideLeft
		}
		if obs[side].Present && scores[side] >= hand.Score {
			continue
		}

		label, metrics := a.class.Classify(hand)
		obs[side] = gesture.Observation{
			Present: true,
			RawY:    center.Y,
			Label:   label,
			Metrics: metrics,
		}
		scores[side] = hand.Score
	}

	return obs
}

func (a *App) publishPreview(frame *gocv.Mat, now time.Time) {
	img, err := frame.ToImage()
	if err != nil {
		log.Printf("error converting preview frame: %v", err)
		return
	}
	a.preview.Store(&Preview{Img: img, At: now})
}
