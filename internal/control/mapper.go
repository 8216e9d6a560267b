// Package control maps smoothed gesture state onto the game engine: hand
// positions become paddle targets, edge-triggered gesture commands become
// engine operations, and hands that stay lost hand their paddle back to
// the AI.
package control

import (
	"log"
	"time"

	"github.com/ayusman/handpong/internal/config"
	"github.com/ayusman/handpong/internal/game"
	"github.com/ayusman/handpong/internal/gesture"
)

// Config holds the mapper tunables.
type Config struct {
	CanvasHeight float64
	// AITakeover is how long a side must stay undetected before its paddle
	// reverts to AI control. Zero reverts immediately.
	AITakeover time.Duration
	// SpeedStep is the ball speed delta applied per thumbs up or down.
	SpeedStep float64
}

// FromConfig maps the application configuration onto mapper settings.
func FromConfig(c *config.Config) Config {
	return Config{
		CanvasHeight: float64(c.Canvas.Height),
		AITakeover:   time.Duration(c.Gesture.AITakeoverMs) * time.Millisecond,
		SpeedStep:    c.Ball.SpeedIncrement,
	}
}

// Mapper applies gesture snapshots and commands to an engine. It is not
// safe for concurrent use; the game loop owns it.
type Mapper struct {
	cfg      Config
	lastSeen [2]time.Time
	human    [2]bool
}

// NewMapper creates a mapper with both paddles assumed under AI control.
func NewMapper(cfg Config) *Mapper {
	return &Mapper{cfg: cfg}
}

// Apply pushes one gesture snapshot into the engine. Present hands take
// over their paddle and steer it; a hand lost for longer than the
// takeover window gives the paddle back to the AI. A nil snapshot only
// advances the takeover clock.
func (m *Mapper) Apply(now time.Time, snap *gesture.Snapshot, eng *game.Engine) {
	for i := 0; i < 2; i++ {
		side := game.Side(i)

		if snap != nil && snap.Sides[i].Present {
			if !m.human[i] {
				m.human[i] = true
				eng.SetControl(side, game.ControlHuman)
			}
			m.lastSeen[i] = now
			eng.SetPaddleCenter(side, snap.Sides[i].SmoothedY*m.cfg.CanvasHeight)
			continue
		}

		if m.human[i] && now.Sub(m.lastSeen[i]) >= m.cfg.AITakeover {
			m.human[i] = false
			eng.SetControl(side, game.ControlAI)
		}
	}
}

// HandleCommand executes one edge-triggered gesture command against the
// engine.
func (m *Mapper) HandleCommand(cmd gesture.Command, eng *game.Engine) {
	switch cmd.Kind {
	case gesture.PauseToggle:
		state := eng.TogglePause()
		log.Printf("pause toggle: %s", state)
	case gesture.SpeedUp:
		eng.AdjustBallSpeed(m.cfg.SpeedStep)
	case gesture.SpeedDown:
		eng.AdjustBallSpeed(-m.cfg.SpeedStep)
	default:
		log.Printf("unknown gesture command %d dropped", cmd.Kind)
	}
}
