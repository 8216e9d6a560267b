package game

import (
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/ayusman/handpong/internal/config"
)

// State is the session state machine.
type State string

const (
	StateRunning  State = "running"
	StatePaused   State = "paused"
	StateGameOver State = "game_over"
)

// Config holds the engine's physics and rule settings.
type Config struct {
	CanvasWidth  float64
	CanvasHeight float64

	BallRadius       float64
	BallInitialSpeed float64
	BallMinSpeed     float64
	BallMaxSpeed     float64
	// HitSpeedUp multiplies the ball speed on every paddle hit.
	HitSpeedUp float64

	PaddleWidth  float64
	PaddleHeight float64
	PaddleInset  float64

	AIDifficulty  float64
	AISpeed       float64
	AIErrorMargin float64

	WinScore int
	// ServeConceder serves toward the side that just conceded instead of
	// picking a random direction.
	ServeConceder bool
}

// FromConfig maps the application configuration onto engine settings.
func FromConfig(c *config.Config) Config {
	return Config{
		CanvasWidth:      float64(c.Canvas.Width),
		CanvasHeight:     float64(c.Canvas.Height),
		BallRadius:       c.Ball.Radius,
		BallInitialSpeed: c.Ball.InitialSpeed,
		BallMinSpeed:     c.Ball.MinSpeed,
		BallMaxSpeed:     c.Ball.MaxSpeed,
		HitSpeedUp:       c.Ball.HitSpeedUp,
		PaddleWidth:      c.Paddle.Width,
		PaddleHeight:     c.Paddle.Height,
		PaddleInset:      c.Paddle.Inset,
		AIDifficulty:     c.AI.Difficulty,
		AISpeed:          c.AI.Speed,
		AIErrorMargin:    c.AI.ErrorMargin,
		WinScore:         c.Game.WinScore,
		ServeConceder:    c.Ball.ServeDirection == config.ServeConceder,
	}
}

// Snapshot is an immutable copy of the engine state for rendering and the
// diagnostics server.
type Snapshot struct {
	Ball    Ball      `json:"ball"`
	Paddles [2]Paddle `json:"paddles"`
	Score   [2]int    `json:"score"`
	State   State     `json:"state"`
	Winner  string    `json:"winner,omitempty"`
	Speed   float64   `json:"speed"`
}

// Engine owns the simulation. All methods are safe for concurrent use;
// in practice the game loop ticks it and the debug server reads
// snapshots.
type Engine struct {
	mu        sync.Mutex
	cfg       Config
	rng       *rand.Rand
	ball      Ball
	paddles   [2]Paddle
	score     [2]int
	state     State
	winner    Side
	hasWinner bool
}

// New creates an engine in the running state with both paddles under AI
// control and the ball served from center. A nil rng seeds from the
// clock; tests inject a seeded source for reproducible serves.
func New(cfg Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	e := &Engine{
		cfg:   cfg,
		rng:   rng,
		state: StateRunning,
	}

	e.ball.Radius = cfg.BallRadius
	centerY := (cfg.CanvasHeight - cfg.PaddleHeight) / 2
	e.paddles[SideLeft] = Paddle{
		X:       cfg.PaddleInset,
		Y:       centerY,
		Width:   cfg.PaddleWidth,
		Height:  cfg.PaddleHeight,
		Control: ControlAI,
	}
	e.paddles[SideRight] = Paddle{
		X:       cfg.CanvasWidth - cfg.PaddleInset - cfg.PaddleWidth,
		Y:       centerY,
		Width:   cfg.PaddleWidth,
		Height:  cfg.PaddleHeight,
		Control: ControlAI,
	}

	e.serve(SideLeft, false)
	return e
}

// Tick advances the simulation by one step. Paused and finished sessions
// do not move.
func (e *Engine) Tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateRunning {
		return
	}

	for i := range e.paddles {
		p := &e.paddles[i]
		if p.Control != ControlAI {
			continue
		}
		// The AI reacts probabilistically: skipped ticks model reaction
		// lag, the error margin models imprecise targeting.
		if e.rng.Float64() < e.cfg.AIDifficulty {
			p.MoveToward(e.ball.Y, e.cfg.AISpeed, e.cfg.AIErrorMargin, e.cfg.CanvasHeight)
		}
	}

	e.ball.Step()
	e.bounceWalls()
	e.bouncePaddles()
	e.checkScore()
}

func (e *Engine) bounceWalls() {
	b := &e.ball
	switch {
	case b.Y <= b.Radius:
		b.Y = b.Radius
		b.DY = -b.DY
	case b.Y >= e.cfg.CanvasHeight-b.Radius:
		b.Y = e.cfg.CanvasHeight - b.Radius
		b.DY = -b.DY
	}
}

func (e *Engine) bouncePaddles() {
	b := &e.ball
	left := &e.paddles[SideLeft]
	right := &e.paddles[SideRight]

	if b.DX < 0 &&
		b.X-b.Radius <= left.X+left.Width && b.X >= left.X &&
		b.Y >= left.Y && b.Y <= left.Y+left.Height {
		b.X = left.X + left.Width + b.Radius
		e.reflect(left, SideLeft)
	}

	if b.DX > 0 &&
		b.X+b.Radius >= right.X && b.X <= right.X+right.Width &&
		b.Y >= right.Y && b.Y <= right.Y+right.Height {
		b.X = right.X - b.Radius
		e.reflect(right, SideRight)
	}
}

// reflect sends the ball back with an exit angle proportional to where it
// struck along the paddle: center hits leave near-horizontal, edge hits
// leave at up to 45 degrees.
func (e *Engine) reflect(p *Paddle, side Side) {
	b := &e.ball

	hit := (b.Y - p.Y) / p.Height // 0 at top edge, 1 at bottom edge
	angle := (hit - 0.5) * math.Pi / 2

	speed := math.Min(b.Speed()*e.cfg.HitSpeedUp, e.cfg.BallMaxSpeed)

	dx := math.Abs(speed * math.Cos(angle))
	if side == SideRight {
		dx = -dx
	}
	b.DX = dx
	b.DY = speed * math.Sin(angle)
}

func (e *Engine) checkScore() {
	switch {
	case e.ball.X < 0:
		e.scorePoint(SideRight)
	case e.ball.X > e.cfg.CanvasWidth:
		e.scorePoint(SideLeft)
	}
}

func (e *Engine) scorePoint(scorer Side) {
	e.score[scorer]++
	log.Printf("%s scores, %d - %d", scorer, e.score[SideLeft], e.score[SideRight])

	if e.score[scorer] >= e.cfg.WinScore {
		e.state = StateGameOver
		e.winner = scorer
		e.hasWinner = true
		log.Printf("game over, %s wins", scorer)
		return
	}

	e.serve(scorer.Opponent(), true)
}

// serve resets the ball to center with a fresh velocity at the initial
// speed. The angle is uniform in [-45, +45] degrees; the horizontal
// direction is random unless conceder serves are configured.
func (e *Engine) serve(conceder Side, scored bool) {
	b := &e.ball
	b.X = e.cfg.CanvasWidth / 2
	b.Y = e.cfg.CanvasHeight / 2

	angle := (e.rng.Float64() - 0.5) * math.Pi / 2

	dir := 1.0
	if e.cfg.ServeConceder && scored {
		if conceder == SideLeft {
			dir = -1.0
		}
	} else if e.rng.Float64() < 0.5 {
		dir = -1.0
	}

	b.DX = e.cfg.BallInitialSpeed * math.Cos(angle) * dir
	b.DY = e.cfg.BallInitialSpeed * math.Sin(angle)
}

// SetPaddleCenter moves a paddle's center to y in canvas coordinates,
// clamped so the paddle stays on the canvas. No-op while the session is
// over.
func (e *Engine) SetPaddleCenter(side Side, y float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state == StateGameOver {
		return
	}
	e.paddles[side].SetCenterY(y, e.cfg.CanvasHeight)
}

// SetControl assigns control of a paddle to the human player or the AI.
func (e *Engine) SetControl(side Side, src ControlSource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paddles[side].Control != src {
		log.Printf("%s paddle control: %s", side, src)
	}
	e.paddles[side].Control = src
}

// TogglePause flips between running and paused and returns the new
// state. A finished session stays finished.
func (e *Engine) TogglePause() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case StateRunning:
		e.state = StatePaused
	case StatePaused:
		e.state = StateRunning
	}
	return e.state
}

// AdjustBallSpeed changes the ball speed by delta, clamped to the
// configured range. Ignored once the session is over.
func (e *Engine) AdjustBallSpeed(delta float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateGameOver {
		return
	}

	speed := e.ball.Speed() + delta
	if speed < e.cfg.BallMinSpeed {
		speed = e.cfg.BallMinSpeed
	}
	if speed > e.cfg.BallMaxSpeed {
		speed = e.cfg.BallMaxSpeed
	}
	e.ball.SetSpeed(speed)
}

// Reset starts a fresh session: scores cleared, paddles centered, ball
// served, state running. Control sources are preserved.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.score = [2]int{}
	e.state = StateRunning
	e.hasWinner = false

	centerY := (e.cfg.CanvasHeight - e.cfg.PaddleHeight) / 2
	for i := range e.paddles {
		e.paddles[i].Y = centerY
	}
	e.serve(SideLeft, false)
}

// State returns the current session state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Score returns the current score as left, right.
func (e *Engine) Score() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score[SideLeft], e.score[SideRight]
}

// Winner returns the winning side once the session is over.
func (e *Engine) Winner() (Side, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.winner, e.hasWinner
}

// Snapshot returns a copy of the complete engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := Snapshot{
		Ball:    e.ball,
		Paddles: e.paddles,
		Score:   e.score,
		State:   e.state,
		Speed:   e.ball.Speed(),
	}
	if e.hasWinner {
		snap.Winner = e.winner.String()
	}
	return snap
}
