package game

import (
	"math"
	"math/rand"
	"testing"
)

func testEngineConfig() Config {
	return Config{
		CanvasWidth:      600,
		CanvasHeight:     400,
		BallRadius:       8,
		BallInitialSpeed: 5,
		BallMinSpeed:     2,
		BallMaxSpeed:     12,
		HitSpeedUp:       1.05,
		PaddleWidth:      10,
		PaddleHeight:     80,
		PaddleInset:      10,
		AIDifficulty:     0, // deterministic: AI never moves unless a test raises it
		AISpeed:          4,
		AIErrorMargin:    20,
		WinScore:         10,
	}
}

func newTestEngine(cfg Config) *Engine {
	return New(cfg, rand.New(rand.NewSource(1)))
}

func TestWallBounce(t *testing.T) {
	e := newTestEngine(testEngineConfig())

	e.ball = Ball{X: 300, Y: 10, DX: 0, DY: -5, Radius: 8}
	e.Tick()

	if e.ball.DY != 5 {
		t.Errorf("DY after top wall bounce = %f, want 5", e.ball.DY)
	}
	if e.ball.Y != 8 {
		t.Errorf("Y after top wall bounce = %f, want clamped to radius 8", e.ball.Y)
	}

	e.ball = Ball{X: 300, Y: 390, DX: 0, DY: 5, Radius: 8}
	e.Tick()

	if e.ball.DY != -5 {
		t.Errorf("DY after bottom wall bounce = %f, want -5", e.ball.DY)
	}
}

func TestPaddleBounceAngle(t *testing.T) {
	e := newTestEngine(testEngineConfig())
	p := &e.paddles[SideLeft]
	p.Y = 160 // center at 200

	// Center hit: near-zero vertical deflection.
	e.ball = Ball{X: 30, Y: 200, DX: -5, DY: 0, Radius: 8}
	e.reflect(p, SideLeft)
	if math.Abs(e.ball.DY) > 1e-9 {
		t.Errorf("center hit DY = %f, want 0", e.ball.DY)
	}
	if e.ball.DX <= 0 {
		t.Errorf("left paddle must send the ball right, DX = %f", e.ball.DX)
	}

	// Deflection grows monotonically with hit offset.
	prev := -1.0
	for _, offset := range []float64{0, 8, 16, 24, 32, 39} {
		e.ball = Ball{X: 30, Y: 200 + offset, DX: -5, DY: 0, Radius: 8}
		e.reflect(p, SideLeft)
		dy := math.Abs(e.ball.DY)
		if dy <= prev {
			t.Errorf("offset %g: |DY| = %f, want > %f (monotonic in hit offset)", offset, dy, prev)
		}
		prev = dy
	}
}

func TestPaddleCollisionThroughTick(t *testing.T) {
	e := newTestEngine(testEngineConfig())
	e.paddles[SideLeft].Y = 160

	// Ball heading left into the paddle face.
	e.ball = Ball{X: 30, Y: 200, DX: -5, DY: 0, Radius: 8}
	e.Tick()

	if e.ball.DX <= 0 {
		t.Fatalf("ball should reflect off the left paddle, DX = %f", e.ball.DX)
	}
	if e.ball.X < e.paddles[SideLeft].X+e.paddles[SideLeft].Width {
		t.Errorf("ball at %f should be repositioned clear of the paddle", e.ball.X)
	}
}

func TestHitSpeedUpCapped(t *testing.T) {
	cfg := testEngineConfig()
	cfg.HitSpeedUp = 10 // absurd multiplier to hit the cap in one bounce
	e := newTestEngine(cfg)
	p := &e.paddles[SideLeft]
	p.Y = 160

	e.ball = Ball{X: 30, Y: 200, DX: -5, DY: 0, Radius: 8}
	e.reflect(p, SideLeft)

	if got := e.ball.Speed(); math.Abs(got-cfg.BallMaxSpeed) > 1e-9 {
		t.Errorf("speed after boosted bounce = %f, want capped at %f", got, cfg.BallMaxSpeed)
	}
}

func TestAdjustBallSpeedClamped(t *testing.T) {
	e := newTestEngine(testEngineConfig())

	for i := 0; i < 20; i++ {
		e.AdjustBallSpeed(1)
	}
	if got := e.Snapshot().Speed; got > 12+1e-9 {
		t.Errorf("speed after repeated increases = %f, want <= 12", got)
	}

	for i := 0; i < 20; i++ {
		e.AdjustBallSpeed(-1)
	}
	if got := e.Snapshot().Speed; got < 2-1e-9 {
		t.Errorf("speed after repeated decreases = %f, want >= 2", got)
	}
}

func TestScoringResetsBallAndKeepsRunning(t *testing.T) {
	e := newTestEngine(testEngineConfig())

	// Right paddle parked at the top, ball sailing through its lane.
	e.paddles[SideRight].Y = 0
	e.ball = Ball{X: 300, Y: 200, DX: 5, DY: 0, Radius: 8}

	for i := 0; i < 200 && e.score[SideLeft] == 0; i++ {
		e.Tick()
	}

	left, right := e.Score()
	if left != 1 || right != 0 {
		t.Fatalf("score = %d-%d, want 1-0 after right side misses", left, right)
	}
	if e.State() != StateRunning {
		t.Errorf("state = %s, want running below the win threshold", e.State())
	}

	snap := e.Snapshot()
	if snap.Ball.X != 300 || snap.Ball.Y != 200 {
		t.Errorf("ball at (%f, %f), want reset to center (300, 200)", snap.Ball.X, snap.Ball.Y)
	}
	if math.Abs(snap.Ball.Speed()-5) > 1e-9 {
		t.Errorf("serve speed = %f, want initial speed 5", snap.Ball.Speed())
	}
}

func TestWinThresholdEndsSession(t *testing.T) {
	cfg := testEngineConfig()
	cfg.WinScore = 1
	e := newTestEngine(cfg)

	e.paddles[SideRight].Y = 0
	e.ball = Ball{X: 300, Y: 200, DX: 5, DY: 0, Radius: 8}

	for i := 0; i < 200 && e.State() == StateRunning; i++ {
		e.Tick()
	}

	if e.State() != StateGameOver {
		t.Fatalf("state = %s, want game_over at win threshold", e.State())
	}
	winner, ok := e.Winner()
	if !ok || winner != SideLeft {
		t.Errorf("winner = %s (%t), want left", winner, ok)
	}

	// A finished session is frozen: ticks change nothing.
	before := e.Snapshot()
	for i := 0; i < 10; i++ {
		e.Tick()
	}
	after := e.Snapshot()
	if before.Ball != after.Ball {
		t.Error("ball moved after game over")
	}

	// Pause and speed commands are ignored in the terminal state.
	if st := e.TogglePause(); st != StateGameOver {
		t.Errorf("TogglePause in game over = %s, want game_over", st)
	}
	e.AdjustBallSpeed(5)
	if got := e.Snapshot().Speed; got != before.Speed {
		t.Error("speed command should be ignored after game over")
	}
}

func TestPauseSkipsPhysics(t *testing.T) {
	e := newTestEngine(testEngineConfig())
	e.ball = Ball{X: 300, Y: 200, DX: 5, DY: 3, Radius: 8}

	if st := e.TogglePause(); st != StatePaused {
		t.Fatalf("state after pause = %s, want paused", st)
	}

	e.Tick()
	if snap := e.Snapshot(); snap.Ball.X != 300 || snap.Ball.Y != 200 {
		t.Error("ball moved while paused")
	}

	if st := e.TogglePause(); st != StateRunning {
		t.Fatalf("state after resume = %s, want running", st)
	}
	e.Tick()
	if snap := e.Snapshot(); snap.Ball.X == 300 && snap.Ball.Y == 200 {
		t.Error("ball should move after resume")
	}
}

func TestSeededServeIsDeterministic(t *testing.T) {
	cfg := testEngineConfig()
	a := New(cfg, rand.New(rand.NewSource(42)))
	b := New(cfg, rand.New(rand.NewSource(42)))

	sa, sb := a.Snapshot(), b.Snapshot()
	if sa.Ball != sb.Ball {
		t.Errorf("identical seeds produced different serves: %+v vs %+v", sa.Ball, sb.Ball)
	}
}

func TestConcederServeDirection(t *testing.T) {
	cfg := testEngineConfig()
	cfg.ServeConceder = true
	e := newTestEngine(cfg)

	// Left side concedes: the serve heads back toward the left.
	e.ball.X = -1
	e.checkScore()
	if e.ball.DX >= 0 {
		t.Errorf("serve DX = %f, want negative toward the conceding left side", e.ball.DX)
	}

	// Right side concedes: serve heads right.
	e.ball.X = cfg.CanvasWidth + 1
	e.checkScore()
	if e.ball.DX <= 0 {
		t.Errorf("serve DX = %f, want positive toward the conceding right side", e.ball.DX)
	}
}

func TestSetPaddleCenterClamps(t *testing.T) {
	e := newTestEngine(testEngineConfig())

	e.SetPaddleCenter(SideLeft, 0)
	if y := e.Snapshot().Paddles[SideLeft].Y; y != 0 {
		t.Errorf("paddle Y = %f, want clamped to 0", y)
	}

	e.SetPaddleCenter(SideLeft, 400)
	if y := e.Snapshot().Paddles[SideLeft].Y; y != 320 {
		t.Errorf("paddle Y = %f, want clamped to 320", y)
	}
}

func TestAIMovesTowardBall(t *testing.T) {
	cfg := testEngineConfig()
	cfg.AIDifficulty = 1 // always reacts
	e := newTestEngine(cfg)

	e.ball = Ball{X: 300, Y: 380, DX: 0, DY: 0, Radius: 8}
	startY := e.paddles[SideLeft].Y
	e.Tick()

	if got := e.paddles[SideLeft].Y; got != startY+cfg.AISpeed {
		t.Errorf("AI paddle Y = %f, want %f (moved down by AI speed)", got, startY+cfg.AISpeed)
	}
}

func TestHumanPaddleIgnoredByAI(t *testing.T) {
	cfg := testEngineConfig()
	cfg.AIDifficulty = 1
	e := newTestEngine(cfg)
	e.SetControl(SideLeft, ControlHuman)

	e.ball = Ball{X: 300, Y: 380, DX: 0, DY: 0, Radius: 8}
	startY := e.paddles[SideLeft].Y
	e.Tick()

	if got := e.paddles[SideLeft].Y; got != startY {
		t.Errorf("human paddle moved by AI policy: Y = %f, want %f", got, startY)
	}
}

func TestReset(t *testing.T) {
	cfg := testEngineConfig()
	cfg.WinScore = 1
	e := newTestEngine(cfg)

	e.paddles[SideRight].Y = 0
	e.ball = Ball{X: 300, Y: 200, DX: 5, DY: 0, Radius: 8}
	for i := 0; i < 200 && e.State() == StateRunning; i++ {
		e.Tick()
	}
	if e.State() != StateGameOver {
		t.Fatal("setup: expected game over")
	}

	e.Reset()

	if e.State() != StateRunning {
		t.Errorf("state after reset = %s, want running", e.State())
	}
	left, right := e.Score()
	if left != 0 || right != 0 {
		t.Errorf("score after reset = %d-%d, want 0-0", left, right)
	}
	if _, ok := e.Winner(); ok {
		t.Error("winner should be cleared after reset")
	}
}
