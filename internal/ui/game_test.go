package ui

import (
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/ayusman/handpong/internal/app"
	"github.com/ayusman/handpong/internal/config"
	"github.com/ayusman/handpong/internal/game"
	"github.com/ayusman/handpong/internal/store"
)

func TestNewFontSet(t *testing.T) {
	fonts, err := newFontSet()
	if err != nil {
		t.Fatalf("newFontSet: %v", err)
	}
	if fonts.score == nil || fonts.title == nil || fonts.small == nil {
		t.Error("all faces should be loaded")
	}
}

// runawayEngine returns an engine whose paddles sit off-canvas, so every
// serve scores and the session finishes after one point.
func runawayEngine() *game.Engine {
	return game.New(game.Config{
		CanvasWidth:      600,
		CanvasHeight:     400,
		BallRadius:       8,
		BallInitialSpeed: 5,
		BallMinSpeed:     2,
		BallMaxSpeed:     12,
		HitSpeedUp:       1.05,
		PaddleWidth:      10,
		PaddleHeight:     80,
		PaddleInset:      -100,
		WinScore:         1,
	}, rand.New(rand.NewSource(7)))
}

func finish(t *testing.T, eng *game.Engine) {
	t.Helper()
	for i := 0; i < 1000 && eng.State() != game.StateGameOver; i++ {
		eng.Tick()
	}
	if eng.State() != game.StateGameOver {
		t.Fatal("engine never reached game over")
	}
}

func TestMatchRecordedOnceOnGameOver(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	defer st.Close()

	cfg := config.Default()
	eng := runawayEngine()
	g, err := NewGame(cfg, eng, app.New(cfg), st)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	finish(t, eng)

	g.maybeRecordMatch()
	g.maybeRecordMatch() // second call must not duplicate

	matches, err := st.Matches().Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("got %d recorded matches, want 1", len(matches))
	}
	winner, _ := eng.Winner()
	if matches[0].Winner != winner.String() {
		t.Errorf("recorded winner = %s, want %s", matches[0].Winner, winner)
	}
}

func TestNilStoreSkipsRecording(t *testing.T) {
	cfg := config.Default()
	eng := runawayEngine()
	g, err := NewGame(cfg, eng, app.New(cfg), nil)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	finish(t, eng)
	g.maybeRecordMatch() // must not panic
}

func TestScoreFlashArmsOnScoreChange(t *testing.T) {
	cfg := config.Default()
	eng := runawayEngine()
	g, err := NewGame(cfg, eng, app.New(cfg), nil)
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}

	g.updateScoreFlash()
	if g.flash[0] != nil || g.flash[1] != nil {
		t.Fatal("no flash expected before any score")
	}

	finish(t, eng)
	g.updateScoreFlash()
	if g.flash[0] == nil && g.flash[1] == nil {
		t.Error("a score change should arm the flash tween")
	}
}
