// Package e2e exercises the full control chain with scripted input:
// landmark fixtures through the classifier, smoother and mapper into the
// engine, plus the debug server over HTTP.
package e2e

import (
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/handpong/internal/control"
	"github.com/ayusman/handpong/internal/detector"
	"github.com/ayusman/handpong/internal/game"
	"github.com/ayusman/handpong/internal/gesture"
	"github.com/ayusman/handpong/internal/server"
	"github.com/ayusman/handpong/internal/store"
)

type rig struct {
	classifier *gesture.Classifier
	smoother   *gesture.Smoother
	mapper     *control.Mapper
	engine     *game.Engine
	now        time.Time
}

func newRig() *rig {
	return &rig{
		classifier: gesture.NewClassifier(gesture.DefaultClassifierConfig()),
		smoother: gesture.NewSmoother(gesture.SmootherConfig{
			SmoothingFactor:  0.5,
			Deadzone:         0.005,
			HistorySize:      5,
			FistHold:         200 * time.Millisecond,
			Cooldown:         time.Second,
			MissedFrameGrace: 5,
		}),
		mapper: control.NewMapper(control.Config{
			CanvasHeight: 400,
			AITakeover:   time.Second,
			SpeedStep:    1,
		}),
		engine: game.New(game.Config{
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
			WinScore:         10,
		}, rand.New(rand.NewSource(1))),
		now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// frame pushes one camera frame's worth of hands through the chain. A
// hand's vertical position is overridden so scripts can move it.
func (r *rig) frame(t *testing.T, hands [2]*detector.HandLandmarks, ys [2]float64) {
	t.Helper()
	r.now = r.now.Add(50 * time.Millisecond)

	var obs [2]gesture.Observation
	for i, hand := range hands {
		if hand == nil {
			continue
		}
		label, metrics := r.classifier.Classify(hand)
		obs[i] = gesture.Observation{
			Present: true,
			RawY:    ys[i],
			Label:   label,
			Metrics: metrics,
		}
	}
	r.smoother.Update(r.now, obs)

	for {
		select {
		case cmd := <-r.smoother.Commands():
			r.mapper.HandleCommand(cmd, r.engine)
		default:
			r.mapper.Apply(r.now, r.smoother.Latest(), r.engine)
			return
		}
	}
}

func TestOpenPalmSteersPaddle(t *testing.T) {
	r := newRig()
	open := detector.OpenPalmHand()

	// Left hand tracks downward from 0.3 to 0.7.
	for i := 0; i < 20; i++ {
		y := 0.3 + 0.02*float64(i)
		r.frame(t, [2]*detector.HandLandmarks{&open, nil}, [2]float64{y, 0})
	}

	snap := r.engine.Snapshot()
	left := snap.Paddles[game.SideLeft]
	if left.Control != game.ControlHuman {
		t.Fatal("left paddle should be human controlled while a hand tracks")
	}

	smoothed := r.smoother.Latest().Sides[gesture.SideLeft].SmoothedY
	wantCenter := smoothed * 400
	if got := left.Y + left.Height/2; math.Abs(got-wantCenter) > 1e-9 {
		t.Errorf("paddle center = %f, want %f from smoothed position", got, wantCenter)
	}
	if smoothed < 0.5 {
		t.Errorf("smoothed position = %f, should have followed the hand down", smoothed)
	}

	if snap.Paddles[game.SideRight].Control != game.ControlAI {
		t.Error("right paddle should remain with the AI")
	}
}

func TestBothFistsPauseAndResume(t *testing.T) {
	r := newRig()
	fist := detector.FistHand()
	open := detector.OpenPalmHand()

	// Both fists held 400ms: one pause toggle.
	for i := 0; i < 8; i++ {
		r.frame(t, [2]*detector.HandLandmarks{&fist, &fist}, [2]float64{0.5, 0.5})
	}
	if r.engine.State() != game.StatePaused {
		t.Fatalf("state = %s, want paused after both fists", r.engine.State())
	}

	// Open hands past the cooldown, then fists again: resumes.
	for i := 0; i < 25; i++ {
		r.frame(t, [2]*detector.HandLandmarks{&open, &open}, [2]float64{0.5, 0.5})
	}
	if r.engine.State() != game.StatePaused {
		t.Fatal("open palms must not change the pause state")
	}
	for i := 0; i < 8; i++ {
		r.frame(t, [2]*detector.HandLandmarks{&fist, &fist}, [2]float64{0.5, 0.5})
	}
	if r.engine.State() != game.StateRunning {
		t.Fatalf("state = %s, want running after second both-fists", r.engine.State())
	}
}

func TestThumbGesturesAdjustSpeed(t *testing.T) {
	r := newRig()
	up := detector.ThumbsUpHand()
	down := detector.ThumbsDownHand()
	open := detector.OpenPalmHand()

	before := r.engine.Snapshot().Speed

	// A held thumbs up fires exactly once.
	for i := 0; i < 10; i++ {
		r.frame(t, [2]*detector.HandLandmarks{&up, nil}, [2]float64{0.5, 0})
	}
	if got := r.engine.Snapshot().Speed; math.Abs(got-(before+1)) > 1e-9 {
		t.Fatalf("speed = %f, want %f after thumbs up", got, before+1)
	}

	// Release, wait out the cooldown, thumbs down.
	for i := 0; i < 25; i++ {
		r.frame(t, [2]*detector.HandLandmarks{&open, nil}, [2]float64{0.5, 0})
	}
	for i := 0; i < 5; i++ {
		r.frame(t, [2]*detector.HandLandmarks{&down, nil}, [2]float64{0.5, 0})
	}
	if got := r.engine.Snapshot().Speed; math.Abs(got-before) > 1e-9 {
		t.Errorf("speed = %f, want back to %f after thumbs down", got, before)
	}
}

func TestLostHandRevertsToAI(t *testing.T) {
	r := newRig()
	open := detector.OpenPalmHand()

	for i := 0; i < 5; i++ {
		r.frame(t, [2]*detector.HandLandmarks{&open, nil}, [2]float64{0.5, 0})
	}
	if r.engine.Snapshot().Paddles[game.SideLeft].Control != game.ControlHuman {
		t.Fatal("setup: left paddle should be human controlled")
	}

	// Hand gone: grace first, then the AI takeover window.
	for i := 0; i < 40; i++ {
		r.frame(t, [2]*detector.HandLandmarks{nil, nil}, [2]float64{0, 0})
	}
	if r.engine.Snapshot().Paddles[game.SideLeft].Control != game.ControlAI {
		t.Error("left paddle should revert to AI after the hand stays lost")
	}
}

func TestDebugServerEndpoints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	st, err := store.New(filepath.Join(t.TempDir(), "data.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	r := newRig()
	srv := server.New(server.Config{Engine: r.engine, Store: st})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
	})

	t.Run("State", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/state")
		if err != nil {
			t.Fatalf("state error = %v", err)
		}
		defer resp.Body.Close()

		var snap game.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			t.Fatalf("decode state: %v", err)
		}
		if snap.State != game.StateRunning {
			t.Errorf("state = %s, want running", snap.State)
		}
	})

	t.Run("Matches", func(t *testing.T) {
		if err := st.Matches().Record(&store.Match{
			LeftScore: 10, RightScore: 8, Winner: "left", DurationMs: 120000,
		}); err != nil {
			t.Fatalf("record: %v", err)
		}

		resp, err := client.Get(ts.URL + "/api/matches")
		if err != nil {
			t.Fatalf("matches error = %v", err)
		}
		defer resp.Body.Close()

		var matches []*store.Match
		if err := json.NewDecoder(resp.Body).Decode(&matches); err != nil {
			t.Fatalf("decode matches: %v", err)
		}
		if len(matches) != 1 || matches[0].Winner != "left" {
			t.Errorf("matches = %+v, want the recorded match", matches)
		}
	})
}
