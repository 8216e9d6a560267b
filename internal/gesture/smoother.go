package gesture

import (
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Side identifies which half of the mirrored camera frame a hand controls.
type Side int

const (
	SideLeft Side = iota
	SideRight

	numSides = 2
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// CommandKind enumerates the discrete game commands a gesture can fire.
type CommandKind int

const (
	PauseToggle CommandKind = iota
	SpeedUp
	SpeedDown

	numCommandKinds = 3
)

func (k CommandKind) String() string {
	switch k {
	case PauseToggle:
		return "pause_toggle"
	case SpeedUp:
		return "speed_up"
	case SpeedDown:
		return "speed_down"
	default:
		return "unknown"
	}
}

// Command is an edge-triggered game command emitted by the smoother.
type Command struct {
	Kind CommandKind
	At   time.Time
}

// Observation is one side's per-frame input to the smoother.
type Observation struct {
	Present bool
	// RawY is the hand's normalized vertical position in [0,1].
	RawY    float64
	Label   Label
	Metrics Metrics
}

// SideState is the published, immutable view of one side after an update.
type SideState struct {
	Present       bool    `json:"present"`
	SmoothedY     float64 `json:"smoothed_y"`
	Label         Label   `json:"label"`
	LabelFrames   int     `json:"label_frames"`
	FistConfirmed bool    `json:"fist_confirmed"`
	Metrics       Metrics `json:"metrics"`
}

// Snapshot is the atomically swapped output of one smoother update. The
// capture loop writes a fresh one each processed frame; the game loop
// reads whichever is latest without locking.
type Snapshot struct {
	Seq   uint64              `json:"seq"`
	At    time.Time           `json:"at"`
	Sides [numSides]SideState `json:"sides"`
}

// SmootherConfig holds the temporal tunables.
type SmootherConfig struct {
	// SmoothingFactor is the exponential smoothing alpha in (0,1].
	SmoothingFactor float64
	// Deadzone is the minimum smoothed-position change that registers;
	// smaller movements hold the previous position.
	Deadzone float64
	// HistorySize bounds the raw position history per side.
	HistorySize int
	// FistHold is how long a fist must persist before it is confirmed.
	FistHold time.Duration
	// Cooldown is the minimum gap between repeated commands of one kind.
	Cooldown time.Duration
	// MissedFrameGrace is how many consecutive undetected frames a side
	// survives before it is reported lost.
	MissedFrameGrace int
}

// DefaultSmootherConfig returns the temporal defaults.
func DefaultSmootherConfig() SmootherConfig {
	return SmootherConfig{
		SmoothingFactor:  0.5,
		Deadzone:         0.008,
		HistorySize:      5,
		FistHold:         250 * time.Millisecond,
		Cooldown:         time.Second,
		MissedFrameGrace: 5,
	}
}

// track is the mutable per-side state, owned exclusively by the update
// goroutine.
type track struct {
	history     []float64
	smoothed    float64
	hasPosition bool
	present     bool
	missed      int
	label       Label
	labelSince  time.Time
	labelFrames int
	metrics     Metrics
}

// Smoother maintains per-side temporal state across frames and converts
// noisy per-frame classifications into debounced positions and
// cooldown-gated commands. The capture pipeline calls Update; Latest,
// Commands and Reset are safe from any goroutine.
type Smoother struct {
	cfg SmootherConfig

	// mu guards the temporal state below. Update owns it for the length
	// of a frame; Reset takes it from the game loop between sessions.
	mu        sync.Mutex
	tracks    [numSides]track
	bothFists bool
	lastFired [numCommandKinds]time.Time
	seq       uint64

	snapshot atomic.Pointer[Snapshot]
	commands chan Command
	debug    atomic.Bool
}

// NewSmoother creates a Smoother with the given configuration.
func NewSmoother(cfg SmootherConfig) *Smoother {
	if cfg.SmoothingFactor <= 0 || cfg.SmoothingFactor > 1 {
		cfg.SmoothingFactor = 0.5
	}
	if cfg.HistorySize < 1 {
		cfg.HistorySize = 1
	}
	if cfg.Deadzone < 0 {
		cfg.Deadzone = 0
	}
	return &Smoother{
		cfg:      cfg,
		commands: make(chan Command, 16),
	}
}

// Update processes one frame's observations for both sides and publishes
// a new snapshot. The capture pipeline is its only caller.
func (s *Smoother) Update(now time.Time, obs [numSides]Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tracks {
		s.updateSide(&s.tracks[i], obs[i], now)
	}

	s.emitCommands(now)

	s.seq++
	snap := &Snapshot{
		Seq: s.seq,
		At:  now,
	}
	for i := range s.tracks {
		snap.Sides[i] = s.sideState(&s.tracks[i], now)
	}
	s.snapshot.Store(snap)

	if s.debug.Load() {
		s.logDiagnostics(snap)
	}
}

func (s *Smoother) updateSide(tr *track, o Observation, now time.Time) {
	if !o.Present {
		// The hand vanished this frame: the gesture streak is broken
		// immediately, but the side keeps its last position and stays
		// present for a short grace period so a single dropped
		// detection does not bounce the paddle to AI control.
		tr.label = Unknown
		tr.labelFrames = 0
		if tr.present {
			tr.missed++
			if tr.missed > s.cfg.MissedFrameGrace {
				tr.present = false
			}
		}
		return
	}

	tr.present = true
	tr.missed = 0
	tr.metrics = o.Metrics

	if len(tr.history) >= s.cfg.HistorySize {
		copy(tr.history, tr.history[1:])
		tr.history = tr.history[:len(tr.history)-1]
	}
	tr.history = append(tr.history, o.RawY)

	if !tr.hasPosition {
		tr.smoothed = o.RawY
		tr.hasPosition = true
	} else {
		next := s.cfg.SmoothingFactor*o.RawY + (1-s.cfg.SmoothingFactor)*tr.smoothed
		// Micro-jitter inside the deadzone holds the previous position.
		if math.Abs(next-tr.smoothed) >= s.cfg.Deadzone {
			tr.smoothed = next
		}
	}

	if o.Label == tr.label {
		tr.labelFrames++
	} else {
		tr.label = o.Label
		tr.labelFrames = 1
		tr.labelSince = now
	}
}

func (s *Smoother) sideState(tr *track, now time.Time) SideState {
	return SideState{
		Present:       tr.present,
		SmoothedY:     tr.smoothed,
		Label:         tr.label,
		LabelFrames:   tr.labelFrames,
		FistConfirmed: s.fistConfirmed(tr, now),
		Metrics:       tr.metrics,
	}
}

func (s *Smoother) fistConfirmed(tr *track, now time.Time) bool {
	return tr.present && tr.label == Fist && tr.labelFrames > 0 &&
		now.Sub(tr.labelSince) >= s.cfg.FistHold
}

// emitCommands fires edge-triggered commands: pause on the rising edge of
// both hands holding confirmed fists, speed changes on a hand entering a
// thumbs pose. Each command kind has its own cooldown; a gesture held
// through a blocked edge stays silent until released and re-triggered.
func (s *Smoother) emitCommands(now time.Time) {
	both := s.fistConfirmed(&s.tracks[SideLeft], now) && s.fistConfirmed(&s.tracks[SideRight], now)
	if both && !s.bothFists {
		s.tryEmit(PauseToggle, now)
	}
	s.bothFists = both

	for i := range s.tracks {
		tr := &s.tracks[i]
		if !tr.present || tr.labelFrames != 1 {
			continue
		}
		switch tr.label {
		case ThumbsUp:
			s.tryEmit(SpeedUp, now)
		case ThumbsDown:
			s.tryEmit(SpeedDown, now)
		}
	}
}

func (s *Smoother) tryEmit(kind CommandKind, now time.Time) {
	last := s.lastFired[kind]
	if !last.IsZero() && now.Sub(last) < s.cfg.Cooldown {
		return
	}
	select {
	case s.commands <- Command{Kind: kind, At: now}:
		s.lastFired[kind] = now
		log.Printf("gesture command: %s", kind)
	default:
		// Consumer stalled; dropping is safer than blocking capture.
		log.Printf("gesture command dropped: %s", kind)
	}
}

// Latest returns the most recently published snapshot, or nil before the
// first update.
func (s *Smoother) Latest() *Snapshot {
	return s.snapshot.Load()
}

// Commands returns the channel of edge-triggered game commands.
func (s *Smoother) Commands() <-chan Command {
	return s.commands
}

// Reset clears all temporal state, typically between game sessions. It
// may be called from the game loop while the capture pipeline is live.
// Pending unconsumed commands are discarded.
func (s *Smoother) Reset() {
	s.mu.Lock()
	for i := range s.tracks {
		s.tracks[i] = track{}
	}
	s.bothFists = false
	s.lastFired = [numCommandKinds]time.Time{}
	s.snapshot.Store(nil)
	s.mu.Unlock()

	for {
		select {
		case <-s.commands:
		default:
			return
		}
	}
}

// SetDebug toggles per-frame diagnostic logging of extension ratios,
// closed-finger flags and confirmed gestures.
func (s *Smoother) SetDebug(on bool) {
	s.debug.Store(on)
}

// Debug reports whether diagnostic logging is enabled.
func (s *Smoother) Debug() bool {
	return s.debug.Load()
}

func (s *Smoother) logDiagnostics(snap *Snapshot) {
	for i, st := range snap.Sides {
		if !st.Present {
			continue
		}
		m := st.Metrics
		log.Printf("gesture[%s] label=%s frames=%d fist=%t y=%.3f thumb=%.2f fingers=[%.2f %.2f %.2f %.2f] closed=%d conf=%.2f",
			Side(i), st.Label, st.LabelFrames, st.FistConfirmed, st.SmoothedY,
			m.Thumb.Ratio, m.Fingers[0].Ratio, m.Fingers[1].Ratio, m.Fingers[2].Ratio, m.Fingers[3].Ratio,
			m.ClosedFingers, m.Confidence)
	}
}
