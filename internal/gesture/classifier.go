// Package gesture turns raw hand landmark sets into game control input:
// a geometric classifier labels each hand, and a temporal smoother
// debounces those labels into stable positions and edge-triggered
// commands.
package gesture

import (
	"github.com/ayusman/handpong/internal/detector"
)

// Label is the discrete gesture classification for one hand.
type Label int

const (
	// Unknown covers low-confidence and ambiguous geometry. It never
	// triggers a command.
	Unknown Label = iota
	// OpenPalm is the default tracking pose used for paddle control.
	OpenPalm
	// Fist means all fingers curled; both hands fisted toggles pause.
	Fist
	// ThumbsUp requests a ball speed increase.
	ThumbsUp
	// ThumbsDown requests a ball speed decrease.
	ThumbsDown
)

func (l Label) String() string {
	switch l {
	case OpenPalm:
		return "open_palm"
	case Fist:
		return "fist"
	case ThumbsUp:
		return "thumbs_up"
	case ThumbsDown:
		return "thumbs_down"
	default:
		return "unknown"
	}
}

// FingerMetric is the curl measurement for a single finger: the
// tip-to-wrist over knuckle-to-wrist distance ratio, and whether that
// ratio falls below the closed threshold.
type FingerMetric struct {
	Ratio  float64 `json:"ratio"`
	Closed bool    `json:"closed"`
}

// Metrics carries the continuous measurements behind a classification,
// exposed for debug output and the diagnostics feed.
type Metrics struct {
	Thumb         FingerMetric    `json:"thumb"`
	Fingers       [4]FingerMetric `json:"fingers"` // index, middle, ring, pinky
	ClosedFingers int             `json:"closed_fingers"`
	Confidence    float64         `json:"confidence"`
}

// ClassifierConfig holds the geometric thresholds for classification.
type ClassifierConfig struct {
	// FingerClosedRatio is the extension ratio below which a non-thumb
	// finger counts as curled.
	FingerClosedRatio float64
	// ThumbClosedRatio is the curl threshold for the thumb.
	ThumbClosedRatio float64
	// RequiredFingers is how many of the four fingers must be curled
	// (together with the thumb) to call a fist.
	RequiredFingers int
	// MinConfidence is the handedness score below which a hand is
	// classified Unknown.
	MinConfidence float64
}

// DefaultClassifierConfig returns thresholds tuned against live webcam
// footage: strict enough that a bent palm does not read as a fist.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		FingerClosedRatio: 1.0,
		ThumbClosedRatio:  1.3,
		RequiredFingers:   4,
		MinConfidence:     0.7,
	}
}

// fingerTips and fingerMCPs pair up per finger: index, middle, ring, pinky.
var (
	fingerTips = [4]int{detector.IndexTip, detector.MiddleTip, detector.RingTip, detector.PinkyTip}
	fingerMCPs = [4]int{detector.IndexMCP, detector.MiddleMCP, detector.RingMCP, detector.PinkyMCP}
)

// Classifier labels single hands from landmark geometry alone. It holds
// no state between frames; temporal behavior lives in the Smoother.
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a Classifier with the given thresholds.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.FingerClosedRatio <= 0 {
		cfg.FingerClosedRatio = 1.0
	}
	if cfg.ThumbClosedRatio <= 0 {
		cfg.ThumbClosedRatio = 1.3
	}
	if cfg.RequiredFingers < 1 || cfg.RequiredFingers > 4 {
		cfg.RequiredFingers = 4
	}
	return &Classifier{cfg: cfg}
}

// Classify returns the gesture label for one hand plus the extension
// metrics it was derived from. Anything ambiguous resolves to Unknown
// rather than guessing, so noise never fires a command.
func (c *Classifier) Classify(hand *detector.HandLandmarks) (Label, Metrics) {
	var m Metrics
	if hand == nil {
		return Unknown, m
	}
	m.Confidence = hand.Score

	if hand.Score < c.cfg.MinConfidence || !hand.Valid() {
		return Unknown, m
	}

	wrist := hand.Points[detector.Wrist]

	// Per-finger extension: how far the tip sits from the wrist relative
	// to its knuckle. Curled fingers pull the tip back toward the palm.
	for f := 0; f < 4; f++ {
		tipDist := detector.Distance(hand.Points[fingerTips[f]], wrist)
		mcpDist := detector.Distance(hand.Points[fingerMCPs[f]], wrist)
		if mcpDist < 1e-9 {
			return Unknown, m
		}
		ratio := tipDist / mcpDist
		closed := ratio < c.cfg.FingerClosedRatio
		m.Fingers[f] = FingerMetric{Ratio: ratio, Closed: closed}
		if closed {
			m.ClosedFingers++
		}
	}

	thumbMCPDist := detector.Distance(hand.Points[detector.ThumbMCP], wrist)
	if thumbMCPDist < 1e-9 {
		return Unknown, m
	}
	thumbRatio := detector.Distance(hand.Points[detector.ThumbTip], wrist) / thumbMCPDist
	m.Thumb = FingerMetric{Ratio: thumbRatio, Closed: thumbRatio < c.cfg.ThumbClosedRatio}

	switch {
	case m.ClosedFingers >= c.cfg.RequiredFingers && m.Thumb.Closed:
		return Fist, m
	case m.ClosedFingers == 4 && !m.Thumb.Closed:
		return c.thumbDirection(hand), m
	default:
		return OpenPalm, m
	}
}

// thumbDirection decides thumbs up versus down from the thumb tip's
// vertical position relative to the wrist. The margin scales with hand
// size; a thumb hovering near the wrist line stays Unknown.
func (c *Classifier) thumbDirection(hand *detector.HandLandmarks) Label {
	margin := 0.5 * hand.Scale()
	tipY := hand.Points[detector.ThumbTip].Y
	wristY := hand.Points[detector.Wrist].Y

	switch {
	case tipY < wristY-margin:
		return ThumbsUp // image y grows downward
	case tipY > wristY+margin:
		return ThumbsDown
	default:
		return Unknown
	}
}
