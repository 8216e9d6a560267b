// Package detector provides the hand landmark source boundary: types for
// per-frame hand detections and the Detector interface implementations
// produce them through.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a single landmark in normalized image coordinates: x and y in
// [0,1] with y growing downward, z roughly in image-width units with the
// wrist near zero.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks is one detected hand: the 21 landmarks, the handedness
// label reported by the detector ("Left" or "Right") and its confidence.
// A HandLandmarks value is produced once per frame and never mutated.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"`
	Score      float64               `json:"score"`
}

// Distance returns the Euclidean distance between two landmarks.
func Distance(a, b Point3D) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	dz := a.Z - b.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// PalmCenter returns the midpoint between the wrist and the middle finger
// knuckle, a stable reference that moves less with finger articulation
// than any single landmark.
func (h *HandLandmarks) PalmCenter() Point3D {
	w := h.Points[Wrist]
	m := h.Points[MiddleMCP]
	return Point3D{
		X: (w.X + m.X) / 2,
		Y: (w.Y + m.Y) / 2,
		Z: (w.Z + m.Z) / 2,
	}
}

// Scale returns the wrist-to-middle-knuckle distance, used to express
// other measurements relative to the apparent hand size.
func (h *HandLandmarks) Scale() float64 {
	return Distance(h.Points[Wrist], h.Points[MiddleMCP])
}

// Valid reports whether the landmark set is geometrically usable: all
// coordinates finite and the hand not collapsed to a point. Malformed
// sets are skipped by the pipeline rather than classified.
func (h *HandLandmarks) Valid() bool {
	for _, p := range h.Points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) ||
			math.IsNaN(p.Y) || math.IsInf(p.Y, 0) ||
			math.IsNaN(p.Z) || math.IsInf(p.Z, 0) {
			return false
		}
	}
	return h.Scale() > 1e-6
}
