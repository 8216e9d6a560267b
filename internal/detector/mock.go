package detector

import (
	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	hands []HandLandmarks
	err   error
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by Detect.
func (m *MockDetector) SetHands(hands []HandLandmarks) {
	m.hands = hands
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.err = err
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]HandLandmarks, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// Preset fixture geometry. All fixtures share the same wrist and knuckle
// row and differ only in where the fingertips sit, so the extension
// ratios are what distinguishes them.
var (
	fixtureWrist     = Point3D{X: 0.50, Y: 0.80}
	fixtureThumbCMC  = Point3D{X: 0.54, Y: 0.77, Z: 0.01}
	fixtureThumbMCP  = Point3D{X: 0.58, Y: 0.72, Z: 0.01}
	fixtureFingerMCP = [4]Point3D{
		{X: 0.55, Y: 0.68}, // index
		{X: 0.50, Y: 0.66}, // middle
		{X: 0.45, Y: 0.68}, // ring
		{X: 0.40, Y: 0.70}, // pinky
	}

	// Fingertips roughly twice as far from the wrist as the knuckles.
	fixtureExtendedTips = [4]Point3D{
		{X: 0.58, Y: 0.50},
		{X: 0.50, Y: 0.46},
		{X: 0.42, Y: 0.50},
		{X: 0.36, Y: 0.55},
	}

	// Fingertips pulled back to ~60% of the knuckle distance.
	fixtureCurledTips = [4]Point3D{
		{X: 0.53, Y: 0.728},
		{X: 0.50, Y: 0.716},
		{X: 0.47, Y: 0.728},
		{X: 0.44, Y: 0.74},
	}
)

// fingerChains maps finger index (0=index .. 3=pinky) to landmark indices.
var fingerChains = [4][3]int{
	{IndexPIP, IndexDIP, IndexTip},
	{MiddlePIP, MiddleDIP, MiddleTip},
	{RingPIP, RingDIP, RingTip},
	{PinkyPIP, PinkyDIP, PinkyTip},
}

func lerp(a, b Point3D, t float64) Point3D {
	return Point3D{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// fixtureHand builds a hand from the shared base plus the given thumb tip
// and fingertip positions. Intermediate joints are interpolated along the
// knuckle-to-tip line, which is all the geometric classifier looks at.
func fixtureHand(thumbTip Point3D, tips [4]Point3D) HandLandmarks {
	h := HandLandmarks{Handedness: "Right", Score: 0.95}

	h.Points[Wrist] = fixtureWrist
	h.Points[ThumbCMC] = fixtureThumbCMC
	h.Points[ThumbMCP] = fixtureThumbMCP
	h.Points[ThumbIP] = lerp(fixtureThumbMCP, thumbTip, 0.5)
	h.Points[ThumbTip] = thumbTip

	mcpIndices := [4]int{IndexMCP, MiddleMCP, RingMCP, PinkyMCP}
	for f := 0; f < 4; f++ {
		mcp := fixtureFingerMCP[f]
		tip := tips[f]
		h.Points[mcpIndices[f]] = mcp
		h.Points[fingerChains[f][0]] = lerp(mcp, tip, 0.4)
		h.Points[fingerChains[f][1]] = lerp(mcp, tip, 0.7)
		h.Points[fingerChains[f][2]] = tip
	}

	return h
}

// OpenPalmHand returns a hand with all five fingers extended.
func OpenPalmHand() HandLandmarks {
	return fixtureHand(Point3D{X: 0.72, Y: 0.62, Z: 0.02}, fixtureExtendedTips)
}

// FistHand returns a hand with all fingers and the thumb tightly curled.
func FistHand() HandLandmarks {
	return fixtureHand(Point3D{X: 0.52, Y: 0.74, Z: -0.02}, fixtureCurledTips)
}

// ThumbsUpHand returns a hand with four fingers curled and the thumb
// extended above the wrist.
func ThumbsUpHand() HandLandmarks {
	return fixtureHand(Point3D{X: 0.60, Y: 0.45}, fixtureCurledTips)
}

// ThumbsDownHand returns a hand with four fingers curled and the thumb
// extended below the wrist.
func ThumbsDownHand() HandLandmarks {
	return fixtureHand(Point3D{X: 0.60, Y: 0.95}, fixtureCurledTips)
}

// LowConfidenceHand returns an open palm whose handedness score is below
// any reasonable confidence threshold.
func LowConfidenceHand() HandLandmarks {
	h := OpenPalmHand()
	h.Score = 0.3
	return h
}

// OffsetX returns a copy of the hand shifted horizontally, for placing a
// fixture on a specific half of the frame.
func (h HandLandmarks) OffsetX(dx float64) HandLandmarks {
	for i := range h.Points {
		h.Points[i].X += dx
	}
	return h
}
