// Package game implements the pong simulation: ball and paddle physics,
// collision, scoring, the AI opponent and the session state machine. It
// is independent of the input source; control arrives through setter
// calls and everything advances on Tick.
package game

import "math"

// Ball is the game ball. Velocity is in canvas pixels per tick.
type Ball struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Radius float64 `json:"radius"`
}

// Speed returns the magnitude of the ball's velocity.
func (b *Ball) Speed() float64 {
	return math.Hypot(b.DX, b.DY)
}

// SetSpeed rescales the velocity to the given magnitude, preserving
// direction. A stationary ball is sent horizontally so speed commands
// can never strand it.
func (b *Ball) SetSpeed(speed float64) {
	cur := b.Speed()
	if cur < 1e-9 {
		b.DX = speed
		b.DY = 0
		return
	}
	scale := speed / cur
	b.DX *= scale
	b.DY *= scale
}

// Step advances the ball by one tick.
func (b *Ball) Step() {
	b.X += b.DX
	b.Y += b.DY
}
