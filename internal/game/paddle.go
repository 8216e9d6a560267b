package game

// ControlSource says who computes a paddle's target each tick.
type ControlSource string

const (
	ControlAI    ControlSource = "ai"
	ControlHuman ControlSource = "human"
)

// Side indexes the two paddles.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

// Paddle is one player's paddle. Y is the top edge.
type Paddle struct {
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Width   float64       `json:"width"`
	Height  float64       `json:"height"`
	Control ControlSource `json:"control"`
}

// CenterY returns the vertical center of the paddle.
func (p *Paddle) CenterY() float64 {
	return p.Y + p.Height/2
}

// SetCenterY positions the paddle so its center sits at y, clamped so the
// whole paddle stays inside the canvas.
func (p *Paddle) SetCenterY(y, canvasHeight float64) {
	p.Y = y - p.Height/2
	p.clampY(canvasHeight)
}

// MoveToward steps the paddle toward a target center position at the
// given speed, ignoring targets within the error margin. Used by the AI,
// which deliberately undershoots.
func (p *Paddle) MoveToward(targetY, speed, errorMargin, canvasHeight float64) {
	center := p.CenterY()
	switch {
	case center < targetY-errorMargin:
		p.Y += speed
	case center > targetY+errorMargin:
		p.Y -= speed
	}
	p.clampY(canvasHeight)
}

func (p *Paddle) clampY(canvasHeight float64) {
	if p.Y < 0 {
		p.Y = 0
	}
	if max := canvasHeight - p.Height; p.Y > max {
		p.Y = max
	}
}
