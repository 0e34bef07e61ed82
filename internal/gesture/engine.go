// Package gesture turns card drag input into swipe decisions and derives the
// visual feedback shown while dragging.
package gesture

import "math"

type Direction string

const (
	Left  Direction = "left"
	Right Direction = "right"
)

// Feedback is the purely derived visual state for a drag position.
type Feedback struct {
	X            float64 `json:"x"`
	Rotation     float64 `json:"rotation"`
	LeftOpacity  float64 `json:"left_opacity"`
	RightOpacity float64 `json:"right_opacity"`
}

type SpringTransition struct {
	Type      string  `json:"type"`
	Stiffness float64 `json:"stiffness"`
	Damping   float64 `json:"damping"`
	Velocity  float64 `json:"velocity"`
}

// ExitAnimation is the animation target after a release: off screen for a
// swipe, back to the origin otherwise.
type ExitAnimation struct {
	X          float64          `json:"x"`
	Rotation   float64          `json:"rotation"`
	Transition SpringTransition `json:"transition"`
}

// SwipeDecision is the outcome of one drag release. It is not stored.
type SwipeDecision struct {
	Direction Direction      `json:"direction,omitempty"`
	Velocity  float64        `json:"velocity"`
	Offset    float64        `json:"offset"`
	Valid     bool           `json:"valid"`
	Exit      *ExitAnimation `json:"exit,omitempty"`
	// SpringBack is set instead of Exit when the release is not a swipe.
	SpringBack *ExitAnimation `json:"spring_back,omitempty"`
}

type Engine struct {
	profile Profile
}

func NewEngine(profile Profile) *Engine {
	return &Engine{profile: profile}
}

func (e *Engine) Profile() Profile {
	return e.profile
}

// Drag maps a horizontal displacement to rotation and overlay opacity.
func (e *Engine) Drag(x float64) Feedback {
	x = finite(x)
	p := e.profile

	rotation := x * p.MaxRotation / p.RotationRange
	rotation = clamp(rotation, -p.MaxRotation, p.MaxRotation)

	fb := Feedback{X: x, Rotation: rotation}
	if x > 0 {
		fb.RightOpacity = clamp(x/p.FeedbackThreshold, 0, 1)
	} else if x < 0 {
		fb.LeftOpacity = clamp(-x/p.FeedbackThreshold, 0, 1)
	}
	return fb
}

// Release decides whether a drag ends in a swipe. Below both thresholds the
// card springs back to x = 0 and Valid is false.
func (e *Engine) Release(offset, velocity float64) SwipeDecision {
	offset = finite(offset)
	velocity = finite(velocity)
	p := e.profile

	d := SwipeDecision{Offset: offset, Velocity: velocity}
	if math.Abs(offset) <= p.SwipeThreshold && math.Abs(velocity) <= p.VelocityThreshold {
		d.SpringBack = e.springBack(velocity)
		return d
	}

	dir := direction(offset, velocity)
	if dir == "" {
		d.SpringBack = e.springBack(velocity)
		return d
	}

	sign := 1.0
	if dir == Left {
		sign = -1
	}
	d.Valid = true
	d.Direction = dir
	d.Exit = &ExitAnimation{
		X:          sign * (p.ViewportWidth + p.ExitMargin),
		Rotation:   sign * p.MaxRotation,
		Transition: e.spring(velocity),
	}
	return d
}

func (e *Engine) springBack(velocity float64) *ExitAnimation {
	return &ExitAnimation{X: 0, Rotation: 0, Transition: e.spring(velocity)}
}

func (e *Engine) spring(velocity float64) SpringTransition {
	return SpringTransition{
		Type:      "spring",
		Stiffness: e.profile.Stiffness,
		Damping:   e.profile.Damping,
		Velocity:  velocity,
	}
}

// Commit evaluates a release and calls onSwipe exactly once when the swipe
// is valid.
func (e *Engine) Commit(offset, velocity float64, onSwipe func(Direction)) SwipeDecision {
	d := e.Release(offset, velocity)
	if d.Valid && onSwipe != nil {
		onSwipe(d.Direction)
	}
	return d
}

// direction follows the sign of the offset; a pure flick with no offset
// falls back to the sign of the velocity.
func direction(offset, velocity float64) Direction {
	switch {
	case offset > 0:
		return Right
	case offset < 0:
		return Left
	case velocity > 0:
		return Right
	case velocity < 0:
		return Left
	}
	return ""
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
