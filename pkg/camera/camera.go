// Package camera animates a viewer camera toward requested targets.
//
// The core is a pure interpolation of (elapsed time, start pose, end pose);
// Animator adds preemption on top of it and Driver runs a frame loop for
// integrations that have no render loop of their own. Nothing here depends
// on a rendering library.
package camera

import (
	"math"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Pose is a camera position and the point it looks at. A requested Pose is
// a camera target.
type Pose struct {
	Position v3.Vec
	LookAt   v3.Vec
}

// DefaultPose is the initial camera: above and in front of the origin,
// looking at it.
func DefaultPose() Pose {
	return Pose{Position: v3.Vec{X: 0, Y: 5, Z: 15}}
}

// Finite reports whether every coordinate of p is a finite number.
func (p Pose) Finite() bool {
	for _, c := range []float64{
		p.Position.X, p.Position.Y, p.Position.Z,
		p.LookAt.X, p.LookAt.Y, p.LookAt.Z,
	} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Easing maps linear progress t ∈ [0,1] to eased progress.
type Easing func(t float64) float64

// Linear is the identity easing.
func Linear(t float64) float64 { return t }

// EaseInOutCubic accelerates through the first half and decelerates
// through the second.
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// Interpolate returns the pose at progress t between from and to. t is
// clamped to [0,1]; a nil ease is linear. Both position and look-at move,
// so the camera keeps facing the interpolated target mid-flight.
func Interpolate(from, to Pose, t float64, ease Easing) Pose {
	t = math.Max(0, math.Min(1, t))
	if ease != nil {
		t = ease(t)
	}
	return Pose{
		Position: lerp(from.Position, to.Position, t),
		LookAt:   lerp(from.LookAt, to.LookAt, t),
	}
}

func lerp(a, b v3.Vec, t float64) v3.Vec {
	return a.Add(b.Sub(a).MulScalar(t))
}

// Animation is a single flight from one pose to another.
type Animation struct {
	From     Pose
	To       Pose
	Duration time.Duration
	Ease     Easing
}

// At samples the animation elapsed time after it started. done is true
// once elapsed reaches Duration; the pose is then exactly To.
func (a Animation) At(elapsed time.Duration) (pose Pose, done bool) {
	if a.Duration <= 0 || elapsed >= a.Duration {
		return a.To, true
	}
	if elapsed < 0 {
		elapsed = 0
	}
	t := float64(elapsed) / float64(a.Duration)
	return Interpolate(a.From, a.To, t, a.Ease), false
}
