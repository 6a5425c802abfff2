package camera

import "time"

// Animator tracks the camera pose and at most one in-flight animation. A new
// request preempts the current flight and restarts from wherever the camera
// is at that instant; requests are never queued or blended. While idle the
// camera belongs to the user and SetPose records where they moved it.
//
// Animator is not safe for concurrent use.
type Animator struct {
	duration time.Duration
	ease     Easing

	pose    Pose
	anim    Animation
	started time.Time
	active  bool
}

// NewAnimator returns an idle animator at start. Flights take duration and
// use ease (EaseInOutCubic when nil).
func NewAnimator(start Pose, duration time.Duration, ease Easing) *Animator {
	if ease == nil {
		ease = EaseInOutCubic
	}
	return &Animator{duration: duration, ease: ease, pose: start}
}

// Request starts a flight to target at now, abandoning any flight in
// progress.
func (a *Animator) Request(target Pose, now time.Time) {
	a.Advance(now)
	a.anim = Animation{From: a.pose, To: target, Duration: a.duration, Ease: a.ease}
	a.started = now
	a.active = true
}

// Advance moves the camera to its pose at now. active is false once the
// flight has landed or when there is none.
func (a *Animator) Advance(now time.Time) (pose Pose, active bool) {
	if !a.active {
		return a.pose, false
	}
	p, done := a.anim.At(now.Sub(a.started))
	a.pose = p
	if done {
		a.active = false
	}
	return a.pose, a.active
}

// Active reports whether a flight is in progress.
func (a *Animator) Active() bool {
	return a.active
}

// Pose returns the last computed pose.
func (a *Animator) Pose() Pose {
	return a.pose
}

// SetPose records a user-driven camera move. It cancels any flight.
func (a *Animator) SetPose(p Pose) {
	a.pose = p
	a.active = false
}

// Cancel stops the flight where it is.
func (a *Animator) Cancel() {
	a.active = false
}
