package camera

import (
	"context"
	"sync"
	"time"
)

// DefaultFrameInterval is roughly one frame at 60Hz.
const DefaultFrameInterval = 16 * time.Millisecond

// FrameFunc receives each animated pose. last is true on the final frame
// of a flight. It runs on the driver goroutine and must not call Play or
// Stop.
type FrameFunc func(pose Pose, last bool)

// Driver runs an Animator on its own ticker for integrations without a
// render loop, such as websocket sessions and the desktop shell. Play
// preempts the running flight: the previous frame goroutine is cancelled
// and has exited before the new one starts, so no stale frame loop
// outlives its flight.
type Driver struct {
	interval time.Duration
	now      func() time.Time

	playMu sync.Mutex // serialises Play and Stop

	mu     sync.Mutex // guards anim, cancel and done
	anim   *Animator
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDriver returns a Driver animating from start. A zero interval uses
// DefaultFrameInterval.
func NewDriver(start Pose, duration, interval time.Duration, ease Easing) *Driver {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Driver{
		interval: interval,
		now:      time.Now,
		anim:     NewAnimator(start, duration, ease),
	}
}

// Play flies the camera to target, emitting frames until it lands, ctx is
// cancelled, or another Play or Stop preempts it.
func (d *Driver) Play(ctx context.Context, target Pose, emit FrameFunc) {
	d.playMu.Lock()
	defer d.playMu.Unlock()

	d.stopLocked()

	d.mu.Lock()
	d.anim.Request(target, d.now())
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.cancel = cancel
	d.done = done
	d.mu.Unlock()

	go d.run(runCtx, done, emit)
}

// Stop abandons the running flight, leaving the camera where it is.
func (d *Driver) Stop() {
	d.playMu.Lock()
	defer d.playMu.Unlock()
	d.stopLocked()
}

// Pose returns the current camera pose.
func (d *Driver) Pose() Pose {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.anim.Pose()
}

// SetPose records a user-driven camera move, stopping any flight.
func (d *Driver) SetPose(p Pose) {
	d.playMu.Lock()
	defer d.playMu.Unlock()
	d.stopLocked()

	d.mu.Lock()
	d.anim.SetPose(p)
	d.mu.Unlock()
}

// Running reports whether a frame goroutine is active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	done := d.done
	d.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

// stopLocked cancels the frame goroutine and waits for it to exit. The
// caller holds playMu but not mu.
func (d *Driver) stopLocked() {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.cancel, d.done = nil, nil
	d.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done

	d.mu.Lock()
	d.anim.Advance(d.now())
	d.anim.Cancel()
	d.mu.Unlock()
}

func (d *Driver) run(ctx context.Context, done chan struct{}, emit FrameFunc) {
	defer close(done)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		pose, active := d.anim.Advance(d.now())
		d.mu.Unlock()

		// A preempting Play may have cancelled us while we computed.
		if ctx.Err() != nil {
			return
		}
		emit(pose, !active)
		if !active {
			return
		}
	}
}
