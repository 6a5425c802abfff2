package camera

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samePose(t *testing.T, want, got Pose) {
	t.Helper()
	const tol = 1e-9
	a := []float64{want.Position.X, want.Position.Y, want.Position.Z, want.LookAt.X, want.LookAt.Y, want.LookAt.Z}
	b := []float64{got.Position.X, got.Position.Y, got.Position.Z, got.LookAt.X, got.LookAt.Y, got.LookAt.Z}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			t.Fatalf("pose mismatch: got %+v, want %+v", got, want)
		}
	}
}

var target = Pose{Position: v3.Vec{X: 10, Y: 3, Z: 8}, LookAt: v3.Vec{X: 10, Y: 0, Z: 0}}

func TestDefaultPose(t *testing.T) {
	p := DefaultPose()
	samePose(t, Pose{Position: v3.Vec{X: 0, Y: 5, Z: 15}}, p)
	assert.True(t, p.Finite())
}

func TestFinite(t *testing.T) {
	p := DefaultPose()
	p.LookAt.Y = math.NaN()
	assert.False(t, p.Finite())
	p.LookAt.Y = math.Inf(1)
	assert.False(t, p.Finite())
}

func TestEasingEndpoints(t *testing.T) {
	for name, e := range map[string]Easing{"linear": Linear, "cubic": EaseInOutCubic} {
		assert.InDelta(t, 0, e(0), 1e-12, name)
		assert.InDelta(t, 1, e(1), 1e-12, name)
		assert.InDelta(t, 0.5, e(0.5), 1e-12, name)
	}
	// Cubic is slower than linear at the start.
	assert.Less(t, EaseInOutCubic(0.1), Linear(0.1))
}

func TestInterpolateClampsProgress(t *testing.T) {
	from := DefaultPose()
	samePose(t, from, Interpolate(from, target, -3, nil))
	samePose(t, target, Interpolate(from, target, 7, EaseInOutCubic))

	mid := Interpolate(from, target, 0.5, Linear)
	samePose(t, Pose{
		Position: v3.Vec{X: 5, Y: 4, Z: 11.5},
		LookAt:   v3.Vec{X: 5, Y: 0, Z: 0},
	}, mid)
}

func TestAnimationAt(t *testing.T) {
	a := Animation{From: DefaultPose(), To: target, Duration: time.Second, Ease: Linear}

	p, done := a.At(0)
	assert.False(t, done)
	samePose(t, a.From, p)

	p, done = a.At(500 * time.Millisecond)
	assert.False(t, done)
	samePose(t, Interpolate(a.From, a.To, 0.5, Linear), p)

	p, done = a.At(time.Second)
	assert.True(t, done)
	samePose(t, target, p)

	p, done = a.At(time.Hour)
	assert.True(t, done)
	samePose(t, target, p)
}

func TestAnimationZeroDuration(t *testing.T) {
	a := Animation{From: DefaultPose(), To: target}
	p, done := a.At(0)
	assert.True(t, done)
	samePose(t, target, p)
}

func TestAnimatorLands(t *testing.T) {
	t0 := time.Unix(100, 0)
	an := NewAnimator(DefaultPose(), time.Second, Linear)

	_, active := an.Advance(t0)
	assert.False(t, active, "idle animator is inactive")

	an.Request(target, t0)
	assert.True(t, an.Active())

	p, active := an.Advance(t0.Add(250 * time.Millisecond))
	assert.True(t, active)
	samePose(t, Interpolate(DefaultPose(), target, 0.25, Linear), p)

	p, active = an.Advance(t0.Add(2 * time.Second))
	assert.False(t, active)
	samePose(t, target, p)
	samePose(t, target, an.Pose())
}

func TestAnimatorPreemptsFromCurrentPose(t *testing.T) {
	t0 := time.Unix(100, 0)
	an := NewAnimator(DefaultPose(), time.Second, Linear)
	an.Request(target, t0)

	half := t0.Add(500 * time.Millisecond)
	midway := Interpolate(DefaultPose(), target, 0.5, Linear)

	second := Pose{Position: v3.Vec{X: -4, Y: 1, Z: 2}}
	an.Request(second, half)

	// The new flight starts where the old one was interrupted.
	p, active := an.Advance(half)
	assert.True(t, active)
	samePose(t, midway, p)

	p, _ = an.Advance(half.Add(500 * time.Millisecond))
	samePose(t, Interpolate(midway, second, 0.5, Linear), p)

	p, active = an.Advance(half.Add(time.Second))
	assert.False(t, active)
	samePose(t, second, p)
}

func TestAnimatorSetPoseCancels(t *testing.T) {
	t0 := time.Unix(100, 0)
	an := NewAnimator(DefaultPose(), time.Second, nil)
	an.Request(target, t0)

	user := Pose{Position: v3.Vec{X: 1, Y: 1, Z: 1}}
	an.SetPose(user)
	assert.False(t, an.Active())

	p, active := an.Advance(t0.Add(time.Second))
	assert.False(t, active)
	samePose(t, user, p)
}

// recorder collects frames emitted by a Driver.
type recorder struct {
	mu     sync.Mutex
	frames []Pose
	last   chan Pose
}

func newRecorder() *recorder {
	return &recorder{last: make(chan Pose, 4)}
}

func (r *recorder) emit(p Pose, last bool) {
	r.mu.Lock()
	r.frames = append(r.frames, p)
	r.mu.Unlock()
	if last {
		r.last <- p
	}
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

func TestDriverPlaysToTarget(t *testing.T) {
	d := NewDriver(DefaultPose(), 40*time.Millisecond, 2*time.Millisecond, nil)
	rec := newRecorder()

	d.Play(context.Background(), target, rec.emit)

	select {
	case p := <-rec.last:
		samePose(t, target, p)
	case <-time.After(2 * time.Second):
		t.Fatal("animation never landed")
	}
	require.Eventually(t, func() bool { return !d.Running() }, time.Second, time.Millisecond)
	samePose(t, target, d.Pose())
	assert.GreaterOrEqual(t, rec.count(), 1)
}

func TestDriverPreemption(t *testing.T) {
	d := NewDriver(DefaultPose(), 200*time.Millisecond, 2*time.Millisecond, Linear)
	first := newRecorder()
	second := newRecorder()

	d.Play(context.Background(), target, first.emit)
	time.Sleep(20 * time.Millisecond)

	other := Pose{Position: v3.Vec{X: -6, Y: 2, Z: 4}, LookAt: v3.Vec{X: -6}}
	d.Play(context.Background(), other, second.emit)
	stale := first.count()

	select {
	case p := <-second.last:
		samePose(t, other, p)
	case <-time.After(2 * time.Second):
		t.Fatal("second animation never landed")
	}

	assert.Equal(t, stale, first.count(), "preempted flight kept emitting")
	select {
	case <-first.last:
		t.Fatal("preempted flight reported landing")
	default:
	}
}

func TestDriverStop(t *testing.T) {
	d := NewDriver(DefaultPose(), time.Hour, 2*time.Millisecond, nil)
	rec := newRecorder()

	d.Play(context.Background(), target, rec.emit)
	require.Eventually(t, func() bool { return rec.count() > 0 }, time.Second, time.Millisecond)

	d.Stop()
	assert.False(t, d.Running())
	n := rec.count()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, rec.count())
}

func TestDriverContextCancel(t *testing.T) {
	d := NewDriver(DefaultPose(), time.Hour, 2*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	d.Play(ctx, target, func(Pose, bool) {})
	cancel()
	require.Eventually(t, func() bool { return !d.Running() }, time.Second, time.Millisecond)
}
