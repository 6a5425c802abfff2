// Package viewer holds the interaction state of a mind-map view: which
// nodes are expanded, the layout strategy, the depth cutoff, the focused
// node and the pending camera request. It is the only owner of that state.
// Layout, connection derivation and camera code receive snapshots as
// arguments and never reach back into a State.
//
// A State is not safe for concurrent use; callers serialise access.
package viewer

import (
	"math"
	"time"

	"github.com/chazu/mindscape/pkg/camera"
	"github.com/chazu/mindscape/pkg/connect"
	"github.com/chazu/mindscape/pkg/layout"
	"github.com/chazu/mindscape/pkg/mindmap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Options tunes layout and camera framing.
type Options struct {
	Layout layout.Params

	// FocusOffset is added to a node's position to place the camera when
	// the node is activated.
	FocusOffset v3.Vec
	// FitFactor scales the largest bounding-box side into a fit distance.
	FitFactor float64
	// DefaultDistance replaces the fit distance for degenerate boxes.
	DefaultDistance float64
	// Home is the pose ResetView flies to.
	Home camera.Pose

	// OnLayout, when set, is called after every relayout.
	OnLayout func(mode layout.Mode, took time.Duration)
}

// DefaultOptions returns the standard framing constants.
func DefaultOptions() Options {
	return Options{
		Layout:          layout.DefaultParams(),
		FocusOffset:     v3.Vec{X: 0, Y: 3, Z: 8},
		FitFactor:       1.5,
		DefaultDistance: 15,
		Home:            camera.DefaultPose(),
	}
}

// degenerateExtent is the box size below which fitting uses the default
// distance.
const degenerateExtent = 1e-9

// State is the viewer state machine.
type State struct {
	m    *mindmap.Map
	opts Options

	expanded     mindmap.ExpansionSet
	mode         layout.Mode
	visibleDepth int
	focusedID    string
	focusMode    bool
	cameraTarget *camera.Pose

	placed      []layout.Placed // full layout for the current expansion and mode
	visible     []layout.Placed // placed filtered by visibleDepth
	connections []connect.Connection
	index       map[string]v3.Vec // positions of visible nodes
}

// New returns a State showing m with only the root expanded, the tree
// strategy, every depth visible and focus mode on.
func New(m *mindmap.Map, opts Options) *State {
	if opts.FitFactor <= 0 {
		opts.FitFactor = 1.5
	}
	if opts.DefaultDistance <= 0 {
		opts.DefaultDistance = 15
	}
	s := &State{
		m:         m,
		opts:      opts,
		mode:      layout.ModeTree,
		focusMode: true,
	}
	s.expanded = s.rootExpansion()
	s.visibleDepth = m.MaxDepth()
	s.relayout()
	return s
}

func (s *State) rootExpansion() mindmap.ExpansionSet {
	if s.m == nil || s.m.Root == nil {
		return mindmap.NewExpansionSet()
	}
	return mindmap.NewExpansionSet(s.m.Root.ID)
}

func (s *State) root() *mindmap.Node {
	if s.m == nil {
		return nil
	}
	return s.m.Root
}

// relayout recomputes positions for the current expansion and mode, then
// refilters.
func (s *State) relayout() {
	start := time.Now()
	s.placed = layout.Compute(s.mode, s.root(), s.expanded, s.opts.Layout)
	if s.opts.OnLayout != nil {
		s.opts.OnLayout(s.mode, time.Since(start))
	}
	s.refilter()
}

// refilter applies the depth cutoff to the existing layout.
func (s *State) refilter() {
	s.visible = layout.FilterDepth(s.placed, s.visibleDepth)
	s.index = layout.Index(s.visible)
	s.connections = connect.Derive(s.root(), s.expanded, s.visible)
}

// ToggleNode flips id's expansion and relayouts. When id names a node it
// becomes the focus, and with focus mode on the camera is asked to frame
// it. Unknown ids only flip membership. A node hidden by the depth cutoff
// is focused but the camera stays put.
func (s *State) ToggleNode(id string) {
	s.expanded = s.expanded.Toggle(id)
	s.relayout()

	if s.m.Find(id) == nil {
		return
	}
	s.focusedID = id
	if !s.focusMode {
		return
	}
	pos, ok := s.index[id]
	if !ok {
		return
	}
	s.request(camera.Pose{Position: pos.Add(s.opts.FocusOffset), LookAt: pos})
}

// SetLayoutMode switches strategy and relayouts. Expansion and focus are
// kept.
func (s *State) SetLayoutMode(mode layout.Mode) {
	s.mode = mode
	s.relayout()
}

// SetExpanded replaces the whole expansion set and relayouts once. Focus and
// camera are left alone.
func (s *State) SetExpanded(exp mindmap.ExpansionSet) {
	s.expanded = exp
	s.relayout()
}

// SetVisibleDepth changes the depth cutoff. Positions are not recomputed.
// Negative depths are treated as zero.
func (s *State) SetVisibleDepth(d int) {
	if d < 0 {
		d = 0
	}
	s.visibleDepth = d
	s.refilter()
}

// ResetView clears the focus and sends the camera home.
func (s *State) ResetView() {
	s.focusedID = ""
	s.request(s.opts.Home)
}

// FitToScreen frames every visible node: the camera looks at the centroid
// of their bounding box from above and in front, at a distance proportional
// to the box's largest side. Degenerate boxes use the default distance.
// Nothing happens when no node is visible.
func (s *State) FitToScreen() {
	box, ok := layout.Bounds(s.visible)
	if !ok {
		return
	}
	center := box.Min.Add(box.Max).MulScalar(0.5)
	dist := layout.MaxExtent(box) * s.opts.FitFactor
	if !(dist > degenerateExtent) || math.IsInf(dist, 0) {
		dist = s.opts.DefaultDistance
	}
	target := camera.Pose{
		Position: center.Add(v3.Vec{X: 0, Y: dist / 2, Z: dist}),
		LookAt:   center,
	}
	if !target.Finite() {
		return
	}
	s.request(target)
}

// SetFocusMode turns camera framing on node activation on or off.
func (s *State) SetFocusMode(on bool) {
	s.focusMode = on
}

// FocusMode reports whether activating a node moves the camera.
func (s *State) FocusMode() bool {
	return s.focusMode
}

// Restart returns to the initial view of the current map: only the root
// expanded, every depth visible, no focus and the camera home. The layout
// mode is kept.
func (s *State) Restart() {
	s.expanded = s.rootExpansion()
	s.visibleDepth = s.m.MaxDepth()
	s.focusedID = ""
	s.relayout()
	s.request(s.opts.Home)
}

// Reload swaps in a new map, keeping expansion, mode and depth cutoff. A
// focus on a node that no longer exists is cleared.
func (s *State) Reload(m *mindmap.Map) {
	s.m = m
	if s.focusedID != "" && m.Find(s.focusedID) == nil {
		s.focusedID = ""
	}
	s.relayout()
}

// Map returns the map being viewed.
func (s *State) Map() *mindmap.Map {
	return s.m
}

// Expanded returns the current expansion set.
func (s *State) Expanded() mindmap.ExpansionSet {
	return s.expanded
}

// Mode returns the layout strategy.
func (s *State) Mode() layout.Mode {
	return s.mode
}

// VisibleDepth returns the depth cutoff.
func (s *State) VisibleDepth() int {
	return s.visibleDepth
}

// MaxDepth returns the deepest level of the map, the upper end of the
// useful depth cutoffs.
func (s *State) MaxDepth() int {
	return s.m.MaxDepth()
}

// FocusedID returns the focused node id, or "".
func (s *State) FocusedID() string {
	return s.focusedID
}

// Visible returns the placed nodes that pass the depth cutoff.
func (s *State) Visible() []layout.Placed {
	return s.visible
}

// Connections returns the segments between visible expanded pairs.
func (s *State) Connections() []connect.Connection {
	return s.connections
}

// CameraTarget returns the pending camera request, if any.
func (s *State) CameraTarget() (camera.Pose, bool) {
	if s.cameraTarget == nil {
		return camera.Pose{}, false
	}
	return *s.cameraTarget, true
}

// TakeCameraTarget returns and clears the pending camera request.
func (s *State) TakeCameraTarget() (camera.Pose, bool) {
	p, ok := s.CameraTarget()
	s.cameraTarget = nil
	return p, ok
}

// request replaces any pending camera request.
func (s *State) request(p camera.Pose) {
	s.cameraTarget = &p
}
