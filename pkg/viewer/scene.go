package viewer

import (
	"github.com/chazu/mindscape/pkg/camera"
	"github.com/chazu/mindscape/pkg/connect"
	"github.com/chazu/mindscape/pkg/layout"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// DepthPalette colours nodes without an explicit colour, by depth. Depths
// past the end use the last entry.
var DepthPalette = []string{"#1e293b", "#334155", "#475569", "#64748b", "#94a3b8"}

// ColorFor returns the explicit colour if set, else the palette colour for
// depth.
func ColorFor(explicit string, depth int) string {
	if explicit != "" {
		return explicit
	}
	if depth < 0 {
		depth = 0
	}
	if depth >= len(DepthPalette) {
		depth = len(DepthPalette) - 1
	}
	return DepthPalette[depth]
}

// NodeView is a visible node as a renderer needs it.
type NodeView struct {
	ID          string
	Label       string
	Depth       int
	Color       string
	Position    v3.Vec
	HasChildren bool
	Expanded    bool
	Focused     bool
}

// Scene is a snapshot of everything a renderer draws for one frame.
type Scene struct {
	Title        string
	Nodes        []NodeView
	Connections  []connect.Connection
	Expanded     []string
	Mode         layout.Mode
	VisibleDepth int
	MaxDepth     int
	FocusedID    string
	FocusMode    bool
	CameraTarget *camera.Pose
}

// Scene returns a snapshot of the current view. It does not consume the
// camera request.
func (s *State) Scene() Scene {
	sc := Scene{
		Nodes:        make([]NodeView, 0, len(s.visible)),
		Connections:  append([]connect.Connection(nil), s.connections...),
		Expanded:     s.expanded.IDs(),
		Mode:         s.mode,
		VisibleDepth: s.visibleDepth,
		MaxDepth:     s.m.MaxDepth(),
		FocusedID:    s.focusedID,
		FocusMode:    s.focusMode,
	}
	if s.m != nil {
		sc.Title = s.m.Title
	}
	if s.cameraTarget != nil {
		t := *s.cameraTarget
		sc.CameraTarget = &t
	}
	for _, pn := range s.visible {
		n := pn.Node
		sc.Nodes = append(sc.Nodes, NodeView{
			ID:          n.ID,
			Label:       n.Label,
			Depth:       n.Depth,
			Color:       ColorFor(n.Color, n.Depth),
			Position:    pn.Position,
			HasChildren: len(n.Children) > 0,
			Expanded:    s.expanded.Has(n.ID),
			Focused:     n.ID == s.focusedID,
		})
	}
	return sc
}

// Detail is the inspector payload for one node.
type Detail struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Depth       int      `json:"depth"`
	Color       string   `json:"color"`
	Children    []string `json:"children"`
	Expanded    bool     `json:"expanded"`
}

// Detail describes the node with the given id.
func (s *State) Detail(id string) (Detail, bool) {
	n := s.m.Find(id)
	if n == nil {
		return Detail{}, false
	}
	d := Detail{
		ID:          n.ID,
		Label:       n.Label,
		Description: n.Description,
		Depth:       n.Depth,
		Color:       ColorFor(n.Color, n.Depth),
		Children:    make([]string, 0, len(n.Children)),
		Expanded:    s.expanded.Has(n.ID),
	}
	for _, c := range n.Children {
		if c != nil {
			d.Children = append(d.Children, c.Label)
		}
	}
	return d, true
}
