package viewer

import (
	"github.com/chazu/mindscape/pkg/camera"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec3 is a position as a JSON array.
type Vec3 [3]float64

func toVec3(v v3.Vec) Vec3 {
	return Vec3{v.X, v.Y, v.Z}
}

// WirePose is a camera pose for JSON consumers.
type WirePose struct {
	Position Vec3 `json:"position"`
	LookAt   Vec3 `json:"lookAt"`
}

// PoseToWire converts p for JSON.
func PoseToWire(p camera.Pose) WirePose {
	return WirePose{Position: toVec3(p.Position), LookAt: toVec3(p.LookAt)}
}

// WireNode is a NodeView for JSON consumers.
type WireNode struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Depth       int    `json:"depth"`
	Color       string `json:"color"`
	Position    Vec3   `json:"position"`
	HasChildren bool   `json:"hasChildren"`
	Expanded    bool   `json:"expanded"`
	Focused     bool   `json:"focused"`
}

// WireConnection is a connection segment for JSON consumers.
type WireConnection struct {
	ParentID string `json:"parentId"`
	ChildID  string `json:"childId"`
	Start    Vec3   `json:"start"`
	End      Vec3   `json:"end"`
}

// WireScene is the JSON form of a Scene shared by the desktop shell and
// the browser server.
type WireScene struct {
	Title        string           `json:"title"`
	Nodes        []WireNode       `json:"nodes"`
	Connections  []WireConnection `json:"connections"`
	Expanded     []string         `json:"expanded"`
	Mode         string           `json:"mode"`
	VisibleDepth int              `json:"visibleDepth"`
	MaxDepth     int              `json:"maxDepth"`
	FocusedID    string           `json:"focusedId,omitempty"`
	FocusMode    bool             `json:"focusMode"`
	CameraTarget *WirePose        `json:"cameraTarget,omitempty"`
}

// Wire converts sc for JSON.
func (sc Scene) Wire() WireScene {
	w := WireScene{
		Title:        sc.Title,
		Nodes:        make([]WireNode, len(sc.Nodes)),
		Connections:  make([]WireConnection, len(sc.Connections)),
		Expanded:     sc.Expanded,
		Mode:         sc.Mode.String(),
		VisibleDepth: sc.VisibleDepth,
		MaxDepth:     sc.MaxDepth,
		FocusedID:    sc.FocusedID,
		FocusMode:    sc.FocusMode,
	}
	if w.Expanded == nil {
		w.Expanded = []string{}
	}
	for i, n := range sc.Nodes {
		w.Nodes[i] = WireNode{
			ID:          n.ID,
			Label:       n.Label,
			Depth:       n.Depth,
			Color:       n.Color,
			Position:    toVec3(n.Position),
			HasChildren: n.HasChildren,
			Expanded:    n.Expanded,
			Focused:     n.Focused,
		}
	}
	for i, c := range sc.Connections {
		w.Connections[i] = WireConnection{
			ParentID: c.ParentID,
			ChildID:  c.ChildID,
			Start:    toVec3(c.Start),
			End:      toVec3(c.End),
		}
	}
	if sc.CameraTarget != nil {
		p := PoseToWire(*sc.CameraTarget)
		w.CameraTarget = &p
	}
	return w
}

// Pose converts p back to a camera pose.
func (p WirePose) Pose() camera.Pose {
	return camera.Pose{
		Position: v3.Vec{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]},
		LookAt:   v3.Vec{X: p.LookAt[0], Y: p.LookAt[1], Z: p.LookAt[2]},
	}
}
