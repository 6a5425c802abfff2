// Package layout places the visible part of a mind-map tree into 3D space.
//
// Three interchangeable strategies share one contract: given a root, the set
// of expanded ids and Params, return a flat ordered list of Placed nodes that
// begins with the root. Only nodes reachable through a chain of expanded
// ancestors appear. Strategies are pure and deterministic.
package layout

import (
	"fmt"
	"strings"

	"github.com/chazu/mindscape/pkg/mindmap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mode selects a layout strategy.
type Mode int

const (
	ModeTree   Mode = iota // top-down hierarchy
	ModeRadial             // children on shrinking circles
	ModeForce              // seeded circle relaxed by pairwise repulsion
)

func (m Mode) String() string {
	switch m {
	case ModeTree:
		return "tree"
	case ModeRadial:
		return "radial"
	case ModeForce:
		return "force"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts a mode name ("tree", "radial", "force") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tree":
		return ModeTree, nil
	case "radial":
		return ModeRadial, nil
	case "force":
		return ModeForce, nil
	}
	return ModeTree, fmt.Errorf("unknown layout mode %q, expected tree, radial, or force", s)
}

// Placed pairs a node with its position for one layout pass.
type Placed struct {
	Node     *mindmap.Node
	Position v3.Vec
}

// TreeParams controls the top-down strategy.
type TreeParams struct {
	MinWidth      float64 // minimum horizontal span at the root
	PerChildWidth float64 // span contributed by each child
	VerticalStep  float64 // drop per level
	DepthStep     float64 // push back (−z) per level
}

// RadialParams controls the circular strategy.
type RadialParams struct {
	Radius       float64 // radius of the root's children
	Shrink       float64 // radius ratio per level
	VerticalStep float64 // drop per level
	Stagger      float64 // extra drop for odd-indexed siblings
}

// ForceParams controls the repulsion strategy.
type ForceParams struct {
	BaseRadius     float64 // seed radius for depth 0
	RadiusPerDepth float64 // seed radius growth per level
	VerticalStep   float64 // seed drop per level
	Repulsion      float64 // force = Repulsion / distance²
	Epsilon        float64 // added to distance to avoid division by zero
	Iterations     int
}

// Params carries every layout constant.
type Params struct {
	Anchor v3.Vec // root position (tree, radial) or seed centre (force)
	Tree   TreeParams
	Radial RadialParams
	Force  ForceParams
}

// DefaultParams returns the standard spacing constants.
func DefaultParams() Params {
	return Params{
		Tree: TreeParams{
			MinWidth:      12,
			PerChildWidth: 3,
			VerticalStep:  4,
			DepthStep:     2,
		},
		Radial: RadialParams{
			Radius:       6,
			Shrink:       0.85,
			VerticalStep: 3,
			Stagger:      1,
		},
		Force: ForceParams{
			BaseRadius:     5,
			RadiusPerDepth: 2,
			VerticalStep:   3,
			Repulsion:      0.5,
			Epsilon:        0.1,
			Iterations:     50,
		},
	}
}

// Compute runs the strategy selected by mode. Unknown modes use the tree
// strategy.
func Compute(mode Mode, root *mindmap.Node, exp mindmap.ExpansionSet, p Params) []Placed {
	switch mode {
	case ModeRadial:
		return Radial(root, exp, p)
	case ModeForce:
		return Force(root, exp, p)
	default:
		return Tree(root, exp, p)
	}
}

// Index maps node id to position. With duplicate ids the first wins.
func Index(placed []Placed) map[string]v3.Vec {
	idx := make(map[string]v3.Vec, len(placed))
	for _, pn := range placed {
		if _, ok := idx[pn.Node.ID]; !ok {
			idx[pn.Node.ID] = pn.Position
		}
	}
	return idx
}

// FilterDepth returns the placed nodes with depth ≤ maxDepth, preserving
// order. A negative maxDepth keeps nothing.
func FilterDepth(placed []Placed, maxDepth int) []Placed {
	out := make([]Placed, 0, len(placed))
	for _, pn := range placed {
		if pn.Node.Depth <= maxDepth {
			out = append(out, pn)
		}
	}
	return out
}

// expandedChildren returns n's children if n is expanded, else nil.
func expandedChildren(n *mindmap.Node, exp mindmap.ExpansionSet) []*mindmap.Node {
	if len(n.Children) == 0 || !exp.Has(n.ID) {
		return nil
	}
	return n.Children
}
