package layout

import (
	"github.com/chazu/mindscape/pkg/mindmap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Tree lays nodes out top-down. Each expanded node spreads its children
// evenly, left to right, across span = max(width, n × PerChildWidth); each
// level drops by VerticalStep and moves back by DepthStep. A child's own
// minimum width is its parent's span divided by the child count.
func Tree(root *mindmap.Node, exp mindmap.ExpansionSet, p Params) []Placed {
	if root == nil {
		return nil
	}
	var out []Placed
	placeTree(root, exp, p.Tree, p.Anchor, p.Tree.MinWidth, &out)
	return out
}

func placeTree(n *mindmap.Node, exp mindmap.ExpansionSet, tp TreeParams, pos v3.Vec, width float64, out *[]Placed) {
	*out = append(*out, Placed{Node: n, Position: pos})

	children := expandedChildren(n, exp)
	count := len(children)
	if count == 0 {
		return
	}

	span := width
	if w := float64(count) * tp.PerChildWidth; w > span {
		span = w
	}
	spacing := span / float64(count+1)

	for i, child := range children {
		if child == nil {
			continue
		}
		childPos := v3.Vec{
			X: pos.X - span/2 + spacing*float64(i+1),
			Y: pos.Y - tp.VerticalStep,
			Z: pos.Z - tp.DepthStep,
		}
		placeTree(child, exp, tp, childPos, span/float64(count), out)
	}
}
