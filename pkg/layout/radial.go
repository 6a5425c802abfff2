package layout

import (
	"math"

	"github.com/chazu/mindscape/pkg/mindmap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Radial places each expanded node's children evenly around a full circle
// in the XZ plane, starting from the parent's own angle. The radius shrinks
// by Shrink per level, and odd-indexed siblings drop by an extra Stagger so
// neighbours on the same ring overlap less.
func Radial(root *mindmap.Node, exp mindmap.ExpansionSet, p Params) []Placed {
	if root == nil {
		return nil
	}
	var out []Placed
	placeRadial(root, exp, p.Radial, p.Anchor, 0, p.Radial.Radius, &out)
	return out
}

func placeRadial(n *mindmap.Node, exp mindmap.ExpansionSet, rp RadialParams, pos v3.Vec, angle, radius float64, out *[]Placed) {
	*out = append(*out, Placed{Node: n, Position: pos})

	children := expandedChildren(n, exp)
	count := len(children)
	if count == 0 {
		return
	}

	step := 2 * math.Pi / float64(count)
	for i, child := range children {
		if child == nil {
			continue
		}
		childAngle := angle + step*float64(i)
		childPos := v3.Vec{
			X: pos.X + math.Cos(childAngle)*radius,
			Y: pos.Y - rp.VerticalStep - rp.Stagger*float64(i%2),
			Z: pos.Z + math.Sin(childAngle)*radius,
		}
		placeRadial(child, exp, rp, childPos, childAngle, radius*rp.Shrink, out)
	}
}
