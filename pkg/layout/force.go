package layout

import (
	"math"

	"github.com/chazu/mindscape/pkg/mindmap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Force is a global, non-recursive layout. Visible nodes are flattened in
// stable pre-order, seeded on a circle around the anchor (angle by flat
// index, radius growing with depth, height −depth × VerticalStep), then
// relaxed for Iterations rounds of pure pairwise repulsion. Each round's
// net force is applied directly as a position delta: there is no velocity
// and no attraction, so overlap is possible and not corrected.
//
// Cost is O(n² × Iterations) and runs to completion in one call.
func Force(root *mindmap.Node, exp mindmap.ExpansionSet, p Params) []Placed {
	nodes := flatten(root, exp)
	if len(nodes) == 0 {
		return nil
	}

	fp := p.Force
	pos := seed(nodes, fp, p.Anchor)
	forces := make([]v3.Vec, len(nodes))

	for iter := 0; iter < fp.Iterations; iter++ {
		for i := range forces {
			forces[i] = v3.Vec{}
		}
		for i := 0; i < len(nodes); i++ {
			for j := i + 1; j < len(nodes); j++ {
				delta := pos[j].Sub(pos[i])
				dist := delta.Length() + fp.Epsilon
				if dist == 0 {
					continue
				}
				f := delta.MulScalar(fp.Repulsion / (dist * dist) / dist)
				forces[i] = forces[i].Sub(f)
				forces[j] = forces[j].Add(f)
			}
		}
		for i := range pos {
			pos[i] = pos[i].Add(forces[i])
		}
	}

	out := make([]Placed, len(nodes))
	for i, n := range nodes {
		out[i] = Placed{Node: n, Position: pos[i]}
	}
	return out
}

// flatten collects the visible nodes in pre-order without recursion.
func flatten(root *mindmap.Node, exp mindmap.ExpansionSet) []*mindmap.Node {
	var nodes []*mindmap.Node
	mindmap.Walk(root, func(n *mindmap.Node) bool {
		nodes = append(nodes, n)
		return exp.Has(n.ID)
	})
	return nodes
}

// seed spreads nodes evenly by flat index around the anchor.
func seed(nodes []*mindmap.Node, fp ForceParams, anchor v3.Vec) []v3.Vec {
	pos := make([]v3.Vec, len(nodes))
	total := float64(len(nodes))
	for i, n := range nodes {
		angle := float64(i) / total * 2 * math.Pi
		radius := fp.BaseRadius + float64(n.Depth)*fp.RadiusPerDepth
		pos[i] = anchor.Add(v3.Vec{
			X: math.Cos(angle) * radius,
			Y: -float64(n.Depth) * fp.VerticalStep,
			Z: math.Sin(angle) * radius,
		})
	}
	return pos
}
