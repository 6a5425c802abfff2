// Package connect derives the parent→child line segments drawn between
// placed mind-map nodes.
package connect

import (
	"github.com/chazu/mindscape/pkg/layout"
	"github.com/chazu/mindscape/pkg/mindmap"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Connection is one rendered line from a parent to a visible child. It is
// derived per render and has no identity of its own beyond its endpoints.
type Connection struct {
	ParentID string
	ChildID  string
	Start    v3.Vec
	End      v3.Vec
}

// Derive emits one segment per (expanded parent, visible child) pair in
// pre-order. Positions are resolved through an id index over placed. A
// child missing from placed (collapsed, or filtered by depth) yields no
// segment and its subtree is not descended.
func Derive(root *mindmap.Node, exp mindmap.ExpansionSet, placed []layout.Placed) []Connection {
	if root == nil || len(placed) == 0 {
		return nil
	}
	idx := layout.Index(placed)
	rootPos, ok := idx[root.ID]
	if !ok {
		return nil
	}

	// Each frame is a visible node awaiting its incoming segment; the
	// root has none.
	type frame struct {
		node   *mindmap.Node
		pos    v3.Vec
		parent *mindmap.Node
		from   v3.Vec
	}
	var out []Connection
	stack := []frame{{node: root, pos: rootPos}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.parent != nil {
			out = append(out, Connection{
				ParentID: f.parent.ID,
				ChildID:  f.node.ID,
				Start:    f.from,
				End:      f.pos,
			})
		}
		if !exp.Has(f.node.ID) {
			continue
		}
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			child := f.node.Children[i]
			if child == nil {
				continue
			}
			childPos, ok := idx[child.ID]
			if !ok {
				continue
			}
			stack = append(stack, frame{node: child, pos: childPos, parent: f.node, from: f.pos})
		}
	}
	return out
}
