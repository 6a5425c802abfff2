package mindmap

// Node is one entry in the mind-map tree. Children order is significant:
// layouts place siblings by their index.
type Node struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description,omitempty"`
	Color       string  `json:"color,omitempty"`
	Depth       int     `json:"depth"`
	Children    []*Node `json:"children,omitempty"`
}

// NewNode creates a depth-0 leaf. Depth is re-stamped when the node is
// attached to a parent.
func NewNode(id, label string) *Node {
	return &Node{ID: id, Label: label}
}

// AddChild appends children in order and stamps each added subtree so that
// every node's depth equals its parent's depth plus one.
func (n *Node) AddChild(children ...*Node) *Node {
	for _, c := range children {
		if c == nil {
			continue
		}
		n.Children = append(n.Children, c)
		stampDepth(c, n.Depth+1)
	}
	return n
}

// IsLeaf reports whether the node has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// stampDepth sets depth on n and its descendants using an explicit stack.
// A node reachable twice (malformed input) is stamped once.
func stampDepth(n *Node, depth int) {
	type frame struct {
		node  *Node
		depth int
	}
	seen := make(map[*Node]bool)
	stack := []frame{{n, depth}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[f.node] {
			continue
		}
		seen[f.node] = true
		f.node.Depth = f.depth
		for _, c := range f.node.Children {
			if c != nil {
				stack = append(stack, frame{c, f.depth + 1})
			}
		}
	}
}
