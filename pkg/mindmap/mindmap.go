package mindmap

// Map is a complete mind map as supplied by a loader.
type Map struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Root        *Node  `json:"rootNode"`
}

// NewMap wraps root in a Map, stamping depths from zero.
func NewMap(title string, root *Node) *Map {
	if root != nil {
		stampDepth(root, 0)
	}
	return &Map{Title: title, Root: root}
}

// Walk visits every node reachable from root in stable pre-order (parent
// first, siblings left to right). Returning false from fn skips the node's
// subtree. The traversal uses an explicit stack so deep trees cannot exhaust
// the goroutine stack.
func Walk(root *Node, fn func(n *Node) bool) {
	if root == nil {
		return
	}
	seen := make(map[*Node]bool)
	stack := []*Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		if !fn(n) {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			if c := n.Children[i]; c != nil {
				stack = append(stack, c)
			}
		}
	}
}

// Find returns the first node with the given id in pre-order, or nil.
func (m *Map) Find(id string) *Node {
	if m == nil {
		return nil
	}
	var found *Node
	Walk(m.Root, func(n *Node) bool {
		if found != nil {
			return false
		}
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found
}

// Count returns the total number of nodes.
func (m *Map) Count() int {
	if m == nil {
		return 0
	}
	count := 0
	Walk(m.Root, func(*Node) bool {
		count++
		return true
	})
	return count
}

// MaxDepth returns the deepest Depth value in the tree, or 0 for an empty map.
func (m *Map) MaxDepth() int {
	if m == nil {
		return 0
	}
	max := 0
	Walk(m.Root, func(n *Node) bool {
		if n.Depth > max {
			max = n.Depth
		}
		return true
	})
	return max
}

// IDs returns every node id in pre-order.
func (m *Map) IDs() []string {
	if m == nil {
		return nil
	}
	var ids []string
	Walk(m.Root, func(n *Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	return ids
}
