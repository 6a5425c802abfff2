package mindmap

import (
	"fmt"
	"regexp"
)

// ValidationSeverity indicates whether a validation finding rejects the map
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // rejects the map
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   string             // offending node (empty if map-level)
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %q: %s", e.Severity, e.NodeID, e.Message)
}

// ValidationWarning describes a non-blocking advisory finding.
type ValidationWarning struct {
	NodeID  string
	Message string
}

// ValidationResult bundles blocking errors and advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// OK reports whether the result has no blocking errors.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Validate checks a map for the structural invariants the layout engine
// relies on. Layouts never validate; maps must pass here at ingestion.
// The map is never mutated.
func Validate(m *Map) []ValidationError {
	if m == nil || m.Root == nil {
		return []ValidationError{{Message: "mind map has no root node", Severity: SeverityError}}
	}
	var errs []ValidationError
	cyclic := validateAcyclic(m.Root)
	errs = append(errs, cyclic...)
	if len(cyclic) > 0 {
		// The remaining checks walk parent links and assume a tree.
		return errs
	}
	errs = append(errs, validateIDs(m.Root)...)
	errs = append(errs, validateDepths(m.Root)...)
	errs = append(errs, validateContent(m.Root)...)
	return errs
}

// ValidateAll runs Validate and separates errors from warnings.
func ValidateAll(m *Map) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(m) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, ValidationWarning{
				NodeID:  e.NodeID,
				Message: e.Message,
			})
			continue
		}
		result.Errors = append(result.Errors, e)
	}
	return result
}

// validateAcyclic detects a node that is its own ancestor, using DFS with
// 3-colour marking on node identity. Gray marks the current path.
func validateAcyclic(root *Node) []ValidationError {
	const (
		white = iota
		gray
		black
	)
	color := make(map[*Node]int)

	type frame struct {
		node *Node
		next int // index of the next child to visit
	}
	stack := []frame{{node: root}}
	color[root] = gray
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.node.Children) {
			color[top.node] = black
			stack = stack[:len(stack)-1]
			continue
		}
		child := top.node.Children[top.next]
		top.next++
		if child == nil {
			continue
		}
		switch color[child] {
		case gray:
			return []ValidationError{{
				NodeID:   child.ID,
				Message:  fmt.Sprintf("cycle detected: node is a child of its descendant %q", top.node.ID),
				Severity: SeverityError,
			}}
		case white:
			color[child] = gray
			stack = append(stack, frame{node: child})
		}
	}
	return nil
}

// validateIDs checks that every id is present and unique.
func validateIDs(root *Node) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)
	walkAll(root, func(n, _ *Node) {
		if n.ID == "" {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("node %q has an empty id", n.Label),
				Severity: SeverityError,
			})
			return
		}
		if seen[n.ID] {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "duplicate id",
				Severity: SeverityError,
			})
		}
		seen[n.ID] = true
	})
	return errs
}

// validateDepths checks root depth 0 and depth = parent depth + 1.
func validateDepths(root *Node) []ValidationError {
	var errs []ValidationError
	walkAll(root, func(n, parent *Node) {
		want := 0
		if parent != nil {
			want = parent.Depth + 1
		}
		if n.Depth != want {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("depth %d, want %d", n.Depth, want),
				Severity: SeverityError,
			})
		}
	})
	return errs
}

// validateContent reports advisory problems with labels and colours.
func validateContent(root *Node) []ValidationError {
	var errs []ValidationError
	walkAll(root, func(n, _ *Node) {
		if n.Label == "" {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  "empty label",
				Severity: SeverityWarning,
			})
		}
		if n.Color != "" && !colorPattern.MatchString(n.Color) {
			errs = append(errs, ValidationError{
				NodeID:   n.ID,
				Message:  fmt.Sprintf("color %q is not #rrggbb", n.Color),
				Severity: SeverityWarning,
			})
		}
	})
	return errs
}

// walkAll visits every node with its parent in pre-order, including nodes
// that share an id. Only called on acyclic trees.
func walkAll(root *Node, fn func(n, parent *Node)) {
	type frame struct{ node, parent *Node }
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(f.node, f.parent)
		for i := len(f.node.Children) - 1; i >= 0; i-- {
			if c := f.node.Children[i]; c != nil {
				stack = append(stack, frame{node: c, parent: f.node})
			}
		}
	}
}
