package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/chazu/mindscape/pkg/mindmap"
	"github.com/cockroachdb/errors"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Source rewriting
// ---------------------------------------------------------------------------

// kwMarker prefixes option names after rewriting, so `:color` reaches the
// builtins as the string "::color".
const kwMarker = "::"

// preprocessSource turns mind-map source into plain zygomys input. Options
// written :name become "::name" strings, hyphens inside symbols become
// underscores (zygomys reads a-b as subtraction) and ; comments become //
// comments. Quoted text passes through untouched, so ids like
// "parent-material" keep their hyphens.
func preprocessSource(src string) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/8)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"' || c == '`':
			j := quotedEnd(src, i)
			out.WriteString(src[i:j])
			i = j
		case c == ';':
			j := i
			for j < len(src) && src[j] == ';' {
				j++
			}
			k := j
			for k < len(src) && src[k] != '\n' {
				k++
			}
			out.WriteString("//")
			out.WriteString(src[j:k])
			i = k
		case c == ':' && i+1 < len(src) && isLetter(src[i+1]):
			j := i + 1
			for j < len(src) && (isSymbolChar(src[j]) || src[j] == '-') {
				j++
			}
			out.WriteString(strconv.Quote(kwMarker + src[i+1:j]))
			i = j
		case c == '-' && i > 0 && i+1 < len(src) && isSymbolChar(src[i-1]) && isLetter(src[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// quotedEnd returns the index just past the literal opening at src[i].
// Backslash escapes apply inside double quotes only.
func quotedEnd(src string, i int) int {
	q := src[i]
	for j := i + 1; j < len(src); j++ {
		switch {
		case q == '"' && src[j] == '\\':
			j++
		case src[j] == q:
			return j + 1
		}
	}
	return len(src)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSymbolChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpTopic wraps a mindmap.Node so it can be returned from `topic` and
// consumed as a child by `topic` or as the root by `mindmap`.
type sexpTopic struct {
	node *mindmap.Node
}

func (t *sexpTopic) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(topic %q %q)", t.node.ID, t.node.Label)
}
func (t *sexpTopic) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Builtin arguments
// ---------------------------------------------------------------------------

// callArgs is a builtin's argument list with its string options pulled out.
type callArgs struct {
	positional []zygo.Sexp
	opts       map[string]string
}

// splitArgs separates options from positional arguments. Only the option
// names in allowed are accepted and each must be followed by a string.
func splitArgs(fn string, args []zygo.Sexp, allowed ...string) (callArgs, error) {
	ca := callArgs{opts: make(map[string]string)}
	for i := 0; i < len(args); i++ {
		name, ok := optionName(args[i])
		if !ok {
			ca.positional = append(ca.positional, args[i])
			continue
		}
		if !slices.Contains(allowed, name) {
			return ca, errors.Newf("%s: unknown option :%s", fn, name)
		}
		if i+1 == len(args) {
			return ca, errors.Newf("%s: option :%s needs a value", fn, name)
		}
		i++
		v, err := toString(args[i])
		if err != nil {
			return ca, errors.Wrapf(err, "%s: option :%s", fn, name)
		}
		ca.opts[name] = v
	}
	return ca, nil
}

// optionName reports whether s is a rewritten :name option.
func optionName(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwMarker)
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", errors.Newf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toTopics extracts topic nodes from a topic or a list/array of topics.
func toTopics(s zygo.Sexp) ([]*mindmap.Node, error) {
	if t, ok := s.(*sexpTopic); ok {
		return []*mindmap.Node{t.node}, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, errors.Newf("expected topic, got %T (%s)", s, s.SexpString(nil))
	}
	nodes := make([]*mindmap.Node, 0, len(items))
	for _, item := range items {
		t, ok := item.(*sexpTopic)
		if !ok {
			return nil, errors.Newf("expected topic, got %T (%s)", item, item.SexpString(nil))
		}
		nodes = append(nodes, t.node)
	}
	return nodes, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, errors.Newf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder collects the map produced by one evaluation.
type builder struct {
	result *mindmap.Map
}

// registerBuiltins installs the mind-map builtins into a zygomys environment.
//
// Source must go through preprocessSource first so that options arrive as
// marker strings.
func registerBuiltins(env *zygo.Zlisp, b *builder) {

	// -----------------------------------------------------------------------
	// (topic "id" "Label" :description "..." :color "#rrggbb" children...)
	// -----------------------------------------------------------------------
	env.AddFunction("topic", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ca, err := splitArgs("topic", args, "description", "color")
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(ca.positional) < 2 {
			return zygo.SexpNull, errors.New("topic requires an id and a label")
		}

		id, err := toString(ca.positional[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "topic: id")
		}
		label, err := toString(ca.positional[1])
		if err != nil {
			return zygo.SexpNull, errors.Wrapf(err, "topic %q: label", id)
		}

		n := mindmap.NewNode(id, label)
		n.Description = ca.opts["description"]
		n.Color = ca.opts["color"]

		for i, arg := range ca.positional[2:] {
			children, err := toTopics(arg)
			if err != nil {
				return zygo.SexpNull, errors.Wrapf(err, "topic %q: child %d", id, i+1)
			}
			n.AddChild(children...)
		}

		return &sexpTopic{node: n}, nil
	})

	// -----------------------------------------------------------------------
	// (mindmap "Title" :description "..." (topic ...))
	// -----------------------------------------------------------------------
	env.AddFunction("mindmap", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if b.result != nil {
			return zygo.SexpNull, errors.Newf("mindmap: %q is already defined; a source holds one map", b.result.Title)
		}

		ca, err := splitArgs("mindmap", args, "description")
		if err != nil {
			return zygo.SexpNull, err
		}
		if len(ca.positional) != 2 {
			return zygo.SexpNull, errors.Newf("mindmap requires a title and one root topic, got %d arguments", len(ca.positional))
		}

		title, err := toString(ca.positional[0])
		if err != nil {
			return zygo.SexpNull, errors.Wrap(err, "mindmap: title")
		}
		root, ok := ca.positional[1].(*sexpTopic)
		if !ok {
			return zygo.SexpNull, errors.Newf("mindmap: root: expected topic, got %T (%s)",
				ca.positional[1], ca.positional[1].SexpString(nil))
		}

		m := mindmap.NewMap(title, root.node)
		m.Description = ca.opts["description"]
		b.result = m

		return root, nil
	})
}
