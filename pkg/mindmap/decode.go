package mindmap

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"strings"

	"github.com/cockroachdb/errors"
)

// wireNode mirrors Node but keeps depth optional, so that a missing depth can
// be derived from the parent while an explicit wrong one is left for
// Validate to report.
type wireNode struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Description string      `json:"description,omitempty"`
	Color       string      `json:"color,omitempty"`
	Depth       *int        `json:"depth,omitempty"`
	Children    []*wireNode `json:"children,omitempty"`
}

type wireMap struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Root        *wireNode `json:"rootNode"`
}

// Decode reads a mind map in the JSON exchange format
// ({"title", "description", "rootNode": {...}}).
func Decode(r io.Reader) (*Map, error) {
	var w wireMap
	dec := json.NewDecoder(r)
	if err := dec.Decode(&w); err != nil {
		return nil, errors.Wrap(err, "decoding mind map JSON")
	}
	if w.Root == nil {
		return nil, errors.New("mind map JSON has no rootNode")
	}
	return &Map{
		Title:       w.Title,
		Description: w.Description,
		Root:        fromWire(w.Root),
	}, nil
}

// DecodeBytes is Decode over a byte slice.
func DecodeBytes(b []byte) (*Map, error) {
	return Decode(bytes.NewReader(b))
}

// DecodeDataURL decodes a base64 data URL such as
// "data:application/json;base64,eyJ0aXRsZSI6...", the form produced by a
// browser FileReader.
func DecodeDataURL(s string) (*Map, error) {
	header, payload, ok := strings.Cut(s, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return nil, errors.New("not a data URL")
	}
	if !strings.HasSuffix(header, ";base64") {
		return nil, errors.Newf("data URL %q is not base64 encoded", header)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Wrap(err, "decoding data URL payload")
	}
	return DecodeBytes(raw)
}

// Encode writes m in the JSON exchange format.
func Encode(w io.Writer, m *Map) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(m), "encoding mind map JSON")
}

// fromWire converts the wire tree iteratively, deriving missing depths.
func fromWire(root *wireNode) *Node {
	type frame struct {
		w      *wireNode
		parent *Node
	}
	var out *Node
	stack := []frame{{w: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &Node{
			ID:          f.w.ID,
			Label:       f.w.Label,
			Description: f.w.Description,
			Color:       f.w.Color,
		}
		switch {
		case f.w.Depth != nil:
			n.Depth = *f.w.Depth
		case f.parent != nil:
			n.Depth = f.parent.Depth + 1
		}
		if f.parent == nil {
			out = n
		} else {
			f.parent.Children = append(f.parent.Children, n)
		}
		// Push in reverse so children are appended in their given order.
		for i := len(f.w.Children) - 1; i >= 0; i-- {
			if c := f.w.Children[i]; c != nil {
				stack = append(stack, frame{w: c, parent: n})
			}
		}
	}
	return out
}
