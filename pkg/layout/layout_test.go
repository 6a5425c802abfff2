package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/chazu/mindscape/pkg/mindmap"
	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tol = 1e-9

func near(t *testing.T, want, got v3.Vec, msg string) {
	t.Helper()
	if math.Abs(want.X-got.X) > tol || math.Abs(want.Y-got.Y) > tol || math.Abs(want.Z-got.Z) > tol {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// star returns a root with n leaf children c0..c(n-1).
func star(n int) *mindmap.Node {
	root := mindmap.NewNode("root", "Root")
	for i := 0; i < n; i++ {
		root.AddChild(mindmap.NewNode(fmt.Sprintf("c%d", i), fmt.Sprintf("C%d", i)))
	}
	return root
}

// wide builds a tree of the given fan-out and depth with unique ids.
func wide(fanout, depth int) *mindmap.Map {
	root := mindmap.NewNode("n", "n")
	var grow func(n *mindmap.Node, level int)
	grow = func(n *mindmap.Node, level int) {
		if level == depth {
			return
		}
		for i := 0; i < fanout; i++ {
			c := mindmap.NewNode(fmt.Sprintf("%s.%d", n.ID, i), "x")
			n.AddChild(c)
			grow(c, level+1)
		}
	}
	grow(root, 0)
	return mindmap.NewMap("wide", root)
}

var allModes = []Mode{ModeTree, ModeRadial, ModeForce}

func TestTreeStarExample(t *testing.T) {
	root := star(4)
	exp := mindmap.NewExpansionSet("root")
	placed := Tree(root, exp, DefaultParams())

	require.Len(t, placed, 5)
	assert.Equal(t, "root", placed[0].Node.ID)
	near(t, v3.Vec{}, placed[0].Position, "root")

	wantX := []float64{-3.6, -1.2, 1.2, 3.6}
	for i, pn := range placed[1:] {
		assert.Equal(t, fmt.Sprintf("c%d", i), pn.Node.ID, "children keep their order")
		near(t, v3.Vec{X: wantX[i], Y: -4, Z: -2}, pn.Position, pn.Node.ID)
	}
}

func TestTreeSpanGrowsWithChildren(t *testing.T) {
	placed := Tree(star(8), mindmap.NewExpansionSet("root"), DefaultParams())
	// span = 8 × 3 = 24, spacing = 24 / 9
	near(t, v3.Vec{X: -12 + 24.0/9, Y: -4, Z: -2}, placed[1].Position, "first child")
	near(t, v3.Vec{X: -12 + 8*24.0/9, Y: -4, Z: -2}, placed[8].Position, "last child")
}

func TestTreeAnchor(t *testing.T) {
	p := DefaultParams()
	p.Anchor = v3.Vec{X: 10, Y: 1, Z: -3}
	placed := Tree(star(1), mindmap.NewExpansionSet("root"), p)
	near(t, p.Anchor, placed[0].Position, "root at anchor")
	near(t, v3.Vec{X: 10, Y: -3, Z: -5}, placed[1].Position, "single child centred under root")
}

func TestTreeChildWidthNarrows(t *testing.T) {
	root := mindmap.NewNode("root", "Root")
	a := mindmap.NewNode("a", "A").AddChild(mindmap.NewNode("a0", "A0"), mindmap.NewNode("a1", "A1"))
	root.AddChild(a, mindmap.NewNode("b", "B"))
	mindmap.NewMap("t", root)

	placed := Tree(root, mindmap.NewExpansionSet("root", "a"), DefaultParams())
	idx := Index(placed)
	// Root span 12 over 2 children: a at x = −6 + 4 = −2, child width 6.
	near(t, v3.Vec{X: -2, Y: -4, Z: -2}, idx["a"], "a")
	// a's span = max(6, 2×3) = 6, spacing 2: a0 at −2 − 3 + 2 = −3.
	near(t, v3.Vec{X: -3, Y: -8, Z: -4}, idx["a0"], "a0")
	near(t, v3.Vec{X: -1, Y: -8, Z: -4}, idx["a1"], "a1")
}

func TestRadialPositions(t *testing.T) {
	root := mindmap.NewNode("root", "Root")
	c0 := mindmap.NewNode("c0", "C0").AddChild(mindmap.NewNode("g", "G"))
	root.AddChild(c0, mindmap.NewNode("c1", "C1"))
	mindmap.NewMap("r", root)

	placed := Radial(root, mindmap.NewExpansionSet("root", "c0"), DefaultParams())
	require.Len(t, placed, 4)
	assert.Equal(t, []string{"root", "c0", "g", "c1"}, ids(placed))

	idx := Index(placed)
	near(t, v3.Vec{X: 6, Y: -3, Z: 0}, idx["c0"], "c0 at angle 0")
	near(t, v3.Vec{X: 6 + 6*0.85, Y: -6, Z: 0}, idx["g"], "g inherits angle, shrunk radius")
	near(t, v3.Vec{X: -6, Y: -4, Z: math.Sin(math.Pi) * 6}, idx["c1"], "c1 at angle π, staggered")
}

func TestForceZeroIterationsKeepsSeed(t *testing.T) {
	p := DefaultParams()
	p.Force.Iterations = 0
	placed := Force(star(1), mindmap.NewExpansionSet("root"), p)

	require.Len(t, placed, 2)
	near(t, v3.Vec{X: 5, Y: 0, Z: 0}, placed[0].Position, "root seed")
	near(t, v3.Vec{X: -7, Y: -3, Z: math.Sin(math.Pi) * 7}, placed[1].Position, "child seed")
}

func TestForceRepulsionPushesApart(t *testing.T) {
	seedOnly := DefaultParams()
	seedOnly.Force.Iterations = 0
	relaxed := DefaultParams()

	exp := mindmap.NewExpansionSet("root")
	before := Force(star(5), exp, seedOnly)
	after := Force(star(5), exp, relaxed)

	dBefore := before[1].Position.Sub(before[2].Position).Length()
	dAfter := after[1].Position.Sub(after[2].Position).Length()
	assert.Greater(t, dAfter, dBefore)
}

func TestForceConservesCentroid(t *testing.T) {
	exp := mindmap.ExpandAll(wide(3, 2))
	m := wide(3, 2)
	seedOnly := DefaultParams()
	seedOnly.Force.Iterations = 0

	centroid := func(ps []Placed) v3.Vec {
		var c v3.Vec
		for _, pn := range ps {
			c = c.Add(pn.Position)
		}
		return c.MulScalar(1 / float64(len(ps)))
	}
	// Forces are pairwise equal and opposite, so the centroid never moves.
	near(t, centroid(Force(m.Root, exp, seedOnly)), centroid(Force(m.Root, exp, DefaultParams())), "centroid")
}

func TestForceCoincidentNodesWithoutEpsilon(t *testing.T) {
	p := DefaultParams()
	p.Force.Epsilon = 0
	p.Force.BaseRadius = 0
	p.Force.RadiusPerDepth = 0
	p.Force.VerticalStep = 0
	placed := Force(star(2), mindmap.NewExpansionSet("root"), p)
	for _, pn := range placed {
		for _, c := range []float64{pn.Position.X, pn.Position.Y, pn.Position.Z} {
			assert.False(t, math.IsNaN(c) || math.IsInf(c, 0), "position of %s must be finite", pn.Node.ID)
		}
	}
}

func TestDeterminism(t *testing.T) {
	m := wide(3, 3)
	exp := mindmap.ExpandAll(m)
	for _, mode := range allModes {
		a := Compute(mode, m.Root, exp, DefaultParams())
		b := Compute(mode, m.Root, exp, DefaultParams())
		assert.Equal(t, a, b, "mode %s must be deterministic", mode)
	}
}

func TestOnlyExpandedChainsArePlaced(t *testing.T) {
	m := wide(3, 3)
	parent := make(map[string]string)
	mindmap.Walk(m.Root, func(n *mindmap.Node) bool {
		for _, c := range n.Children {
			parent[c.ID] = n.ID
		}
		return true
	})

	// Expand the root, one child and one of its grandchildren, plus a node
	// behind a collapsed ancestor that must stay hidden.
	exp := mindmap.NewExpansionSet("n", "n.0", "n.0.1", "n.2.2")
	for _, mode := range allModes {
		placed := Compute(mode, m.Root, exp, DefaultParams())
		require.NotEmpty(t, placed)
		assert.Equal(t, "n", placed[0].Node.ID, "mode %s starts with root", mode)
		for _, pn := range placed {
			for id := parent[pn.Node.ID]; id != ""; id = parent[id] {
				assert.True(t, exp.Has(id), "mode %s placed %s behind collapsed %s", mode, pn.Node.ID, id)
			}
		}
		// root + 3 children + 3 grandchildren under n.0 + 3 under n.0.1
		assert.Len(t, placed, 10, "mode %s", mode)
	}
}

func TestCollapsedRootPlacesOnlyRoot(t *testing.T) {
	for _, mode := range allModes {
		placed := Compute(mode, star(4), mindmap.ExpansionSet{}, DefaultParams())
		require.Len(t, placed, 1, "mode %s", mode)
	}
}

func TestNilRoot(t *testing.T) {
	for _, mode := range allModes {
		assert.Nil(t, Compute(mode, nil, mindmap.ExpansionSet{}, DefaultParams()))
	}
}

func TestParseMode(t *testing.T) {
	for _, mode := range allModes {
		got, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}
	got, err := ParseMode(" Radial ")
	require.NoError(t, err)
	assert.Equal(t, ModeRadial, got)

	_, err = ParseMode("spiral")
	assert.Error(t, err)
	assert.Equal(t, "Mode(7)", Mode(7).String())
}

func TestFilterDepth(t *testing.T) {
	m := wide(2, 3)
	placed := Tree(m.Root, mindmap.ExpandAll(m), DefaultParams())

	assert.Len(t, FilterDepth(placed, 0), 1)
	assert.Len(t, FilterDepth(placed, 1), 3)
	assert.Len(t, FilterDepth(placed, 3), len(placed))
	assert.Empty(t, FilterDepth(placed, -1))
}

func TestBounds(t *testing.T) {
	_, ok := Bounds(nil)
	assert.False(t, ok)

	placed := Tree(star(4), mindmap.NewExpansionSet("root"), DefaultParams())
	box, ok := Bounds(placed)
	require.True(t, ok)
	near(t, v3.Vec{X: -3.6, Y: -4, Z: -2}, box.Min, "min")
	near(t, v3.Vec{X: 3.6, Y: 0, Z: 0}, box.Max, "max")
	assert.InDelta(t, 7.2, MaxExtent(box), tol)

	single, ok := Bounds(placed[:1])
	require.True(t, ok)
	assert.Equal(t, 0.0, MaxExtent(single))
}

func ids(placed []Placed) []string {
	out := make([]string, len(placed))
	for i, pn := range placed {
		out[i] = pn.Node.ID
	}
	return out
}
