package layout

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
)

// Bounds returns the axis-aligned bounding box of the placed positions.
// ok is false when placed is empty.
func Bounds(placed []Placed) (box sdf.Box3, ok bool) {
	if len(placed) == 0 {
		return sdf.Box3{}, false
	}
	box.Min = placed[0].Position
	box.Max = placed[0].Position
	for _, pn := range placed[1:] {
		p := pn.Position
		box.Min.X = math.Min(box.Min.X, p.X)
		box.Min.Y = math.Min(box.Min.Y, p.Y)
		box.Min.Z = math.Min(box.Min.Z, p.Z)
		box.Max.X = math.Max(box.Max.X, p.X)
		box.Max.Y = math.Max(box.Max.Y, p.Y)
		box.Max.Z = math.Max(box.Max.Z, p.Z)
	}
	return box, true
}

// MaxExtent returns the largest side of box.
func MaxExtent(box sdf.Box3) float64 {
	size := box.Size()
	return math.Max(size.X, math.Max(size.Y, size.Z))
}
