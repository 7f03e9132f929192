// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/pkg/math"
)

// BBoxWireframeVertexCount is the number of vertices for a bbox wireframe (12 edges × 2).
const BBoxWireframeVertexCount = 24

// DefaultBBoxPadding is the default padding for selection boxes, in metres.
const DefaultBBoxPadding = 0.05

// BBoxWireframe returns line-list endpoints for the edges of b grown by padding.
// Invalid bounds yield nil.
func BBoxWireframe(b model.Bounds, padding float32) []math.Vec3 {
	if !b.Valid() {
		return nil
	}
	pad := math.Vec3{X: padding, Y: padding, Z: padding}
	lo, hi := b.Min.Sub(pad), b.Max.Add(pad)

	corner := func(x, y, z bool) math.Vec3 {
		p := lo
		if x {
			p.X = hi.X
		}
		if y {
			p.Y = hi.Y
		}
		if z {
			p.Z = hi.Z
		}
		return p
	}

	out := make([]math.Vec3, 0, BBoxWireframeVertexCount)
	// Edges along each axis, at the four corners of the opposite face.
	for _, f := range [4][2]bool{{false, false}, {true, false}, {true, true}, {false, true}} {
		out = append(out,
			corner(false, f[0], f[1]), corner(true, f[0], f[1]),
			corner(f[0], false, f[1]), corner(f[0], true, f[1]),
			corner(f[0], f[1], false), corner(f[0], f[1], true))
	}
	return out
}

// SelectionWireframe concatenates the wireframes of every bounds in bs.
func SelectionWireframe(bs []model.Bounds, padding float32) []math.Vec3 {
	var out []math.Vec3
	for _, b := range bs {
		out = append(out, BBoxWireframe(b, padding)...)
	}
	return out
}
