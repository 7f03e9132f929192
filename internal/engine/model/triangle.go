package model

import "github.com/Faultbox/hullview/pkg/math"

// Triangle is three ordered points with the derived face normal.
// The normal is the unnormalized cross product of the edge vectors.
type Triangle struct {
	P0, P1, P2 math.Vec3
	Normal     math.Vec3
}

// NewTriangle builds a triangle and its normal.
func NewTriangle(p0, p1, p2 math.Vec3) Triangle {
	return Triangle{
		P0:     p0,
		P1:     p1,
		P2:     p2,
		Normal: p1.Sub(p0).Cross(p2.Sub(p0)),
	}
}

// Points returns the vertices in order.
func (t Triangle) Points() [3]math.Vec3 {
	return [3]math.Vec3{t.P0, t.P1, t.P2}
}

// Edges returns the three edges as point pairs.
func (t Triangle) Edges() [3][2]math.Vec3 {
	return [3][2]math.Vec3{{t.P0, t.P1}, {t.P1, t.P2}, {t.P2, t.P0}}
}

// UnitNormal returns the normalized face normal, zero for a degenerate triangle.
func (t Triangle) UnitNormal() math.Vec3 {
	return t.Normal.Normalize()
}

// Same reports whether both triangles have identical points.
func (t Triangle) Same(o Triangle) bool {
	return t.P0 == o.P0 && t.P1 == o.P1 && t.P2 == o.P2
}
