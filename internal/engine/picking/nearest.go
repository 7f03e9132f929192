package picking

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/pkg/math"
)

// ProjectPointToLine projects p onto the line through a and b.
// It returns the projection, its distance to p, and the dot product of the
// endpoint-to-projection vectors, which is negative only strictly inside the segment.
func ProjectPointToLine(p, a, b math.Vec3) (math.Vec3, float32, float32) {
	line := b.Sub(a)
	ll := line.Dot(line)
	if ll == 0 {
		return a, p.Distance(a), 0
	}
	proj := a.Add(line.Scale(line.Dot(p.Sub(a)) / ll))
	return proj, p.Distance(proj), proj.Sub(a).Dot(proj.Sub(b))
}

// Nearest holds the closest vertex and interior edge point of a triangle.
type Nearest struct {
	Vertex     math.Vec3
	VertexDist float32
	Edge       math.Vec3
	EdgeDist   float32 // MaxFloat32 when no projection is interior
	HasEdge    bool
}

// FindNearest returns the nearest triangle vertex and nearest interior edge projection to p.
func FindNearest(p math.Vec3, tri model.Triangle) Nearest {
	n := Nearest{VertexDist: math32.MaxFloat32, EdgeDist: math32.MaxFloat32}

	for _, e := range tri.Edges() {
		proj, d, dot := ProjectPointToLine(p, e[0], e[1])
		if dot < 0 && d < n.EdgeDist {
			n.Edge, n.EdgeDist, n.HasEdge = proj, d, true
		}
	}

	for _, v := range tri.Points() {
		if d := p.Distance(v); d < n.VertexDist {
			n.Vertex, n.VertexDist = v, d
		}
	}
	return n
}
