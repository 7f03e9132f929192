package scene

import (
	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/pkg/math"
)

// LeadInVertices is the number of placeholder vertices at the start of every shard buffer.
const LeadInVertices = 2

// Builder assembles ShardData with each object's triangles as one contiguous run.
type Builder struct {
	data ShardData
}

// NewBuilder starts a shard buffer with the lead-in vertices.
func NewBuilder() *Builder {
	b := &Builder{data: ShardData{
		Vertices: make([]model.Vertex, LeadInVertices),
		Objects:  map[int32]model.ObjectRange{},
		Bounds:   model.EmptyBounds(),
	}}
	return b
}

// AddObject appends the triangles of one object. Objects without triangles are skipped.
func (b *Builder) AddObject(id, materialType int32, tris []model.Triangle) {
	if len(tris) == 0 {
		return
	}

	start := int32(len(b.data.Vertices))
	bounds := model.EmptyBounds()
	for _, t := range tris {
		n := t.UnitNormal()
		for _, p := range t.Points() {
			b.data.Indices = append(b.data.Indices, int32(len(b.data.Vertices)))
			b.data.Vertices = append(b.data.Vertices, model.Vertex{
				Position: p,
				Normal:   n,
				Material: materialType * 100,
				ObjectID: id,
			})
			bounds = bounds.Extend(p)
		}
	}

	b.data.Objects[id] = model.ObjectRange{
		Start:    start,
		End:      int32(len(b.data.Vertices)) - 1,
		BBoxSlot: int32(len(b.data.ObjectBounds)),
	}
	b.data.ObjectBounds = append(b.data.ObjectBounds, bounds)
	b.data.Bounds = b.data.Bounds.Union(bounds)
}

// Build returns the assembled data.
func (b *Builder) Build() ShardData {
	return b.data
}

// Quad splits the quad a-b-c-d into two triangles.
func Quad(a, b, c, d math.Vec3) []model.Triangle {
	return []model.Triangle{
		model.NewTriangle(a, b, c),
		model.NewTriangle(a, c, d),
	}
}

// Box returns the 12 outward-facing triangles of an axis-aligned box.
func Box(min, max math.Vec3) []model.Triangle {
	p := func(x, y, z bool) math.Vec3 {
		v := min
		if x {
			v.X = max.X
		}
		if y {
			v.Y = max.Y
		}
		if z {
			v.Z = max.Z
		}
		return v
	}
	var tris []model.Triangle
	tris = append(tris, Quad(p(false, false, false), p(false, true, false), p(true, true, false), p(true, false, false))...) // -z
	tris = append(tris, Quad(p(false, false, true), p(true, false, true), p(true, true, true), p(false, true, true))...)     // +z
	tris = append(tris, Quad(p(false, false, false), p(true, false, false), p(true, false, true), p(false, false, true))...) // -y
	tris = append(tris, Quad(p(false, true, false), p(false, true, true), p(true, true, true), p(true, true, false))...)     // +y
	tris = append(tris, Quad(p(false, false, false), p(false, false, true), p(false, true, true), p(false, true, false))...) // -x
	tris = append(tris, Quad(p(true, false, false), p(true, true, false), p(true, true, true), p(true, false, true))...)     // +x
	return tris
}
