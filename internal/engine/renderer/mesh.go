package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/scene"
	"github.com/Faultbox/hullview/internal/logger"
)

// floatsPerVertex is position xyz + normal xyz.
const floatsPerVertex = 6

// firstDrawVertex skips the lead-in vertices that belong to no triangle.
const firstDrawVertex = scene.LeadInVertices

// shardMesh holds the GPU buffers of one shard.
type shardMesh struct {
	vao         uint32
	vbo         uint32
	materialVBO uint32
	count       int32
}

// interleave packs vertices as position, normal.
func interleave(vertices []model.Vertex) []float32 {
	out := make([]float32, 0, len(vertices)*floatsPerVertex)
	for _, v := range vertices {
		out = append(out,
			v.Position.X, v.Position.Y, v.Position.Z,
			v.Normal.X, v.Normal.Y, v.Normal.Z)
	}
	return out
}

// drawCount returns how many vertices after the lead-in form whole triangles.
func drawCount(vertices int) int32 {
	n := vertices - firstDrawVertex
	if n < 3 {
		return 0
	}
	return int32(n - n%3)
}

func newShardMesh() *shardMesh {
	m := &shardMesh{}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.materialVBO)

	gl.BindVertexArray(m.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, floatsPerVertex*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, floatsPerVertex*4, unsafe.Pointer(uintptr(3*4)))
	gl.EnableVertexAttribArray(1)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.materialVBO)
	gl.VertexAttribIPointer(2, 1, gl.INT, 4, nil)
	gl.EnableVertexAttribArray(2)

	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	return m
}

func (m *shardMesh) uploadGeometry(g scene.Geometry) {
	data := interleave(g.Vertices)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	m.count = drawCount(len(g.Vertices))
}

func (m *shardMesh) uploadMaterials(metadata []int32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, m.materialVBO)
	if len(metadata) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(metadata)*4, unsafe.Pointer(&metadata[0]), gl.DYNAMIC_DRAW)
	} else {
		gl.BufferData(gl.ARRAY_BUFFER, 0, nil, gl.DYNAMIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

func (m *shardMesh) draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.TRIANGLES, firstDrawVertex, m.count)
	gl.BindVertexArray(0)
}

func (m *shardMesh) destroy() {
	gl.DeleteVertexArrays(1, &m.vao)
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.materialVBO)
}

// Sync uploads pending geometry and dirty materials of every shard.
// It reports whether anything changed on the GPU.
func (r *Renderer) Sync(set *scene.ShardSet) bool {
	changed := false
	set.Each(func(sh *scene.Shard) {
		id := sh.ID()
		if g, ok := sh.TakeGeometry(); ok {
			if r.meshes[id] == nil {
				r.meshes[id] = newShardMesh()
			}
			r.meshes[id].uploadGeometry(g)
			changed = true
			logger.Debug("shard geometry uploaded",
				zap.Uint32("shard", id),
				zap.Int("vertices", len(g.Vertices)),
				zap.Int32("draw", r.meshes[id].count))
		}
		if sh.MetadataDirty() && r.meshes[id] != nil {
			r.meshes[id].uploadMaterials(sh.Metadata())
			sh.ResetMetadataDirty()
			changed = true
		}
	})
	return changed
}
