package renderer

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/hullview/pkg/math"
)

// Overlay colors.
var (
	SnapColor      = math.Vec3{X: 1, Y: 0.9, Z: 0.2}
	DimensionColor = math.Vec3{X: 0.2, Y: 0.9, Z: 1}
	SelectionColor = math.Vec3{X: SelectedColor[0], Y: SelectedColor[1], Z: SelectedColor[2]}
)

func (r *Renderer) createOverlay() {
	gl.GenVertexArrays(1, &r.overlayVAO)
	gl.GenBuffers(1, &r.overlayVBO)

	gl.BindVertexArray(r.overlayVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.overlayVBO)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, 3*4, nil)
	gl.EnableVertexAttribArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// DrawPoints draws screen-sized markers at the given world points.
func (r *Renderer) DrawPoints(viewProj math.Mat4, color math.Vec3, points ...math.Vec3) {
	r.drawOverlay(viewProj, color, gl.POINTS, points)
}

// DrawLine draws a segment between two world points.
func (r *Renderer) DrawLine(viewProj math.Mat4, color math.Vec3, a, b math.Vec3) {
	r.drawOverlay(viewProj, color, gl.LINES, []math.Vec3{a, b})
}

// DrawSegments draws a line list, two points per segment.
func (r *Renderer) DrawSegments(viewProj math.Mat4, color math.Vec3, points []math.Vec3) {
	r.drawOverlay(viewProj, color, gl.LINES, points)
}

func (r *Renderer) drawOverlay(viewProj math.Mat4, color math.Vec3, mode uint32, points []math.Vec3) {
	if len(points) == 0 {
		return
	}
	data := make([]float32, 0, len(points)*3)
	for _, p := range points {
		data = append(data, p.X, p.Y, p.Z)
	}

	gl.Disable(gl.DEPTH_TEST)
	defer gl.Enable(gl.DEPTH_TEST)

	r.overlay.Use()
	r.overlay.SetMat4("uViewProj", viewProj)
	r.overlay.SetVec3("uColor", color)

	gl.BindVertexArray(r.overlayVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.overlayVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
	gl.DrawArrays(mode, 0, int32(len(points)))
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}
