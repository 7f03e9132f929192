package picking

import (
	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/pkg/math"
)

// Rasterizer fills a pick image on the CPU the way the pick pass does on the
// GPU: nearest depth wins, each texel stores the interpolated world position
// and the packed pick index of its triangle.
// Rows run top to bottom. Triangles crossing the eye plane are skipped.
type Rasterizer struct {
	img      Image
	viewProj math.Mat4
	depth    []float32
}

// NewRasterizer clears img and prepares a depth buffer for it.
func NewRasterizer(img Image, viewProj math.Mat4) *Rasterizer {
	for i := range img.Data {
		img.Data[i] = 0
	}
	depth := make([]float32, img.Width*img.Height)
	for i := range depth {
		depth[i] = 1
	}
	return &Rasterizer{img: img, viewProj: viewProj, depth: depth}
}

type clipVertex struct {
	x, y, z float32 // window x, window y, ndc depth
	invW    float32
	world   math.Vec3
}

func (r *Rasterizer) project(p math.Vec3) (clipVertex, bool) {
	c := r.viewProj.MulVec4(math.Vec4{p.X, p.Y, p.Z, 1})
	if c[3] <= 0 {
		return clipVertex{}, false
	}
	invW := 1 / c[3]
	return clipVertex{
		x:     (c[0]*invW + 1) / 2 * float32(r.img.Width),
		y:     (1 - c[1]*invW) / 2 * float32(r.img.Height),
		z:     c[2] * invW,
		invW:  invW,
		world: p,
	}, true
}

func edgeFn(a, b clipVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// Draw rasterizes tri with the given pick index in shard.
// Both windings are filled.
func (r *Rasterizer) Draw(shard, index uint32, tri model.Triangle) {
	var v [3]clipVertex
	for i, p := range tri.Points() {
		cv, ok := r.project(p)
		if !ok {
			return
		}
		v[i] = cv
	}

	area := edgeFn(v[0], v[1], v[2].x, v[2].y)
	if area == 0 {
		return
	}

	minX := clampInt(int(min(v[0].x, v[1].x, v[2].x)), 0, r.img.Width-1)
	maxX := clampInt(int(max(v[0].x, v[1].x, v[2].x)), 0, r.img.Width-1)
	minY := clampInt(int(min(v[0].y, v[1].y, v[2].y)), 0, r.img.Height-1)
	maxY := clampInt(int(max(v[0].y, v[1].y, v[2].y)), 0, r.img.Height-1)

	packed := Pack(index, shard)
	for row := minY; row <= maxY; row++ {
		py := float32(row) + 0.5
		for col := minX; col <= maxX; col++ {
			px := float32(col) + 0.5
			b0 := edgeFn(v[1], v[2], px, py) / area
			b1 := edgeFn(v[2], v[0], px, py) / area
			b2 := edgeFn(v[0], v[1], px, py) / area
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}

			z := b0*v[0].z + b1*v[1].z + b2*v[2].z
			slot := row*r.img.Width + col
			if z < -1 || z >= r.depth[slot] {
				continue
			}
			r.depth[slot] = z

			w0, w1, w2 := b0*v[0].invW, b1*v[1].invW, b2*v[2].invW
			sum := w0 + w1 + w2
			p := v[0].world.Scale(w0 / sum).
				Add(v[1].world.Scale(w1 / sum)).
				Add(v[2].world.Scale(w2 / sum))
			r.img.Set(col, row, p, packed)
		}
	}
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
