package picking

import (
	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/logger"
	"github.com/Faultbox/hullview/pkg/math"
)

// Analysis window geometry.
const (
	WindowRadius = 10
	WindowSize   = 2*WindowRadius + 1
	sampleStep   = 3
)

// DefaultBorderMargin is the minimum cursor distance from the image edge.
const DefaultBorderMargin = WindowRadius

// MaxFaceCos is cos 30°; neighbours at a shallower angle to the base face are ignored.
const MaxFaceCos = 0.86602540378

// TriangleLookup resolves a pick index within a shard to its owner and triangle.
type TriangleLookup interface {
	TriangleForIndex(shard, index uint32) (int32, model.Triangle, bool)
}

// Kind says what the result point is.
type Kind int

const (
	KindNone   Kind = iota // nothing resolved, Point is the sentinel
	KindPick               // raw point under the cursor
	KindVertex             // snapped to a triangle vertex
	KindEdge               // snapped to an edge projection
)

// String returns a short name.
func (k Kind) String() string {
	switch k {
	case KindPick:
		return "pick"
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	}
	return "none"
}

// Result is the object and point under the cursor for one frame.
type Result struct {
	ObjectID  int32 // owning object, 0 when unresolved
	Shard     uint32
	PickIndex uint32 // vertex index written by the pick pass
	Point     math.Vec3
	Kind      Kind
	Distance  float32 // query-to-point distance for snapped results
}

// NoResult is the outcome when nothing is under the cursor.
var NoResult = Result{Point: math.MaxVec3, Kind: KindNone}

// Resolved reports whether the result carries a point.
func (r Result) Resolved() bool {
	return r.Kind != KindNone && !r.Point.IsMax()
}

// Options tune the resolver.
type Options struct {
	// LegacyVertexOnly always reports the vertex even when an edge point is closer.
	LegacyVertexOnly bool
	// BorderMargin is clamped to at least WindowRadius.
	BorderMargin int
}

// Resolver turns a pick image and cursor into a Result.
type Resolver struct {
	lookup TriangleLookup
	opts   Options
}

// NewResolver creates a resolver over the given triangle lookup.
func NewResolver(lookup TriangleLookup, opts Options) *Resolver {
	if opts.BorderMargin < WindowRadius {
		opts.BorderMargin = WindowRadius
	}
	return &Resolver{lookup: lookup, opts: opts}
}

// candidate tracks the best vertex and edge points seen so far.
type candidate struct {
	vertex     math.Vec3
	vertexDist float32
	hasVertex  bool
	owner      int32
	shard      uint32
	pickIndex  uint32

	edge     math.Vec3
	edgeDist float32
}

func newCandidate() candidate {
	return candidate{vertexDist: math32.MaxFloat32, edgeDist: math32.MaxFloat32}
}

func (c *candidate) offerVertex(n Nearest, owner int32, px PixelData) {
	if n.VertexDist < c.vertexDist {
		c.vertex, c.vertexDist, c.hasVertex = n.Vertex, n.VertexDist, true
		c.owner, c.shard, c.pickIndex = owner, px.Shard, px.ID
	}
}

func (c *candidate) offerEdge(n Nearest) {
	if n.HasEdge && n.EdgeDist < c.edgeDist {
		c.edge, c.edgeDist = n.Edge, n.EdgeDist
	}
}

// Resolve finds the object and snap point at cursor (x, y).
func (r *Resolver) Resolve(img Image, x, y int, mode SnapMode, ray Ray) Result {
	m := r.opts.BorderMargin
	if x <= m || y <= m || img.Width-x <= m || img.Height-y <= m {
		return NoResult
	}

	center := img.At(x, y)
	if center.Background() && mode == SnapDisabled {
		return NoResult
	}

	res := NoResult
	if !center.Background() {
		res = Result{
			Shard:     center.Shard,
			PickIndex: center.ID,
			Point:     center.Point,
			Kind:      KindPick,
		}
		if owner, _, ok := r.lookup.TriangleForIndex(center.Shard, center.ID); ok {
			res.ObjectID = owner
		}
	}

	if mode == SnapDisabled {
		return res
	}

	var window [WindowSize][WindowSize]PixelData
	for row := 0; row < WindowSize; row++ {
		for col := 0; col < WindowSize; col++ {
			window[row][col] = img.At(x-WindowRadius+col, y-WindowRadius+row)
		}
	}

	best := r.scan(&window, ray)
	if !best.hasVertex {
		res.Point = math.MaxVec3
		res.Kind = KindNone
		return res
	}

	res.ObjectID = best.owner
	res.Shard = best.shard
	res.PickIndex = best.pickIndex
	res.Point, res.Distance, res.Kind = best.vertex, best.vertexDist, KindVertex

	if best.edgeDist < best.vertexDist && mode.reportsEdge() && !r.opts.LegacyVertexOnly {
		res.Point, res.Distance, res.Kind = best.edge, best.edgeDist, KindEdge
	}

	logger.Debug("snap resolved",
		zap.Int32("object", res.ObjectID),
		zap.Stringer("kind", res.Kind),
		zap.Float32("distance", res.Distance))
	return res
}

var neighbourOffsets = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

func (r *Resolver) scan(window *[WindowSize][WindowSize]PixelData, ray Ray) candidate {
	best := newCandidate()

	for row := 1; row < WindowSize; row += sampleStep {
		for col := 1; col < WindowSize; col += sampleStep {
			cp := window[row][col]
			baseOwner, base, baseOK := r.lookup.TriangleForIndex(cp.Shard, cp.ID)

			var baseNearest Nearest
			var baseNormal math.Vec3
			if baseOK {
				baseNearest = FindNearest(ray.Reproject(cp.Point), base)
				baseNormal = base.UnitNormal()
			}

			for _, off := range neighbourOffsets {
				px := window[row+off[0]][col+off[1]]
				owner, tri, ok := r.lookup.TriangleForIndex(px.Shard, px.ID)

				if !baseOK {
					// Background centre: every resolving neighbour is a candidate.
					if ok {
						n := FindNearest(ray.Reproject(px.Point), tri)
						best.offerVertex(n, owner, px)
						best.offerEdge(n)
					}
					continue
				}

				if !ok {
					// Silhouette: only the base triangle's edge.
					best.offerEdge(baseNearest)
					continue
				}
				if tri.Same(base) {
					continue
				}
				if math32.Abs(baseNormal.Dot(tri.UnitNormal())) > MaxFaceCos {
					continue
				}
				best.offerVertex(baseNearest, baseOwner, cp)
				best.offerEdge(baseNearest)
			}
		}
	}
	return best
}
