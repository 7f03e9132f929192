package picking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/engine/scene"
	"github.com/Faultbox/hullview/pkg/math"
)

const (
	imgWidth  = 40
	imgPadded = 64
	imgHeight = 40
	cursorX   = 20
	cursorY   = 20
)

var downRay = NewRay(math.Vec3{X: 2, Y: 2, Z: 100}, math.Vec3{Z: -1})

func newTestImage(t *testing.T) Image {
	t.Helper()
	img, err := NewImage(make([]int32, imgPadded*imgHeight*ChannelsPerTexel), imgPadded, imgWidth, imgHeight)
	require.NoError(t, err)
	return img
}

// paintWindow writes texels of the 21x21 window around the cursor.
// fn gets window-relative row and column and returns the texel to write, if any.
func paintWindow(img Image, fn func(row, col int) (math.Vec3, uint32, bool)) {
	for row := 0; row < WindowSize; row++ {
		for col := 0; col < WindowSize; col++ {
			if p, packed, ok := fn(row, col); ok {
				img.Set(cursorX-WindowRadius+col, cursorY-WindowRadius+row, p, packed)
			}
		}
	}
}

// endToEndShards holds a filler object 4 at vertices 2..4 and object 5's
// triangle (0,0,0)-(10,0,0)-(0,10,0) at vertices 5..7 of shard 2.
func endToEndShards(t *testing.T) *scene.ShardSet {
	t.Helper()
	b := scene.NewBuilder()
	b.AddObject(4, 9, []model.Triangle{model.NewTriangle(
		math.Vec3{X: 100, Y: 100}, math.Vec3{X: 110, Y: 100}, math.Vec3{X: 100, Y: 110})})
	b.AddObject(5, 9, []model.Triangle{model.NewTriangle(
		math.Vec3{}, math.Vec3{X: 10}, math.Vec3{Y: 10})})

	set := scene.NewShardSet(scene.ResidencyLocal, nil)
	require.NoError(t, set.SetData(2, b.Build()))
	return set
}

// endToEndImage renders the triangle's silhouette as a diagonal through the window.
func endToEndImage(t *testing.T) Image {
	img := newTestImage(t)
	paintWindow(img, func(row, col int) (math.Vec3, uint32, bool) {
		return math.Vec3{X: 2, Y: 2}, 502, col-row <= 1
	})
	return img
}

func TestResolve_EndToEndVertex(t *testing.T) {
	img := endToEndImage(t)
	center := img.At(cursorX, cursorY)
	require.Equal(t, uint32(5), center.ID)
	require.Equal(t, uint32(2), center.Shard)
	require.Equal(t, math.Vec3{X: 2, Y: 2}, center.Point)

	r := NewResolver(endToEndShards(t), Options{})
	res := r.Resolve(img, cursorX, cursorY, SnapVertex, downRay)

	assert.Equal(t, KindVertex, res.Kind)
	assert.Equal(t, math.Vec3{}, res.Point)
	assert.InDelta(t, 2.83, res.Distance, 0.01)
	assert.Equal(t, int32(5), res.ObjectID)
	assert.Equal(t, uint32(2), res.Shard)
	assert.Equal(t, uint32(5), res.PickIndex)
	assert.True(t, res.Resolved())
}

func TestResolve_EdgeModeReportsCloserEdge(t *testing.T) {
	img := endToEndImage(t)

	r := NewResolver(endToEndShards(t), Options{})
	res := r.Resolve(img, cursorX, cursorY, SnapEdge, downRay)
	assert.Equal(t, KindEdge, res.Kind)
	assert.Equal(t, math.Vec3{X: 2}, res.Point)
	assert.InDelta(t, 2.0, res.Distance, 1e-4)
	assert.Equal(t, int32(5), res.ObjectID)

	legacy := NewResolver(endToEndShards(t), Options{LegacyVertexOnly: true})
	res = legacy.Resolve(img, cursorX, cursorY, SnapEdge, downRay)
	assert.Equal(t, KindVertex, res.Kind)
	assert.Equal(t, math.Vec3{}, res.Point)
}

func TestResolve_DisabledKeepsRawPick(t *testing.T) {
	img := endToEndImage(t)

	r := NewResolver(endToEndShards(t), Options{})
	res := r.Resolve(img, cursorX, cursorY, SnapDisabled, downRay)
	assert.Equal(t, KindPick, res.Kind)
	assert.Equal(t, math.Vec3{X: 2, Y: 2}, res.Point)
	assert.Equal(t, int32(5), res.ObjectID)
	assert.Equal(t, uint32(5), res.PickIndex)
}

func TestResolve_BackgroundCentreSnapsToNeighbour(t *testing.T) {
	img := newTestImage(t)
	paintWindow(img, func(row, col int) (math.Vec3, uint32, bool) {
		return math.Vec3{X: 2, Y: 2}, 502, col < WindowRadius
	})
	require.True(t, img.At(cursorX, cursorY).Background())

	r := NewResolver(endToEndShards(t), Options{})
	res := r.Resolve(img, cursorX, cursorY, SnapVertex, downRay)
	assert.Equal(t, KindVertex, res.Kind)
	assert.Equal(t, math.Vec3{}, res.Point)
	assert.InDelta(t, 2.828, res.Distance, 1e-3)
	assert.Equal(t, int32(5), res.ObjectID)
	assert.Equal(t, uint32(2), res.Shard)
	assert.True(t, res.Resolved())

	res = r.Resolve(img, cursorX, cursorY, SnapDisabled, downRay)
	assert.Equal(t, NoResult, res)
}

func TestResolve_BackgroundImage(t *testing.T) {
	img := newTestImage(t)
	r := NewResolver(endToEndShards(t), Options{})

	cursors := [][2]int{{20, 20}, {11, 11}, {28, 28}, {0, 0}, {39, 39}, {5, 20}, {-4, -4}}
	for _, mode := range []SnapMode{SnapVertex, SnapEdge, SnapDisabled} {
		for _, c := range cursors {
			res := r.Resolve(img, c[0], c[1], mode, downRay)
			assert.Equal(t, int32(0), res.ObjectID, "cursor %v mode %s", c, mode)
			assert.True(t, res.Point.IsMax(), "cursor %v mode %s", c, mode)
			assert.False(t, res.Resolved())
		}
	}
}

func TestResolve_BorderRejected(t *testing.T) {
	img := newTestImage(t)
	for row := 0; row < imgHeight; row++ {
		for col := 0; col < imgWidth; col++ {
			img.Set(col, row, math.Vec3{X: 2, Y: 2}, 502)
		}
	}
	r := NewResolver(endToEndShards(t), Options{})

	for _, c := range [][2]int{{10, 20}, {20, 10}, {30, 20}, {20, 30}} {
		res := r.Resolve(img, c[0], c[1], SnapDisabled, downRay)
		assert.Equal(t, NoResult, res, "cursor %v", c)
	}
	res := r.Resolve(img, 11, 11, SnapDisabled, downRay)
	assert.Equal(t, KindPick, res.Kind)

	wide := NewResolver(endToEndShards(t), Options{BorderMargin: 15})
	res = wide.Resolve(img, 12, 20, SnapDisabled, downRay)
	assert.Equal(t, NoResult, res)
}

// twoTriangleShard puts triangle a at vertices 2..4 (object ida) and b at 5..7 (object idb).
func twoTriangleShard(t *testing.T, shard uint32, ida, idb int32, a, b model.Triangle) *scene.ShardSet {
	t.Helper()
	bld := scene.NewBuilder()
	if ida == idb {
		bld.AddObject(ida, 9, []model.Triangle{a, b})
	} else {
		bld.AddObject(ida, 9, []model.Triangle{a})
		bld.AddObject(idb, 9, []model.Triangle{b})
	}
	set := scene.NewShardSet(scene.ResidencyLocal, nil)
	require.NoError(t, set.SetData(shard, bld.Build()))
	return set
}

func TestResolve_FlatQuadNoCrossTriangleSnap(t *testing.T) {
	quad := scene.Quad(math.Vec3{}, math.Vec3{X: 10}, math.Vec3{X: 10, Y: 10}, math.Vec3{Y: 10})
	set := twoTriangleShard(t, 1, 7, 7, quad[0], quad[1])

	img := newTestImage(t)
	paintWindow(img, func(row, col int) (math.Vec3, uint32, bool) {
		if col < WindowRadius {
			return math.Vec3{X: 3, Y: 2}, Pack(3, 1), true
		}
		return math.Vec3{X: 2, Y: 3}, Pack(6, 1), true
	})

	r := NewResolver(set, Options{})
	for _, mode := range []SnapMode{SnapVertex, SnapEdge} {
		res := r.Resolve(img, cursorX, cursorY, mode, downRay)
		assert.Equal(t, KindNone, res.Kind, "mode %s", mode)
		assert.True(t, res.Point.IsMax(), "mode %s", mode)
	}
}

func TestResolve_FoldAdmitsBaseVertex(t *testing.T) {
	floor := model.NewTriangle(math.Vec3{}, math.Vec3{X: 10}, math.Vec3{Y: 10})
	wall := model.NewTriangle(math.Vec3{}, math.Vec3{Y: 10}, math.Vec3{Z: 10})
	set := twoTriangleShard(t, 0, 5, 6, floor, wall)

	img := newTestImage(t)
	paintWindow(img, func(row, col int) (math.Vec3, uint32, bool) {
		if col < WindowRadius {
			return math.Vec3{Y: 2, Z: 2}, Pack(5, 0), true
		}
		return math.Vec3{X: 2, Y: 2}, Pack(2, 0), true
	})

	r := NewResolver(set, Options{})
	res := r.Resolve(img, cursorX, cursorY, SnapVertex, downRay)
	require.Equal(t, KindVertex, res.Kind)
	assert.Equal(t, math.Vec3{}, res.Point)
	assert.Equal(t, int32(5), res.ObjectID)
	assert.Equal(t, uint32(2), res.PickIndex)
	assert.InDelta(t, 2.83, res.Distance, 0.01)
}

func TestResolve_SilhouetteGivesEdgeOnly(t *testing.T) {
	img := newTestImage(t)
	// Only the cursor texel is covered. It is a sample centre, so no other
	// sample has a resolving neighbour and the base sees only background.
	paintWindow(img, func(row, col int) (math.Vec3, uint32, bool) {
		return math.Vec3{X: 2, Y: 2}, 502, row == WindowRadius && col == WindowRadius
	})

	r := NewResolver(endToEndShards(t), Options{})
	res := r.Resolve(img, cursorX, cursorY, SnapEdge, downRay)
	assert.Equal(t, KindNone, res.Kind)
	assert.True(t, res.Point.IsMax())
	// The raw pick ids survive when no vertex candidate exists.
	assert.Equal(t, uint32(5), res.PickIndex)
	assert.Equal(t, int32(5), res.ObjectID)
}
