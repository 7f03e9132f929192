package scene

import (
	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/pkg/math"
)

// Part types used by the demo hull.
const (
	typeFrame        int32 = 2
	typeLongitudinal int32 = 7
	typeDeck         int32 = 8
	typeShell        int32 = 9
)

// Demo hull dimensions in metres.
const (
	demoLength  = 60
	demoBeam    = 12
	demoDepth   = 8
	demoPanels  = 10
	demoProfile = 0.2
)

// DemoHull builds a box-section hull of shell plates, deck panels, frames and
// longitudinals, with objects spread round-robin over the given number of shards.
func DemoHull(shards int) []ShardData {
	if shards < 1 {
		shards = 1
	}
	if shards > model.MaxShards {
		shards = model.MaxShards
	}

	builders := make([]*Builder, shards)
	for i := range builders {
		builders[i] = NewBuilder()
	}
	next := 0
	id := int32(1000)
	add := func(ty int32, tris []model.Triangle) {
		id++
		builders[next].AddObject(id, ty, tris)
		next = (next + 1) % shards
	}

	const halfB = demoBeam / 2.0
	step := float32(demoLength) / demoPanels

	for i := 0; i < demoPanels; i++ {
		x0, x1 := float32(i)*step, float32(i+1)*step

		// Bottom shell
		add(typeShell, Quad(
			math.Vec3{X: x0, Y: -halfB, Z: 0}, math.Vec3{X: x0, Y: halfB, Z: 0},
			math.Vec3{X: x1, Y: halfB, Z: 0}, math.Vec3{X: x1, Y: -halfB, Z: 0}))
		// Port and starboard side shell
		add(typeShell, Quad(
			math.Vec3{X: x0, Y: halfB, Z: 0}, math.Vec3{X: x0, Y: halfB, Z: demoDepth},
			math.Vec3{X: x1, Y: halfB, Z: demoDepth}, math.Vec3{X: x1, Y: halfB, Z: 0}))
		add(typeShell, Quad(
			math.Vec3{X: x0, Y: -halfB, Z: 0}, math.Vec3{X: x1, Y: -halfB, Z: 0},
			math.Vec3{X: x1, Y: -halfB, Z: demoDepth}, math.Vec3{X: x0, Y: -halfB, Z: demoDepth}))
		// Deck
		add(typeDeck, Quad(
			math.Vec3{X: x0, Y: -halfB, Z: demoDepth}, math.Vec3{X: x1, Y: -halfB, Z: demoDepth},
			math.Vec3{X: x1, Y: halfB, Z: demoDepth}, math.Vec3{X: x0, Y: halfB, Z: demoDepth}))
	}

	// Transverse frames at each panel seam
	for i := 1; i < demoPanels; i++ {
		x := float32(i) * step
		var tris []model.Triangle
		tris = append(tris, Box(
			math.Vec3{X: x - demoProfile, Y: -halfB, Z: 0},
			math.Vec3{X: x + demoProfile, Y: halfB, Z: 1})...)
		tris = append(tris, Box(
			math.Vec3{X: x - demoProfile, Y: halfB - 0.5, Z: 1},
			math.Vec3{X: x + demoProfile, Y: halfB, Z: demoDepth})...)
		tris = append(tris, Box(
			math.Vec3{X: x - demoProfile, Y: -halfB, Z: 1},
			math.Vec3{X: x + demoProfile, Y: -halfB + 0.5, Z: demoDepth})...)
		add(typeFrame, tris)
	}

	// Bottom longitudinals
	for _, y := range []float32{-halfB / 2, 0, halfB / 2} {
		add(typeLongitudinal, Box(
			math.Vec3{X: 0, Y: y - demoProfile, Z: 0},
			math.Vec3{X: demoLength, Y: y + demoProfile, Z: 0.6}))
	}

	out := make([]ShardData, shards)
	for i, b := range builders {
		out[i] = b.Build()
	}
	return out
}

// NewDemoSet builds the demo hull into a shard set. In remote residency the
// vertices are served from serialized per-shard buffers.
func NewDemoSet(shards int, residency Residency) (*ShardSet, error) {
	data := DemoHull(shards)
	buffers := make(map[uint32][]byte, len(data))
	if residency == ResidencyRemote {
		for i, d := range data {
			buffers[uint32(i)] = EncodeVertices(d.Vertices)
		}
	}
	set := NewShardSet(residency, BytesFetcher(buffers))
	for i, d := range data {
		if err := set.SetData(uint32(i), d); err != nil {
			return nil, err
		}
	}
	return set, nil
}
