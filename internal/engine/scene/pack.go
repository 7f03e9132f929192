package scene

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/logger"
	"github.com/Faultbox/hullview/pkg/formats"
)

// ErrNoScene is returned by Open when there are no packs and the demo hull is off.
var ErrNoScene = errors.New("scene: no packs configured and demo hull disabled")

// Source names where a shard set comes from.
type Source struct {
	Packs      []string
	Residency  string
	Demo       bool
	DemoShards int
}

// Open reads the configured packs, or builds the demo hull when none are given.
// Returned readers must be closed by the caller.
func Open(src Source) (*ShardSet, []*formats.PackReader, error) {
	residency, err := ParseResidency(src.Residency)
	if err != nil {
		return nil, nil, err
	}

	if len(src.Packs) > 0 {
		set, readers, err := LoadPacks(src.Packs, residency)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("packs loaded", zap.Int("shards", len(src.Packs)), zap.Stringer("residency", residency))
		return set, readers, nil
	}

	if !src.Demo {
		return nil, nil, ErrNoScene
	}
	set, err := NewDemoSet(src.DemoShards, residency)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("demo hull built", zap.Int("shards", src.DemoShards), zap.Stringer("residency", residency))
	return set, nil, nil
}

// ShardDataFromHPK converts a parsed pack into shard data.
func ShardDataFromHPK(p *formats.HPK) ShardData {
	data := ShardData{
		Vertices:     make([]model.Vertex, len(p.Vertices)),
		Indices:      p.Indices,
		Bounds:       model.BoundsFromHPK(p.Header.Bounds),
		Objects:      make(map[int32]model.ObjectRange, len(p.Objects)),
		ObjectBounds: make([]model.Bounds, len(p.ObjectBounds)),
	}
	for i, rec := range p.Vertices {
		data.Vertices[i] = model.VertexFromRecord(rec)
	}
	for _, obj := range p.Objects {
		data.Objects[obj.ID] = model.ObjectRange{Start: obj.Start, End: obj.End, BBoxSlot: obj.BBoxSlot}
	}
	for i, b := range p.ObjectBounds {
		data.ObjectBounds[i] = model.BoundsFromHPK(b)
	}
	return data
}

// HPKFromShardData converts shard data into a pack for shard.
// Objects are written in ascending id order.
func HPKFromShardData(shard uint8, data ShardData) *formats.HPK {
	p := &formats.HPK{
		Header: formats.HPKHeader{
			Version: formats.HPKCurrentVersion,
			Shard:   shard,
			Bounds:  data.Bounds.HPK(),
		},
		Vertices:     make([]formats.VertexRecord, len(data.Vertices)),
		Indices:      data.Indices,
		ObjectBounds: make([]formats.HPKBounds, len(data.ObjectBounds)),
	}
	for i, v := range data.Vertices {
		p.Vertices[i] = v.Record()
	}
	for _, id := range sortedObjectIDs(data.Objects) {
		r := data.Objects[id]
		p.Objects = append(p.Objects, formats.HPKObject{ID: id, Start: r.Start, End: r.End, BBoxSlot: r.BBoxSlot})
	}
	for i, b := range data.ObjectBounds {
		p.ObjectBounds[i] = b.HPK()
	}
	return p
}

// LoadPacks reads pack files into the shard set, one file per shard in order.
// In remote residency only the header and object index stay on the host; the
// returned readers back the set's fetch function and must be closed by the caller.
func LoadPacks(paths []string, residency Residency) (*ShardSet, []*formats.PackReader, error) {
	readers := map[uint32]*formats.PackReader{}
	var open []*formats.PackReader
	closeAll := func() {
		for _, r := range open {
			r.Close()
		}
	}

	if residency == ResidencyRemote {
		for i, path := range paths {
			r, err := formats.OpenPackReader(path)
			if err != nil {
				closeAll()
				return nil, nil, err
			}
			readers[uint32(i)] = r
			open = append(open, r)
		}
	}

	set := NewShardSet(residency, PackFetcher(readers))
	for i, path := range paths {
		pack, err := formats.ReadHPKFile(path)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		if err := set.SetData(uint32(i), ShardDataFromHPK(pack)); err != nil {
			closeAll()
			return nil, nil, err
		}
	}
	return set, open, nil
}
