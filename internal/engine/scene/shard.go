// Package scene holds the hull geometry shards and resolves picked vertices to objects.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/internal/logger"
)

// Residency selects where a shard's vertices live after loading.
type Residency int

const (
	// ResidencyLocal keeps a host copy of every vertex.
	ResidencyLocal Residency = iota
	// ResidencyRemote drops the host copy after upload and fetches single vertices on demand.
	ResidencyRemote
)

// String returns the config name of the residency.
func (r Residency) String() string {
	if r == ResidencyRemote {
		return "remote"
	}
	return "local"
}

// ParseResidency parses "local" or "remote".
func ParseResidency(s string) (Residency, error) {
	switch s {
	case "local", "":
		return ResidencyLocal, nil
	case "remote":
		return ResidencyRemote, nil
	}
	return ResidencyLocal, fmt.Errorf("%w: %q", ErrUnknownResidency, s)
}

// Shard errors.
var (
	ErrUnknownResidency = errors.New("scene: unknown residency")
	ErrInvalidObject    = errors.New("scene: invalid object range")
	ErrShardOutOfRange  = errors.New("scene: shard out of range")
)

// ShardData is one batch of geometry for a shard.
type ShardData struct {
	Vertices     []model.Vertex
	Indices      []int32
	Metadata     []int32 // per-vertex material; derived from vertex types when nil
	Bounds       model.Bounds
	Objects      map[int32]model.ObjectRange
	ObjectBounds []model.Bounds
}

// Geometry is the upload payload handed to the renderer.
type Geometry struct {
	Vertices []model.Vertex
	Indices  []int32
}

// Shard is one partition of the hull geometry.
// It is owned by the frame loop and not safe for concurrent use.
type Shard struct {
	id        uint32
	residency Residency
	fetch     FetchFunc

	source       VertexSource
	indices      []int32
	metadata     []int32
	bounds       model.Bounds
	objects      map[int32]model.ObjectRange
	objectBounds []model.Bounds

	pending       *Geometry
	renderable    bool
	metadataDirty bool
}

// NewShard creates an empty shard. fetch is used only in remote residency.
func NewShard(id uint32, residency Residency, fetch FetchFunc) *Shard {
	return &Shard{
		id:        id,
		residency: residency,
		fetch:     fetch,
		source:    NewInMemoryVertexSource(nil),
		objects:   map[int32]model.ObjectRange{},
		bounds:    model.EmptyBounds(),
	}
}

// ID returns the shard index.
func (s *Shard) ID() uint32 { return s.id }

// Residency returns the residency chosen at construction.
func (s *Shard) Residency() Residency { return s.residency }

// SetData replaces the shard contents wholesale.
// Object ranges outside the vertex array are rejected and leave the shard unchanged.
func (s *Shard) SetData(data ShardData) error {
	n := len(data.Vertices)
	for id, r := range data.Objects {
		if r.Start < 0 || r.Start > r.End || int(r.End) >= n {
			return fmt.Errorf("%w: object %d range [%d,%d] with %d vertices", ErrInvalidObject, id, r.Start, r.End, n)
		}
	}

	metadata := data.Metadata
	if len(metadata) != n {
		metadata = make([]int32, n)
		for i, v := range data.Vertices {
			metadata[i] = model.MaterialForType(v.MaterialType())
		}
	}

	objects := make(map[int32]model.ObjectRange, len(data.Objects))
	for id, r := range data.Objects {
		objects[id] = r
	}

	s.indices = data.Indices
	s.metadata = metadata
	s.bounds = data.Bounds
	s.objects = objects
	s.objectBounds = data.ObjectBounds
	s.pending = &Geometry{Vertices: data.Vertices, Indices: data.Indices}
	s.renderable = n > 0
	s.metadataDirty = true

	switch s.residency {
	case ResidencyRemote:
		s.source = NewCallbackVertexSource(s.id, n, s.fetch)
	default:
		s.source = NewInMemoryVertexSource(data.Vertices)
	}

	logger.Debug("shard data set",
		zap.Uint32("shard", s.id),
		zap.Int("vertices", n),
		zap.Int("objects", len(objects)),
		zap.Stringer("residency", s.residency))
	return nil
}

// TakeGeometry returns the geometry pending upload and clears it.
// In remote residency this drops the last host copy of the vertices.
func (s *Shard) TakeGeometry() (Geometry, bool) {
	if s.pending == nil {
		return Geometry{}, false
	}
	g := *s.pending
	s.pending = nil
	return g, true
}

// GeometryDirty reports whether geometry awaits upload.
func (s *Shard) GeometryDirty() bool { return s.pending != nil }

// Renderable reports whether the shard holds any geometry.
func (s *Shard) Renderable() bool { return s.renderable }

// VertexCount returns the number of vertices loaded.
func (s *Shard) VertexCount() int { return s.source.Len() }

// Bounds returns the shard bounding box.
func (s *Shard) Bounds() model.Bounds { return s.bounds }

// Source returns the vertex source in use.
func (s *Shard) Source() VertexSource { return s.source }

// TriangleForVertex resolves a flat vertex index to its owning object and triangle.
// Triangles start at indices congruent to 2 mod 3; the first two vertices are a lead-in.
func (s *Shard) TriangleForVertex(index uint32) (int32, model.Triangle, bool) {
	if index < 2 {
		return 0, model.Triangle{}, false
	}

	base, err := s.source.Vertex(index)
	if err != nil {
		return 0, model.Triangle{}, false
	}
	if _, ok := s.objects[base.ObjectID]; !ok {
		return 0, model.Triangle{}, false
	}

	var first uint32
	switch (index + 1) % 3 {
	case 0:
		first = index
	case 1:
		first = index - 1
	default:
		first = index - 2
	}

	var pts [3]model.Vertex
	for k := range pts {
		v, err := s.source.Vertex(first + uint32(k))
		if err != nil {
			logger.Debug("triangle vertex missing",
				zap.Uint32("shard", s.id), zap.Uint32("index", first+uint32(k)), zap.Error(err))
			return 0, model.Triangle{}, false
		}
		pts[k] = v
	}

	return base.ObjectID, model.NewTriangle(pts[0].Position, pts[1].Position, pts[2].Position), true
}

// EachTriangle calls fn for every visible triangle with the index of its
// last vertex, which is the index the pick pass writes.
func (s *Shard) EachTriangle(fn func(index uint32, owner int32, tri model.Triangle)) {
	n := uint32(s.source.Len())
	for first := uint32(LeadInVertices); first+2 < n; first += 3 {
		if int(first) < len(s.metadata) && s.metadata[first] == model.MaterialHidden {
			continue
		}
		owner, tri, ok := s.TriangleForVertex(first + 2)
		if !ok {
			continue
		}
		fn(first+2, owner, tri)
	}
}

// Object returns the vertex range of an object.
func (s *Shard) Object(id int32) (model.ObjectRange, bool) {
	r, ok := s.objects[id]
	return r, ok
}

// ObjectIDs returns the ids of all objects in ascending order.
func (s *Shard) ObjectIDs() []int32 {
	return sortedObjectIDs(s.objects)
}

func sortedObjectIDs(objects map[int32]model.ObjectRange) []int32 {
	ids := make([]int32, 0, len(objects))
	for id := range objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BBoxForObject returns the bounds stored in the object's slot.
func (s *Shard) BBoxForObject(id int32) (model.Bounds, bool) {
	r, ok := s.objects[id]
	if !ok || r.BBoxSlot < 0 || int(r.BBoxSlot) >= len(s.objectBounds) {
		return model.Bounds{}, false
	}
	return s.objectBounds[r.BBoxSlot], true
}

// Metadata returns the per-vertex material stream.
func (s *Shard) Metadata() []int32 { return s.metadata }

// MetadataDirty reports whether materials changed since the last reset.
func (s *Shard) MetadataDirty() bool { return s.metadataDirty }

// ResetMetadataDirty marks the material stream as uploaded.
func (s *Shard) ResetMetadataDirty() { s.metadataDirty = false }

// Select paints the object with the selection material.
func (s *Shard) Select(id int32) bool {
	return s.paint(id, model.MaterialSelected)
}

// Hide paints the object with the hidden material.
func (s *Shard) Hide(id int32) bool {
	return s.paint(id, model.MaterialHidden)
}

// SetDefault restores the object's display material.
func (s *Shard) SetDefault(id int32) bool {
	mat, ok := s.DefaultMaterial(id)
	if !ok {
		return false
	}
	return s.paint(id, mat)
}

// DefaultMaterial returns the display material derived from the object's first vertex.
func (s *Shard) DefaultMaterial(id int32) (int32, bool) {
	r, ok := s.objects[id]
	if !ok {
		return 0, false
	}
	v, err := s.source.Vertex(uint32(r.Start))
	if err != nil {
		return 0, false
	}
	return model.MaterialForType(v.MaterialType()), true
}

func (s *Shard) paint(id int32, mat int32) bool {
	r, ok := s.objects[id]
	if !ok || int(r.End) >= len(s.metadata) {
		return false
	}
	for i := r.Start; i <= r.End; i++ {
		s.metadata[i] = mat
	}
	s.metadataDirty = true
	return true
}
