package scene

import (
	"errors"
	"fmt"

	"github.com/Faultbox/hullview/internal/engine/model"
	"github.com/Faultbox/hullview/pkg/formats"
)

// ErrVertexUnavailable is returned when a vertex cannot be read from a source.
var ErrVertexUnavailable = errors.New("scene: vertex unavailable")

// VertexSource reads single vertices of one shard.
type VertexSource interface {
	Vertex(index uint32) (model.Vertex, error)
	Len() int
}

// InMemoryVertexSource serves vertices from a host array.
type InMemoryVertexSource struct {
	vertices []model.Vertex
}

// NewInMemoryVertexSource wraps vertices without copying.
func NewInMemoryVertexSource(vertices []model.Vertex) *InMemoryVertexSource {
	return &InMemoryVertexSource{vertices: vertices}
}

// Vertex returns the vertex at index.
func (s *InMemoryVertexSource) Vertex(index uint32) (model.Vertex, error) {
	if int(index) >= len(s.vertices) {
		return model.Vertex{}, fmt.Errorf("%w: index %d of %d", ErrVertexUnavailable, index, len(s.vertices))
	}
	return s.vertices[index], nil
}

// Len returns the vertex count.
func (s *InMemoryVertexSource) Len() int {
	return len(s.vertices)
}

// FetchFunc returns one serialized vertex record of a shard.
// An empty result means the vertex does not exist.
type FetchFunc func(shard, index uint32) ([]byte, error)

// CallbackVertexSource fetches vertices one at a time through a host callback.
type CallbackVertexSource struct {
	shard uint32
	count int
	fetch FetchFunc
}

// NewCallbackVertexSource creates a source for shard holding count vertices.
func NewCallbackVertexSource(shard uint32, count int, fetch FetchFunc) *CallbackVertexSource {
	return &CallbackVertexSource{shard: shard, count: count, fetch: fetch}
}

// Vertex fetches and decodes the vertex at index.
func (s *CallbackVertexSource) Vertex(index uint32) (model.Vertex, error) {
	if int(index) >= s.count || s.fetch == nil {
		return model.Vertex{}, fmt.Errorf("%w: index %d of %d", ErrVertexUnavailable, index, s.count)
	}
	raw, err := s.fetch(s.shard, index)
	if err != nil {
		return model.Vertex{}, fmt.Errorf("%w: fetch shard %d index %d: %v", ErrVertexUnavailable, s.shard, index, err)
	}
	if len(raw) == 0 {
		return model.Vertex{}, fmt.Errorf("%w: empty fetch shard %d index %d", ErrVertexUnavailable, s.shard, index)
	}
	rec, err := formats.DecodeVertexRecord(raw)
	if err != nil {
		return model.Vertex{}, fmt.Errorf("%w: %v", ErrVertexUnavailable, err)
	}
	return model.VertexFromRecord(rec), nil
}

// Len returns the vertex count the shard was loaded with.
func (s *CallbackVertexSource) Len() int {
	return s.count
}

// PackFetcher serves remote fetches from open pack readers keyed by shard.
func PackFetcher(readers map[uint32]*formats.PackReader) FetchFunc {
	return func(shard, index uint32) ([]byte, error) {
		r, ok := readers[shard]
		if !ok {
			return nil, nil
		}
		return r.VertexBytes(index)
	}
}

// EncodeVertices serializes vertices as consecutive pack vertex records.
func EncodeVertices(vs []model.Vertex) []byte {
	buf := make([]byte, 0, len(vs)*formats.VertexRecordSize)
	for _, v := range vs {
		buf = formats.AppendVertexRecord(buf, v.Record())
	}
	return buf
}

// BytesFetcher serves remote fetches from in-memory serialized vertex buffers.
func BytesFetcher(buffers map[uint32][]byte) FetchFunc {
	return func(shard, index uint32) ([]byte, error) {
		buf := buffers[shard]
		off := int(index) * formats.VertexRecordSize
		if off+formats.VertexRecordSize > len(buf) {
			return nil, nil
		}
		return buf[off : off+formats.VertexRecordSize], nil
	}
}
