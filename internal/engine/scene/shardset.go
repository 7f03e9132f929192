package scene

import (
	"fmt"

	"github.com/Faultbox/hullview/internal/engine/model"
)

// ShardSet is the fixed array of hull shards.
type ShardSet struct {
	shards [model.MaxShards]*Shard
}

// NewShardSet creates MaxShards empty shards with the same residency.
func NewShardSet(residency Residency, fetch FetchFunc) *ShardSet {
	set := &ShardSet{}
	for i := range set.shards {
		set.shards[i] = NewShard(uint32(i), residency, fetch)
	}
	return set
}

// Shard returns shard i, or nil when out of range.
func (s *ShardSet) Shard(i uint32) *Shard {
	if i >= model.MaxShards {
		return nil
	}
	return s.shards[i]
}

// Each calls fn for every shard in order.
func (s *ShardSet) Each(fn func(*Shard)) {
	for _, sh := range s.shards {
		fn(sh)
	}
}

// SetData loads data into shard i.
func (s *ShardSet) SetData(i uint32, data ShardData) error {
	sh := s.Shard(i)
	if sh == nil {
		return fmt.Errorf("%w: %d", ErrShardOutOfRange, i)
	}
	return sh.SetData(data)
}

// TriangleForIndex resolves a pick index within shard to its owner and triangle.
func (s *ShardSet) TriangleForIndex(shard, index uint32) (int32, model.Triangle, bool) {
	sh := s.Shard(shard)
	if sh == nil {
		return 0, model.Triangle{}, false
	}
	return sh.TriangleForVertex(index)
}

// OwnerOf resolves a pick index to the owning object id.
func (s *ShardSet) OwnerOf(shard, index uint32) (int32, bool) {
	id, _, ok := s.TriangleForIndex(shard, index)
	return id, ok
}

// Bounds returns the union of all renderable shard bounds.
func (s *ShardSet) Bounds() (model.Bounds, bool) {
	b := model.EmptyBounds()
	found := false
	for _, sh := range s.shards {
		if sh.Renderable() && sh.Bounds().Valid() {
			b = b.Union(sh.Bounds())
			found = true
		}
	}
	return b, found
}
