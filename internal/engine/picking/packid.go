package picking

import (
	"errors"
	"fmt"
	stdmath "math"

	"github.com/Faultbox/hullview/internal/engine/model"
)

// IDOffset separates the id from the shard in a packed value.
const IDOffset = 100

// MaxPackableID is the largest id that packs without overflowing uint32.
const MaxPackableID = stdmath.MaxUint32 / IDOffset

// Codec errors.
var (
	ErrIDOverflow = errors.New("picking: id overflows packed value")
	ErrBadShard   = errors.New("picking: shard out of range")
)

// Pack combines an id and a shard into the value written by the pick pass.
func Pack(id, shard uint32) uint32 {
	return id*IDOffset + shard
}

// PackChecked is Pack with range checks instead of silent wrapping.
func PackChecked(id, shard uint32) (uint32, error) {
	if shard >= model.MaxShards {
		return 0, fmt.Errorf("%w: %d", ErrBadShard, shard)
	}
	if id > MaxPackableID {
		return 0, fmt.Errorf("%w: %d", ErrIDOverflow, id)
	}
	return Pack(id, shard), nil
}

// UnpackID extracts the id from a packed value.
func UnpackID(packed uint32) uint32 {
	return (packed - packed%IDOffset) / IDOffset
}

// UnpackShard extracts the shard from a packed value.
func UnpackShard(packed uint32) uint32 {
	return packed % IDOffset
}
