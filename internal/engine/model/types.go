// Package model provides the hull geometry value types shared by shards, picking and rendering.
package model

import (
	"github.com/Faultbox/hullview/pkg/formats"
	"github.com/Faultbox/hullview/pkg/math"
)

// Vertex is one mesh vertex of a shard.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	Material int32 // packed material type, see formats.VertexRecord
	ObjectID int32
}

// VertexFromRecord converts a serialized record.
func VertexFromRecord(r formats.VertexRecord) Vertex {
	return Vertex{
		Position: math.Vec3{X: r.Position[0], Y: r.Position[1], Z: r.Position[2]},
		Normal:   math.Vec3{X: r.Normal[0], Y: r.Normal[1], Z: r.Normal[2]},
		Material: r.Material,
		ObjectID: r.ObjectID,
	}
}

// Record converts v to its serialized form.
func (v Vertex) Record() formats.VertexRecord {
	return formats.VertexRecord{
		Position: [4]float32{v.Position.X, v.Position.Y, v.Position.Z, 1},
		Normal:   [4]float32{v.Normal.X, v.Normal.Y, v.Normal.Z, 1},
		Material: v.Material,
		ObjectID: v.ObjectID,
	}
}

// MaterialType returns the type encoded in the packed material.
func (v Vertex) MaterialType() int32 {
	return (v.Material - v.Material%100) / 100
}

// ObjectRange is the contiguous vertex run and bounds slot of one object.
type ObjectRange struct {
	Start    int32 // first vertex, inclusive
	End      int32 // last vertex, inclusive
	BBoxSlot int32
}

// Bounds holds an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// EmptyBounds returns inverted bounds that any Extend call replaces.
func EmptyBounds() Bounds {
	return Bounds{Min: math.MaxVec3, Max: math.MaxVec3.Scale(-1)}
}

// Extend grows b to contain p.
func (b Bounds) Extend(p math.Vec3) Bounds {
	return Bounds{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Union returns the smallest box containing both.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{Min: b.Min.Min(o.Min), Max: b.Max.Max(o.Max)}
}

// Center returns the box midpoint.
func (b Bounds) Center() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the box extent along each axis.
func (b Bounds) Size() math.Vec3 {
	return b.Max.Sub(b.Min)
}

// Valid reports whether Min <= Max on every axis.
func (b Bounds) Valid() bool {
	return b.Min.X <= b.Max.X && b.Min.Y <= b.Max.Y && b.Min.Z <= b.Max.Z
}

// BoundsFromHPK converts pack bounds.
func BoundsFromHPK(b formats.HPKBounds) Bounds {
	return Bounds{
		Min: math.Vec3{X: b.Min[0], Y: b.Min[1], Z: b.Min[2]},
		Max: math.Vec3{X: b.Max[0], Y: b.Max[1], Z: b.Max[2]},
	}
}

// HPK converts b to pack bounds.
func (b Bounds) HPK() formats.HPKBounds {
	return formats.HPKBounds{Min: b.Min.Array(), Max: b.Max.Array()}
}

// MaxShards is the number of independently loaded geometry partitions.
const MaxShards = 8
