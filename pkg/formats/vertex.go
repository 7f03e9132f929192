package formats

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// VertexRecordSize is the serialized size of one VertexRecord in bytes.
const VertexRecordSize = 40

// ErrShortVertexRecord is returned when fewer than VertexRecordSize bytes are supplied.
var ErrShortVertexRecord = errors.New("short vertex record")

// VertexRecord is one mesh vertex as stored in packs and served by remote fetches.
type VertexRecord struct {
	Position [4]float32 // xyz + w (1)
	Normal   [4]float32 // xyz + w (1)
	Material int32      // packed material type, type = Material / 100
	ObjectID int32      // owning object
}

// MaterialType returns the material type encoded in the record.
func (v VertexRecord) MaterialType() int32 {
	return (v.Material - v.Material%100) / 100
}

// PutVertexRecord encodes v into dst, which must hold VertexRecordSize bytes.
func PutVertexRecord(dst []byte, v VertexRecord) {
	_ = dst[VertexRecordSize-1]
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v.Position[i]))
		binary.LittleEndian.PutUint32(dst[16+i*4:], math.Float32bits(v.Normal[i]))
	}
	binary.LittleEndian.PutUint32(dst[32:], uint32(v.Material))
	binary.LittleEndian.PutUint32(dst[36:], uint32(v.ObjectID))
}

// AppendVertexRecord appends the encoding of v to dst.
func AppendVertexRecord(dst []byte, v VertexRecord) []byte {
	var buf [VertexRecordSize]byte
	PutVertexRecord(buf[:], v)
	return append(dst, buf[:]...)
}

// DecodeVertexRecord decodes the first record in data.
// Trailing bytes are ignored so a multi-record slice yields its first vertex.
func DecodeVertexRecord(data []byte) (VertexRecord, error) {
	if len(data) < VertexRecordSize {
		return VertexRecord{}, fmt.Errorf("%w: got %d bytes", ErrShortVertexRecord, len(data))
	}

	var v VertexRecord
	for i := 0; i < 4; i++ {
		v.Position[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
		v.Normal[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[16+i*4:]))
	}
	v.Material = int32(binary.LittleEndian.Uint32(data[32:]))
	v.ObjectID = int32(binary.LittleEndian.Uint32(data[36:]))
	return v, nil
}
