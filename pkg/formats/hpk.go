package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// HPK format errors.
var (
	ErrInvalidHPKMagic       = errors.New("invalid HPK magic: expected 'HHPK'")
	ErrUnsupportedHPKVersion = errors.New("unsupported HPK version")
	ErrTruncatedHPKData      = errors.New("truncated HPK data")
	ErrInvalidHPKObject      = errors.New("invalid HPK object entry")
	ErrVertexOutOfRange      = errors.New("vertex index out of range")
)

// HPKHeaderSize is the fixed size of the pack header; vertex records start here.
const HPKHeaderSize = 48

const hpkMagic = "HHPK"

// HPKVersion represents the HPK file version.
type HPKVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v HPKVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// HPKCurrentVersion is the version written by Encode.
var HPKCurrentVersion = HPKVersion{Major: 1, Minor: 0}

// HPKBounds is an axis-aligned box.
type HPKBounds struct {
	Min [3]float32
	Max [3]float32
}

// HPKObject maps an object id to its contiguous vertex run and bounds slot.
type HPKObject struct {
	ID       int32
	Start    int32 // first vertex, inclusive
	End      int32 // last vertex, inclusive
	BBoxSlot int32 // index into ObjectBounds
}

// HPKHeader is the fixed-size leading block of a pack.
type HPKHeader struct {
	Version     HPKVersion
	Shard       uint8
	VertexCount uint32
	IndexCount  uint32
	ObjectCount uint32
	BoundsCount uint32
	Bounds      HPKBounds
}

// HPK represents a parsed hull pack: the geometry of one shard.
type HPK struct {
	Header       HPKHeader
	Vertices     []VertexRecord
	Indices      []int32
	Objects      []HPKObject
	ObjectBounds []HPKBounds
}

// VertexOffset returns the byte offset of vertex index within a pack file.
func VertexOffset(index uint32) int64 {
	return HPKHeaderSize + int64(index)*VertexRecordSize
}

func parseHPKHeader(data []byte) (HPKHeader, error) {
	if len(data) < HPKHeaderSize {
		return HPKHeader{}, ErrTruncatedHPKData
	}
	if string(data[0:4]) != hpkMagic {
		return HPKHeader{}, ErrInvalidHPKMagic
	}

	h := HPKHeader{
		Version: HPKVersion{Major: data[4], Minor: data[5]},
		Shard:   data[6],
	}
	if h.Version.Major != 1 {
		return HPKHeader{}, fmt.Errorf("%w: %s", ErrUnsupportedHPKVersion, h.Version)
	}

	r := bytes.NewReader(data[8:HPKHeaderSize])
	fields := []any{&h.VertexCount, &h.IndexCount, &h.ObjectCount, &h.BoundsCount, &h.Bounds}
	for _, f := range fields {
		if err := binary.Read(r, binary.LittleEndian, f); err != nil {
			return HPKHeader{}, fmt.Errorf("%w: reading header", ErrTruncatedHPKData)
		}
	}
	return h, nil
}

// ParseHPK parses a complete pack from raw bytes.
func ParseHPK(data []byte) (*HPK, error) {
	header, err := parseHPKHeader(data)
	if err != nil {
		return nil, err
	}

	need := VertexOffset(header.VertexCount) +
		int64(header.IndexCount)*4 +
		int64(header.ObjectCount)*16 +
		int64(header.BoundsCount)*24
	if int64(len(data)) < need {
		return nil, fmt.Errorf("%w: need %d bytes, have %d", ErrTruncatedHPKData, need, len(data))
	}

	pack := &HPK{
		Header:   header,
		Vertices: make([]VertexRecord, header.VertexCount),
	}

	off := HPKHeaderSize
	for i := range pack.Vertices {
		pack.Vertices[i], _ = DecodeVertexRecord(data[off:])
		off += VertexRecordSize
	}

	r := bytes.NewReader(data[off:])

	pack.Indices = make([]int32, header.IndexCount)
	if err := binary.Read(r, binary.LittleEndian, pack.Indices); err != nil {
		return nil, fmt.Errorf("%w: reading indices", ErrTruncatedHPKData)
	}

	pack.Objects = make([]HPKObject, header.ObjectCount)
	if err := binary.Read(r, binary.LittleEndian, pack.Objects); err != nil {
		return nil, fmt.Errorf("%w: reading objects", ErrTruncatedHPKData)
	}

	pack.ObjectBounds = make([]HPKBounds, header.BoundsCount)
	if err := binary.Read(r, binary.LittleEndian, pack.ObjectBounds); err != nil {
		return nil, fmt.Errorf("%w: reading object bounds", ErrTruncatedHPKData)
	}

	for i, obj := range pack.Objects {
		if err := validateObject(obj, header); err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
	}

	return pack, nil
}

func validateObject(obj HPKObject, h HPKHeader) error {
	if obj.Start < 0 || obj.Start > obj.End || uint32(obj.End) >= h.VertexCount {
		return fmt.Errorf("%w: id %d range [%d,%d] with %d vertices",
			ErrInvalidHPKObject, obj.ID, obj.Start, obj.End, h.VertexCount)
	}
	if obj.BBoxSlot < 0 || uint32(obj.BBoxSlot) >= h.BoundsCount {
		return fmt.Errorf("%w: id %d bbox slot %d", ErrInvalidHPKObject, obj.ID, obj.BBoxSlot)
	}
	return nil
}

// Encode serializes the pack. Header counts are derived from the slices.
func (p *HPK) Encode() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(int(VertexOffset(uint32(len(p.Vertices)))) + len(p.Indices)*4 + len(p.Objects)*16 + len(p.ObjectBounds)*24)

	buf.WriteString(hpkMagic)
	buf.WriteByte(HPKCurrentVersion.Major)
	buf.WriteByte(HPKCurrentVersion.Minor)
	buf.WriteByte(p.Header.Shard)
	buf.WriteByte(0) // reserved

	binary.Write(buf, binary.LittleEndian, uint32(len(p.Vertices)))
	binary.Write(buf, binary.LittleEndian, uint32(len(p.Indices)))
	binary.Write(buf, binary.LittleEndian, uint32(len(p.Objects)))
	binary.Write(buf, binary.LittleEndian, uint32(len(p.ObjectBounds)))
	binary.Write(buf, binary.LittleEndian, p.Header.Bounds)

	var rec [VertexRecordSize]byte
	for _, v := range p.Vertices {
		PutVertexRecord(rec[:], v)
		buf.Write(rec[:])
	}
	binary.Write(buf, binary.LittleEndian, p.Indices)
	binary.Write(buf, binary.LittleEndian, p.Objects)
	binary.Write(buf, binary.LittleEndian, p.ObjectBounds)

	return buf.Bytes()
}

// WriteHPKFile encodes p and writes it to path.
func WriteHPKFile(path string, p *HPK) error {
	return os.WriteFile(path, p.Encode(), 0644)
}

// ReadHPKFile reads and parses a pack from disk.
func ReadHPKFile(path string) (*HPK, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	pack, err := ParseHPK(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return pack, nil
}

// PackReader serves single vertex records from a pack without loading it.
type PackReader struct {
	r      io.ReaderAt
	closer io.Closer
	Header HPKHeader
}

// NewPackReader reads the header from r.
func NewPackReader(r io.ReaderAt) (*PackReader, error) {
	head := make([]byte, HPKHeaderSize)
	if _, err := r.ReadAt(head, 0); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedHPKData, err)
	}
	header, err := parseHPKHeader(head)
	if err != nil {
		return nil, err
	}
	return &PackReader{r: r, Header: header}, nil
}

// OpenPackReader opens a pack file for single-vertex access.
func OpenPackReader(path string) (*PackReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	pr, err := NewPackReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	pr.closer = f
	return pr, nil
}

// VertexBytes returns the serialized record for vertex index.
func (p *PackReader) VertexBytes(index uint32) ([]byte, error) {
	if index >= p.Header.VertexCount {
		return nil, fmt.Errorf("%w: %d >= %d", ErrVertexOutOfRange, index, p.Header.VertexCount)
	}
	buf := make([]byte, VertexRecordSize)
	if _, err := p.r.ReadAt(buf, VertexOffset(index)); err != nil {
		return nil, fmt.Errorf("reading vertex %d: %w", index, err)
	}
	return buf, nil
}

// Close releases the underlying file, if any.
func (p *PackReader) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}
