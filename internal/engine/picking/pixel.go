package picking

import (
	"errors"
	"fmt"

	"github.com/Faultbox/hullview/pkg/math"
)

// PositionScale is the fixed-point factor applied to world coordinates in the pick image.
const PositionScale = 1000

// ChannelsPerTexel is the number of int32 channels per pick texel.
const ChannelsPerTexel = 4

// ErrImageTooSmall is returned when the data cannot hold the declared dimensions.
var ErrImageTooSmall = errors.New("picking: image data too small")

// Image is a host copy of the pick render target.
// Rows are PaddedWidth texels apart; only the first Width are rendered.
type Image struct {
	Data        []int32
	PaddedWidth int
	Width       int
	Height      int
}

// NewImage wraps readback data.
func NewImage(data []int32, paddedWidth, width, height int) (Image, error) {
	if paddedWidth < width {
		return Image{}, fmt.Errorf("%w: padded width %d < width %d", ErrImageTooSmall, paddedWidth, width)
	}
	if need := paddedWidth * height * ChannelsPerTexel; len(data) < need {
		return Image{}, fmt.Errorf("%w: %d values, need %d", ErrImageTooSmall, len(data), need)
	}
	return Image{Data: data, PaddedWidth: paddedWidth, Width: width, Height: height}, nil
}

// Index returns the offset of the texel at (col, row).
func (im Image) Index(col, row int) int {
	return im.PaddedWidth*row*ChannelsPerTexel + col*ChannelsPerTexel
}

// PixelData is one decoded pick texel.
type PixelData struct {
	ID    uint32 // pick index
	Shard uint32
	Point math.Vec3
}

// Background reports whether nothing was rendered into the texel.
func (p PixelData) Background() bool {
	return p.ID == 0 && p.Shard == 0
}

// At decodes the texel at (col, row).
func (im Image) At(col, row int) PixelData {
	i := im.Index(col, row)
	packed := uint32(im.Data[i+3])
	return PixelData{
		ID:    UnpackID(packed),
		Shard: UnpackShard(packed),
		Point: math.Vec3{
			X: float32(im.Data[i]) / PositionScale,
			Y: float32(im.Data[i+1]) / PositionScale,
			Z: float32(im.Data[i+2]) / PositionScale,
		},
	}
}

// Set encodes a texel.
func (im Image) Set(col, row int, p math.Vec3, packed uint32) {
	i := im.Index(col, row)
	im.Data[i] = int32(p.X * PositionScale)
	im.Data[i+1] = int32(p.Y * PositionScale)
	im.Data[i+2] = int32(p.Z * PositionScale)
	im.Data[i+3] = int32(packed)
}
